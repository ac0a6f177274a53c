package aggregation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DisplayMode selects how a stat value is normalised. Modes are exclusive.
type DisplayMode string

const (
	DisplayTotal      DisplayMode = "total"
	DisplayPer90      DisplayMode = "per90"
	DisplayPerMillion DisplayMode = "per_million"
)

func ParseDisplayMode(value string) (DisplayMode, error) {
	switch DisplayMode(value) {
	case "", DisplayTotal:
		return DisplayTotal, nil
	case DisplayPer90, DisplayPerMillion:
		return DisplayMode(value), nil
	default:
		return "", fmt.Errorf("unknown display mode %q", value)
	}
}

var (
	ninety = decimal.NewFromInt(90)
	tenth  = decimal.New(1, -1)
)

// Normalize returns value in mode. computed is false when the mode's
// denominator is unusable (under 90 minutes, no price) and the raw value is
// returned instead.
func Normalize(value float64, mode DisplayMode, minutes int, costTenths *int) (decimal.Decimal, bool) {
	raw := decimal.NewFromFloat(value)

	switch mode {
	case DisplayPer90:
		if minutes < 90 {
			return raw, false
		}
		return raw.Mul(ninety).Div(decimal.NewFromInt(int64(minutes))).Round(2), true
	case DisplayPerMillion:
		if costTenths == nil || *costTenths <= 0 {
			return raw, false
		}
		cost := decimal.NewFromInt(int64(*costTenths)).Mul(tenth)
		return raw.Div(cost).Round(2), true
	default:
		return raw, true
	}
}
