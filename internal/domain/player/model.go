package player

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Position int

const (
	PositionGK  Position = 1
	PositionDEF Position = 2
	PositionMID Position = 3
	PositionFWD Position = 4
)

func (p Position) Valid() bool {
	return p >= PositionGK && p <= PositionFWD
}

func (p Position) String() string {
	switch p {
	case PositionGK:
		return "GK"
	case PositionDEF:
		return "DEF"
	case PositionMID:
		return "MID"
	case PositionFWD:
		return "FWD"
	default:
		return fmt.Sprintf("Position(%d)", int(p))
	}
}

// ParsePosition accepts either the short label or the numeric code.
func ParsePosition(value string) (Position, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "GK", "GKP", "1":
		return PositionGK, nil
	case "DEF", "2":
		return PositionDEF, nil
	case "MID", "3":
		return PositionMID, nil
	case "FWD", "4":
		return PositionFWD, nil
	default:
		return 0, fmt.Errorf("unknown position %q", value)
	}
}

// Player is the static player row.
type Player struct {
	ID                int
	WebName           string
	TeamID            int
	Position          Position
	CostTenths        *int
	SelectedByPercent *decimal.Decimal
}

// Cost returns the price in millions.
func (p Player) Cost() (decimal.Decimal, bool) {
	if p.CostTenths == nil {
		return decimal.Zero, false
	}
	return decimal.New(int64(*p.CostTenths), -1), true
}
