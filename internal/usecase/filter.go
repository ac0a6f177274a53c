package usecase

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/fpl-companion/internal/domain/aggregation"
	"github.com/riskibarqy/fpl-companion/internal/domain/player"
	"github.com/riskibarqy/fpl-companion/internal/domain/playerstats"
)

// StatRange is a gameweek window ending at the selected gameweek.
type StatRange string

const (
	RangeGameweek StatRange = "gw"
	RangeLast3    StatRange = "last3"
	RangeLast5    StatRange = "last5"
	RangeLast10   StatRange = "last10"
	RangeSeason   StatRange = "season"
)

// Window returns the inclusive gameweek bounds of r ending at gw.
func (r StatRange) Window(gw int) (int, int) {
	span := 1
	switch r {
	case RangeLast3:
		span = 3
	case RangeLast5:
		span = 5
	case RangeLast10:
		span = 10
	case RangeSeason:
		return 1, gw
	}
	return max(gw-span+1, 1), gw
}

// RankBy selects the population a player is ranked against.
type RankBy string

const (
	RankByAll      RankBy = "all"
	RankByPosition RankBy = "position"
)

type Location string

const (
	LocationAll  Location = "all"
	LocationHome Location = "home"
	LocationAway Location = "away"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	topN            = 10
)

// StatsFilter is the full descriptor of a stats table view. Gameweek 0 means
// the current gameweek.
type StatsFilter struct {
	Gameweek int                     `json:"gw" validate:"gte=0,lte=38"`
	Range    StatRange               `json:"range" validate:"omitempty,oneof=gw last3 last5 last10 season"`
	Location Location                `json:"location" validate:"omitempty,oneof=all home away"`
	Page     int                     `json:"page" validate:"gte=0"`
	PageSize int                     `json:"pageSize" validate:"gte=0,lte=500"`
	SortBy   playerstats.StatKey     `json:"sortBy" validate:"omitempty,statkey"`
	SortDir  string                  `json:"sortDir" validate:"omitempty,oneof=asc desc"`
	Position string                  `json:"position" validate:"omitempty,oneof=GK DEF MID FWD"`
	Search   string                  `json:"search" validate:"max=64"`
	TeamView bool                    `json:"teamView"`
	Display  aggregation.DisplayMode `json:"display" validate:"omitempty,oneof=total per90 per_million"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func filterValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		err := validate.RegisterValidation("statkey", func(fl validator.FieldLevel) bool {
			_, ok := playerstats.Lookup(playerstats.StatKey(fl.Field().String()))
			return ok
		})
		if err != nil {
			panic(fmt.Sprintf("register statkey validation: %v", err))
		}
	})
	return validate
}

// Normalize validates f and fills defaults so equivalent filters encode to
// the same cache key.
func (f StatsFilter) Normalize() (StatsFilter, error) {
	f.Position = strings.ToUpper(strings.TrimSpace(f.Position))
	f.Search = strings.ToLower(strings.TrimSpace(f.Search))
	f.SortDir = strings.ToLower(strings.TrimSpace(f.SortDir))

	if err := filterValidator().Struct(f); err != nil {
		return StatsFilter{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if f.Range == "" {
		f.Range = RangeGameweek
	}
	if f.Location == "" {
		f.Location = LocationAll
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.PageSize == 0 {
		f.PageSize = defaultPageSize
	}
	if f.SortBy == "" {
		f.SortBy = playerstats.StatTotalPoints
	}
	if f.SortDir == "" {
		f.SortDir = "desc"
		if def, ok := playerstats.Lookup(f.SortBy); ok && !def.HigherBetter {
			f.SortDir = "asc"
		}
	}
	if f.Display == "" {
		f.Display = aggregation.DisplayTotal
	}
	return f, nil
}

func (f StatsFilter) position() (player.Position, bool) {
	if f.Position == "" {
		return 0, false
	}
	p, err := player.ParsePosition(f.Position)
	if err != nil {
		return 0, false
	}
	return p, true
}

func (f StatsFilter) matchesLocation(wasHome bool) bool {
	switch f.Location {
	case LocationHome:
		return wasHome
	case LocationAway:
		return !wasHome
	default:
		return true
	}
}

// ParseRange accepts the range query value, defaulting to the single gameweek.
func ParseRange(value string) (StatRange, error) {
	switch r := StatRange(strings.ToLower(strings.TrimSpace(value))); r {
	case "":
		return RangeGameweek, nil
	case RangeGameweek, RangeLast3, RangeLast5, RangeLast10, RangeSeason:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown range %q", ErrInvalidInput, value)
	}
}

func ParseRankBy(value string) (RankBy, error) {
	switch r := RankBy(strings.ToLower(strings.TrimSpace(value))); r {
	case "":
		return RankByAll, nil
	case RankByAll, RankByPosition:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown rank population %q", ErrInvalidInput, value)
	}
}
