package cadence

import (
	"time"

	"github.com/riskibarqy/fpl-companion/internal/domain/refreshstate"
)

// Kind groups queries that share a polling policy.
type Kind string

const (
	KindGameweek        Kind = "gameweek"
	KindFixtures        Kind = "fixtures"
	KindSquadPicks      Kind = "squad_picks"
	KindAggregatedStats Kind = "aggregated_stats"
	KindTelemetry       Kind = "telemetry"
	KindBulkSearch      Kind = "bulk_search"
)

// Off disables background polling.
const Off time.Duration = 0

// Cadence is the freshness policy for one kind in one state.
type Cadence struct {
	StaleTTL        time.Duration `json:"staleTtl"`
	RefetchInterval time.Duration `json:"refetchInterval"`
}

func (c Cadence) Polls() bool {
	return c.RefetchInterval > 0
}

func c(ttl, interval time.Duration) Cadence {
	return Cadence{StaleTTL: ttl, RefetchInterval: interval}
}

const (
	s = time.Second
	m = time.Minute
)

var table = map[Kind]map[refreshstate.State]Cadence{
	KindGameweek: {
		refreshstate.LiveMatches:      c(15*s, 20*s),
		refreshstate.BonusPending:     c(15*s, 20*s),
		refreshstate.PriceWindow:      c(30*s, 30*s),
		refreshstate.TransferDeadline: c(15*s, 20*s),
		refreshstate.Idle:             c(30*s, 60*s),
	},
	KindFixtures: {
		refreshstate.LiveMatches:      c(15*s, 15*s),
		refreshstate.BonusPending:     c(15*s, 30*s),
		refreshstate.PriceWindow:      c(30*s, 30*s),
		refreshstate.TransferDeadline: c(30*s, 30*s),
		refreshstate.Idle:             c(30*s, 30*s),
	},
	KindSquadPicks: {
		refreshstate.LiveMatches:      c(30*s, 25*s),
		refreshstate.BonusPending:     c(30*s, 25*s),
		refreshstate.PriceWindow:      c(30*s, 60*s),
		refreshstate.TransferDeadline: c(30*s, 60*s),
		refreshstate.Idle:             c(30*s, 60*s),
	},
	KindAggregatedStats: {
		refreshstate.LiveMatches:      c(25*s, 25*s),
		refreshstate.BonusPending:     c(25*s, 25*s),
		refreshstate.PriceWindow:      c(2*m, Off),
		refreshstate.TransferDeadline: c(2*m, 2*m),
		refreshstate.Idle:             c(2*m, Off),
	},
	KindTelemetry: {
		refreshstate.LiveMatches:      c(10*s, 10*s),
		refreshstate.BonusPending:     c(10*s, 10*s),
		refreshstate.PriceWindow:      c(10*s, 30*s),
		refreshstate.TransferDeadline: c(10*s, 30*s),
		refreshstate.Idle:             c(10*s, 30*s),
	},
	KindBulkSearch: {
		refreshstate.LiveMatches:      c(60*s, Off),
		refreshstate.BonusPending:     c(60*s, Off),
		refreshstate.PriceWindow:      c(60*s, Off),
		refreshstate.TransferDeadline: c(60*s, Off),
		refreshstate.Idle:             c(60*s, Off),
	},
}

// For returns the cadence of kind under state. States without a column,
// outside_gameweek included, use the idle column.
func For(state refreshstate.State, kind Kind) Cadence {
	row, ok := table[kind]
	if !ok {
		row = table[KindBulkSearch]
	}
	if cad, ok := row[state]; ok {
		return cad
	}
	return row[refreshstate.Idle]
}

func Kinds() []Kind {
	return []Kind{KindGameweek, KindFixtures, KindSquadPicks, KindAggregatedStats, KindTelemetry, KindBulkSearch}
}

// Table renders the full matrix for every state, used by the debug surface.
func Table() map[Kind]map[refreshstate.State]Cadence {
	out := make(map[Kind]map[refreshstate.State]Cadence, len(table))
	for _, kind := range Kinds() {
		row := make(map[refreshstate.State]Cadence, len(refreshstate.All()))
		for _, state := range refreshstate.All() {
			row[state] = For(state, kind)
		}
		out[kind] = row
	}
	return out
}
