package ranking

import (
	"github.com/riskibarqy/fpl-companion/internal/domain/player"
	"github.com/riskibarqy/fpl-companion/internal/domain/playerstats"
)

// CompareStats returns the stats shown when comparing players of the given
// positions. Keeper stats need a keeper in the comparison, the clean sheet,
// defensive contribution and xGC group needs a forward, and expected attacking
// stats are dropped when everyone is a keeper.
func CompareStats(positions []player.Position) []playerstats.Definition {
	var hasGK, hasFWD bool
	allGK := len(positions) > 0
	for _, p := range positions {
		switch p {
		case player.PositionGK:
			hasGK = true
		case player.PositionFWD:
			hasFWD = true
		}
		if p != player.PositionGK {
			allGK = false
		}
	}

	out := make([]playerstats.Definition, 0)
	for _, def := range playerstats.Catalog() {
		switch def.Scope {
		case playerstats.ScopeKeeper:
			if !hasGK {
				continue
			}
		case playerstats.ScopeForwardPair:
			if !hasFWD {
				continue
			}
		case playerstats.ScopeExpectedAttack:
			if allGK {
				continue
			}
		}
		if def.Key == playerstats.StatSelectedByPercent {
			continue
		}
		out = append(out, def)
	}
	return out
}

// CompareSpecs is CompareStats as rank specs.
func CompareSpecs(positions []player.Position) []Spec {
	return SpecsFor(playerstats.Keys(CompareStats(positions))...)
}
