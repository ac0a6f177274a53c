package aggregation

import "github.com/riskibarqy/fpl-companion/internal/domain/playerstats"

// IsConfirmed reports whether the row's total already includes its bonus: the
// backend marked it confirmed, or an official bonus has been written.
func IsConfirmed(r playerstats.GameweekStat) bool {
	return r.BonusStatus == playerstats.BonusConfirmed || r.Bonus > 0
}

// EffectiveTotal is the row's points with provisional bonus added exactly once.
func EffectiveTotal(r playerstats.GameweekStat) int {
	if IsConfirmed(r) {
		return r.TotalPoints
	}
	return r.TotalPoints + r.ProvisionalBonus
}

// IsBonusConfirmed reports whether the official bonus is authoritative for the
// row. A finished fixture wins over a stale provisional status, and a nonzero
// bonus alone is not enough.
func IsBonusConfirmed(r playerstats.GameweekStat) bool {
	return r.BonusStatus == playerstats.BonusConfirmed || r.FixtureFinished
}

// EffectiveBonus is the bonus to display for one row.
func EffectiveBonus(r playerstats.GameweekStat) int {
	if IsBonusConfirmed(r) {
		return r.Bonus
	}
	return r.ProvisionalBonus
}
