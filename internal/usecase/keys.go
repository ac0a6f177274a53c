package usecase

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Cache keys of the named queries. Parameterised keys share the prefix so a
// family can be invalidated or peeked at once.
const (
	KeyGameweekCurrent     = "gameweek:current"
	KeyGameweekNext        = "gameweek:next"
	KeyPhasesLatest        = "phases:latest"
	KeyDeadlineBatchLatest = "deadline:batch:latest"
	keyPlayersAll          = "players:all"
	keyTeamsAll            = "teams:all"

	PrefixFixtures      = "fixtures:gw:"
	PrefixStats         = "stats:all:"
	PrefixPlayerRange   = "player:stats:range:"
	PrefixCompareRanks  = "player:compare:ranks:"
	PrefixTop10         = "top10:byStat:gw:"
	PrefixManagerPicks  = "manager:picks:"
	PrefixStandingsLive = "standings:live:"
	prefixStatsRows     = "rows:stats:"
)

func FixturesKey(gw int) string {
	return fmt.Sprintf("%s%d", PrefixFixtures, gw)
}

// StatsKey is the canonical encoding of a normalised filter, so equal
// filters share one entry.
func StatsKey(f StatsFilter) string {
	encoded, err := sonic.ConfigStd.Marshal(f)
	if err != nil {
		return fmt.Sprintf("%s%+v", PrefixStats, f)
	}
	return PrefixStats + string(encoded)
}

func PlayerRangeKey(playerID int, r StatRange) string {
	return fmt.Sprintf("%s%d:%s", PrefixPlayerRange, playerID, r)
}

func CompareRanksKey(playerID int, r StatRange, rankBy RankBy) string {
	return fmt.Sprintf("%s%d:%s:%s", PrefixCompareRanks, playerID, r, rankBy)
}

func Top10Key(gw int) string {
	return fmt.Sprintf("%s%d", PrefixTop10, gw)
}

func ManagerPicksKey(managerID, gw int) string {
	return fmt.Sprintf("%s%d:%d", PrefixManagerPicks, managerID, gw)
}

func StandingsLiveKey(leagueID int) string {
	return fmt.Sprintf("%s%d", PrefixStandingsLive, leagueID)
}

// statsRowsKey caches raw stat rows of a gameweek window, shared by every
// view derived from the same window.
func statsRowsKey(from, to int) string {
	return fmt.Sprintf("%s%d:%d", prefixStatsRows, from, to)
}
