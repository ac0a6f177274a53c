package httpapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/fpl-companion/internal/domain/aggregation"
	"github.com/riskibarqy/fpl-companion/internal/domain/cadence"
	"github.com/riskibarqy/fpl-companion/internal/domain/fixture"
	"github.com/riskibarqy/fpl-companion/internal/domain/gameweek"
	"github.com/riskibarqy/fpl-companion/internal/domain/leaguestanding"
	"github.com/riskibarqy/fpl-companion/internal/domain/manager"
	"github.com/riskibarqy/fpl-companion/internal/domain/playerstats"
	"github.com/riskibarqy/fpl-companion/internal/domain/refreshlog"
	"github.com/riskibarqy/fpl-companion/internal/domain/refreshstate"
	"github.com/riskibarqy/fpl-companion/internal/usecase"
)

// queryDTO wraps a named query payload with the cache metadata the
// dashboard uses for loading and staleness badges.
type queryDTO[T any] struct {
	Key       string  `json:"key"`
	Enabled   bool    `json:"enabled"`
	Loading   bool    `json:"loading"`
	UpdatedAt *string `json:"updatedAt"`
	Error     string  `json:"error,omitempty"`
	Data      T       `json:"data"`
}

func queryToDTO[T, D any](res usecase.Result[T], data D) queryDTO[D] {
	return queryDTO[D]{
		Key:       res.Key,
		Enabled:   res.Enabled,
		Loading:   res.Loading,
		UpdatedAt: formatOptionalTime(res.UpdatedAt),
		Error:     res.Error,
		Data:      data,
	}
}

type gameweekDTO struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	DeadlineTime    string  `json:"deadlineTime"`
	IsCurrent       bool    `json:"isCurrent"`
	IsNext          bool    `json:"isNext"`
	IsPrevious      bool    `json:"isPrevious"`
	Finished        bool    `json:"finished"`
	DataChecked     bool    `json:"dataChecked"`
	FPLRanksUpdated bool    `json:"fplRanksUpdated"`
	ReleaseTime     *string `json:"releaseTime"`
}

func gameweekToDTO(v *gameweek.Gameweek) *gameweekDTO {
	if v == nil {
		return nil
	}
	return &gameweekDTO{
		ID:              v.ID,
		Name:            v.Name,
		DeadlineTime:    formatTime(v.DeadlineTime),
		IsCurrent:       v.IsCurrent,
		IsNext:          v.IsNext,
		IsPrevious:      v.IsPrevious,
		Finished:        v.Finished,
		DataChecked:     v.DataChecked,
		FPLRanksUpdated: v.FPLRanksUpdated,
		ReleaseTime:     formatOptionalTime(v.ReleaseTime),
	}
}

type fixtureDTO struct {
	ID                  int     `json:"id"`
	Gameweek            int     `json:"gameweek"`
	HomeTeamID          int     `json:"homeTeamId"`
	AwayTeamID          int     `json:"awayTeamId"`
	HomeScore           *int    `json:"homeScore"`
	AwayScore           *int    `json:"awayScore"`
	Started             bool    `json:"started"`
	Finished            bool    `json:"finished"`
	FinishedProvisional bool    `json:"finishedProvisional"`
	AwaitingBonus       bool    `json:"awaitingBonus"`
	Minutes             *int    `json:"minutes"`
	KickoffTime         *string `json:"kickoffTime"`
}

func fixturesToDTO(rows []fixture.Fixture) []fixtureDTO {
	out := make([]fixtureDTO, 0, len(rows))
	for _, v := range rows {
		out = append(out, fixtureDTO{
			ID:                  v.ID,
			Gameweek:            v.Gameweek,
			HomeTeamID:          v.HomeTeamID,
			AwayTeamID:          v.AwayTeamID,
			HomeScore:           v.HomeScore,
			AwayScore:           v.AwayScore,
			Started:             v.Started,
			Finished:            v.Finished,
			FinishedProvisional: v.FinishedProvisional,
			AwaitingBonus:       v.AwaitingBonus(),
			Minutes:             v.Minutes,
			KickoffTime:         formatOptionalTime(v.KickoffTime),
		})
	}
	return out
}

type teamDTO struct {
	ID        int    `json:"id"`
	ShortName string `json:"shortName"`
	Name      string `json:"name"`
}

type pickDTO struct {
	ManagerID     int  `json:"managerId"`
	Gameweek      int  `json:"gameweek"`
	PlayerID      int  `json:"playerId"`
	Slot          int  `json:"slot"`
	Multiplier    int  `json:"multiplier"`
	IsCaptain     bool `json:"isCaptain"`
	IsViceCaptain bool `json:"isViceCaptain"`
	Starting      bool `json:"starting"`
}

func picksToDTO(rows []manager.Pick) []pickDTO {
	out := make([]pickDTO, 0, len(rows))
	for _, v := range rows {
		out = append(out, pickDTO{
			ManagerID:     v.ManagerID,
			Gameweek:      v.Gameweek,
			PlayerID:      v.PlayerID,
			Slot:          v.Slot,
			Multiplier:    v.Multiplier,
			IsCaptain:     v.IsCaptain,
			IsViceCaptain: v.IsViceCaptain,
			Starting:      v.Starting(),
		})
	}
	return out
}

type standingDTO struct {
	LeagueID        int     `json:"leagueId"`
	ManagerID       int     `json:"managerId"`
	EntryName       string  `json:"entryName"`
	PlayerName      string  `json:"playerName"`
	Rank            int     `json:"rank"`
	LastRank        int     `json:"lastRank"`
	Movement        int     `json:"movement"`
	GameweekPoints  int     `json:"gameweekPoints"`
	TotalPoints     int     `json:"totalPoints"`
	SourceUpdatedAt *string `json:"sourceUpdatedAt"`
}

func standingsToDTO(rows []leaguestanding.Standing) []standingDTO {
	out := make([]standingDTO, 0, len(rows))
	for _, v := range rows {
		out = append(out, standingDTO{
			LeagueID:        v.LeagueID,
			ManagerID:       v.ManagerID,
			EntryName:       v.EntryName,
			PlayerName:      v.PlayerName,
			Rank:            v.Rank,
			LastRank:        v.LastRank,
			Movement:        v.Movement(),
			GameweekPoints:  v.GameweekPoints,
			TotalPoints:     v.TotalPoints,
			SourceUpdatedAt: formatOptionalTime(v.SourceUpdatedAt),
		})
	}
	return out
}

// playerAggregateDTO reports effective points and bonus as the headline
// values; the raw figures are kept for the provisional badge.
type playerAggregateDTO struct {
	PlayerID                 int     `json:"playerId"`
	WebName                  string  `json:"webName"`
	TeamID                   int     `json:"teamId"`
	Position                 string  `json:"position"`
	FromGameweek             int     `json:"fromGameweek"`
	ToGameweek               int     `json:"toGameweek"`
	FixtureIDs               []int   `json:"fixtureIds"`
	Minutes                  int     `json:"minutes"`
	TotalPoints              int     `json:"totalPoints"`
	RawTotalPoints           int     `json:"rawTotalPoints"`
	Bonus                    int     `json:"bonus"`
	OfficialBonus            int     `json:"officialBonus"`
	ProvisionalBonus         int     `json:"provisionalBonus"`
	BPS                      int     `json:"bps"`
	GoalsScored              int     `json:"goalsScored"`
	Assists                  int     `json:"assists"`
	CleanSheets              int     `json:"cleanSheets"`
	Saves                    int     `json:"saves"`
	DefensiveContribution    int     `json:"defensiveContribution"`
	YellowCards              int     `json:"yellowCards"`
	RedCards                 int     `json:"redCards"`
	GoalsConceded            int     `json:"goalsConceded"`
	ExpectedGoals            float64 `json:"expectedGoals"`
	ExpectedAssists          float64 `json:"expectedAssists"`
	ExpectedGoalInvolvements float64 `json:"expectedGoalInvolvements"`
	ExpectedGoalsConceded    float64 `json:"expectedGoalsConceded"`
	Cost                     *string `json:"cost"`
	SelectedByPercent        *string `json:"selectedByPercent"`
	Provisional              bool    `json:"provisional"`
}

func playerAggregateToDTO(v aggregation.PlayerGameweek) playerAggregateDTO {
	out := playerAggregateDTO{
		PlayerID:                 v.PlayerID,
		WebName:                  v.WebName,
		TeamID:                   v.TeamID,
		FromGameweek:             v.FromGameweek,
		ToGameweek:               v.ToGameweek,
		FixtureIDs:               v.FixtureIDs,
		Minutes:                  v.Minutes,
		TotalPoints:              v.EffectiveTotalPoints,
		RawTotalPoints:           v.TotalPoints,
		Bonus:                    v.EffectiveBonus,
		OfficialBonus:            v.Bonus,
		ProvisionalBonus:         v.ProvisionalBonus,
		BPS:                      v.BPS,
		GoalsScored:              v.GoalsScored,
		Assists:                  v.Assists,
		CleanSheets:              v.CleanSheets,
		Saves:                    v.Saves,
		DefensiveContribution:    v.DefensiveContribution,
		YellowCards:              v.YellowCards,
		RedCards:                 v.RedCards,
		GoalsConceded:            v.GoalsConceded,
		ExpectedGoals:            v.ExpectedGoals,
		ExpectedAssists:          v.ExpectedAssists,
		ExpectedGoalInvolvements: v.ExpectedGoalInvolvements,
		ExpectedGoalsConceded:    v.ExpectedGoalsConceded,
		Provisional:              v.Provisional,
	}
	if out.FixtureIDs == nil {
		out.FixtureIDs = []int{}
	}
	if v.Position.Valid() {
		out.Position = v.Position.String()
	}
	if v.CostTenths != nil {
		s := decimal.New(int64(*v.CostTenths), -1).StringFixed(1)
		out.Cost = &s
	}
	if v.SelectedByPercent != nil {
		s := v.SelectedByPercent.StringFixed(1)
		out.SelectedByPercent = &s
	}
	return out
}

type teamAggregateDTO struct {
	TeamID                   int     `json:"teamId"`
	Players                  int     `json:"players"`
	FixtureIDs               []int   `json:"fixtureIds"`
	TotalPoints              int     `json:"totalPoints"`
	Bonus                    int     `json:"bonus"`
	BPS                      int     `json:"bps"`
	GoalsScored              int     `json:"goalsScored"`
	Assists                  int     `json:"assists"`
	Saves                    int     `json:"saves"`
	DefensiveContribution    int     `json:"defensiveContribution"`
	YellowCards              int     `json:"yellowCards"`
	RedCards                 int     `json:"redCards"`
	ExpectedGoals            float64 `json:"expectedGoals"`
	ExpectedAssists          float64 `json:"expectedAssists"`
	ExpectedGoalInvolvements float64 `json:"expectedGoalInvolvements"`
	GoalsConceded            *int    `json:"goalsConceded"`
	Provisional              bool    `json:"provisional"`
}

func teamAggregateToDTO(v aggregation.TeamGameweek) teamAggregateDTO {
	out := teamAggregateDTO{
		TeamID:                   v.TeamID,
		Players:                  v.Players,
		FixtureIDs:               v.FixtureIDs,
		TotalPoints:              v.EffectiveTotalPoints,
		Bonus:                    v.EffectiveBonus,
		BPS:                      v.BPS,
		GoalsScored:              v.GoalsScored,
		Assists:                  v.Assists,
		Saves:                    v.Saves,
		DefensiveContribution:    v.DefensiveContribution,
		YellowCards:              v.YellowCards,
		RedCards:                 v.RedCards,
		ExpectedGoals:            v.ExpectedGoals,
		ExpectedAssists:          v.ExpectedAssists,
		ExpectedGoalInvolvements: v.ExpectedGoalInvolvements,
		GoalsConceded:            v.GoalsConceded,
		Provisional:              v.Provisional,
	}
	if out.FixtureIDs == nil {
		out.FixtureIDs = []int{}
	}
	return out
}

type statsPlayerRowDTO struct {
	playerAggregateDTO
	SortValue         string `json:"sortValue"`
	SortValueComputed bool   `json:"sortValueComputed"`
}

type statsTeamRowDTO struct {
	teamAggregateDTO
	SortValue         string `json:"sortValue"`
	SortValueComputed bool   `json:"sortValueComputed"`
}

type statsPageDTO struct {
	Filter            usecase.StatsFilter           `json:"filter"`
	FromGameweek      int                           `json:"fromGameweek"`
	ToGameweek        int                           `json:"toGameweek"`
	Source            string                        `json:"source"`
	Players           []statsPlayerRowDTO           `json:"players"`
	Teams             []statsTeamRowDTO             `json:"teams"`
	TeamGoalsConceded map[int]int                   `json:"teamGoalsConceded"`
	TotalCount        int                           `json:"totalCount"`
	Top10             map[playerstats.StatKey][]int `json:"top10"`
	Leaders           map[playerstats.StatKey]int   `json:"leaders"`
	Provisional       bool                          `json:"provisional"`
}

func statsPageToDTO(v usecase.StatsPage) statsPageDTO {
	out := statsPageDTO{
		Filter:            v.Filter,
		FromGameweek:      v.FromGameweek,
		ToGameweek:        v.ToGameweek,
		Source:            v.Source,
		Players:           make([]statsPlayerRowDTO, 0, len(v.Players)),
		Teams:             make([]statsTeamRowDTO, 0, len(v.Teams)),
		TeamGoalsConceded: v.TeamGoalsConceded,
		TotalCount:        v.TotalCount,
		Top10:             v.Top10,
		Leaders:           v.Leaders,
		Provisional:       v.Provisional,
	}
	for _, row := range v.Players {
		out.Players = append(out.Players, statsPlayerRowDTO{
			playerAggregateDTO: playerAggregateToDTO(row.Player),
			SortValue:          row.SortValue.String(),
			SortValueComputed:  row.SortValueComputed,
		})
	}
	for _, row := range v.Teams {
		out.Teams = append(out.Teams, statsTeamRowDTO{
			teamAggregateDTO:  teamAggregateToDTO(row.Team),
			SortValue:         row.SortValue.String(),
			SortValueComputed: row.SortValueComputed,
		})
	}
	return out
}

type cadenceDTO struct {
	StaleTTLMS        int64 `json:"staleTtlMs"`
	RefetchIntervalMS int64 `json:"refetchIntervalMs"`
	Polls             bool  `json:"polls"`
}

type cadenceTableDTO struct {
	State refreshstate.Result                                `json:"current"`
	Table map[cadence.Kind]map[refreshstate.State]cadenceDTO `json:"table"`
}

func cadenceTableToDTO(current refreshstate.Result, table map[cadence.Kind]map[refreshstate.State]cadence.Cadence) cadenceTableDTO {
	out := cadenceTableDTO{
		State: current,
		Table: make(map[cadence.Kind]map[refreshstate.State]cadenceDTO, len(table)),
	}
	for kind, byState := range table {
		row := make(map[refreshstate.State]cadenceDTO, len(byState))
		for st, c := range byState {
			row[st] = cadenceDTO{
				StaleTTLMS:        c.StaleTTL.Milliseconds(),
				RefetchIntervalMS: c.RefetchInterval.Milliseconds(),
				Polls:             c.Polls(),
			}
		}
		out.Table[kind] = row
	}
	return out
}

type phaseRowDTO struct {
	Source     refreshlog.Source `json:"source"`
	Path       refreshlog.Path   `json:"path"`
	OccurredAt string            `json:"occurredAt"`
	DurationMS int               `json:"durationMs"`
}

type phaseReportDTO struct {
	PathLevel bool          `json:"pathLevel"`
	Phases    []phaseRowDTO `json:"phases"`
}

// phaseReportToDTO lists sources in report order, skipping those without a run.
func phaseReportToDTO(v usecase.PhaseReport) phaseReportDTO {
	out := phaseReportDTO{PathLevel: v.PathLevel, Phases: make([]phaseRowDTO, 0, len(v.Phases))}
	for _, source := range refreshlog.Sources() {
		row, ok := v.Phases[source]
		if !ok {
			continue
		}
		out.Phases = append(out.Phases, phaseRowDTO{
			Source:     row.Source,
			Path:       row.Path,
			OccurredAt: formatTime(row.OccurredAt),
			DurationMS: row.DurationMS,
		})
	}
	return out
}

type deadlineBatchDTO struct {
	ID              int            `json:"id"`
	Gameweek        int            `json:"gameweek"`
	StartedAt       string         `json:"startedAt"`
	FinishedAt      *string        `json:"finishedAt"`
	DurationSeconds *float64       `json:"durationSeconds"`
	ManagerCount    *int           `json:"managerCount"`
	LeagueCount     *int           `json:"leagueCount"`
	Success         *bool          `json:"success"`
	PhaseBreakdown  map[string]any `json:"phaseBreakdown"`
}

func deadlineBatchToDTO(v *refreshlog.DeadlineBatchRun) *deadlineBatchDTO {
	if v == nil {
		return nil
	}
	return &deadlineBatchDTO{
		ID:              v.ID,
		Gameweek:        v.Gameweek,
		StartedAt:       formatTime(v.StartedAt),
		FinishedAt:      formatOptionalTime(v.FinishedAt),
		DurationSeconds: v.DurationSeconds,
		ManagerCount:    v.ManagerCount,
		LeagueCount:     v.LeagueCount,
		Success:         v.Success,
		PhaseBreakdown:  v.PhaseBreakdown,
	}
}

type freshnessRowDTO struct {
	Source           refreshlog.Source `json:"source"`
	Path             refreshlog.Path   `json:"path"`
	BackendAt        *string           `json:"backendAt"`
	SinceBackendSec  *float64          `json:"sinceBackendSec"`
	FrontendAt       *string           `json:"frontendAt"`
	SinceFrontendSec *float64          `json:"sinceFrontendSec"`
	DurationMS       *int              `json:"durationMs"`
	QueryPrefixes    []string          `json:"queryPrefixes"`
}

type freshnessReportDTO struct {
	GeneratedAt string              `json:"generatedAt"`
	State       refreshstate.Result `json:"state"`
	PathLevel   bool                `json:"pathLevel"`
	Rows        []freshnessRowDTO   `json:"rows"`
	LatestBatch *deadlineBatchDTO   `json:"latestBatch"`
	Error       string              `json:"error,omitempty"`
}

func freshnessReportToDTO(v usecase.FreshnessReport) freshnessReportDTO {
	out := freshnessReportDTO{
		GeneratedAt: formatTime(v.GeneratedAt),
		State:       v.State,
		PathLevel:   v.PathLevel,
		Rows:        make([]freshnessRowDTO, 0, len(v.Rows)),
		LatestBatch: deadlineBatchToDTO(v.LatestBatch),
		Error:       v.Error,
	}
	for _, row := range v.Rows {
		out.Rows = append(out.Rows, freshnessRowDTO{
			Source:           row.Source,
			Path:             row.Path,
			BackendAt:        formatOptionalTime(row.BackendAt),
			SinceBackendSec:  durationSeconds(row.SinceBackend),
			FrontendAt:       formatOptionalTime(row.FrontendAt),
			SinceFrontendSec: durationSeconds(row.SinceFrontend),
			DurationMS:       row.DurationMS,
			QueryPrefixes:    row.QueryPrefixes,
		})
	}
	return out
}

type mismatchDTO struct {
	Entity   string `json:"entity"`
	ID       int    `json:"id"`
	Field    string `json:"field"`
	Store    string `json:"store"`
	Upstream string `json:"upstream"`
}

type upstreamComparisonDTO struct {
	Gameweek   int           `json:"gameweek"`
	CheckedAt  string        `json:"checkedAt"`
	InSync     bool          `json:"inSync"`
	Mismatches []mismatchDTO `json:"mismatches"`
}

func upstreamComparisonToDTO(v usecase.UpstreamComparison) upstreamComparisonDTO {
	out := upstreamComparisonDTO{
		Gameweek:   v.Gameweek,
		CheckedAt:  formatTime(v.CheckedAt),
		InSync:     len(v.Mismatches) == 0,
		Mismatches: make([]mismatchDTO, 0, len(v.Mismatches)),
	}
	for _, m := range v.Mismatches {
		out.Mismatches = append(out.Mismatches, mismatchDTO(m))
	}
	return out
}

func formatTime(v time.Time) string {
	return v.UTC().Format(time.RFC3339)
}

func formatOptionalTime(v *time.Time) *string {
	if v == nil || v.IsZero() {
		return nil
	}
	s := formatTime(*v)
	return &s
}

func durationSeconds(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	v := d.Seconds()
	return &v
}
