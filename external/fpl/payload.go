package fpl

import (
	"time"

	"github.com/riskibarqy/fpl-companion/internal/domain/fixture"
	"github.com/riskibarqy/fpl-companion/internal/domain/gameweek"
)

type bootstrapEnvelope struct {
	Events []eventItem `json:"events"`
	Teams  []teamItem  `json:"teams"`
}

type eventItem struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	DeadlineTime    string  `json:"deadline_time"`
	IsCurrent       bool    `json:"is_current"`
	IsNext          bool    `json:"is_next"`
	IsPrevious      bool    `json:"is_previous"`
	Finished        bool    `json:"finished"`
	DataChecked     bool    `json:"data_checked"`
	FPLRanksUpdated bool    `json:"ranked"`
	ReleaseTime     *string `json:"release_time"`
}

func (e eventItem) toDomain() gameweek.Gameweek {
	gw := gameweek.Gameweek{
		ID:              e.ID,
		Name:            e.Name,
		IsCurrent:       e.IsCurrent,
		IsNext:          e.IsNext,
		IsPrevious:      e.IsPrevious,
		Finished:        e.Finished,
		DataChecked:     e.DataChecked,
		FPLRanksUpdated: e.FPLRanksUpdated,
	}
	if t := parseTime(&e.DeadlineTime); t != nil {
		gw.DeadlineTime = *t
	}
	gw.ReleaseTime = parseTime(e.ReleaseTime)
	return gw
}

type teamItem struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type fixtureItem struct {
	ID                  int     `json:"id"`
	Event               *int    `json:"event"`
	TeamH               int     `json:"team_h"`
	TeamA               int     `json:"team_a"`
	TeamHScore          *int    `json:"team_h_score"`
	TeamAScore          *int    `json:"team_a_score"`
	Started             *bool   `json:"started"`
	Finished            bool    `json:"finished"`
	FinishedProvisional bool    `json:"finished_provisional"`
	Minutes             *int    `json:"minutes"`
	KickoffTime         *string `json:"kickoff_time"`
}

func (f fixtureItem) toDomain() fixture.Fixture {
	out := fixture.Fixture{
		ID:                  f.ID,
		HomeTeamID:          f.TeamH,
		AwayTeamID:          f.TeamA,
		HomeScore:           f.TeamHScore,
		AwayScore:           f.TeamAScore,
		Finished:            f.Finished,
		FinishedProvisional: f.FinishedProvisional,
		Minutes:             f.Minutes,
		KickoffTime:         parseTime(f.KickoffTime),
	}
	if f.Event != nil {
		out.Gameweek = *f.Event
	}
	if f.Started != nil {
		out.Started = *f.Started
	}
	return out
}

func parseTime(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
