package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fpl-companion/internal/domain/team"
)

func (h *Handler) GetCurrentGameweek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentGameweek")
	defer span.End()

	res, err := h.queries.CurrentGameweek(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get current gameweek failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, queryToDTO(res, gameweekToDTO(res.Data)))
}

func (h *Handler) GetNextGameweek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetNextGameweek")
	defer span.End()

	res, err := h.queries.NextGameweek(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get next gameweek failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, queryToDTO(res, gameweekToDTO(res.Data)))
}

// ListFixtures serves /v1/gameweeks/{gw}/fixtures and /v1/fixtures, the
// latter for the current gameweek.
func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtures")
	defer span.End()

	gw, err := optionalInt(r.PathValue("gw"), "gw")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	res, err := h.queries.Fixtures(ctx, gw)
	if err != nil {
		h.logger.WarnContext(ctx, "list fixtures failed", "gameweek", gw, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, queryToDTO(res, fixturesToDTO(res.Data)))
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	res, err := h.queries.Teams(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(res.Data))
	for _, t := range res.Data {
		items = append(items, teamToDTO(t))
	}
	writeSuccess(ctx, w, http.StatusOK, queryToDTO(res, items))
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{ID: v.ID, ShortName: v.ShortName, Name: v.Name}
}

func (h *Handler) ListManagerPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListManagerPicks")
	defer span.End()

	managerID, err := pathID(r, "managerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	gw, err := optionalInt(r.URL.Query().Get("gw"), "gw")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	res, err := h.queries.ManagerPicks(ctx, managerID, gw)
	if err != nil {
		h.logger.WarnContext(ctx, "list manager picks failed", "manager_id", managerID, "gameweek", gw, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, queryToDTO(res, picksToDTO(res.Data)))
}

func (h *Handler) ListLiveStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLiveStandings")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	res, err := h.queries.LiveStandings(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list live standings failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, queryToDTO(res, standingsToDTO(res.Data)))
}
