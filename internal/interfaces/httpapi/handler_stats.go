package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/riskibarqy/fpl-companion/internal/domain/aggregation"
	"github.com/riskibarqy/fpl-companion/internal/domain/playerstats"
	"github.com/riskibarqy/fpl-companion/internal/usecase"
)

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStats")
	defer span.End()

	filter, err := statsFilterFromQuery(r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	res, err := h.queries.Stats(ctx, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "get stats failed", "filter", filter, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, queryToDTO(res, statsPageToDTO(res.Data)))
}

// statsFilterFromQuery maps query parameters onto the filter. Value checks
// happen in the filter's own validation.
func statsFilterFromQuery(q url.Values) (usecase.StatsFilter, error) {
	var (
		f   usecase.StatsFilter
		err error
	)
	if f.Gameweek, err = optionalInt(q.Get("gw"), "gw"); err != nil {
		return f, err
	}
	if f.Page, err = optionalInt(q.Get("page"), "page"); err != nil {
		return f, err
	}
	if f.PageSize, err = optionalInt(q.Get("pageSize"), "pageSize"); err != nil {
		return f, err
	}
	if f.TeamView, err = optionalBool(q.Get("teamView"), "teamView"); err != nil {
		return f, err
	}
	if f.Range, err = usecase.ParseRange(q.Get("range")); err != nil {
		return f, err
	}
	f.Location = usecase.Location(strings.ToLower(strings.TrimSpace(q.Get("location"))))
	f.SortBy = playerstats.StatKey(strings.TrimSpace(q.Get("sortBy")))
	f.SortDir = q.Get("sortDir")
	f.Position = q.Get("position")
	f.Search = q.Get("search")
	f.Display = aggregation.DisplayMode(strings.ToLower(strings.TrimSpace(q.Get("display"))))
	return f, nil
}

func (h *Handler) GetTop10ByStat(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTop10ByStat")
	defer span.End()

	gw, err := optionalInt(r.URL.Query().Get("gw"), "gw")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	res, err := h.queries.Top10ByStat(ctx, gw)
	if err != nil {
		h.logger.WarnContext(ctx, "get top10 by stat failed", "gameweek", gw, "error", err)
		writeError(ctx, w, err)
		return
	}

	data := res.Data
	if data == nil {
		data = map[playerstats.StatKey][]int{}
	}
	writeSuccess(ctx, w, http.StatusOK, queryToDTO(res, data))
}

func (h *Handler) GetPlayerRange(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerRange")
	defer span.End()

	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	statRange, err := usecase.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	res, err := h.queries.PlayerRange(ctx, playerID, statRange)
	if err != nil {
		h.logger.WarnContext(ctx, "get player range failed", "player_id", playerID, "range", statRange, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, queryToDTO(res, playerAggregateToDTO(res.Data)))
}

func (h *Handler) GetCompareRanks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCompareRanks")
	defer span.End()

	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	statRange, err := usecase.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	rankBy, err := usecase.ParseRankBy(r.URL.Query().Get("rankBy"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	res, err := h.queries.CompareRanks(ctx, playerID, statRange, rankBy)
	if err != nil {
		h.logger.WarnContext(ctx, "get compare ranks failed", "player_id", playerID, "range", statRange, "rank_by", rankBy, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, queryToDTO(res, res.Data))
}
