package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerQueryRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/gameweeks/current", handler.GetCurrentGameweek)
	mux.HandleFunc("GET /v1/gameweeks/next", handler.GetNextGameweek)
	mux.HandleFunc("GET /v1/gameweeks/{gw}/fixtures", handler.ListFixtures)
	mux.HandleFunc("GET /v1/fixtures", handler.ListFixtures)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/stats", handler.GetStats)
	mux.HandleFunc("GET /v1/stats/top10", handler.GetTop10ByStat)
	mux.HandleFunc("GET /v1/players/{playerID}/stats", handler.GetPlayerRange)
	mux.HandleFunc("GET /v1/players/{playerID}/ranks", handler.GetCompareRanks)
	mux.HandleFunc("GET /v1/managers/{managerID}/picks", handler.ListManagerPicks)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/standings/live", handler.ListLiveStandings)
}

func registerTelemetryRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/refresh/state", handler.GetRefreshState)
	mux.HandleFunc("GET /v1/refresh/cadence", handler.GetCadenceTable)
	mux.HandleFunc("GET /v1/refresh/phases", handler.GetLatestPhases)
	mux.HandleFunc("GET /v1/refresh/deadline-batch", handler.GetLatestDeadlineBatch)
	mux.HandleFunc("GET /v1/refresh/freshness", handler.GetFreshness)
	mux.HandleFunc("GET /v1/refresh/freshness/stream", handler.StreamFreshness)
	mux.HandleFunc("GET /v1/refresh/upstream", handler.CompareUpstream)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("POST /v1/admin/cache/reset", RequireAdminToken(adminToken, http.HandlerFunc(handler.ResetQuery)))
	mux.Handle("POST /v1/admin/cache/invalidate", RequireAdminToken(adminToken, http.HandlerFunc(handler.InvalidateQueries)))
}
