package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/peladahub/pelada-service/internal/export"
	"github.com/peladahub/pelada-service/internal/service"
)

// Services bundles the service-layer dependencies the HTTP surface needs.
// Keeps Register's signature stable as concerns are added.
type Services struct {
	Players    service.PlayerService
	Attendance service.AttendanceService
	Match      service.MatchService
	Ranking    service.RankingService
	Settings   service.SettingsService
	Export     *export.Service
}

// Register mounts all public routes on the given engine.
func Register(r *gin.Engine, repo Pinger, svcs Services) {
	h := NewHealthHandler(repo)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	api := r.Group(APIV1Prefix) // Versioning added via single source of truth
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewPlayerHandler(svcs.Players).Register(api)
		NewAttendanceHandler(svcs.Attendance).Register(api)
		NewMatchHandler(svcs.Match).Register(api)
		NewRankingHandler(svcs.Ranking).Register(api)
		NewSettingsHandler(svcs.Settings).Register(api)
		if svcs.Export != nil {
			NewExportHandler(svcs.Export).Register(api)
		}
	}
}
