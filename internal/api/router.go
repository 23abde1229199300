package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"yamor-backend/config"
	"yamor-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/dashboard", h.GetDashboard)

		api.POST("/medications", h.CreateMedication)
		api.GET("/medications", h.ListMedications)
		api.POST("/medications/:med_id/activity", h.RecordActivity)

		api.GET("/activity", h.ListActivity)

		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.PutSettings)

		api.POST("/scan", h.Scan)
		api.GET("/vision/models", caching, h.ListVisionModels)

		api.POST("/appointments", h.CreateAppointment)
		api.GET("/appointments", h.ListAppointments)
		api.GET("/appointments/calendar.ics", caching, h.ExportCalendar)
	}

	return r
}
