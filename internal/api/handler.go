package api

import (
	"time"

	"yamor-backend/internal/notify"
	"yamor-backend/internal/store"
	"yamor-backend/internal/vision"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store  store.Store
	vision *vision.Client
	pool   *notify.WorkerPool
	loc    *time.Location

	// now is swappable in tests to pin the dashboard period.
	now func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, visionClient *vision.Client, pool *notify.WorkerPool, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		store:  s,
		vision: visionClient,
		pool:   pool,
		loc:    loc,
		now:    time.Now,
	}
}
