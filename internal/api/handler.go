package api

import (
	"bitefeed-notify/internal/notification"
	"bitefeed-notify/internal/realtime"
	"bitefeed-notify/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	notifier  *notification.Notifier
	registry  *realtime.Registry
	readLimit int64
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, n *notification.Notifier, r *realtime.Registry, readLimit int64) *Handler {
	return &Handler{
		store:     s,
		notifier:  n,
		registry:  r,
		readLimit: readLimit,
	}
}
