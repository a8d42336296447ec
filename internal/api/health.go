package api

import (
	"net/http"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/api/respond"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/store"
)

// HealthHandler reports liveness of the service and its cache store.
type HealthHandler struct {
	store store.Store
}

func NewHealthHandler(st store.Store) *HealthHandler {
	return &HealthHandler{store: st}
}

// Health GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if !h.store.Healthy(r.Context()) {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	respond.WriteJSON(w, code, map[string]string{"status": status})
}
