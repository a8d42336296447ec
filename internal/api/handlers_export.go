package api

import (
	"net/http"
	"time"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/api/respond"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/export"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/store"
)

// ExportHandler streams the current aggregates as a CSV download.
type ExportHandler struct {
	store store.Store
	now   func() time.Time
}

func NewExportHandler(st store.Store, now func() time.Time) *ExportHandler {
	if now == nil {
		now = time.Now
	}
	return &ExportHandler{store: st, now: now}
}

// Export GET /api/export?period=monthly
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	rng, p, err := rangeFromQuery(r, h.now())
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	users := h.store.Load(r.Context())

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(p, rng)+`"`)
	// Headers are already written, so a mid-stream failure truncates the body.
	_ = export.WriteCSV(w, users, rng)
}
