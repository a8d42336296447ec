package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/api/respond"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/model"
	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/syncer"
)

// SyncRunner triggers one fetch-merge-drain cycle.
type SyncRunner interface {
	Run(ctx context.Context) (*syncer.Result, error)
}

// SyncHandler exposes the manual sync trigger.
type SyncHandler struct {
	runner SyncRunner
	log    zerolog.Logger
}

func NewSyncHandler(runner SyncRunner, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{runner: runner, log: log}
}

// TriggerSync POST /api/sync. Returns 409 when a cycle is already running.
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	res, err := h.runner.Run(r.Context())
	if err != nil {
		if model.IsBusyError(err) {
			respond.WriteConflict(w, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("sync cycle failed")
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}
