package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"surveyhub/internal/model"
	"surveyhub/internal/service"
)

// Syncer runs the initial population
type Syncer interface {
	EnsureInitialized(ctx context.Context, force bool) (*model.SyncResult, error)
}

// SyncHandler handles sync endpoints
type SyncHandler struct {
	svc Syncer
}

func NewSyncHandler(svc Syncer) *SyncHandler {
	return &SyncHandler{svc: svc}
}

// Sync handles POST /v1/sync?force=true|false
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	force := false
	if v := r.URL.Query().Get("force"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "force must be a boolean")
			return
		}
		force = parsed
	}

	result, err := h.svc.EnsureInitialized(r.Context(), force)
	if err != nil {
		if errors.Is(err, service.ErrSyncInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
