package handlers

import (
	"context"
	"net/http"

	"github.com/kyh-dev/stockscope/pkg/logger"
)

// MasterRefresher rebuilds the master snapshot. Satisfied by master.Service.
type MasterRefresher interface {
	SnapshotSource
	Refresh(ctx context.Context) error
}

// MasterHandler handles master-file API endpoints
type MasterHandler struct {
	service MasterRefresher
	logger  *logger.Logger
}

// NewMasterHandler creates a new master handler
func NewMasterHandler(service MasterRefresher, log *logger.Logger) *MasterHandler {
	return &MasterHandler{service: service, logger: log}
}

// Refresh rebuilds the snapshot on demand
// POST /api/master/refresh
func (h *MasterHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.service.Refresh(ctx); err != nil {
		h.logger.WithError(err).Error("Master refresh failed")
		respondError(w, http.StatusBadGateway, "master refresh failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"instruments": h.service.Current().Len(),
	})
}

// Status reports the active snapshot size
// GET /api/master/status
func (h *MasterHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"instruments": h.service.Current().Len(),
	})
}
