package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/api/request"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/service"
)

const (
	defaultSnapshotLimit = 20
	maxSnapshotLimit     = 200
)

// SnapshotHandler handles requests for stored dashboard snapshots
type SnapshotHandler struct {
	dashboardService *service.DashboardService
}

// NewSnapshotHandler creates a new SnapshotHandler
func NewSnapshotHandler(dashboardService *service.DashboardService) *SnapshotHandler {
	return &SnapshotHandler{
		dashboardService: dashboardService,
	}
}

// Snapshots handles GET requests listing snapshot metadata, newest first.
//
// Endpoint: GET /api/snapshot?limit=
// Response: 200 OK with []model.Snapshot (dashboards omitted)
// Error: 400 for a non-positive limit
func (h *SnapshotHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	limit, err := request.ParseLimit(r.URL.Query().Get("limit"), defaultSnapshotLimit, maxSnapshotLimit)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid limit", err.Error())
		return
	}

	snapshots, err := h.dashboardService.Snapshots(r.Context(), limit)
	if err != nil {
		respondServiceError(w, "failed to list snapshots", err)
		return
	}

	respondJSON(w, http.StatusOK, snapshots)
}

// Snapshot handles GET requests for one stored snapshot with its dashboard.
// The uuid parameter is validated by middleware.ValidateUUIDMiddleware.
//
// Endpoint: GET /api/snapshot/{uuid}
// Response: 200 OK with model.Snapshot
// Error: 404 when no snapshot has that ID
func (h *SnapshotHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.dashboardService.Snapshot(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "failed to get snapshot", err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}
