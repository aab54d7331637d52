package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ndewijer/Customer-Dashboard-Backend/internal/api/request"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/export"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/model"
	"github.com/ndewijer/Customer-Dashboard-Backend/internal/service"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// PurchasesResponse is the purchase pivot of the latest snapshot.
type PurchasesResponse struct {
	SnapshotID  string    `json:"snapshotId"`
	GeneratedAt time.Time `json:"generatedAt"`
	model.PurchasePivot
}

// InterestResponse is the interest pivot of the latest snapshot, including
// its display columns.
type InterestResponse struct {
	SnapshotID  string    `json:"snapshotId"`
	GeneratedAt time.Time `json:"generatedAt"`
	model.InterestPivot
}

// DailyTotalsResponse is the daily interest series of the latest snapshot.
type DailyTotalsResponse struct {
	SnapshotID  string             `json:"snapshotId"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Series      []model.DailyTotal `json:"series"`
}

// minNAV reads ?min_nav= and writes a 400 response when it is not a number.
func (h *DashboardHandler) minNAV(w http.ResponseWriter, r *http.Request) (float64, bool) {
	v, err := request.ParseMinNAV(r.URL.Query().Get("min_nav"), h.dashboardService.DefaultMinNAV())
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid min_nav", err.Error())
		return 0, false
	}
	return v, true
}

// Dashboard handles GET requests for every view of the latest snapshot.
//
// Endpoint: GET /api/dashboard?min_nav=
// Response: 200 OK with model.DashboardView
// Error: 400 for an invalid min_nav, 404 before the first refresh
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	minNAV, ok := h.minNAV(w, r)
	if !ok {
		return
	}

	view, err := h.dashboardService.View(r.Context(), minNAV)
	if err != nil {
		respondServiceError(w, "failed to get dashboard", err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// Summary handles GET requests for the customer NAV summary.
// Customers whose NAV is below min_nav are hidden; the column maxima are
// computed over the visible rows.
//
// Endpoint: GET /api/dashboard/summary?min_nav=
// Response: 200 OK with model.SummaryView
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	minNAV, ok := h.minNAV(w, r)
	if !ok {
		return
	}

	summary, err := h.dashboardService.Summary(r.Context(), minNAV)
	if err != nil {
		respondServiceError(w, "failed to get summary", err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// Purchases handles GET requests for the purchase quantity pivot.
//
// Endpoint: GET /api/dashboard/purchases
func (h *DashboardHandler) Purchases(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.dashboardService.Latest(r.Context())
	if err != nil {
		respondServiceError(w, "failed to get purchases", err)
		return
	}

	respondJSON(w, http.StatusOK, PurchasesResponse{
		SnapshotID:    snapshot.ID,
		GeneratedAt:   snapshot.GeneratedAt,
		PurchasePivot: snapshot.Dashboard.Purchases,
	})
}

// Interest handles GET requests for the daily interest pivot.
//
// Endpoint: GET /api/dashboard/interest
func (h *DashboardHandler) Interest(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.dashboardService.Latest(r.Context())
	if err != nil {
		respondServiceError(w, "failed to get interest", err)
		return
	}

	respondJSON(w, http.StatusOK, InterestResponse{
		SnapshotID:    snapshot.ID,
		GeneratedAt:   snapshot.GeneratedAt,
		InterestPivot: snapshot.Dashboard.Interest,
	})
}

// DailyTotals handles GET requests for the daily interest series.
//
// Endpoint: GET /api/dashboard/interest/daily
func (h *DashboardHandler) DailyTotals(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.dashboardService.Latest(r.Context())
	if err != nil {
		respondServiceError(w, "failed to get daily totals", err)
		return
	}

	series := snapshot.Dashboard.DailyTotals
	if series == nil {
		series = []model.DailyTotal{}
	}
	respondJSON(w, http.StatusOK, DailyTotalsResponse{
		SnapshotID:  snapshot.ID,
		GeneratedAt: snapshot.GeneratedAt,
		Series:      series,
	})
}

// Export handles GET requests for the latest dashboard as an XLSX workbook.
// The workbook is rendered in memory so a failure still yields a JSON error.
//
// Endpoint: GET /api/dashboard/export?min_nav=
// Response: 200 OK with the workbook as an attachment
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	minNAV, ok := h.minNAV(w, r)
	if !ok {
		return
	}

	view, err := h.dashboardService.View(r.Context(), minNAV)
	if err != nil {
		respondServiceError(w, "failed to export dashboard", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, view); err != nil {
		respondServiceError(w, "failed to export dashboard", fmt.Errorf("%w: %w", apperrors.ErrFailedToExportWorkbook, err))
		return
	}

	name := fmt.Sprintf("dashboard-%s.xlsx", view.GeneratedAt.UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Refresh handles POST requests that reload the sheets and store a new snapshot.
// The refresh runs synchronously; the response carries the snapshot metadata.
//
// Endpoint: POST /api/dashboard/refresh
// Response: 201 Created with model.Snapshot (without dashboard)
// Error: 502 when the sheets cannot be read, 500 otherwise
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.dashboardService.Refresh(r.Context())
	if err != nil {
		respondServiceError(w, "failed to refresh dashboard", err)
		return
	}

	snapshot.Dashboard = nil
	respondJSON(w, http.StatusCreated, snapshot)
}
