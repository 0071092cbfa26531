package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/peopleops/hr-backend/internal/hr/query"
	"github.com/peopleops/hr-backend/pkg/httputil"
	"github.com/peopleops/hr-backend/pkg/logger"
)

// ReportsHandler handles search, org chart and analytics endpoints
type ReportsHandler struct {
	engine *query.Engine
	logger *logger.Logger
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(engine *query.Engine, log *logger.Logger) *ReportsHandler {
	return &ReportsHandler{
		engine: engine,
		logger: log,
	}
}

// Search filters employees on query parameters
func (h *ReportsHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	criteria := query.SearchCriteria{
		Name:       q.Get("name"),
		Department: q.Get("department"),
		Position:   q.Get("position"),
		Status:     q.Get("status"),
		Manager:    q.Get("manager"),
		Location:   q.Get("location"),
	}
	if v := q.Get("hired_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			criteria.HiredFrom = &t
		}
	}
	if v := q.Get("hired_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			criteria.HiredTo = &t
		}
	}
	if v := q.Get("limit"); v != "" {
		criteria.Limit, _ = strconv.Atoi(v)
	}

	rows, err := h.engine.SearchEmployees(r.Context(), criteria)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rows)
}

// OrgChart returns the reporting forest
func (h *ReportsHandler) OrgChart(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.OrgChart(r.Context(), r.URL.Query().Get("department"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// Compensation returns the salary analysis report
func (h *ReportsHandler) Compensation(w http.ResponseWriter, r *http.Request) {
	opts := query.CompensationReportOptions{
		Department: r.URL.Query().Get("department"),
		Position:   r.URL.Query().Get("position"),
	}

	report, err := h.engine.GenerateCompensationReport(r.Context(), opts)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}

// Dashboard returns the headline HR metrics
func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.engine.GenerateDashboard(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, dash)
}

// AuditTrail returns the change history of one entity
func (h *ReportsHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if v := q.Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	entries, err := h.engine.AuditTrail(r.Context(), q.Get("entity_type"), q.Get("entity_id"), limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}

// Turnover returns the turnover analysis
func (h *ReportsHandler) Turnover(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.AnalyzeTurnover(r.Context(),
		r.URL.Query().Get("period"),
		r.URL.Query().Get("department"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, report)
}
