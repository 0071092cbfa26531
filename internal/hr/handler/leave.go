package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/peopleops/hr-backend/internal/hr/service"
	"github.com/peopleops/hr-backend/pkg/httputil"
	"github.com/peopleops/hr-backend/pkg/logger"
)

// LeaveHandler handles leave endpoints
type LeaveHandler struct {
	service *service.LeaveService
	logger  *logger.Logger
}

// NewLeaveHandler creates a new leave handler
func NewLeaveHandler(svc *service.LeaveService, log *logger.Logger) *LeaveHandler {
	return &LeaveHandler{
		service: svc,
		logger:  log,
	}
}

// Request files a leave request
func (h *LeaveHandler) Request(w http.ResponseWriter, r *http.Request) {
	var input service.RequestLeaveInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.RequestLeave(r.Context(), &input)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, result)
}

// DecideRequest carries the decision on a pending request
type DecideRequest struct {
	ApproverID   string  `json:"approver_id,omitempty"`
	ApproverName string  `json:"approver_name,omitempty"`
	Decision     string  `json:"decision"`
	Comments     *string `json:"comments,omitempty"`
}

// Decide approves or rejects a pending request
func (h *LeaveHandler) Decide(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")

	var req DecideRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	decision, err := service.ParseDecision(req.Decision)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	approver := service.EmployeeRef{
		EmployeeID:   req.ApproverID,
		EmployeeName: req.ApproverName,
	}
	if err := h.service.DecideLeave(r.Context(), requestID, approver, decision, req.Comments); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": string(decision) + "d"})
}

// Balance returns an employee's balances and pending requests for a year
func (h *LeaveHandler) Balance(w http.ResponseWriter, r *http.Request) {
	ref := service.EmployeeRef{
		EmployeeID:   r.URL.Query().Get("employee_id"),
		EmployeeName: r.URL.Query().Get("employee_name"),
	}

	year := 0
	if y := r.URL.Query().Get("year"); y != "" {
		year, _ = strconv.Atoi(y)
	}

	result, err := h.service.GetLeaveBalance(r.Context(), ref, year)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}
