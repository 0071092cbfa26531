package handler

import (
	"net/http"

	"github.com/peopleops/hr-backend/internal/hr/service"
	"github.com/peopleops/hr-backend/pkg/httputil"
	"github.com/peopleops/hr-backend/pkg/logger"
)

// EmployeeHandler handles employee lifecycle endpoints
type EmployeeHandler struct {
	service *service.EmployeeService
	logger  *logger.Logger
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(svc *service.EmployeeService, log *logger.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		service: svc,
		logger:  log,
	}
}

// Create adds a new employee
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.AddEmployeeInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.AddEmployee(r.Context(), &input)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, result)
}

// UpdateEmployeeRequest carries a partial employee update
type UpdateEmployeeRequest struct {
	service.EmployeeRef
	Updates map[string]interface{} `json:"updates"`
}

// Update applies a partial update to an employee
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateEmployeeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.UpdateEmployee(r.Context(), req.EmployeeRef, req.Updates); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// TerminateRequest identifies the employee to terminate
type TerminateRequest struct {
	service.EmployeeRef
	TerminationDate *string `json:"termination_date,omitempty"`
}

// Terminate marks an employee terminated
func (h *EmployeeHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	var req TerminateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.TerminateEmployee(r.Context(), req.EmployeeRef, req.TerminationDate); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "terminated"})
}

// Reactivate marks an employee active again
func (h *EmployeeHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		service.EmployeeRef
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.ReactivateEmployee(r.Context(), req.EmployeeRef); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "active"})
}
