package handler

import (
	"net/http"

	"github.com/peopleops/hr-backend/internal/hr/service"
	"github.com/peopleops/hr-backend/pkg/httputil"
	"github.com/peopleops/hr-backend/pkg/logger"
)

// SalaryHandler handles salary endpoints
type SalaryHandler struct {
	service *service.SalaryService
	logger  *logger.Logger
}

// NewSalaryHandler creates a new salary handler
func NewSalaryHandler(svc *service.SalaryService, log *logger.Logger) *SalaryHandler {
	return &SalaryHandler{
		service: svc,
		logger:  log,
	}
}

// Update rotates an employee's salary record
func (h *SalaryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateSalaryInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.UpdateSalary(r.Context(), &input)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// History returns an employee's salary history
func (h *SalaryHandler) History(w http.ResponseWriter, r *http.Request) {
	ref := service.EmployeeRef{
		EmployeeID:   r.URL.Query().Get("employee_id"),
		EmployeeName: r.URL.Query().Get("employee_name"),
	}

	result, err := h.service.GetSalaryHistory(r.Context(), ref)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}
