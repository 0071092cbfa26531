package handler

import (
	"net/http"

	"github.com/peopleops/hr-backend/internal/hr/service"
	"github.com/peopleops/hr-backend/pkg/httputil"
	"github.com/peopleops/hr-backend/pkg/logger"
)

// DepartmentHandler handles department endpoints
type DepartmentHandler struct {
	service *service.DepartmentService
	logger  *logger.Logger
}

// NewDepartmentHandler creates a new department handler
func NewDepartmentHandler(svc *service.DepartmentService, log *logger.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		service: svc,
		logger:  log,
	}
}

// Create creates a department
func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateDepartmentInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}

	dept, err := h.service.CreateDepartment(r.Context(), &input)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, dept)
}

// List returns all departments
func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	depts, err := h.service.ListDepartments(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, depts)
}

// UpdateDepartmentRequest carries a partial department update
type UpdateDepartmentRequest struct {
	Name    string                 `json:"name"`
	Updates map[string]interface{} `json:"updates"`
}

// Update applies a partial update to a department referenced by name
func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateDepartmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.UpdateDepartment(r.Context(), req.Name, req.Updates); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// MergeRequest names the two departments of a merge
type MergeRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Merge merges the source department into the target
func (h *DepartmentHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.MergeDepartments(r.Context(), req.Source, req.Target)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}
