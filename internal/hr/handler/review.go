package handler

import (
	"net/http"

	"github.com/peopleops/hr-backend/internal/hr/service"
	"github.com/peopleops/hr-backend/pkg/httputil"
	"github.com/peopleops/hr-backend/pkg/logger"
)

// ReviewHandler handles performance review endpoints
type ReviewHandler struct {
	service *service.ReviewService
	logger  *logger.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(svc *service.ReviewService, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  log,
	}
}

// Create opens a performance review
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateReviewInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.CreateReview(r.Context(), &input)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, result)
}

// List returns all reviews recorded for an employee
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	ref := service.EmployeeRef{
		EmployeeID:   r.URL.Query().Get("employee_id"),
		EmployeeName: r.URL.Query().Get("employee_name"),
	}

	result, err := h.service.ListReviews(r.Context(), ref)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}
