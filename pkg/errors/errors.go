package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error types
var (
	ErrNotFound            = errors.New("resource not found")
	ErrValidation          = errors.New("validation error")
	ErrAmbiguous           = errors.New("ambiguous reference")
	ErrAlreadyDecided      = errors.New("request already decided")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	ErrNoChange            = errors.New("no fields to update")
	ErrStoreFailure        = errors.New("store failure")
)

// Candidate is one possible match for an ambiguous employee name.
type Candidate struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
}

// AppError represents an application error with context
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
	Candidates []Candidate       `json:"candidates,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// Common error constructors

func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

// NotFoundNamed reports a missing entity while echoing the caller's input,
// e.g. the free-text name that failed to resolve.
func NotFoundNamed(resource, input string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s %q not found", resource, input),
		StatusCode: http.StatusNotFound,
		Details:    map[string]string{"input": input},
	}
}

func Validation(field, message string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    map[string]string{"field": field},
	}
}

func ValidationDetails(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       "VALIDATION_ERROR",
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// Ambiguous reports a name that resolved to more than one employee. The
// candidate list lets the caller retry with a canonical key.
func Ambiguous(name string, candidates []Candidate) *AppError {
	return &AppError{
		Err:        ErrAmbiguous,
		Code:       "AMBIGUOUS",
		Message:    fmt.Sprintf("multiple employees match %q, retry with an employee id", name),
		StatusCode: http.StatusConflict,
		Candidates: candidates,
	}
}

func AlreadyDecided(status string) *AppError {
	return &AppError{
		Err:        ErrAlreadyDecided,
		Code:       "ALREADY_DECIDED",
		Message:    fmt.Sprintf("request already %s", status),
		StatusCode: http.StatusConflict,
	}
}

func InsufficientBalance(leaveType string, requested, remaining float64) *AppError {
	return &AppError{
		Err:        ErrInsufficientBalance,
		Code:       "INSUFFICIENT_BALANCE",
		Message:    fmt.Sprintf("insufficient %s balance: requested %.1f, remaining %.1f", leaveType, requested, remaining),
		StatusCode: http.StatusConflict,
	}
}

func NoChange() *AppError {
	return &AppError{
		Err:        ErrNoChange,
		Code:       "NO_CHANGE",
		Message:    "no valid fields to update",
		StatusCode: http.StatusBadRequest,
	}
}

func StoreFailure(err error) *AppError {
	return &AppError{
		Err:        errors.Join(ErrStoreFailure, err),
		Code:       "STORE_FAILURE",
		Message:    "persistence error",
		StatusCode: http.StatusInternalServerError,
	}
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}
