// Package service implements the HR mutation engine. Every multi-row
// mutation runs inside a single database transaction; audit entries and
// domain events follow after commit, best-effort.
package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/peopleops/hr-backend/internal/hr/repository"
	"github.com/peopleops/hr-backend/internal/hr/resolver"
	"github.com/peopleops/hr-backend/pkg/database"
	"github.com/peopleops/hr-backend/pkg/errors"
	"github.com/peopleops/hr-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

// EmployeeRef identifies an employee either by canonical key or by
// free-text name. Exactly one should be set; the key wins when both are.
type EmployeeRef struct {
	EmployeeID   string `json:"employee_id,omitempty"`
	EmployeeName string `json:"employee_name,omitempty"`
}

// resolveEmployee turns a ref into an employee row using the given queryer,
// so resolution inside a transaction sees the transaction's state
func resolveEmployee(ctx context.Context, q database.Queryer, ref EmployeeRef) (*repository.Employee, error) {
	if ref.EmployeeID != "" {
		return repository.NewEmployeeRepository(q).GetByNo(ctx, ref.EmployeeID)
	}
	if ref.EmployeeName != "" {
		return resolver.New(q).ResolveEmployee(ctx, ref.EmployeeName)
	}
	return nil, errors.Validation("employee", "employee_id or employee_name is required")
}

// validateStruct maps validator failures onto the VALIDATION_ERROR shape
func validateStruct(v *validator.Validate, input interface{}) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[snakeCase(fe.Field())] = fmt.Sprintf("failed %s validation", fe.Tag())
		}
		return errors.ValidationDetails(details)
	}

	return err
}

func snakeCase(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// orDefault substitutes a default for an unset optional field
func orDefault(v *string, def string) *string {
	if v != nil {
		return v
	}
	return &def
}

// parseDate parses a YYYY-MM-DD value
func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, errors.Validation(field, "must be a YYYY-MM-DD date")
	}
	return t, nil
}

// parseOptionalDate parses a YYYY-MM-DD value, defaulting to today
func parseOptionalDate(field string, value *string, now time.Time) (time.Time, error) {
	if value == nil || *value == "" {
		return now.Truncate(24 * time.Hour), nil
	}
	return parseDate(field, *value)
}

// auditor writes audit entries after the owning transaction has committed.
// A failed audit write is logged, never propagated: the mutation has already
// happened and must not be reported as failed.
type auditor struct {
	repo   *repository.AuditRepository
	logger *logger.Logger
}

func newAuditor(db *database.DB, log *logger.Logger) *auditor {
	return &auditor{
		repo:   repository.NewAuditRepository(db),
		logger: log,
	}
}

func (a *auditor) record(ctx context.Context, action, entityType, entityID string, oldValues, newValues interface{}) {
	if err := a.repo.Record(ctx, action, entityType, entityID, oldValues, newValues); err != nil {
		a.logger.Error().
			Err(err).
			Str("action", action).
			Str("entity_type", entityType).
			Str("entity_id", entityID).
			Msg("failed to write audit entry")
	}
}
