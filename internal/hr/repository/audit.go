package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/peopleops/hr-backend/pkg/database"
)

// AuditRepository writes the append-only audit ledger. There is no update
// or delete path on purpose.
type AuditRepository struct {
	q database.Queryer
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(q database.Queryer) *AuditRepository {
	return &AuditRepository{q: q}
}

// Record appends one audit entry. Old and new values are marshalled to JSON;
// either may be nil.
func (r *AuditRepository) Record(ctx context.Context, action, entityType, entityID string, oldValues, newValues interface{}) error {
	var oldJSON, newJSON []byte
	var err error

	if oldValues != nil {
		if oldJSON, err = json.Marshal(oldValues); err != nil {
			return err
		}
	}
	if newValues != nil {
		if newJSON, err = json.Marshal(newValues); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO audit_log (id, action, entity_type, entity_id, old_values, new_values)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.q.ExecContext(ctx, query,
		uuid.New().String(), action, entityType, entityID, oldJSON, newJSON)
	return err
}

// ListByEntity returns the audit trail for one entity, newest first
func (r *AuditRepository) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	var entries []*AuditEntry
	query := `
		SELECT id, action, entity_type, entity_id, old_values, new_values, changed_at
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY changed_at DESC
		LIMIT $3
	`

	if err := r.q.SelectContext(ctx, &entries, query, entityType, entityID, limit); err != nil {
		return nil, err
	}
	return entries, nil
}
