package club

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// CreateImportBatch records the start of an import. Events created by the
// import reference the batch, so it must exist before any row is committed.
func (s *store) CreateImportBatch(ctx context.Context, b *ImportBatch) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Errors == nil {
		b.Errors = []RowError{}
	}
	errorsJSON, err := json.Marshal(b.Errors)
	if err != nil {
		return err
	}
	b.CreatedAt = time.Now().UTC().Truncate(time.Second)
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO import_batches (id, tenant_id, filename, operator, total_rows, succeeded_rows, failed_rows, errors_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.TenantID, b.Filename, b.Operator, b.Total, b.Succeeded, b.Failed, string(errorsJSON), b.CreatedAt.Unix())
	return err
}

// UpdateImportBatch writes the final counts and row errors of an import.
func (s *store) UpdateImportBatch(ctx context.Context, b *ImportBatch) error {
	if b.Errors == nil {
		b.Errors = []RowError{}
	}
	errorsJSON, err := json.Marshal(b.Errors)
	if err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx, `
		UPDATE import_batches SET total_rows = ?, succeeded_rows = ?, failed_rows = ?, errors_json = ?
		WHERE tenant_id = ? AND id = ?
	`, b.Total, b.Succeeded, b.Failed, string(errorsJSON), b.TenantID, b.ID)
	return expectAffected(res, err)
}

func (s *store) GetImportBatch(ctx context.Context, tenantID, batchID string) (*ImportBatch, error) {
	var b ImportBatch
	var errorsJSON string
	var createdAt int64
	err := s.q.QueryRowContext(ctx, `
		SELECT id, tenant_id, filename, operator, total_rows, succeeded_rows, failed_rows, errors_json, created_at
		FROM import_batches WHERE tenant_id = ? AND id = ?
	`, tenantID, batchID).Scan(&b.ID, &b.TenantID, &b.Filename, &b.Operator, &b.Total, &b.Succeeded, &b.Failed, &errorsJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	b.CreatedAt = time.Unix(createdAt, 0).UTC()
	b.Errors = []RowError{}
	if err := json.Unmarshal([]byte(errorsJSON), &b.Errors); err != nil {
		log.Error("Failed to unmarshal errors_json", "error", err, "batchID", b.ID)
	}
	return &b, nil
}

// DeleteImportBatch removes a batch together with the events it created and
// their results.
func (s *store) DeleteImportBatch(ctx context.Context, tenantID, batchID string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM import_batches WHERE tenant_id = ? AND id = ?`, tenantID, batchID)
	return expectAffected(res, err)
}
