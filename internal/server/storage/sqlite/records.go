package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/podsync/internal/models"
	"github.com/iudanet/podsync/internal/server/storage"
)

const recordColumns = `id, kind, owner_id, entity_id, fields, created_at, updated_at`

// InsertRecord creates a record.
// Returns ErrRecordExists if a record with the same id exists
func (s *Storage) InsertRecord(ctx context.Context, r *models.Record) error {
	fields, err := encodeFields(r.Fields)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.Kind,
		r.OwnerID,
		r.EntityID,
		fields,
		timeToNano(r.CreatedAt),
		timeToNano(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrRecordExists
	}

	return nil
}

// UpsertRecord creates or replaces a record of the owner.
// created_at of an existing record is kept
func (s *Storage) UpsertRecord(ctx context.Context, r *models.Record) (bool, error) {
	fields, err := encodeFields(r.Fields)
	if err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT owner_id FROM records WHERE id = ?`, r.ID).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		owner = ""
	case err != nil:
		return false, fmt.Errorf("failed to check existing record: %w", err)
	case owner != r.OwnerID:
		// Чужой id: перезаписывать нельзя
		return false, storage.ErrRecordExists
	}

	created := owner == ""
	if created {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO records (`+recordColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			r.ID,
			r.Kind,
			r.OwnerID,
			r.EntityID,
			fields,
			timeToNano(r.CreatedAt),
			timeToNano(r.UpdatedAt),
		)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE records
			SET kind = ?, entity_id = ?, fields = ?, updated_at = ?
			WHERE id = ?
		`,
			r.Kind,
			r.EntityID,
			fields,
			timeToNano(r.UpdatedAt),
			r.ID,
		)
	}
	if err != nil {
		return false, fmt.Errorf("failed to save record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit record: %w", err)
	}

	return created, nil
}

// GetRecord retrieves a single record.
// Returns ErrRecordNotFound if record doesn't exist
func (s *Storage) GetRecord(ctx context.Context, ownerID, kind, id string) (*models.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE id = ? AND owner_id = ? AND kind = ?
	`

	r, err := scanRecord(s.db.QueryRowContext(ctx, query, id, ownerID, kind))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	return r, nil
}

// ListRecords retrieves records of one kind ordered by updated_at.
// Returns empty slice if no records found
func (s *Storage) ListRecords(ctx context.Context, ownerID, kind string, q storage.ListQuery) (records []*models.Record, err error) {
	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE owner_id = ? AND kind = ?
	`
	args := []any{ownerID, kind}

	if !q.Since.IsZero() {
		query += ` AND updated_at > ?`
		args = append(args, timeToNano(q.Since))
	}
	if q.EntityID != "" {
		query += ` AND entity_id = ?`
		args = append(args, q.EntityID)
	}
	query += ` ORDER BY updated_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	records = make([]*models.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

// DeleteRecord removes a record; reactions go with it.
// Returns ErrRecordNotFound if record doesn't exist
func (s *Storage) DeleteRecord(ctx context.Context, ownerID, kind, id string) error {
	query := `DELETE FROM records WHERE id = ? AND owner_id = ? AND kind = ?`

	result, err := s.db.ExecContext(ctx, query, id, ownerID, kind)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrRecordNotFound
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	r := &models.Record{}
	var fields string
	var createdAt, updatedAt int64

	err := row.Scan(
		&r.ID,
		&r.Kind,
		&r.OwnerID,
		&r.EntityID,
		&fields,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Fields, err = decodeFields(fields)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = nanoToTime(createdAt)
	r.UpdatedAt = nanoToTime(updatedAt)

	return r, nil
}

func encodeFields(f models.Fields) (string, error) {
	if f == nil {
		return "{}", nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("failed to encode fields: %w", err)
	}
	return string(data), nil
}

func decodeFields(data string) (models.Fields, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}

	fields := models.Fields{}
	for name, value := range raw {
		fields.Set(name, value)
	}
	return fields, nil
}

// Время хранится в наносекундах: клиент сравнивает updated_at на точное равенство
func timeToNano(t time.Time) int64 {
	return t.UnixNano()
}

func nanoToTime(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
