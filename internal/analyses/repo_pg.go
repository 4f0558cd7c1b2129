package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new record.
func (r *PGRepo) Create(ctx context.Context, record Record) error {
	const query = `
INSERT INTO analyses (
	id, user_id, method, provider, model, analysis_version, image_count, results, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	payload, err := json.Marshal(record.Results)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.Method,
		record.Provider,
		record.Model,
		record.AnalysisVersion,
		record.ImageCount,
		string(payload),
		record.CreatedAt,
	)
	return err
}

// GetByID returns a record by ID.
func (r *PGRepo) GetByID(ctx context.Context, recordID string) (Record, error) {
	const query = `
SELECT id, user_id, method, provider, model, analysis_version, image_count, results, created_at
FROM analyses
WHERE id = $1
LIMIT 1`
	record, err := scanRecord(r.DB.QueryRowContext(ctx, query, recordID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return record, nil
}

// ListByUser returns records for a user, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Record, error) {
	query := `
SELECT id, user_id, method, provider, model, analysis_version, image_count, results, created_at
FROM analyses
WHERE user_id = $1
ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var record Record
	var results sql.NullString
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.Method,
		&record.Provider,
		&record.Model,
		&record.AnalysisVersion,
		&record.ImageCount,
		&results,
		&record.CreatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	if results.Valid {
		if err := json.Unmarshal([]byte(results.String), &record.Results); err != nil {
			record.Results = nil
		}
	}
	return record, nil
}
