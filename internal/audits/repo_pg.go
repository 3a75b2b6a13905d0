package audits

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

// Create inserts a new audit. Seed keywords and the report document are
// stored as jsonb.
func (r *PGRepo) Create(ctx context.Context, audit Audit) error {
	const query = `
INSERT INTO audits (id, url, seed_keywords, status, report, created_at, updated_at, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	seedsPayload, err := json.Marshal(audit.SeedKeywords)
	if err != nil {
		return err
	}
	var reportPayload []byte
	if audit.Report != nil {
		reportPayload, err = json.Marshal(audit.Report)
		if err != nil {
			return err
		}
	}
	_, err = r.DB.ExecContext(ctx, query,
		audit.ID,
		audit.URL,
		seedsPayload,
		audit.Status,
		reportPayload,
		audit.CreatedAt,
		audit.UpdatedAt,
		audit.CompletedAt,
	)
	return err
}

// GetByID returns an audit by ID.
func (r *PGRepo) GetByID(ctx context.Context, auditID string) (Audit, error) {
	const query = `
SELECT id, url, seed_keywords, status, report, created_at, updated_at, completed_at
FROM audits
WHERE id = $1
LIMIT 1`
	return scanAudit(r.DB.QueryRowContext(ctx, query, auditID))
}

// UpdateStatus updates the status and report for an existing audit. Terminal
// statuses stamp completed_at once.
func (r *PGRepo) UpdateStatus(ctx context.Context, auditID, status string, report *Report) error {
	const query = `
UPDATE audits
SET status = $2,
    report = COALESCE($3, report),
    updated_at = NOW(),
    completed_at = CASE WHEN $4 AND completed_at IS NULL THEN NOW() ELSE completed_at END
WHERE id = $1`
	var reportPayload []byte
	if report != nil {
		payload, err := json.Marshal(report)
		if err != nil {
			return err
		}
		reportPayload = payload
	}
	res, err := r.DB.ExecContext(ctx, query, auditID, status, reportPayload, terminal(status))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns audits newest first, with limit/offset.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Audit, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, url, seed_keywords, status, report, created_at, updated_at, completed_at
FROM audits
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	audits := []Audit{}
	for rows.Next() {
		audit, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}
	return audits, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAudit(row rowScanner) (Audit, error) {
	var a Audit
	var seeds sql.NullString
	var report sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(
		&a.ID,
		&a.URL,
		&seeds,
		&a.Status,
		&report,
		&a.CreatedAt,
		&a.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Audit{}, ErrNotFound
		}
		return Audit{}, err
	}
	if seeds.Valid && seeds.String != "" {
		if err := json.Unmarshal([]byte(seeds.String), &a.SeedKeywords); err != nil {
			return Audit{}, err
		}
	}
	if report.Valid && report.String != "" {
		if err := json.Unmarshal([]byte(report.String), &a.Report); err != nil {
			return Audit{}, err
		}
	}
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return a, nil
}
