package audits

import "context"

// Repo defines persistence operations for audits.
type Repo interface {
	Create(ctx context.Context, audit Audit) error
	GetByID(ctx context.Context, auditID string) (Audit, error)
	UpdateStatus(ctx context.Context, auditID, status string, report *Report) error
	List(ctx context.Context, limit, offset int) ([]Audit, error)
}
