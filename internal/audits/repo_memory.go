package audits

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores audits in memory and is safe for concurrent use. It backs
// the API when no database is configured.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Audit
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Audit)}
}

// Create stores the audit.
func (r *MemoryRepo) Create(ctx context.Context, audit Audit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[audit.ID] = audit
	return nil
}

// GetByID returns an audit by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, auditID string) (Audit, error) {
	if err := ctx.Err(); err != nil {
		return Audit{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	audit, ok := r.byID[auditID]
	if !ok {
		return Audit{}, ErrNotFound
	}
	return audit, nil
}

// UpdateStatus updates the status and report for an existing audit.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, auditID, status string, report *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	audit, ok := r.byID[auditID]
	if !ok {
		return ErrNotFound
	}
	audit.Status = status
	if report != nil {
		audit.Report = report
	}
	now := time.Now().UTC()
	audit.UpdatedAt = now
	if terminal(status) && audit.CompletedAt == nil {
		audit.CompletedAt = &now
	}
	r.byID[auditID] = audit
	return nil
}

// List returns audits newest first, with limit/offset.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Audit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	audits := make([]Audit, 0, len(r.byID))
	for _, audit := range r.byID {
		audits = append(audits, audit)
	}
	r.mu.RUnlock()

	sort.Slice(audits, func(i, j int) bool {
		if audits[i].CreatedAt.Equal(audits[j].CreatedAt) {
			return audits[i].ID < audits[j].ID
		}
		return audits[i].CreatedAt.After(audits[j].CreatedAt)
	})

	if offset >= len(audits) {
		return []Audit{}, nil
	}
	end := len(audits)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return audits[offset:end], nil
}

func terminal(status string) bool {
	return status == StatusCompleted || status == StatusPartial || status == StatusFailed
}
