package analyses

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores records in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Record
	byUser map[string][]Record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Record),
		byUser: make(map[string][]Record),
	}
}

// Create stores the record.
func (r *MemoryRepo) Create(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[record.ID] = record
	r.byUser[record.UserID] = append(r.byUser[record.UserID], record)
	return nil
}

// GetByID returns a record by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, recordID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.byID[recordID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return record, nil
}

// ListByUser returns records for a user, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	userRecords := r.byUser[userID]
	r.mu.RUnlock()

	if len(userRecords) == 0 {
		return []Record{}, nil
	}

	records := make([]Record, len(userRecords))
	copy(records, userRecords)
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}
