package analyses

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Record
	byPair map[pairKey]string
}

type pairKey struct {
	documentID string
	targetID   string
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Record),
		byPair: make(map[pairKey]string),
	}
}

// Upsert stores rec, keeping the ID and CreatedAt of an existing pair.
func (r *MemoryRepo) Upsert(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	key := pairKey{documentID: rec.DocumentID, targetID: rec.TargetID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existingID, ok := r.byPair[key]; ok {
		existing := r.byID[existingID]
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	}
	stored := cloneRecord(rec)
	r.byID[stored.ID] = stored
	r.byPair[key] = stored.ID
	return cloneRecord(stored), nil
}

// GetByID returns a record by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, recordID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[recordID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

// GetByPair returns the record for a (document, target) pair.
func (r *MemoryRepo) GetByPair(ctx context.Context, documentID, targetID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPair[pairKey{documentID: documentID, targetID: targetID}]
	if !ok {
		return Record{}, ErrNotFound
	}
	return cloneRecord(r.byID[id]), nil
}

// ListByTarget returns every record for a target.
func (r *MemoryRepo) ListByTarget(ctx context.Context, targetID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Record, 0)
	for _, rec := range r.byID {
		if rec.TargetID == targetID {
			out = append(out, cloneRecord(rec))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func cloneRecord(rec Record) Record {
	if rec.Skills != nil {
		rec.Skills = append([]string(nil), rec.Skills...)
	}
	return rec
}
