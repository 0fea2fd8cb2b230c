package batches

import (
	"context"
	"sync"
	"time"

	"recruit-analysis/internal/shared/telemetry"
)

// DefaultCompletedTTL is how long a completed job stays pollable.
const DefaultCompletedTTL = time.Hour

// JobStore holds batch progress snapshots keyed by job id. Put replaces the
// whole snapshot; Get returns ErrNotFound for unknown or evicted jobs.
type JobStore interface {
	Get(ctx context.Context, jobID string) (Progress, error)
	Put(ctx context.Context, progress Progress) error
	Delete(ctx context.Context, jobID string) error
}

// MemoryStore is the in-process JobStore. State is lost on restart.
type MemoryStore struct {
	mu           sync.RWMutex
	jobs         map[string]Progress
	completedTTL time.Duration
}

// NewMemoryStore constructs a MemoryStore that evicts completed jobs after
// completedTTL when swept.
func NewMemoryStore(completedTTL time.Duration) *MemoryStore {
	if completedTTL <= 0 {
		completedTTL = DefaultCompletedTTL
	}
	return &MemoryStore{
		jobs:         make(map[string]Progress),
		completedTTL: completedTTL,
	}
}

func (s *MemoryStore) Get(ctx context.Context, jobID string) (Progress, error) {
	if err := ctx.Err(); err != nil {
		return Progress{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.jobs[jobID]
	if !ok {
		return Progress{}, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) Put(ctx context.Context, progress Progress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := progress.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[snapshot.JobID] = snapshot
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
	return nil
}

// Len reports the number of tracked jobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Sweep removes completed jobs whose completion is older than the TTL and
// returns how many were removed. In-flight jobs are never swept.
func (s *MemoryStore) Sweep(now time.Time) int {
	cutoff := now.Add(-s.completedTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, p := range s.jobs {
		if !p.Completed || p.CompletedAt == nil {
			continue
		}
		if p.CompletedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := s.Sweep(now.UTC()); removed > 0 {
				telemetry.Info("batch.sweep", map[string]any{
					"removed":   removed,
					"remaining": s.Len(),
				})
			}
		}
	}
}

var _ JobStore = (*MemoryStore)(nil)
