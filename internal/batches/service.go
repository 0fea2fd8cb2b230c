package batches

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"recruit-analysis/internal/analyses"
	"recruit-analysis/internal/queue"
	"recruit-analysis/internal/shared/metrics"
	"recruit-analysis/internal/shared/telemetry"
)

const eventVersion = 1

// Analyzer runs the single-document pipeline for one item of a batch.
type Analyzer interface {
	AnalyzeOne(ctx context.Context, documentID, targetID string) (analyses.Summary, error)
}

// Service accepts batches and runs one worker per job.
type Service struct {
	Store    JobStore
	Analyzer Analyzer
	// Notifier receives a BatchCompleted event per finished job; nil skips it.
	Notifier queue.Client
	// Concurrency bounds in-flight items per job; values below 2 run sequentially.
	Concurrency int
	Now         func() time.Time
	// Spawn starts a worker. Defaults to a new goroutine.
	Spawn func(run func())

	workers sync.WaitGroup
}

// SubmitBatch records a new job and starts its worker. It returns as soon as
// the initial progress is stored; worker failures never reach the caller.
func (s *Service) SubmitBatch(ctx context.Context, documentIDs []string, targetID string) (string, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return "", fmt.Errorf("%w: targetId is required", ErrInvalidInput)
	}
	ids := make([]string, len(documentIDs))
	for i, id := range documentIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return "", fmt.Errorf("%w: documentIds[%d] is blank", ErrInvalidInput, i)
		}
		ids[i] = id
	}
	if s.Store == nil || s.Analyzer == nil {
		return "", errors.New("batch service: missing dependencies")
	}

	now := s.now()
	job := Job{
		ID:          uuid.NewString(),
		TargetID:    targetID,
		DocumentIDs: ids,
		CreatedAt:   now,
	}
	progress := Progress{
		JobID:     job.ID,
		TargetID:  targetID,
		Total:     len(ids),
		Results:   []analyses.Summary{},
		Failures:  []Failure{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if len(ids) == 0 {
		stats := ComputeStats(nil)
		progress.PercentComplete = 100
		progress.Completed = true
		progress.Stats = &stats
		progress.CompletedAt = &now
		if err := s.Store.Put(ctx, progress); err != nil {
			return "", fmt.Errorf("store batch %s: %w", job.ID, err)
		}
		metrics.IncBatchSubmitted()
		metrics.IncBatchCompleted()
		s.logStatus(ctx, progress, "completed")
		s.publishCompleted(telemetry.Detach(ctx), progress)
		return job.ID, nil
	}

	if err := s.Store.Put(ctx, progress); err != nil {
		return "", fmt.Errorf("store batch %s: %w", job.ID, err)
	}
	metrics.IncBatchSubmitted()
	s.logStatus(ctx, progress, "queued")

	workerCtx := telemetry.Detach(ctx)
	s.spawn(func() { s.runJob(workerCtx, job, progress) })
	return job.ID, nil
}

// GetProgress returns a point-in-time snapshot of a job.
func (s *Service) GetProgress(ctx context.Context, jobID string) (Progress, error) {
	if strings.TrimSpace(jobID) == "" {
		return Progress{}, ErrNotFound
	}
	return s.Store.Get(ctx, jobID)
}

// Shutdown waits for running workers to finish or for ctx to expire.
func (s *Service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) spawn(run func()) {
	s.workers.Add(1)
	tracked := func() {
		defer s.workers.Done()
		run()
	}
	if s.Spawn != nil {
		s.Spawn(tracked)
		return
	}
	go tracked()
}

// runJob attempts every document once. The worker owns the snapshot; each
// attempt writes it whole under mu so percent stays monotonic.
func (s *Service) runJob(ctx context.Context, job Job, progress Progress) {
	var mu sync.Mutex
	s.logStatus(ctx, progress, "processing")

	record := func(documentID string, summary analyses.Summary, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			progress.Failures = append(progress.Failures, Failure{
				DocumentID: documentID,
				Code:       analyses.ErrorCode(err),
				Reason:     analyses.SanitizeError(err),
			})
			metrics.IncItemFailed()
			telemetry.Error("batch.item_failed", map[string]any{
				"request_id":  telemetry.RequestIDFromContext(ctx),
				"job_id":      job.ID,
				"target_id":   job.TargetID,
				"document_id": documentID,
				"code":        analyses.ErrorCode(err),
				"error":       analyses.SanitizeError(err),
			})
		} else {
			progress.Results = append(progress.Results, summary)
			metrics.IncItemSucceeded()
		}
		progress.Attempted++
		progress.PercentComplete = percentOf(progress.Attempted, progress.Total)
		progress.UpdatedAt = s.now()
		s.write(ctx, progress)
	}

	limit := s.Concurrency
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for _, documentID := range job.DocumentIDs {
		documentID := documentID
		g.Go(func() error {
			summary, err := s.analyzeItem(ctx, documentID, job.TargetID)
			record(documentID, summary, err)
			return nil
		})
	}
	_ = g.Wait()

	mu.Lock()
	stats := ComputeStats(progress.Results)
	completedAt := s.now()
	progress.Stats = &stats
	progress.Completed = true
	progress.CompletedAt = &completedAt
	progress.UpdatedAt = completedAt
	s.write(ctx, progress)
	final := progress.Clone()
	mu.Unlock()

	metrics.IncBatchCompleted()
	s.logStatus(ctx, final, "completed")
	s.publishCompleted(ctx, final)
}

func (s *Service) analyzeItem(ctx context.Context, documentID, targetID string) (summary analyses.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic analyzing document %s: %v", documentID, r)
		}
	}()
	return s.Analyzer.AnalyzeOne(ctx, documentID, targetID)
}

func (s *Service) write(ctx context.Context, progress Progress) {
	if err := s.Store.Put(ctx, progress); err != nil {
		telemetry.Error("batch.store_write_failed", map[string]any{
			"request_id": telemetry.RequestIDFromContext(ctx),
			"job_id":     progress.JobID,
			"attempted":  progress.Attempted,
			"error":      err,
		})
	}
}

func (s *Service) publishCompleted(ctx context.Context, progress Progress) {
	if s.Notifier == nil {
		return
	}
	completedAt := ""
	if progress.CompletedAt != nil {
		completedAt = progress.CompletedAt.UTC().Format(time.RFC3339)
	}
	msg := queue.BatchCompleted{
		JobID:       progress.JobID,
		TargetID:    progress.TargetID,
		Total:       progress.Total,
		Succeeded:   len(progress.Results),
		Failed:      len(progress.Failures),
		CompletedAt: completedAt,
		RequestID:   telemetry.RequestIDFromContext(ctx),
		Version:     eventVersion,
	}
	if err := s.Notifier.Send(ctx, msg); err != nil {
		telemetry.Error("batch.event_publish_failed", map[string]any{
			"request_id": msg.RequestID,
			"job_id":     progress.JobID,
			"error":      err,
		})
	}
}

func (s *Service) logStatus(ctx context.Context, progress Progress, status string) {
	fields := map[string]any{
		"request_id":       telemetry.RequestIDFromContext(ctx),
		"job_id":           progress.JobID,
		"target_id":        progress.TargetID,
		"status":           status,
		"total":            progress.Total,
		"attempted":        progress.Attempted,
		"percent_complete": progress.PercentComplete,
	}
	if progress.Completed {
		fields["succeeded"] = len(progress.Results)
		fields["failed"] = len(progress.Failures)
	}
	telemetry.Info("batch.status", fields)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
