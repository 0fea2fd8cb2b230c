package batches

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruit-analysis/internal/analyses"
	"recruit-analysis/internal/queue"
)

type fakeAnalyzer struct {
	mu    sync.Mutex
	calls []string
	fn    func(documentID string) (analyses.Summary, error)
}

func (f *fakeAnalyzer) AnalyzeOne(ctx context.Context, documentID, targetID string) (analyses.Summary, error) {
	f.mu.Lock()
	f.calls = append(f.calls, documentID)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(documentID)
	}
	return analyses.Summary{DocumentID: documentID, FirstName: "Cand", LastName: documentID, Score: 50}, nil
}

// recordingStore keeps every snapshot written so tests can check ordering.
type recordingStore struct {
	*MemoryStore
	mu     sync.Mutex
	writes []Progress
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: NewMemoryStore(time.Hour)}
}

func (s *recordingStore) Put(ctx context.Context, p Progress) error {
	s.mu.Lock()
	s.writes = append(s.writes, p.Clone())
	s.mu.Unlock()
	return s.MemoryStore.Put(ctx, p)
}

func (s *recordingStore) snapshots() []Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Progress(nil), s.writes...)
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []queue.BatchCompleted
	err  error
}

func (n *recordingNotifier) Send(ctx context.Context, msg queue.BatchCompleted) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return n.err
}

func inlineService(store JobStore, analyzer Analyzer) *Service {
	return &Service{
		Store:    store,
		Analyzer: analyzer,
		Spawn:    func(run func()) { run() },
	}
}

func assertProgressInvariants(t *testing.T, writes []Progress) {
	t.Helper()
	lastPercent := -1
	wasCompleted := false
	for i, w := range writes {
		assert.GreaterOrEqual(t, w.PercentComplete, lastPercent, "write %d decreased percent", i)
		lastPercent = w.PercentComplete
		if wasCompleted {
			assert.True(t, w.Completed, "write %d un-completed the job", i)
		}
		wasCompleted = w.Completed
		if !w.Completed {
			assert.Nil(t, w.Stats, "write %d exposes stats before completion", i)
		}
		if w.Completed {
			assert.Equal(t, 100, w.PercentComplete, "write %d completed below 100%%", i)
		}
		if w.PercentComplete == 100 {
			assert.Equal(t, w.Total, w.Attempted, "write %d reached 100%% with documents left", i)
		}
		assert.Equal(t, w.Attempted, len(w.Results)+len(w.Failures), "write %d attempted mismatch", i)
	}
}

func TestSubmitBatchPartialFailure(t *testing.T) {
	store := newRecordingStore()
	analyzer := &fakeAnalyzer{fn: func(documentID string) (analyses.Summary, error) {
		if documentID == "doc-3" {
			return analyses.Summary{}, fmt.Errorf("%w: malformed json", analyses.ErrOracleError)
		}
		return analyses.Summary{DocumentID: documentID, Score: 70}, nil
	}}
	svc := inlineService(store, analyzer)

	jobID, err := svc.SubmitBatch(context.Background(), []string{"doc-1", "doc-2", "doc-3", "doc-4", "doc-5"}, "job-1")
	require.NoError(t, err)

	progress, err := svc.GetProgress(context.Background(), jobID)
	require.NoError(t, err)
	assert.True(t, progress.Completed)
	assert.Equal(t, 100, progress.PercentComplete)
	assert.Equal(t, 5, progress.Attempted)
	assert.Len(t, progress.Results, 4)
	require.Len(t, progress.Failures, 1)
	assert.Equal(t, "doc-3", progress.Failures[0].DocumentID)
	assert.Equal(t, analyses.ErrorCodeOracleError, progress.Failures[0].Code)
	require.NotNil(t, progress.Stats)
	require.NotNil(t, progress.CompletedAt)
	assert.Equal(t, []string{"doc-1", "doc-2", "doc-3", "doc-4", "doc-5"}, analyzer.calls)

	writes := store.snapshots()
	// initial + one per item + final
	require.Len(t, writes, 7)
	assert.Equal(t, 0, writes[0].PercentComplete)
	assert.Equal(t, []int{20, 40, 60, 80, 100}, []int{
		writes[1].PercentComplete, writes[2].PercentComplete, writes[3].PercentComplete,
		writes[4].PercentComplete, writes[5].PercentComplete,
	})
	assert.False(t, writes[5].Completed)
	assert.True(t, writes[6].Completed)
	assertProgressInvariants(t, writes)
}

func TestSubmitBatchPercentRounds(t *testing.T) {
	store := newRecordingStore()
	svc := inlineService(store, &fakeAnalyzer{})

	_, err := svc.SubmitBatch(context.Background(), []string{"a", "b", "c"}, "job-1")
	require.NoError(t, err)

	writes := store.snapshots()
	require.Len(t, writes, 5)
	assert.Equal(t, 33, writes[1].PercentComplete)
	assert.Equal(t, 67, writes[2].PercentComplete)
	assert.Equal(t, 100, writes[3].PercentComplete)
}

func TestSubmitBatchEmptyCompletesImmediately(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	spawned := false
	svc := &Service{
		Store:    NewMemoryStore(time.Hour),
		Analyzer: analyzer,
		Spawn:    func(run func()) { spawned = true; run() },
	}

	jobID, err := svc.SubmitBatch(context.Background(), []string{}, "job-1")
	require.NoError(t, err)
	assert.False(t, spawned)

	progress, err := svc.GetProgress(context.Background(), jobID)
	require.NoError(t, err)
	assert.True(t, progress.Completed)
	assert.Equal(t, 100, progress.PercentComplete)
	assert.Empty(t, progress.Results)
	assert.NotNil(t, progress.Results)
	require.NotNil(t, progress.Stats)
	assert.Equal(t, Stats{}, *progress.Stats)
	assert.Empty(t, analyzer.calls)
}

func TestSubmitBatchValidation(t *testing.T) {
	svc := inlineService(NewMemoryStore(time.Hour), &fakeAnalyzer{})

	_, err := svc.SubmitBatch(context.Background(), []string{"doc-1"}, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SubmitBatch(context.Background(), []string{"doc-1", ""}, "job-1")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmitBatchKeepsDuplicates(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	svc := inlineService(NewMemoryStore(time.Hour), analyzer)

	jobID, err := svc.SubmitBatch(context.Background(), []string{"doc-1", "doc-1"}, "job-1")
	require.NoError(t, err)

	progress, err := svc.GetProgress(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.Total)
	assert.Len(t, progress.Results, 2)
	assert.Equal(t, []string{"doc-1", "doc-1"}, analyzer.calls)
}

func TestGetProgressUnknownJob(t *testing.T) {
	svc := inlineService(NewMemoryStore(time.Hour), &fakeAnalyzer{})

	_, err := svc.GetProgress(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetProgress(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkerRecoversPanickingItem(t *testing.T) {
	analyzer := &fakeAnalyzer{fn: func(documentID string) (analyses.Summary, error) {
		if documentID == "bad" {
			panic("nil map write")
		}
		return analyses.Summary{DocumentID: documentID, Score: 90}, nil
	}}
	svc := inlineService(NewMemoryStore(time.Hour), analyzer)

	jobID, err := svc.SubmitBatch(context.Background(), []string{"ok-1", "bad", "ok-2"}, "job-1")
	require.NoError(t, err)

	progress, err := svc.GetProgress(context.Background(), jobID)
	require.NoError(t, err)
	assert.True(t, progress.Completed)
	assert.Len(t, progress.Results, 2)
	require.Len(t, progress.Failures, 1)
	assert.Equal(t, analyses.ErrorCodeInternal, progress.Failures[0].Code)
	assert.Contains(t, progress.Failures[0].Reason, "nil map write")
}

func TestWorkerPublishesCompletion(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("queue down")}
	svc := inlineService(NewMemoryStore(time.Hour), &fakeAnalyzer{fn: func(documentID string) (analyses.Summary, error) {
		if documentID == "doc-2" {
			return analyses.Summary{}, analyses.ErrOracleUnavailable
		}
		return analyses.Summary{DocumentID: documentID}, nil
	}})
	svc.Notifier = notifier

	jobID, err := svc.SubmitBatch(context.Background(), []string{"doc-1", "doc-2"}, "job-7")
	require.NoError(t, err)

	require.Len(t, notifier.msgs, 1)
	msg := notifier.msgs[0]
	assert.Equal(t, jobID, msg.JobID)
	assert.Equal(t, "job-7", msg.TargetID)
	assert.Equal(t, 2, msg.Total)
	assert.Equal(t, 1, msg.Succeeded)
	assert.Equal(t, 1, msg.Failed)
	assert.NotEmpty(t, msg.CompletedAt)

	progress, err := svc.GetProgress(context.Background(), jobID)
	require.NoError(t, err)
	assert.True(t, progress.Completed, "publish failure must not affect the job")
}

func TestWorkerConcurrentFanOutStaysMonotonic(t *testing.T) {
	store := newRecordingStore()
	analyzer := &fakeAnalyzer{fn: func(documentID string) (analyses.Summary, error) {
		time.Sleep(2 * time.Millisecond)
		return analyses.Summary{DocumentID: documentID, Score: 60}, nil
	}}
	svc := &Service{Store: store, Analyzer: analyzer, Concurrency: 4}

	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprintf("doc-%d", i)
	}
	jobID, err := svc.SubmitBatch(context.Background(), ids, "job-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))

	progress, err := svc.GetProgress(context.Background(), jobID)
	require.NoError(t, err)
	assert.True(t, progress.Completed)
	assert.Len(t, progress.Results, 12)
	assertProgressInvariants(t, store.snapshots())
}

func TestShutdownHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	svc := &Service{
		Store: NewMemoryStore(time.Hour),
		Analyzer: &fakeAnalyzer{fn: func(documentID string) (analyses.Summary, error) {
			<-release
			return analyses.Summary{}, nil
		}},
	}

	_, err := svc.SubmitBatch(context.Background(), []string{"doc-1"}, "job-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Shutdown(ctx), context.DeadlineExceeded)
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, 100, percentOf(0, 0))
	assert.Equal(t, 0, percentOf(0, 7))
	assert.Equal(t, 14, percentOf(1, 7))
	assert.Equal(t, 50, percentOf(1, 2))
	assert.Equal(t, 100, percentOf(7, 7))
	assert.Equal(t, 99, percentOf(199, 200))
	assert.Equal(t, 99, percentOf(999, 1000))
	assert.Equal(t, 100, percentOf(200, 200))
}

func TestSubmitBatchLargeHoldsBelowHundredUntilLastAttempt(t *testing.T) {
	store := newRecordingStore()
	svc := inlineService(store, &fakeAnalyzer{})

	ids := make([]string, 200)
	for i := range ids {
		ids[i] = fmt.Sprintf("doc-%d", i)
	}
	_, err := svc.SubmitBatch(context.Background(), ids, "job-1")
	require.NoError(t, err)

	writes := store.snapshots()
	require.Len(t, writes, 202)
	assert.Equal(t, 99, writes[199].PercentComplete)
	assert.Equal(t, 100, writes[200].PercentComplete)
	assertProgressInvariants(t, writes)
}
