package analyses

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"recruit-analysis/internal/documents"
	"recruit-analysis/internal/llm"
	"recruit-analysis/internal/shared/storage/object"
	"recruit-analysis/internal/shared/storage/object/local"
)

type fakeOracle struct {
	mu     sync.Mutex
	calls  int
	inputs []llm.AnalyzeInput
	fn     func(input llm.AnalyzeInput) (llm.Result, error)
}

func (f *fakeOracle) Analyze(ctx context.Context, input llm.AnalyzeInput) (llm.Result, error) {
	f.mu.Lock()
	f.calls++
	f.inputs = append(f.inputs, input)
	fn := f.fn
	f.mu.Unlock()
	if fn == nil {
		return sampleResult(80), nil
	}
	return fn(input)
}

func sampleResult(score int) llm.Result {
	return llm.Result{
		FirstName:           "Jane",
		LastName:            "Doe",
		Email:               "jane@example.com",
		Title:               "Backend Engineer",
		YearsOfExperience:   6,
		Skills:              []string{"Go", "Postgres"},
		Score:               score,
		RequiredSkillsMatch: 2,
		RequiredSkillsTotal: 3,
		Insights: llm.Insights{
			Strengths:      []string{"distributed systems"},
			JobFitAnalysis: "strong fit",
		},
	}
}

type countingStore struct {
	object.ObjectStore
	opens atomic.Int32
}

func (s *countingStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.opens.Add(1)
	return s.ObjectStore.Open(ctx, key)
}

type failingExtractionRepo struct {
	documents.Repo
}

func (failingExtractionRepo) UpdateExtraction(ctx context.Context, documentID, text string, at time.Time) error {
	return errors.New("db unavailable")
}

type failingUpsertRepo struct {
	*MemoryRepo
}

func (failingUpsertRepo) Upsert(ctx context.Context, rec Record) (Record, error) {
	return Record{}, errors.New("connection reset by peer")
}

type testEnv struct {
	svc    *Service
	docs   *documents.Service
	store  *countingStore
	oracle *fakeOracle
	repo   *MemoryRepo
}

// steppingClock advances one second per call.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := &countingStore{ObjectStore: local.New(t.TempDir())}
	docRepo := documents.NewMemoryRepo()
	repo := NewMemoryRepo()
	oracle := &fakeOracle{}
	return &testEnv{
		svc: &Service{
			Repo:     repo,
			DocRepo:  docRepo,
			Store:    store,
			Oracle:   oracle,
			Provider: "fake",
			Model:    "fake-1",
			Now:      steppingClock(),
		},
		docs:   &documents.Service{Store: store, Repo: docRepo, StorageProvider: "local"},
		store:  store,
		oracle: oracle,
		repo:   repo,
	}
}

func (e *testEnv) upload(t *testing.T, fileName, content string) documents.Document {
	t.Helper()
	doc, err := e.docs.Upload(context.Background(), "job-1", fileName, strings.NewReader(content))
	if err != nil {
		t.Fatalf("upload %s: %v", fileName, err)
	}
	return doc
}
