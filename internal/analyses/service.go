package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"recruit-analysis/internal/documents"
	"recruit-analysis/internal/extract"
	"recruit-analysis/internal/llm"
	"recruit-analysis/internal/shared/metrics"
	"recruit-analysis/internal/shared/storage/object"
	"recruit-analysis/internal/shared/telemetry"
)

// Service runs the single-document pipeline: extract, analyze, upsert.
type Service struct {
	Repo     Repo
	DocRepo  documents.Repo
	Store    object.ObjectStore
	Oracle   llm.Client
	Texts    *TextCache
	Provider string
	Model    string
	Now      func() time.Time
}

// AnalyzeOne analyzes a document against a target and returns the summary
// the batch worker appends to progress.
func (s *Service) AnalyzeOne(ctx context.Context, documentID, targetID string) (Summary, error) {
	rec, err := s.analyze(ctx, documentID, targetID)
	if err != nil {
		return Summary{}, err
	}
	return rec.Summary(), nil
}

// AnalyzeSingle is the synchronous path: same pipeline, full record back.
func (s *Service) AnalyzeSingle(ctx context.Context, documentID, targetID string) (Record, error) {
	return s.analyze(ctx, documentID, targetID)
}

// Get returns a stored record by ID.
func (s *Service) Get(ctx context.Context, recordID string) (Record, error) {
	if strings.TrimSpace(recordID) == "" {
		return Record{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, recordID)
}

// ListByTarget returns every record for a target, best score first.
func (s *Service) ListByTarget(ctx context.Context, targetID string) ([]Record, error) {
	if strings.TrimSpace(targetID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByTarget(ctx, targetID)
}

func (s *Service) analyze(ctx context.Context, documentID, targetID string) (Record, error) {
	documentID = strings.TrimSpace(documentID)
	targetID = strings.TrimSpace(targetID)
	if documentID == "" || targetID == "" {
		return Record{}, fmt.Errorf("%w: documentId and targetId are required", ErrInvalidInput)
	}
	if s.Repo == nil || s.DocRepo == nil || s.Store == nil {
		return Record{}, errors.New("analysis service: missing store dependencies")
	}
	if s.Oracle == nil {
		return Record{}, errors.New("analysis service: missing oracle client")
	}

	doc, err := s.DocRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return Record{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
		}
		return Record{}, fmt.Errorf("document lookup id=%s: %w", documentID, err)
	}

	text, err := s.documentText(ctx, doc)
	if err != nil {
		return Record{}, err
	}

	startedAt := s.now()
	result, err := s.Oracle.Analyze(ctx, llm.AnalyzeInput{DocumentText: text, TargetID: targetID})
	metrics.ObserveOracleDurationMs(float64(s.now().Sub(startedAt).Microseconds()) / 1000.0)
	if err != nil {
		return Record{}, classifyOracleError(documentID, err)
	}

	now := s.now()
	rec := recordFromResult(documentID, targetID, result)
	rec.ID = uuid.NewString()
	rec.Provider = s.Provider
	rec.Model = s.Model
	rec.CreatedAt = now
	rec.UpdatedAt = now

	stored, err := s.Repo.Upsert(ctx, rec)
	if err != nil {
		return Record{}, fmt.Errorf("%w: document=%s target=%s: %w", ErrStoreWriteFailed, documentID, targetID, err)
	}

	telemetry.Info("analysis.upsert", map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"document_id": documentID,
		"target_id":   targetID,
		"record_id":   stored.ID,
		"score":       stored.Score,
		"created":     stored.ID == rec.ID,
	})
	return stored, nil
}

// documentText returns the cached extraction when there is one; otherwise
// it extracts from the stored bytes and fills both caches.
func (s *Service) documentText(ctx context.Context, doc documents.Document) (string, error) {
	if doc.HasExtractedText() {
		return doc.ExtractedText, nil
	}
	if text, ok := s.Texts.Get(doc.ID); ok {
		return text, nil
	}

	text, err := extract.ExtractFromStore(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return "", fmt.Errorf("%w: %s: %w", ErrDocumentNotFound, doc.ID, err)
		}
		return "", fmt.Errorf("%w: document %s mime %s: %w", ErrExtractionFailed, doc.ID, doc.MimeType, err)
	}
	metrics.IncExtraction()
	s.Texts.Add(doc.ID, text)

	if err := s.DocRepo.UpdateExtraction(ctx, doc.ID, text, s.now()); err != nil {
		telemetry.Warn("document.extraction_cache_failed", map[string]any{
			"request_id":  telemetry.RequestIDFromContext(ctx),
			"document_id": doc.ID,
			"error":       SanitizeError(err),
		})
	}
	return text, nil
}

func classifyOracleError(documentID string, err error) error {
	if errors.Is(err, llm.ErrUnavailable) || llm.IsTransient(err) {
		return fmt.Errorf("%w: document=%s: %w", ErrOracleUnavailable, documentID, err)
	}
	return fmt.Errorf("%w: document=%s: %w", ErrOracleError, documentID, err)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
