package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"recruit-analysis/internal/shared/storage/object"
	"recruit-analysis/internal/shared/util"
)

const defaultNamespace = "unassigned"

// Service contains business logic for documents.
type Service struct {
	Store           object.ObjectStore
	Repo            Repo
	StorageProvider string
}

// Upload saves the file to object storage and records the document. The
// namespace only groups stored objects; pass the target id when known.
func (s *Service) Upload(ctx context.Context, namespace, fileName string, r io.Reader) (Document, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Document{}, ErrInvalidInput
	}
	if strings.TrimSpace(namespace) == "" {
		namespace = defaultNamespace
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, namespace, fileName, r)
	if err != nil {
		if errors.Is(err, util.ErrInvalidFileName) {
			return Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return Document{}, err
	}

	doc := Document{
		ID:              uuid.NewString(),
		FileName:        fileName,
		MimeType:        mimeType,
		SizeBytes:       size,
		StorageProvider: s.StorageProvider,
		StorageKey:      storageKey,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	return doc, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, documentID string) (Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, documentID)
}

// List returns documents newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Document, error) {
	return s.Repo.List(ctx, limit, offset)
}
