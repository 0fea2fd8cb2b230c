package documents

import (
	"context"
	"time"
)

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	// UpdateExtraction fills the extracted-text cache. It only writes when the
	// cache is still empty, so concurrent writers settle on the first value.
	UpdateExtraction(ctx context.Context, documentID, text string, extractedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]Document, error)
}
