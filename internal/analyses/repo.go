package analyses

import "context"

// Repo defines persistence operations for analysis records.
type Repo interface {
	// Upsert writes rec keyed by (DocumentID, TargetID). An existing record
	// keeps its ID and CreatedAt; every other field is overwritten and
	// UpdatedAt takes rec.UpdatedAt. The stored record is returned.
	Upsert(ctx context.Context, rec Record) (Record, error)
	GetByID(ctx context.Context, recordID string) (Record, error)
	GetByPair(ctx context.Context, documentID, targetID string) (Record, error)
	// ListByTarget orders by score desc, then most recently updated.
	ListByTarget(ctx context.Context, targetID string) ([]Record, error)
}
