package documents

import "time"

// Document is an uploaded CV. Its bytes live in the object store under
// StorageKey and never change; only the extraction cache is written later.
type Document struct {
	ID              string
	FileName        string
	MimeType        string
	SizeBytes       int64
	StorageProvider string
	StorageKey      string
	ExtractedText   string
	ExtractedAt     *time.Time
	CreatedAt       time.Time
}

// HasExtractedText reports whether the extraction cache has been filled.
func (d Document) HasExtractedText() bool {
	return d.ExtractedAt != nil
}
