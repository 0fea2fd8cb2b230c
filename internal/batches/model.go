package batches

import (
	"time"

	"recruit-analysis/internal/analyses"
)

// Job is one batch submission. DocumentIDs is copied at creation and never
// mutated afterwards.
type Job struct {
	ID          string
	TargetID    string
	DocumentIDs []string
	CreatedAt   time.Time
}

// Failure records a document the worker attempted but could not analyze.
type Failure struct {
	DocumentID string `json:"documentId"`
	Code       string `json:"code"`
	Reason     string `json:"reason"`
}

// Stats summarizes the successful results of a completed batch.
type Stats struct {
	SkillsDetected        int    `json:"skillsDetected"`
	RecommendedCandidates int    `json:"recommendedCandidates"`
	TopCandidateName      string `json:"topCandidateName"`
	TopCandidateScore     int    `json:"topCandidateScore"`
}

// Progress is the pollable state of a batch. PercentComplete never
// decreases, Completed only moves from false to true, and Stats is set in
// the same write that sets Completed.
type Progress struct {
	JobID           string             `json:"jobId"`
	TargetID        string             `json:"targetId"`
	Total           int                `json:"total"`
	Attempted       int                `json:"attempted"`
	PercentComplete int                `json:"percentComplete"`
	Completed       bool               `json:"completed"`
	Results         []analyses.Summary `json:"results"`
	Failures        []Failure          `json:"failures"`
	Stats           *Stats             `json:"stats,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
	CompletedAt     *time.Time         `json:"completedAt,omitempty"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (p Progress) Clone() Progress {
	out := p
	out.Results = make([]analyses.Summary, len(p.Results))
	for i, r := range p.Results {
		r.Skills = append([]string(nil), r.Skills...)
		out.Results[i] = r
	}
	out.Failures = append(make([]Failure, 0, len(p.Failures)), p.Failures...)
	if p.Stats != nil {
		stats := *p.Stats
		out.Stats = &stats
	}
	if p.CompletedAt != nil {
		at := *p.CompletedAt
		out.CompletedAt = &at
	}
	return out
}

func percentOf(attempted, total int) int {
	if total <= 0 {
		return 100
	}
	if attempted >= total {
		return 100
	}
	pct := (attempted*100 + total/2) / total
	if pct > 99 {
		pct = 99
	}
	return pct
}
