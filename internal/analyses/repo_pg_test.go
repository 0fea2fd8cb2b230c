package analyses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var recordColumnNames = []string{
	"id", "document_id", "target_id", "first_name", "last_name", "email", "phone", "title", "location",
	"years_of_experience", "skills", "score", "required_skills_match", "required_skills_total",
	"preferred_skills_match", "preferred_skills_total", "insights", "provider", "model", "created_at", "updated_at",
}

func TestPGRepoUpsertKeepsExistingIdentity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	createdAt := now.Add(-24 * time.Hour)
	rec := Record{
		ID:         "new-id",
		DocumentID: "doc-1",
		TargetID:   "job-1",
		FirstName:  "Jane",
		Score:      88,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	mock.ExpectQuery("INSERT INTO analysis_records .* ON CONFLICT \\(document_id, target_id\\) DO UPDATE SET .* RETURNING id, created_at, updated_at").
		WithArgs("new-id", "doc-1", "job-1", "Jane", "", "", "", "", "", 0, []byte(`[]`), 88, 0, 0, 0, 0,
			sqlmock.AnyArg(), "", "", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("existing-id", createdAt, now))

	stored, err := (&PGRepo{DB: db}).Upsert(context.Background(), rec)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if stored.ID != "existing-id" || !stored.CreatedAt.Equal(createdAt) || !stored.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected stored identity: %+v", stored)
	}
	if stored.Skills == nil {
		t.Fatalf("expected non-nil skills")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpsertPropagatesErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("INSERT INTO analysis_records").WillReturnError(errors.New("deadlock detected"))

	_, err = (&PGRepo{DB: db}).Upsert(context.Background(), Record{ID: "a", DocumentID: "d", TargetID: "t"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestPGRepoGetByIDDecodesJSONColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(recordColumnNames).AddRow(
		"rec-1", "doc-1", "job-1", "Jane", "Doe", nil, nil, "Engineer", nil,
		5, []byte(`["Go","SQL"]`), 90, 3, 4, 1, 2,
		[]byte(`{"strengths":["ownership"],"categoryScores":{"technical":92}}`), "openai", "gpt-4o-mini", at, at,
	)
	mock.ExpectQuery("SELECT .* FROM analysis_records WHERE id = \\$1").
		WithArgs("rec-1").
		WillReturnRows(rows)

	rec, err := (&PGRepo{DB: db}).GetByID(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(rec.Skills) != 2 || rec.Skills[1] != "SQL" {
		t.Fatalf("unexpected skills: %v", rec.Skills)
	}
	if rec.Insights.CategoryScores["technical"] != 92 || rec.Insights.Strengths[0] != "ownership" {
		t.Fatalf("unexpected insights: %+v", rec.Insights)
	}
	if rec.Email != "" || rec.Provider != "openai" {
		t.Fatalf("unexpected nullable handling: %+v", rec)
	}
}

func TestPGRepoGetByPairNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT .* FROM analysis_records WHERE document_id = \\$1 AND target_id = \\$2").
		WithArgs("doc-1", "job-1").
		WillReturnRows(sqlmock.NewRows(recordColumnNames))

	_, err = (&PGRepo{DB: db}).GetByPair(context.Background(), "doc-1", "job-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListByTargetOrdersInQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(recordColumnNames).
		AddRow("rec-1", "doc-1", "job-1", "A", "", "", "", "", "", 1, nil, 95, 0, 0, 0, 0, nil, "", "", at, at).
		AddRow("rec-2", "doc-2", "job-1", "B", "", "", "", "", "", 2, nil, 60, 0, 0, 0, 0, nil, "", "", at, at)
	mock.ExpectQuery("SELECT .* FROM analysis_records\\s+WHERE target_id = \\$1\\s+ORDER BY score DESC, updated_at DESC").
		WithArgs("job-1").
		WillReturnRows(rows)

	recs, err := (&PGRepo{DB: db}).ListByTarget(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("ListByTarget: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "rec-1" || recs[1].Skills == nil {
		t.Fatalf("unexpected records: %+v", recs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
