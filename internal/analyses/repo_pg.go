package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const recordColumns = `id, document_id, target_id, first_name, last_name, email, phone, title, location,
years_of_experience, skills, score, required_skills_match, required_skills_total,
preferred_skills_match, preferred_skills_total, insights, provider, model, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var (
		firstName, lastName, email, phone, title, location sql.NullString
		provider, model                                    sql.NullString
		skillsRaw, insightsRaw                             []byte
	)
	if err := row.Scan(
		&rec.ID,
		&rec.DocumentID,
		&rec.TargetID,
		&firstName,
		&lastName,
		&email,
		&phone,
		&title,
		&location,
		&rec.YearsOfExperience,
		&skillsRaw,
		&rec.Score,
		&rec.RequiredSkillsMatch,
		&rec.RequiredSkillsTotal,
		&rec.PreferredSkillsMatch,
		&rec.PreferredSkillsTotal,
		&insightsRaw,
		&provider,
		&model,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return Record{}, err
	}
	rec.FirstName = firstName.String
	rec.LastName = lastName.String
	rec.Email = email.String
	rec.Phone = phone.String
	rec.Title = title.String
	rec.Location = location.String
	rec.Provider = provider.String
	rec.Model = model.String

	rec.Skills = []string{}
	if len(skillsRaw) > 0 {
		if err := json.Unmarshal(skillsRaw, &rec.Skills); err != nil {
			return Record{}, fmt.Errorf("decode skills: %w", err)
		}
	}
	if len(insightsRaw) > 0 {
		if err := json.Unmarshal(insightsRaw, &rec.Insights); err != nil {
			return Record{}, fmt.Errorf("decode insights: %w", err)
		}
	}
	return rec, nil
}

// Upsert inserts or updates the record for (document_id, target_id).
func (r *PGRepo) Upsert(ctx context.Context, rec Record) (Record, error) {
	const query = `
INSERT INTO analysis_records (
	id, document_id, target_id, first_name, last_name, email, phone, title, location,
	years_of_experience, skills, score, required_skills_match, required_skills_total,
	preferred_skills_match, preferred_skills_total, insights, provider, model, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
ON CONFLICT (document_id, target_id) DO UPDATE SET
	first_name = EXCLUDED.first_name,
	last_name = EXCLUDED.last_name,
	email = EXCLUDED.email,
	phone = EXCLUDED.phone,
	title = EXCLUDED.title,
	location = EXCLUDED.location,
	years_of_experience = EXCLUDED.years_of_experience,
	skills = EXCLUDED.skills,
	score = EXCLUDED.score,
	required_skills_match = EXCLUDED.required_skills_match,
	required_skills_total = EXCLUDED.required_skills_total,
	preferred_skills_match = EXCLUDED.preferred_skills_match,
	preferred_skills_total = EXCLUDED.preferred_skills_total,
	insights = EXCLUDED.insights,
	provider = EXCLUDED.provider,
	model = EXCLUDED.model,
	updated_at = EXCLUDED.updated_at
RETURNING id, created_at, updated_at`

	skills := rec.Skills
	if skills == nil {
		skills = []string{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return Record{}, fmt.Errorf("encode skills: %w", err)
	}
	insightsJSON, err := json.Marshal(rec.Insights)
	if err != nil {
		return Record{}, fmt.Errorf("encode insights: %w", err)
	}

	err = r.DB.QueryRowContext(ctx, query,
		rec.ID,
		rec.DocumentID,
		rec.TargetID,
		rec.FirstName,
		rec.LastName,
		rec.Email,
		rec.Phone,
		rec.Title,
		rec.Location,
		rec.YearsOfExperience,
		skillsJSON,
		rec.Score,
		rec.RequiredSkillsMatch,
		rec.RequiredSkillsTotal,
		rec.PreferredSkillsMatch,
		rec.PreferredSkillsTotal,
		insightsJSON,
		rec.Provider,
		rec.Model,
		rec.CreatedAt,
		rec.UpdatedAt,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return Record{}, err
	}
	rec.Skills = skills
	return rec, nil
}

// GetByID fetches a record by ID.
func (r *PGRepo) GetByID(ctx context.Context, recordID string) (Record, error) {
	query := `SELECT ` + recordColumns + ` FROM analysis_records WHERE id = $1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, recordID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// GetByPair fetches the record for a (document, target) pair.
func (r *PGRepo) GetByPair(ctx context.Context, documentID, targetID string) (Record, error) {
	query := `SELECT ` + recordColumns + ` FROM analysis_records WHERE document_id = $1 AND target_id = $2`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, documentID, targetID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// ListByTarget returns every record for a target, best score first.
func (r *PGRepo) ListByTarget(ctx context.Context, targetID string) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM analysis_records
WHERE target_id = $1
ORDER BY score DESC, updated_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
