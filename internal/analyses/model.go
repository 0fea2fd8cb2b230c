package analyses

import (
	"time"

	"recruit-analysis/internal/llm"
)

// Record is the persisted analysis of one document against one target.
// (DocumentID, TargetID) is unique; ID and CreatedAt survive re-analysis.
type Record struct {
	ID                   string       `json:"id"`
	DocumentID           string       `json:"documentId"`
	TargetID             string       `json:"targetId"`
	FirstName            string       `json:"firstName"`
	LastName             string       `json:"lastName"`
	Email                string       `json:"email"`
	Phone                string       `json:"phone"`
	Title                string       `json:"title"`
	Location             string       `json:"location"`
	YearsOfExperience    int          `json:"yearsOfExperience"`
	Skills               []string     `json:"skills"`
	Score                int          `json:"score"`
	RequiredSkillsMatch  int          `json:"requiredSkillsMatch"`
	RequiredSkillsTotal  int          `json:"requiredSkillsTotal"`
	PreferredSkillsMatch int          `json:"preferredSkillsMatch"`
	PreferredSkillsTotal int          `json:"preferredSkillsTotal"`
	Insights             llm.Insights `json:"insights"`
	Provider             string       `json:"provider,omitempty"`
	Model                string       `json:"model,omitempty"`
	CreatedAt            time.Time    `json:"createdAt"`
	UpdatedAt            time.Time    `json:"updatedAt"`
}

// Summary is the display view of a record used in batch progress.
type Summary struct {
	DocumentID           string   `json:"documentId"`
	RecordID             string   `json:"recordId"`
	FirstName            string   `json:"firstName"`
	LastName             string   `json:"lastName"`
	Email                string   `json:"email"`
	Phone                string   `json:"phone"`
	Title                string   `json:"title"`
	Score                int      `json:"score"`
	YearsOfExperience    int      `json:"yearsOfExperience"`
	Skills               []string `json:"skills"`
	RequiredSkillsMatch  int      `json:"requiredSkillsMatch"`
	RequiredSkillsTotal  int      `json:"requiredSkillsTotal"`
	PreferredSkillsMatch int      `json:"preferredSkillsMatch"`
	PreferredSkillsTotal int      `json:"preferredSkillsTotal"`
}

// Summary projects the record into its display view.
func (r Record) Summary() Summary {
	skills := make([]string, len(r.Skills))
	copy(skills, r.Skills)
	return Summary{
		DocumentID:           r.DocumentID,
		RecordID:             r.ID,
		FirstName:            r.FirstName,
		LastName:             r.LastName,
		Email:                r.Email,
		Phone:                r.Phone,
		Title:                r.Title,
		Score:                r.Score,
		YearsOfExperience:    r.YearsOfExperience,
		Skills:               skills,
		RequiredSkillsMatch:  r.RequiredSkillsMatch,
		RequiredSkillsTotal:  r.RequiredSkillsTotal,
		PreferredSkillsMatch: r.PreferredSkillsMatch,
		PreferredSkillsTotal: r.PreferredSkillsTotal,
	}
}

func recordFromResult(documentID, targetID string, res llm.Result) Record {
	skills := res.Skills
	if skills == nil {
		skills = []string{}
	}
	return Record{
		DocumentID:           documentID,
		TargetID:             targetID,
		FirstName:            res.FirstName,
		LastName:             res.LastName,
		Email:                res.Email,
		Phone:                res.Phone,
		Title:                res.Title,
		Location:             res.Location,
		YearsOfExperience:    res.YearsOfExperience,
		Skills:               skills,
		Score:                res.Score,
		RequiredSkillsMatch:  res.RequiredSkillsMatch,
		RequiredSkillsTotal:  res.RequiredSkillsTotal,
		PreferredSkillsMatch: res.PreferredSkillsMatch,
		PreferredSkillsTotal: res.PreferredSkillsTotal,
		Insights:             res.Insights,
	}
}
