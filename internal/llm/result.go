package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Result is the structured analysis returned by the oracle.
type Result struct {
	FirstName            string
	LastName             string
	Email                string
	Phone                string
	Title                string
	Location             string
	YearsOfExperience    int
	Skills               []string
	Score                int
	RequiredSkillsMatch  int
	RequiredSkillsTotal  int
	PreferredSkillsMatch int
	PreferredSkillsTotal int
	Insights             Insights
}

// Insights is the free-form part of an analysis.
type Insights struct {
	ExperienceInsights  []string            `json:"experienceInsights,omitempty"`
	EducationInsights   []string            `json:"educationInsights,omitempty"`
	Strengths           []string            `json:"strengths,omitempty"`
	AreasForImprovement []string            `json:"areasForImprovement,omitempty"`
	JobFitAnalysis      string              `json:"jobFitAnalysis,omitempty"`
	CategoryScores      map[string]int      `json:"categoryScores,omitempty"`
	InterviewQuestions  []InterviewQuestion `json:"interviewQuestions,omitempty"`
}

// InterviewQuestion is a suggested question for the candidate.
type InterviewQuestion struct {
	Category string `json:"category"`
	Question string `json:"question"`
}

// wireResult tolerates numeric fields sent as floats.
type wireResult struct {
	FirstName            string              `json:"firstName"`
	LastName             string              `json:"lastName"`
	Email                string              `json:"email"`
	Phone                string              `json:"phone"`
	Title                string              `json:"title"`
	Location             string              `json:"location"`
	YearsOfExperience    float64             `json:"yearsOfExperience"`
	Skills               []string            `json:"skills"`
	Score                *float64            `json:"score"`
	RequiredSkillsMatch  int                 `json:"requiredSkillsMatch"`
	RequiredSkillsTotal  int                 `json:"requiredSkillsTotal"`
	PreferredSkillsMatch int                 `json:"preferredSkillsMatch"`
	PreferredSkillsTotal int                 `json:"preferredSkillsTotal"`
	ExperienceInsights   []string            `json:"experienceInsights"`
	EducationInsights    []string            `json:"educationInsights"`
	Strengths            []string            `json:"strengths"`
	AreasForImprovement  []string            `json:"areasForImprovement"`
	JobFitAnalysis       string              `json:"jobFitAnalysis"`
	CategoryScores       map[string]float64  `json:"categoryScores"`
	InterviewQuestions   []InterviewQuestion `json:"interviewQuestions"`
}

// ParseResult decodes an oracle JSON payload. Missing or out-of-range scores
// are rejected with ErrBadResponse.
func ParseResult(raw []byte) (Result, error) {
	trimmed := strings.TrimSpace(stripCodeFence(string(raw)))
	if trimmed == "" {
		return Result{}, fmt.Errorf("%w: empty body", ErrBadResponse)
	}
	var w wireResult
	if err := json.Unmarshal([]byte(trimmed), &w); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if w.Score == nil {
		return Result{}, fmt.Errorf("%w: missing score", ErrBadResponse)
	}
	score := int(math.Round(*w.Score))
	if score < 0 || score > 100 {
		return Result{}, fmt.Errorf("%w: score %d out of range", ErrBadResponse, score)
	}

	var categories map[string]int
	if len(w.CategoryScores) > 0 {
		categories = make(map[string]int, len(w.CategoryScores))
		for k, v := range w.CategoryScores {
			categories[k] = int(math.Round(v))
		}
	}

	skills := make([]string, 0, len(w.Skills))
	for _, s := range w.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}

	return Result{
		FirstName:            strings.TrimSpace(w.FirstName),
		LastName:             strings.TrimSpace(w.LastName),
		Email:                strings.TrimSpace(w.Email),
		Phone:                strings.TrimSpace(w.Phone),
		Title:                strings.TrimSpace(w.Title),
		Location:             strings.TrimSpace(w.Location),
		YearsOfExperience:    int(math.Round(w.YearsOfExperience)),
		Skills:               skills,
		Score:                score,
		RequiredSkillsMatch:  w.RequiredSkillsMatch,
		RequiredSkillsTotal:  w.RequiredSkillsTotal,
		PreferredSkillsMatch: w.PreferredSkillsMatch,
		PreferredSkillsTotal: w.PreferredSkillsTotal,
		Insights: Insights{
			ExperienceInsights:  w.ExperienceInsights,
			EducationInsights:   w.EducationInsights,
			Strengths:           w.Strengths,
			AreasForImprovement: w.AreasForImprovement,
			JobFitAnalysis:      w.JobFitAnalysis,
			CategoryScores:      categories,
			InterviewQuestions:  w.InterviewQuestions,
		},
	}, nil
}

// stripCodeFence removes a ```json fence some models wrap around output.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(t), "```")
}
