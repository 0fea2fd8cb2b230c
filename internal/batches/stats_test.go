package batches

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"recruit-analysis/internal/analyses"
)

func TestComputeStatsExample(t *testing.T) {
	results := []analyses.Summary{
		{FirstName: "Ana", LastName: "Lima", Score: 90, Skills: []string{"Go", "SQL"}},
		{FirstName: "Bo", LastName: "Chen", Score: 70, Skills: []string{"Go"}},
		{FirstName: "Cy", LastName: "Diaz", Score: 88, Skills: []string{"Rust"}},
		{FirstName: "Di", LastName: "Eze", Score: 40, Skills: []string{}},
	}

	stats := ComputeStats(results)
	assert.Equal(t, Stats{
		SkillsDetected:        3,
		RecommendedCandidates: 2,
		TopCandidateName:      "Ana Lima",
		TopCandidateScore:     90,
	}, stats)
}

func TestComputeStatsEmpty(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats(nil))
	assert.Equal(t, Stats{}, ComputeStats([]analyses.Summary{}))
}

func TestComputeStatsTiesAndCase(t *testing.T) {
	results := []analyses.Summary{
		{FirstName: "First", Score: 85, Skills: []string{"go"}},
		{FirstName: "Second", LastName: "Person", Score: 85, Skills: []string{"Go"}},
	}

	stats := ComputeStats(results)
	assert.Equal(t, "First", stats.TopCandidateName)
	assert.Equal(t, 85, stats.TopCandidateScore)
	assert.Equal(t, 2, stats.SkillsDetected)
	assert.Equal(t, 2, stats.RecommendedCandidates)
}
