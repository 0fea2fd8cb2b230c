package batches

import (
	"strings"

	"recruit-analysis/internal/analyses"
)

// RecommendedScore is the minimum score counted as a recommended candidate.
const RecommendedScore = 85

// ComputeStats aggregates successful results. Skills are compared exactly;
// the first candidate with the highest score wins ties.
func ComputeStats(results []analyses.Summary) Stats {
	var stats Stats
	if len(results) == 0 {
		return stats
	}

	skills := make(map[string]struct{})
	top := -1
	for i, r := range results {
		for _, skill := range r.Skills {
			skills[skill] = struct{}{}
		}
		if r.Score >= RecommendedScore {
			stats.RecommendedCandidates++
		}
		if top < 0 || r.Score > results[top].Score {
			top = i
		}
	}

	stats.SkillsDetected = len(skills)
	stats.TopCandidateScore = results[top].Score
	stats.TopCandidateName = strings.TrimSpace(results[top].FirstName + " " + results[top].LastName)
	return stats
}
