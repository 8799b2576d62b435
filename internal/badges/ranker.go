package badges

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// topPercentile is the share of a category cohort eligible by rank.
const topPercentile = 0.05

// compositeScore balances review quality and volume. The log dampening
// keeps a large pile of mediocre reviews from outranking a smaller set of
// excellent ones.
func compositeScore(rating float64, reviewCount int) float64 {
	return rating * math.Log(float64(reviewCount)+1)
}

// rankCohort scores every cohort entry and sorts descending by score.
// Ties resolve to the lexicographically smaller contractor id so the
// ranking is reproducible.
func rankCohort(cohort []CohortEntry) []CategoryScore {
	scores := make([]CategoryScore, len(cohort))
	for i, e := range cohort {
		scores[i] = CategoryScore{
			ContractorID: e.ContractorID,
			Score:        compositeScore(e.RatingValue, e.ReviewCount),
		}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].ContractorID.String() < scores[j].ContractorID.String()
	})

	return scores
}

// inTopPercentile reports whether the contractor ranks within the top 5%
// of the cohort by composite score. An empty cohort or a contractor absent
// from it is simply not eligible.
func inTopPercentile(cohort []CohortEntry, contractorID uuid.UUID) bool {
	if len(cohort) == 0 {
		return false
	}

	ranked := rankCohort(cohort)

	rank := 0
	for i, s := range ranked {
		if s.ContractorID == contractorID {
			rank = i + 1
			break
		}
	}
	if rank == 0 {
		return false
	}

	threshold := int(math.Ceil(float64(len(ranked)) * topPercentile))
	return rank <= threshold
}
