package badges

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func cohortOf(n int, rating float64, reviews int) []CohortEntry {
	cohort := make([]CohortEntry, n)
	for i := range cohort {
		cohort[i] = CohortEntry{
			ContractorID: uuid.New(),
			RatingValue:  rating,
			ReviewCount:  reviews,
		}
	}
	return cohort
}

func TestCompositeScoreDampensVolume(t *testing.T) {
	// a pile of mediocre reviews does not automatically outrank a smaller
	// set of excellent ones
	assert.Less(t, compositeScore(3.0, 200), compositeScore(4.9, 40))
	assert.Greater(t, compositeScore(4.5, 50), compositeScore(4.5, 10))
}

func TestInTopPercentileEmptyCohort(t *testing.T) {
	assert.False(t, inTopPercentile(nil, uuid.New()))
}

func TestInTopPercentileContractorAbsent(t *testing.T) {
	cohort := cohortOf(10, 4.8, 30)
	assert.False(t, inTopPercentile(cohort, uuid.New()))
}

func TestInTopPercentileCohortOfOne(t *testing.T) {
	id := uuid.New()
	cohort := []CohortEntry{{ContractorID: id, RatingValue: 4.8, ReviewCount: 25}}
	assert.True(t, inTopPercentile(cohort, id))
}

func TestPercentileThresholdExact(t *testing.T) {
	// For every cohort size, exactly ceil(n*0.05) members are eligible by
	// rank, and the top scorer is always among them.
	for _, n := range []int{1, 2, 19, 20, 21, 40, 100} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			cohort := make([]CohortEntry, n)
			for i := range cohort {
				cohort[i] = CohortEntry{
					ContractorID: uuid.New(),
					RatingValue:  4.7 + 0.3*float64(i)/float64(n),
					ReviewCount:  20 + i,
				}
			}

			eligible := 0
			for _, e := range cohort {
				if inTopPercentile(cohort, e.ContractorID) {
					eligible++
				}
			}
			assert.Equal(t, int(math.Ceil(float64(n)*0.05)), eligible)

			top := rankCohort(cohort)[0]
			assert.True(t, inTopPercentile(cohort, top.ContractorID))
		})
	}
}

func TestRankCohortTieBreakStable(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	cohort := []CohortEntry{
		{ContractorID: b, RatingValue: 4.8, ReviewCount: 25},
		{ContractorID: a, RatingValue: 4.8, ReviewCount: 25},
	}

	for i := 0; i < 10; i++ {
		ranked := rankCohort(cohort)
		assert.Equal(t, a, ranked[0].ContractorID)
		assert.Equal(t, b, ranked[1].ContractorID)
	}
}

func TestScenarioDRankTwoOfForty(t *testing.T) {
	// Cohort of 40, target at rank 2: threshold = ceil(40*0.05) = 2.
	target := uuid.New()
	cohort := make([]CohortEntry, 0, 40)
	cohort = append(cohort, CohortEntry{ContractorID: uuid.New(), RatingValue: 4.9, ReviewCount: 100})
	cohort = append(cohort, CohortEntry{ContractorID: target, RatingValue: 4.8, ReviewCount: 25})
	third := uuid.New()
	cohort = append(cohort, CohortEntry{ContractorID: third, RatingValue: 4.7, ReviewCount: 24})
	for i := 0; i < 37; i++ {
		cohort = append(cohort, CohortEntry{ContractorID: uuid.New(), RatingValue: 4.0, ReviewCount: 10})
	}

	assert.True(t, inTopPercentile(cohort, target))
	// rank 3 is outside ceil(40*0.05) = 2
	assert.False(t, inTopPercentile(cohort, third))
}
