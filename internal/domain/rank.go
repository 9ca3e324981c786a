package domain

import "math"

// Rank grades a user's aggregate activity. Percentile runs from 0 (best)
// to 100; Level buckets it into letter grades.
type Rank struct {
	Level      string  `json:"level"`
	Percentile float64 `json:"percentile"`
}

// RankInput is the set of counters the rank is derived from.
type RankInput struct {
	// AllCommits is true when Commits counts lifetime commits rather than
	// the last year, which shifts the commit median accordingly.
	AllCommits bool
	Commits    int
	PRs        int
	Issues     int
	Reviews    int
	Stars      int
	Followers  int
}

// Medians and weights per metric. A metric at its median contributes 0.5
// of its weight to the blend.
const (
	commitsMedianYear = 250
	commitsMedianAll  = 1000
	commitsWeight     = 2
	prsMedian         = 50
	prsWeight         = 3
	issuesMedian      = 25
	issuesWeight      = 1
	reviewsMedian     = 2
	reviewsWeight     = 1
	starsMedian       = 50
	starsWeight       = 4
	followersMedian   = 10
	followersWeight   = 1

	totalWeight = commitsWeight + prsWeight + issuesWeight + reviewsWeight + starsWeight + followersWeight
)

var (
	rankThresholds = []float64{1, 12.5, 25, 37.5, 50, 62.5, 75, 87.5, 100}
	rankLevels     = []string{"S", "A+", "A", "A-", "B+", "B", "B-", "C+", "C"}
)

// exponentialCDF saturates quickly; used for count-like metrics.
func exponentialCDF(x float64) float64 {
	return 1 - math.Pow(2, -x)
}

// logNormalCDF saturates slowly; used for the heavy-tailed metrics
// (stars, followers).
func logNormalCDF(x float64) float64 {
	return x / (1 + x)
}

// CalculateRank blends the per-metric CDF values into a percentile and a
// letter grade. Zero activity lands on "C" at percentile 100; the grade
// improves as the percentile approaches 0.
func CalculateRank(in RankInput) Rank {
	commitsMedian := float64(commitsMedianYear)
	if in.AllCommits {
		commitsMedian = commitsMedianAll
	}

	score := (commitsWeight*exponentialCDF(float64(in.Commits)/commitsMedian) +
		prsWeight*exponentialCDF(float64(in.PRs)/prsMedian) +
		issuesWeight*exponentialCDF(float64(in.Issues)/issuesMedian) +
		reviewsWeight*exponentialCDF(float64(in.Reviews)/reviewsMedian) +
		starsWeight*logNormalCDF(float64(in.Stars)/starsMedian) +
		followersWeight*logNormalCDF(float64(in.Followers)/followersMedian)) / totalWeight

	percentile := (1 - score) * 100

	level := rankLevels[len(rankLevels)-1]
	for i, threshold := range rankThresholds {
		if percentile <= threshold {
			level = rankLevels[i]
			break
		}
	}

	return Rank{Level: level, Percentile: percentile}
}
