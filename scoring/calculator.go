// Package scoring contains the pure computation core: weighted rubric
// totals, judge assignment distribution, and leaderboard ranking.
// Nothing here touches the database; services feed it loaded documents.
package scoring

import (
	"math"

	"github.com/promptarena/prompt-arena/models"
)

// WeightedTotal computes the weighted sum of rubric scores.
//
// Missing criteria count as 0. Weights are renormalized internally by the
// actual sum, so the result stays bounded even when the stored weights do
// not add up to exactly 1 (the write-side validator rejects such rubrics,
// but scoring must not depend on that). Empty rubric yields 0.
// The result is rounded to 2 decimal places.
func WeightedTotal(scores map[string]float64, rubric models.Rubric) float64 {
	if len(rubric) == 0 {
		return 0
	}

	weightSum := 0.0
	for _, c := range rubric {
		if c.Weight > 0 && !math.IsNaN(c.Weight) && !math.IsInf(c.Weight, 0) {
			weightSum += c.Weight
		}
	}
	if weightSum <= 0 {
		return 0
	}

	total := 0.0
	for _, c := range rubric {
		if c.Weight <= 0 || math.IsNaN(c.Weight) || math.IsInf(c.Weight, 0) {
			continue
		}
		total += scores[c.Name] * (c.Weight / weightSum)
	}
	return Round2(total)
}

// ChallengeMaxScore is the maximum attainable score for a challenge,
// sum(100 * weight) over its rubric. Weights are assumed pre-normalized;
// this is the batch computation persisted onto the competition, not the
// per-submission weighted total.
func ChallengeMaxScore(rubric models.Rubric) float64 {
	total := 0.0
	for _, c := range rubric {
		total += 100 * c.Weight
	}
	return Round2(total)
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
