package scoring

import (
	"testing"

	"github.com/promptarena/prompt-arena/models"
	"github.com/stretchr/testify/assert"
)

func rubricThree() models.Rubric {
	return models.Rubric{
		{Name: "clarity", Weight: 0.3},
		{Name: "creativity", Weight: 0.3},
		{Name: "effectiveness", Weight: 0.4},
	}
}

func TestWeightedTotal_TwoCriteria(t *testing.T) {
	rubric := models.Rubric{
		{Name: "Clarity", Weight: 0.6},
		{Name: "Creativity", Weight: 0.4},
	}
	scores := map[string]float64{"Clarity": 80, "Creativity": 90}

	// 80*0.6 + 90*0.4 = 84.00
	assert.Equal(t, 84.0, WeightedTotal(scores, rubric))
}

func TestWeightedTotal(t *testing.T) {
	scores := map[string]float64{
		"clarity":       80,
		"creativity":    90,
		"effectiveness": 84,
	}

	total := WeightedTotal(scores, rubricThree())
	assert.Equal(t, 84.6, total)
}

func TestWeightedTotal_MissingCriterionCountsAsZero(t *testing.T) {
	scores := map[string]float64{
		"clarity":    100,
		"creativity": 100,
	}

	total := WeightedTotal(scores, rubricThree())
	assert.Equal(t, 60.0, total)
}

func TestWeightedTotal_RenormalizesSkewedWeights(t *testing.T) {
	// Stored weights sum to 2.0; the result must stay bounded anyway.
	rubric := models.Rubric{
		{Name: "a", Weight: 1.0},
		{Name: "b", Weight: 1.0},
	}
	scores := map[string]float64{"a": 100, "b": 50}

	total := WeightedTotal(scores, rubric)
	assert.Equal(t, 75.0, total)
}

func TestWeightedTotal_EmptyRubric(t *testing.T) {
	assert.Equal(t, 0.0, WeightedTotal(map[string]float64{"a": 100}, nil))
}

func TestWeightedTotal_IgnoresNonPositiveWeights(t *testing.T) {
	rubric := models.Rubric{
		{Name: "a", Weight: -1},
		{Name: "b", Weight: 0.5},
	}
	scores := map[string]float64{"a": 100, "b": 80}

	total := WeightedTotal(scores, rubric)
	assert.Equal(t, 80.0, total)
}

func TestWeightedTotal_ScoresOutsideRubricIgnored(t *testing.T) {
	scores := map[string]float64{
		"clarity":       50,
		"creativity":    50,
		"effectiveness": 50,
		"bogus":         5000,
	}

	total := WeightedTotal(scores, rubricThree())
	assert.Equal(t, 50.0, total)
}

func TestChallengeMaxScore(t *testing.T) {
	assert.Equal(t, 100.0, ChallengeMaxScore(rubricThree()))

	partial := models.Rubric{
		{Name: "a", Weight: 0.25},
		{Name: "b", Weight: 0.25},
	}
	assert.Equal(t, 50.0, ChallengeMaxScore(partial))

	assert.Equal(t, 0.0, ChallengeMaxScore(nil))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 84.35, Round2(84.345))
	assert.Equal(t, 84.0, Round2(84.0))
	assert.Equal(t, -1.23, Round2(-1.234))
}
