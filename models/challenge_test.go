package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRubricValidate(t *testing.T) {
	rubric := Rubric{
		{Name: "clarity", Weight: 0.3},
		{Name: "creativity", Weight: 0.3},
		{Name: "effectiveness", Weight: 0.4},
	}
	assert.NoError(t, rubric.Validate())
}

func TestRubricValidate_Empty(t *testing.T) {
	assert.ErrorIs(t, Rubric{}.Validate(), ErrRubricEmpty)
}

func TestRubricValidate_BlankName(t *testing.T) {
	rubric := Rubric{
		{Name: "   ", Weight: 0.5},
		{Name: "b", Weight: 0.5},
	}
	assert.ErrorIs(t, rubric.Validate(), ErrRubricCriterionName)
}

func TestRubricValidate_DuplicateNameAfterTrim(t *testing.T) {
	rubric := Rubric{
		{Name: "clarity", Weight: 0.5},
		{Name: " clarity ", Weight: 0.5},
	}
	assert.ErrorIs(t, rubric.Validate(), ErrRubricDuplicateName)
}

func TestRubricValidate_BadWeights(t *testing.T) {
	cases := []struct {
		name   string
		weight float64
		want   error
	}{
		{"zero", 0, ErrRubricInvalidWeight},
		{"negative", -0.5, ErrRubricInvalidWeight},
		{"nan", math.NaN(), ErrRubricInvalidWeight},
		{"inf", math.Inf(1), ErrRubricInvalidWeight},
		{"above one", 1.5, ErrRubricWeightTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rubric := Rubric{{Name: "a", Weight: tc.weight}}
			assert.ErrorIs(t, rubric.Validate(), tc.want)
		})
	}
}

func TestRubricValidate_WeightSumTolerance(t *testing.T) {
	// Sum 1.0005 stays inside the tolerance.
	within := Rubric{
		{Name: "a", Weight: 0.5},
		{Name: "b", Weight: 0.5005},
	}
	assert.NoError(t, within.Validate())

	outside := Rubric{
		{Name: "a", Weight: 0.5},
		{Name: "b", Weight: 0.6},
	}
	assert.ErrorIs(t, outside.Validate(), ErrRubricWeightSum)
}

func TestRubricClean(t *testing.T) {
	rubric := Rubric{{Name: "  clarity  ", Weight: 1.0}}

	cleaned := rubric.Clean()
	assert.Equal(t, "clarity", cleaned[0].Name)
	// The original is untouched.
	assert.Equal(t, "  clarity  ", rubric[0].Name)
}

func TestRubricWeightSum(t *testing.T) {
	rubric := Rubric{
		{Name: "a", Weight: 0.25},
		{Name: "b", Weight: 0.5},
	}
	assert.InDelta(t, 0.75, rubric.WeightSum(), 1e-9)
}
