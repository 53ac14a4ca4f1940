package services

import (
	"testing"

	"github.com/promptarena/prompt-arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedFinalScore_BlendsOnceJudged(t *testing.T) {
	s := &models.Submission{
		ModelScores: map[string]float64{"gpt-4o-mini": 80, "claude": 75},
		JudgeScores: map[int]models.JudgeReview{3: {Total: 90}},
	}

	final, ok := derivedFinalScore(s)
	require.True(t, ok)
	// Best automated total blended with the judge mean: 0.5*80 + 0.5*90.
	assert.Equal(t, 85.0, final)
}

func TestDerivedFinalScore_AutomatedOnly(t *testing.T) {
	s := &models.Submission{ModelScores: map[string]float64{"gpt-4o-mini": 72.345}}

	final, ok := derivedFinalScore(s)
	require.True(t, ok)
	assert.Equal(t, 72.35, final)
}

func TestDerivedFinalScore_JudgeOnly(t *testing.T) {
	s := &models.Submission{
		JudgeScores: map[int]models.JudgeReview{3: {Total: 60}, 4: {Total: 70}},
	}

	final, ok := derivedFinalScore(s)
	require.True(t, ok)
	assert.Equal(t, 65.0, final)
}

func TestDerivedFinalScore_Unscored(t *testing.T) {
	_, ok := derivedFinalScore(&models.Submission{})
	assert.False(t, ok)
}
