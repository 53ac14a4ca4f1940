package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBestModelScore(t *testing.T) {
	s := &Submission{ModelScores: map[string]float64{
		"gpt-4o-mini": 72.5,
		"gpt-4o":      81.0,
	}}

	best, ok := s.BestModelScore()
	assert.True(t, ok)
	assert.Equal(t, 81.0, best)
}

func TestBestModelScore_NoneRecorded(t *testing.T) {
	s := &Submission{}
	_, ok := s.BestModelScore()
	assert.False(t, ok)
}

func TestMeanJudgeScore(t *testing.T) {
	s := &Submission{JudgeScores: map[int]JudgeReview{
		1: {Total: 80},
		2: {Total: 60},
	}}

	mean, ok := s.MeanJudgeScore()
	assert.True(t, ok)
	assert.Equal(t, 70.0, mean)
}

func TestMeanJudgeScore_Unjudged(t *testing.T) {
	s := &Submission{}
	_, ok := s.MeanJudgeScore()
	assert.False(t, ok)
}

func TestSubmissionStatusValid(t *testing.T) {
	assert.True(t, SubmissionPending.Valid())
	assert.True(t, SubmissionManualReview.Valid())
	assert.False(t, SubmissionStatus("archived").Valid())
}
