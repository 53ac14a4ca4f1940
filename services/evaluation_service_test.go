package services

import (
	"context"
	"testing"

	"github.com/promptarena/prompt-arena/llm"
	"github.com/promptarena/prompt-arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScorer struct {
	name   string
	scores map[string]float64
	err    error
}

func (s *stubScorer) ModelName() string { return s.name }

func (s *stubScorer) ScorePrompt(ctx context.Context, challenge *models.Challenge, promptText string) (map[string]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.scores, nil
}

func TestEvaluateSubmission_StoresWeightedTotalAndFinal(t *testing.T) {
	subRepo := newFakeSubmissionRepo(
		&models.Submission{ID: 7, CompetitionID: 1, ChallengeID: 2, ParticipantID: 11,
			PromptText: "do the thing", Status: models.SubmissionPending},
	)
	chalRepo := newFakeChallengeRepo(
		&models.Challenge{ID: 2, CompetitionID: 1, Title: "summarize", Rubric: reviewRubric()},
	)
	scorer := &stubScorer{name: "gpt-4o-mini", scores: map[string]float64{"clarity": 80, "creativity": 90}}

	svc := NewEvaluationService(subRepo, chalRepo, []llm.Scorer{scorer}, discardLogger())

	submission, err := svc.EvaluateSubmission(context.Background(), 7)
	require.NoError(t, err)

	// 0.5*80 + 0.5*90 against the two-criterion rubric.
	assert.Equal(t, 85.0, submission.ModelScores["gpt-4o-mini"])
	assert.Equal(t, models.SubmissionScored, submission.Status)

	require.NotNil(t, submission.FinalScore)
	assert.Equal(t, 85.0, *submission.FinalScore)
	assert.Equal(t, 85.0, subRepo.finalScores[7])
}

func TestEvaluateSubmission_NoScorersConfigured(t *testing.T) {
	svc := NewEvaluationService(newFakeSubmissionRepo(), newFakeChallengeRepo(), nil, discardLogger())

	_, err := svc.EvaluateSubmission(context.Background(), 7)
	assert.ErrorIs(t, err, ErrScorerNotConfigured)
}
