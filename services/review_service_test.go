package services

import (
	"context"
	"testing"

	"github.com/promptarena/prompt-arena/live"
	"github.com/promptarena/prompt-arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewRubric() models.Rubric {
	return models.Rubric{
		{Name: "clarity", Weight: 0.5},
		{Name: "creativity", Weight: 0.5},
	}
}

func newReviewServiceForTest(subRepo *fakeSubmissionRepo, asgRepo *fakeAssignmentRepo, chalRepo *fakeChallengeRepo) ReviewService {
	return NewReviewService(subRepo, chalRepo, asgRepo, live.NewHub(discardLogger()), discardLogger())
}

func reviewFixture() (*fakeSubmissionRepo, *fakeAssignmentRepo, *fakeChallengeRepo) {
	subRepo := newFakeSubmissionRepo(
		&models.Submission{ID: 7, CompetitionID: 1, ChallengeID: 2, ParticipantID: 11,
			ModelScores: map[string]float64{"gpt-4o-mini": 80}, JudgeScores: map[int]models.JudgeReview{}},
		&models.Submission{ID: 8, CompetitionID: 1, ChallengeID: 2, ParticipantID: 12,
			ModelScores: map[string]float64{}, JudgeScores: map[int]models.JudgeReview{}},
	)
	asgRepo := newFakeAssignmentRepo(
		&models.JudgeAssignment{CompetitionID: 1, JudgeID: 3, SubmissionIDs: []int{7}, TotalAssigned: 1},
	)
	chalRepo := newFakeChallengeRepo(
		&models.Challenge{ID: 2, CompetitionID: 1, Title: "summarize", Rubric: reviewRubric()},
	)
	return subRepo, asgRepo, chalRepo
}

func TestGetForReview_AssignedSubmission(t *testing.T) {
	svc := newReviewServiceForTest(reviewFixture())

	submission, err := svc.GetForReview(context.Background(), 3, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, submission.ID)
}

func TestGetForReview_DeniedOutsideAssignment(t *testing.T) {
	svc := newReviewServiceForTest(reviewFixture())

	// Submission 8 exists in the same competition but was distributed
	// to nobody; judge 3 must not be able to read it.
	_, err := svc.GetForReview(context.Background(), 3, 8)
	assert.ErrorIs(t, err, ErrSubmissionNotAssigned)
}

func TestGetForReview_DeniedWithoutAssignmentRecord(t *testing.T) {
	svc := newReviewServiceForTest(reviewFixture())

	_, err := svc.GetForReview(context.Background(), 99, 7)
	assert.ErrorIs(t, err, ErrSubmissionNotAssigned)
}

func TestGetForReview_SubmissionNotFound(t *testing.T) {
	svc := newReviewServiceForTest(reviewFixture())

	_, err := svc.GetForReview(context.Background(), 3, 404)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSubmitReview_DeniedOutsideAssignment(t *testing.T) {
	svc := newReviewServiceForTest(reviewFixture())

	_, err := svc.SubmitReview(context.Background(), 3, 8, ReviewInput{
		Scores: map[string]float64{"clarity": 90, "creativity": 90},
	})
	assert.ErrorIs(t, err, ErrSubmissionNotAssigned)
}

func TestSubmitReview_RecordsReviewAndFinalScore(t *testing.T) {
	subRepo, asgRepo, chalRepo := reviewFixture()
	svc := newReviewServiceForTest(subRepo, asgRepo, chalRepo)

	submission, err := svc.SubmitReview(context.Background(), 3, 7, ReviewInput{
		Scores: map[string]float64{"clarity": 90, "creativity": 90},
	})
	require.NoError(t, err)

	review, ok := submission.JudgeScores[3]
	require.True(t, ok)
	assert.Equal(t, 90.0, review.Total)

	// Derived final: 0.5*80 (best automated) + 0.5*90 (judge mean).
	require.NotNil(t, submission.FinalScore)
	assert.Equal(t, 85.0, *submission.FinalScore)
	assert.Equal(t, 85.0, subRepo.finalScores[7])
	assert.Equal(t, 1, asgRepo.incremented[3])
}

func TestSubmitReview_ReReviewCountsOnce(t *testing.T) {
	subRepo, asgRepo, chalRepo := reviewFixture()
	svc := newReviewServiceForTest(subRepo, asgRepo, chalRepo)

	_, err := svc.SubmitReview(context.Background(), 3, 7, ReviewInput{
		Scores: map[string]float64{"clarity": 90, "creativity": 90},
	})
	require.NoError(t, err)

	submission, err := svc.SubmitReview(context.Background(), 3, 7, ReviewInput{
		Scores: map[string]float64{"clarity": 70, "creativity": 70},
	})
	require.NoError(t, err)

	// Last write wins per judge, the reviewed counter does not move twice.
	assert.Equal(t, 70.0, submission.JudgeScores[3].Total)
	assert.Equal(t, 1, asgRepo.incremented[3])
}

func TestValidateReviewScores(t *testing.T) {
	scores := map[string]float64{"clarity": 85, "creativity": 90}
	assert.NoError(t, validateReviewScores(scores, reviewRubric()))
}

func TestValidateReviewScores_Empty(t *testing.T) {
	err := validateReviewScores(nil, reviewRubric())
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestValidateReviewScores_UnknownCriterion(t *testing.T) {
	scores := map[string]float64{"clarity": 85, "vibes": 90}
	err := validateReviewScores(scores, reviewRubric())
	assert.ErrorIs(t, err, ErrUnknownCriterion)
}

func TestValidateReviewScores_OutOfRange(t *testing.T) {
	err := validateReviewScores(map[string]float64{"clarity": 101}, reviewRubric())
	assert.ErrorIs(t, err, ErrInvalidScore)

	err = validateReviewScores(map[string]float64{"clarity": -1}, reviewRubric())
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestValidateReviewScores_RejectsWholesale(t *testing.T) {
	// One bad score rejects the review, valid scores do not get through.
	scores := map[string]float64{"clarity": 85, "creativity": 200}
	err := validateReviewScores(scores, reviewRubric())
	assert.Error(t, err)
}
