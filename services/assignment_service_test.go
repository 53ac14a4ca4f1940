package services

import (
	"context"
	"testing"

	"github.com/promptarena/prompt-arena/live"
	"github.com/promptarena/prompt-arena/models"
	"github.com/promptarena/prompt-arena/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistribute_NoJudgesClearsPreviousAssignments(t *testing.T) {
	// A previous run left judge 3 with an assignment; the judge has
	// since lost the role. Re-running must wipe the stale record, not
	// keep serving it.
	asgRepo := newFakeAssignmentRepo(
		&models.JudgeAssignment{CompetitionID: 1, JudgeID: 3, SubmissionIDs: []int{7}, TotalAssigned: 1},
	)
	subRepo := newFakeSubmissionRepo(
		&models.Submission{ID: 7, CompetitionID: 1, ChallengeID: 2, ParticipantID: 11},
	)
	compRepo := newFakeCompetitionRepo(&models.Competition{ID: 1, Title: "arena", Active: true})
	userRepo := newFakeUserRepo(&models.User{ID: 11, Role: models.RoleParticipant})

	svc := NewAssignmentService(nil, asgRepo, subRepo, compRepo, userRepo, nil, live.NewHub(discardLogger()), 0, discardLogger())

	result, err := svc.Distribute(context.Background(), 1)
	require.NoError(t, err)

	assert.Empty(t, result.Assignments)
	assert.Equal(t, []int{2}, result.UnassignedChallenges)

	assert.Equal(t, 1, asgRepo.replaceCalls)
	_, err = asgRepo.GetByJudge(context.Background(), 1, 3)
	assert.ErrorIs(t, err, repositories.ErrAssignmentNotFound)
}

func TestDistribute_CompetitionNotFound(t *testing.T) {
	svc := NewAssignmentService(nil, newFakeAssignmentRepo(), newFakeSubmissionRepo(),
		newFakeCompetitionRepo(), newFakeUserRepo(), nil, live.NewHub(discardLogger()), 0, discardLogger())

	_, err := svc.Distribute(context.Background(), 42)
	assert.ErrorIs(t, err, ErrCompetitionNotFound)
}
