package services

import (
	"context"
	"testing"
	"time"

	"github.com/promptarena/prompt-arena/live"
	"github.com/promptarena/prompt-arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEntries_UnjudgedParticipantHasNilJudgeScore(t *testing.T) {
	s := &leaderboardService{}
	competition := &models.Competition{ID: 1}
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	entries := s.buildEntries(competition, []models.Submission{
		{ID: 1, CompetitionID: 1, ParticipantID: 10, SubmittedAt: base,
			ModelScores: map[string]float64{"gpt-4o-mini": 80}},
		{ID: 2, CompetitionID: 1, ParticipantID: 20, SubmittedAt: base.Add(time.Minute),
			ModelScores: map[string]float64{"gpt-4o-mini": 70},
			JudgeScores: map[int]models.JudgeReview{3: {Total: 90}}},
	})
	require.Len(t, entries, 2)

	byParticipant := make(map[int]models.LeaderboardEntry)
	for _, e := range entries {
		byParticipant[e.ParticipantID] = e
	}

	// Automated-only participant: judge score stays nil, never zero.
	unjudged := byParticipant[10]
	assert.Nil(t, unjudged.JudgeScore)
	assert.Equal(t, 80.0, unjudged.AutoScore)
	assert.Equal(t, 80.0, unjudged.FinalScore)
	assert.Equal(t, 1, unjudged.Rank)

	judged := byParticipant[20]
	require.NotNil(t, judged.JudgeScore)
	assert.Equal(t, 90.0, *judged.JudgeScore)
	// Judging is not complete, the final stays automated-only.
	assert.Equal(t, 70.0, judged.FinalScore)
	assert.Equal(t, 2, judged.Rank)
}

func TestBuildEntries_SkipsEntirelyUnscoredSubmissions(t *testing.T) {
	s := &leaderboardService{}

	entries := s.buildEntries(&models.Competition{ID: 1}, []models.Submission{
		{ID: 1, CompetitionID: 1, ParticipantID: 10},
	})
	assert.Empty(t, entries)
}

func TestBuildEntries_BlendsAfterJudgingComplete(t *testing.T) {
	s := &leaderboardService{}
	competition := &models.Competition{ID: 1, JudgingComplete: true}
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	entries := s.buildEntries(competition, []models.Submission{
		{ID: 1, CompetitionID: 1, ParticipantID: 10, SubmittedAt: base,
			ModelScores: map[string]float64{"gpt-4o-mini": 80}},
		{ID: 2, CompetitionID: 1, ParticipantID: 20, SubmittedAt: base.Add(time.Minute),
			ModelScores: map[string]float64{"gpt-4o-mini": 70},
			JudgeScores: map[int]models.JudgeReview{3: {Total: 90}}},
	})
	require.Len(t, entries, 2)

	// 0.5*70 + 0.5*90 ties the judged participant with the unjudged one
	// at 80; the earlier submitter keeps rank 1.
	assert.Equal(t, 10, entries[0].ParticipantID)
	assert.Equal(t, 80.0, entries[0].FinalScore)
	assert.Nil(t, entries[0].JudgeScore)

	assert.Equal(t, 20, entries[1].ParticipantID)
	assert.Equal(t, 80.0, entries[1].FinalScore)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestGetEntryForParticipant_NotBuilt(t *testing.T) {
	svc := NewLeaderboardService(nil, newFakeLeaderboardRepo(), nil, nil, live.NewHub(discardLogger()), discardLogger())

	_, err := svc.GetEntryForParticipant(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrLeaderboardNotBuilt)
}

func TestGetEntryForParticipant_ReturnsRow(t *testing.T) {
	svc := NewLeaderboardService(nil, newFakeLeaderboardRepo(
		&models.LeaderboardEntry{CompetitionID: 1, ParticipantID: 10, Rank: 1, AutoScore: 80, FinalScore: 80},
	), nil, nil, live.NewHub(discardLogger()), discardLogger())

	entry, err := svc.GetEntryForParticipant(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Rank)
}

func TestBlendFinals_AppliesToJudgedTopN(t *testing.T) {
	judged := 90.0
	s := &leaderboardService{}

	entries := []models.LeaderboardEntry{
		{ParticipantID: 1, Rank: 1, AutoScore: 80, FinalScore: 80, JudgeScore: &judged},
		{ParticipantID: 2, Rank: 2, AutoScore: 75, FinalScore: 75},
		{ParticipantID: 3, Rank: 3, AutoScore: 70, FinalScore: 70, JudgeScore: &judged},
	}

	s.blendFinals(entries, 2)

	// Inside the cutoff with a judge score: 0.5*80 + 0.5*90 = 85.
	assert.Equal(t, 85.0, entries[0].FinalScore)
	// Inside the cutoff but unjudged: keeps the automated final.
	assert.Equal(t, 75.0, entries[1].FinalScore)
	// Outside the cutoff: untouched even though judged.
	assert.Equal(t, 70.0, entries[2].FinalScore)
}

func TestBlendFinals_ZeroCutoffMeansEveryone(t *testing.T) {
	judged := 100.0
	s := &leaderboardService{}

	entries := []models.LeaderboardEntry{
		{ParticipantID: 1, AutoScore: 50, FinalScore: 50, JudgeScore: &judged},
		{ParticipantID: 2, AutoScore: 40, FinalScore: 40, JudgeScore: &judged},
	}

	s.blendFinals(entries, 0)

	assert.Equal(t, 75.0, entries[0].FinalScore)
	assert.Equal(t, 70.0, entries[1].FinalScore)
}

func TestBlendFinals_CutoffLargerThanEntries(t *testing.T) {
	judged := 60.0
	s := &leaderboardService{}

	entries := []models.LeaderboardEntry{
		{ParticipantID: 1, AutoScore: 80, FinalScore: 80, JudgeScore: &judged},
	}

	s.blendFinals(entries, 10)
	assert.Equal(t, 70.0, entries[0].FinalScore)
}

func TestBlendFinals_AutoScorePreserved(t *testing.T) {
	judged := 90.0
	s := &leaderboardService{}

	entries := []models.LeaderboardEntry{
		{ParticipantID: 1, AutoScore: 80, FinalScore: 80, JudgeScore: &judged},
	}

	s.blendFinals(entries, 1)

	// Blending rewrites the final, never the recorded auto score.
	assert.Equal(t, 80.0, entries[0].AutoScore)
	assert.Equal(t, 85.0, entries[0].FinalScore)
}
