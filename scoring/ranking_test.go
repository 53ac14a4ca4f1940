package scoring

import (
	"testing"
	"time"

	"github.com/promptarena/prompt-arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank_OrdersByFinalScoreDescending(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []models.LeaderboardEntry{
		{ParticipantID: 1, FinalScore: 70, EarliestSubmission: base},
		{ParticipantID: 2, FinalScore: 90, EarliestSubmission: base},
		{ParticipantID: 3, FinalScore: 80, EarliestSubmission: base},
	}

	ranked := Rank(entries)

	require.Len(t, ranked, 3)
	assert.Equal(t, 2, ranked[0].ParticipantID)
	assert.Equal(t, 3, ranked[1].ParticipantID)
	assert.Equal(t, 1, ranked[2].ParticipantID)
	for i, e := range ranked {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestRank_TieBrokenByEarliestSubmission(t *testing.T) {
	earlier := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	later := earlier.Add(2 * time.Hour)

	entries := []models.LeaderboardEntry{
		{ParticipantID: 1, FinalScore: 85, EarliestSubmission: later},
		{ParticipantID: 2, FinalScore: 85, EarliestSubmission: earlier},
	}

	ranked := Rank(entries)

	assert.Equal(t, 2, ranked[0].ParticipantID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 1, ranked[1].ParticipantID)
	assert.Equal(t, 2, ranked[1].Rank)
}

func TestRank_TieBrokenByParticipantID(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	entries := []models.LeaderboardEntry{
		{ParticipantID: 9, FinalScore: 85, EarliestSubmission: at},
		{ParticipantID: 4, FinalScore: 85, EarliestSubmission: at},
	}

	ranked := Rank(entries)

	assert.Equal(t, 4, ranked[0].ParticipantID)
	assert.Equal(t, 9, ranked[1].ParticipantID)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}
