package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submissionIDs(from, count int) []int {
	ids := make([]int, count)
	for i := range ids {
		ids[i] = from + i
	}
	return ids
}

func TestDistribute_BalancesLoad(t *testing.T) {
	judges := []int{1, 2, 3, 4, 5}
	byChallenge := map[int][]int{
		10: submissionIDs(100, 23),
	}

	result := Distribute(7, judges, byChallenge, 0)

	require.Len(t, result.Assignments, 5)
	assert.Equal(t, 23, result.TotalSubmissions)
	assert.Empty(t, result.UnassignedChallenges)

	// 23 submissions over 5 judges: loads must be 4 or 5, total 23.
	total := 0
	for _, judgeID := range judges {
		a := result.Assignments[judgeID]
		assert.GreaterOrEqual(t, a.TotalAssigned, 4)
		assert.LessOrEqual(t, a.TotalAssigned, 5)
		assert.Len(t, a.SubmissionIDs, a.TotalAssigned)
		total += a.TotalAssigned
	}
	assert.Equal(t, 23, total)
}

func TestDistribute_Deterministic(t *testing.T) {
	judges := []int{3, 1, 2}
	byChallenge := map[int][]int{
		10: submissionIDs(100, 7),
		20: submissionIDs(200, 4),
		30: submissionIDs(300, 9),
	}

	first := Distribute(7, judges, byChallenge, 0)
	second := Distribute(7, judges, byChallenge, 0)

	require.Equal(t, len(first.Assignments), len(second.Assignments))
	for judgeID, a := range first.Assignments {
		b := second.Assignments[judgeID]
		require.NotNil(t, b)
		assert.Equal(t, a.SubmissionIDs, b.SubmissionIDs)
		assert.Equal(t, a.PerChallenge, b.PerChallenge)
		assert.Equal(t, a.TotalAssigned, b.TotalAssigned)
	}
}

func TestDistribute_NoJudges(t *testing.T) {
	byChallenge := map[int][]int{
		20: submissionIDs(200, 3),
		10: submissionIDs(100, 2),
	}

	result := Distribute(7, nil, byChallenge, 0)

	assert.Empty(t, result.Assignments)
	assert.Equal(t, []int{10, 20}, result.UnassignedChallenges)
	assert.Equal(t, 5, result.TotalSubmissions)
}

func TestDistribute_PerChallengeCap(t *testing.T) {
	judges := []int{1, 2}
	byChallenge := map[int][]int{
		10: submissionIDs(100, 10),
	}

	result := Distribute(7, judges, byChallenge, 3)

	// Cap 3 per judge per challenge: only 6 of 10 can be placed, and the
	// challenge is reported unassigned.
	placed := 0
	for _, a := range result.Assignments {
		assert.LessOrEqual(t, a.PerChallenge[10], 3)
		placed += a.TotalAssigned
	}
	assert.Equal(t, 6, placed)
	assert.Equal(t, []int{10}, result.UnassignedChallenges)
}

func TestDistribute_EverySubmissionPlacedExactlyOnce(t *testing.T) {
	judges := []int{1, 2, 3}
	byChallenge := map[int][]int{
		10: submissionIDs(100, 5),
		20: submissionIDs(200, 8),
	}

	result := Distribute(7, judges, byChallenge, 0)

	seen := make(map[int]int)
	for _, a := range result.Assignments {
		for _, id := range a.SubmissionIDs {
			seen[id]++
		}
	}
	assert.Len(t, seen, 13)
	for id, n := range seen {
		assert.Equal(t, 1, n, "submission %d placed %d times", id, n)
	}
}
