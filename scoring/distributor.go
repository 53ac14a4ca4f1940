package scoring

import (
	"sort"
	"time"

	"github.com/promptarena/prompt-arena/models"
)

// Distribute partitions submissions across judges, one assignment record
// per judge.
//
// Challenges are processed in ascending id order; within a challenge,
// submissions go round-robin over the judges ordered least-loaded-first
// (ties broken by ascending judge id), which keeps per-judge totals
// balanced across challenges of different sizes. maxPerChallenge bounds
// how many submissions from a single challenge one judge can receive;
// zero or negative means unbounded.
//
// The function is deterministic: identical inputs produce identical
// records, so re-running a distribution replaces the previous one with
// the same content. With no judges it does not fail — every challenge is
// reported in UnassignedChallenges for the admin to act on.
func Distribute(competitionID int, judges []int, submissionsByChallenge map[int][]int, maxPerChallenge int) models.DistributionResult {
	result := models.DistributionResult{
		CompetitionID: competitionID,
		Assignments:   make(map[int]*models.JudgeAssignment, len(judges)),
	}

	challengeIDs := make([]int, 0, len(submissionsByChallenge))
	for id := range submissionsByChallenge {
		challengeIDs = append(challengeIDs, id)
		result.TotalSubmissions += len(submissionsByChallenge[id])
	}
	sort.Ints(challengeIDs)

	if len(judges) == 0 {
		result.UnassignedChallenges = challengeIDs
		if len(result.UnassignedChallenges) == 0 {
			result.UnassignedChallenges = nil
		}
		return result
	}

	now := time.Now().UTC()
	for _, judgeID := range judges {
		result.Assignments[judgeID] = &models.JudgeAssignment{
			CompetitionID: competitionID,
			JudgeID:       judgeID,
			SubmissionIDs: []int{},
			PerChallenge:  make(map[int]int),
			CreatedAt:     now,
		}
	}

	for _, challengeID := range challengeIDs {
		submissions := submissionsByChallenge[challengeID]
		if len(submissions) == 0 {
			continue
		}

		order := judgesByLoad(judges, result.Assignments)
		next := 0
		placedCount := 0

		for _, submissionID := range submissions {
			placed := false
			// Walk at most one full cycle looking for a judge with capacity.
			for tries := 0; tries < len(order); tries++ {
				candidate := result.Assignments[order[next]]
				next = (next + 1) % len(order)
				if maxPerChallenge > 0 && candidate.PerChallenge[challengeID] >= maxPerChallenge {
					continue
				}
				candidate.SubmissionIDs = append(candidate.SubmissionIDs, submissionID)
				candidate.PerChallenge[challengeID]++
				candidate.TotalAssigned++
				placed = true
				break
			}
			if !placed {
				// Every judge is at the per-challenge cap; the rest of this
				// challenge cannot be placed either.
				break
			}
			placedCount++
		}

		// Challenges that could not be (fully) placed are surfaced to the
		// admin rather than dropped.
		if placedCount < len(submissions) {
			result.UnassignedChallenges = append(result.UnassignedChallenges, challengeID)
		}
	}

	return result
}

// judgesByLoad returns judge ids ordered by current total assignment count
// ascending, ties by judge id ascending.
func judgesByLoad(judges []int, assignments map[int]*models.JudgeAssignment) []int {
	order := make([]int, len(judges))
	copy(order, judges)
	sort.Slice(order, func(i, j int) bool {
		li := assignments[order[i]].TotalAssigned
		lj := assignments[order[j]].TotalAssigned
		if li != lj {
			return li < lj
		}
		return order[i] < order[j]
	})
	return order
}
