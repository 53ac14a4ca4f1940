package scoring

import (
	"sort"

	"github.com/promptarena/prompt-arena/models"
)

// Rank sorts entries by final score descending and assigns 1-based dense
// ranks with no gaps. Equal scores are ordered deterministically: earliest
// submission time first, then ascending participant id. The slice is
// mutated in place and returned.
func Rank(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].FinalScore != entries[j].FinalScore {
			return entries[i].FinalScore > entries[j].FinalScore
		}
		if !entries[i].EarliestSubmission.Equal(entries[j].EarliestSubmission) {
			return entries[i].EarliestSubmission.Before(entries[j].EarliestSubmission)
		}
		return entries[i].ParticipantID < entries[j].ParticipantID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
