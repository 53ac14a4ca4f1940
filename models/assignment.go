package models

import "time"

// JudgeAssignment is the per-(competition, judge) record of what the judge
// may review. The explicit SubmissionIDs list is authoritative: review
// authorization checks consult it, never a broader submission query.
type JudgeAssignment struct {
	ID            int   `json:"id" db:"id"`
	CompetitionID int   `json:"competition_id" db:"competition_id"`
	JudgeID       int   `json:"judge_id" db:"judge_id"`
	TotalAssigned int   `json:"total_assigned" db:"total_assigned"`
	SubmissionIDs []int `json:"submission_ids" db:"submission_ids"`

	// PerChallenge maps challenge id to the number of submissions
	// assigned from that challenge.
	PerChallenge map[int]int `json:"per_challenge" db:"per_challenge"`

	ReviewedCount int       `json:"reviewed_count" db:"reviewed_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Contains reports whether the submission id is on this judge's list.
func (a *JudgeAssignment) Contains(submissionID int) bool {
	for _, id := range a.SubmissionIDs {
		if id == submissionID {
			return true
		}
	}
	return false
}

// DistributionResult is what a distribution run reports back to the admin.
// UnassignedChallenges is populated instead of failing when no judges exist.
type DistributionResult struct {
	CompetitionID        int                      `json:"competition_id"`
	Assignments          map[int]*JudgeAssignment `json:"assignments"`
	UnassignedChallenges []int                    `json:"unassigned_challenges,omitempty"`
	TotalSubmissions     int                      `json:"total_submissions"`
}
