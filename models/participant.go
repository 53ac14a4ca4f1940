package models

import "time"

// ParticipantProgress tracks a user's progress within one competition.
// CompletedChallenges is an append-only set: overwriting a submission
// for an already-completed challenge must not shrink it.
type ParticipantProgress struct {
	ID                  int       `json:"id" db:"id"`
	CompetitionID       int       `json:"competition_id" db:"competition_id"`
	UserID              int       `json:"user_id" db:"user_id"`
	CompletedChallenges []int     `json:"completed_challenges" db:"completed_challenges"`
	CompletedCount      int       `json:"completed_count" db:"completed_count"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
