package models

import "time"

// LeaderboardEntry is a materialized per-(competition, participant) row.
// JudgeScore stays nil until at least one judge review exists, so an
// unjudged entry is never shown as scoring zero.
type LeaderboardEntry struct {
	CompetitionID int     `json:"competition_id" db:"competition_id"`
	ParticipantID int     `json:"participant_id" db:"participant_id"`
	Rank          int     `json:"rank" db:"rank"`
	AutoScore     float64 `json:"auto_score" db:"auto_score"`

	JudgeScore *float64 `json:"judge_score" db:"judge_score"`
	FinalScore float64  `json:"final_score" db:"final_score"`

	// EarliestSubmission is the tie-break key: earlier submitters rank
	// higher on equal final scores, then ascending participant id.
	EarliestSubmission time.Time `json:"earliest_submission" db:"earliest_submission"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// LeaderboardPage is a cursor page of entries. NextCursor is the last rank
// seen; passing it back resumes after that rank, so pages stay stable when
// rows are appended mid-read.
type LeaderboardPage struct {
	Entries    []LeaderboardEntry `json:"entries"`
	NextCursor int                `json:"next_cursor,omitempty"`
	HasMore    bool               `json:"has_more"`
}
