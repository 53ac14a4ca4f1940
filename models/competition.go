package models

import "time"

// Competition владеет челленджами и сабмишенами (parent/child by construction).
type Competition struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	Active      bool      `json:"active" db:"active"`
	Locked      bool      `json:"locked" db:"locked"`
	Deadline    time.Time `json:"deadline" db:"deadline"`

	// TopNCutoff limits how many leaderboard entries get detailed judging.
	TopNCutoff int `json:"top_n_cutoff" db:"top_n_cutoff"`

	// MaxScore is the aggregate maximum across all challenges,
	// recomputed by CompetitionService.RecomputeMaxScore.
	MaxScore float64 `json:"max_score" db:"max_score"`

	// JudgingComplete switches the leaderboard from automated-only
	// to the blended final score.
	JudgingComplete bool      `json:"judging_complete" db:"judging_complete"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`

	Challenges []Challenge `json:"challenges,omitempty" db:"-"`
}
