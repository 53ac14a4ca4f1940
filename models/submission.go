package models

import "time"

// SubmissionStatus соответствует ENUM submission_status в БД.
type SubmissionStatus string

const (
	SubmissionPending      SubmissionStatus = "pending"
	SubmissionScored       SubmissionStatus = "scored"
	SubmissionEvaluated    SubmissionStatus = "evaluated"
	SubmissionManualReview SubmissionStatus = "selected_for_manual_review"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionScored, SubmissionEvaluated, SubmissionManualReview:
		return true
	}
	return false
}

// MaxPromptBytes caps the stored prompt text.
const MaxPromptBytes = 1 << 20 // 1 MB

// JudgeReview is one judge's rubric scoring of a submission.
// Re-submitting replaces the judge's previous entry wholesale
// (last-write-wins per judge, no merge detection).
type JudgeReview struct {
	Scores     map[string]float64 `json:"scores"`
	Notes      string             `json:"notes,omitempty"`
	Total      float64            `json:"total"`
	ReviewedAt time.Time          `json:"reviewed_at"`
}

// Submission is keyed by (participant, challenge): one per pair,
// later submissions overwrite. FinalScore is derived, never authoritative.
type Submission struct {
	ID            int              `json:"id" db:"id"`
	CompetitionID int              `json:"competition_id" db:"competition_id"`
	ChallengeID   int              `json:"challenge_id" db:"challenge_id"`
	ParticipantID int              `json:"participant_id" db:"participant_id"`
	PromptText    string           `json:"prompt_text" db:"prompt_text"`
	Status        SubmissionStatus `json:"status" db:"status"`

	// ModelScores holds one weighted total per automated model, keyed by model name.
	ModelScores map[string]float64 `json:"model_scores" db:"model_scores"`

	// JudgeScores holds one review per judge, keyed by judge id.
	JudgeScores map[int]JudgeReview `json:"judge_scores" db:"judge_scores"`

	FinalScore  *float64  `json:"final_score,omitempty" db:"final_score"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// BestModelScore returns the highest automated score, false if none recorded.
func (s *Submission) BestModelScore() (float64, bool) {
	best := 0.0
	found := false
	for _, v := range s.ModelScores {
		if !found || v > best {
			best = v
			found = true
		}
	}
	return best, found
}

// MeanJudgeScore averages the judge totals, false if the submission is unjudged.
func (s *Submission) MeanJudgeScore() (float64, bool) {
	if len(s.JudgeScores) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, rv := range s.JudgeScores {
		sum += rv.Total
	}
	return sum / float64(len(s.JudgeScores)), true
}
