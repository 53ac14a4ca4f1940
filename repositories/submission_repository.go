package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/promptarena/prompt-arena/models"
)

var (
	ErrSubmissionNotFound         = errors.New("submission not found")
	ErrSubmissionInvalidChallenge = errors.New("invalid challenge reference")
)

type SubmissionRepository interface {
	// Upsert inserts or overwrites the submission for its
	// (participant, challenge) pair. On overwrite the prompt text is
	// replaced, the status resets to pending and previous model scores
	// are cleared; judge scores from earlier runs are cleared as well
	// since they scored a different prompt.
	Upsert(ctx context.Context, exec SQLExecutor, submission *models.Submission) error

	GetByID(ctx context.Context, id int) (*models.Submission, error)
	GetByParticipantChallenge(ctx context.Context, participantID, challengeID int) (*models.Submission, error)
	ListByCompetition(ctx context.Context, competitionID int) ([]models.Submission, error)
	ListByParticipant(ctx context.Context, competitionID, participantID int) ([]models.Submission, error)
	ListIDsByChallenge(ctx context.Context, competitionID int) (map[int][]int, error)
	UpdateStatus(ctx context.Context, id int, status models.SubmissionStatus) error
	SetModelScore(ctx context.Context, id int, modelName string, score float64, status models.SubmissionStatus) error
	SetJudgeReview(ctx context.Context, id int, judgeID int, review models.JudgeReview, status models.SubmissionStatus) error
	UpdateFinalScore(ctx context.Context, exec SQLExecutor, id int, finalScore float64) error
}

type postgresSubmissionRepository struct {
	db *sql.DB
}

func NewPostgresSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &postgresSubmissionRepository{db: db}
}

func (r *postgresSubmissionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const submissionColumns = `id, competition_id, challenge_id, participant_id, prompt_text, status, model_scores, judge_scores, final_score, submitted_at, updated_at`

func (r *postgresSubmissionRepository) Upsert(ctx context.Context, exec SQLExecutor, s *models.Submission) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO submissions (
			competition_id, challenge_id, participant_id, prompt_text, status, model_scores, judge_scores
		) VALUES ($1, $2, $3, $4, $5, '{}'::jsonb, '{}'::jsonb)
		ON CONFLICT (participant_id, challenge_id) DO UPDATE SET
			prompt_text  = EXCLUDED.prompt_text,
			status       = EXCLUDED.status,
			model_scores = '{}'::jsonb,
			judge_scores = '{}'::jsonb,
			final_score  = NULL,
			updated_at   = now()
		RETURNING id, submitted_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		s.CompetitionID, s.ChallengeID, s.ParticipantID, s.PromptText, s.Status,
	).Scan(&s.ID, &s.SubmittedAt, &s.UpdatedAt)

	return r.handleSubmissionError(err)
}

func (r *postgresSubmissionRepository) GetByID(ctx context.Context, id int) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresSubmissionRepository) GetByParticipantChallenge(ctx context.Context, participantID, challengeID int) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE participant_id = $1 AND challenge_id = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, participantID, challengeID))
}

func (r *postgresSubmissionRepository) scanOne(row *sql.Row) (*models.Submission, error) {
	s := &models.Submission{}
	var modelRaw, judgeRaw []byte
	err := row.Scan(
		&s.ID, &s.CompetitionID, &s.ChallengeID, &s.ParticipantID, &s.PromptText, &s.Status,
		&modelRaw, &judgeRaw, &s.FinalScore, &s.SubmittedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	if err := r.decodeScores(s, modelRaw, judgeRaw); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresSubmissionRepository) ListByCompetition(ctx context.Context, competitionID int) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE competition_id = $1 ORDER BY id ASC`
	return r.list(ctx, query, competitionID)
}

func (r *postgresSubmissionRepository) ListByParticipant(ctx context.Context, competitionID, participantID int) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE competition_id = $1 AND participant_id = $2 ORDER BY id ASC`
	return r.list(ctx, query, competitionID, participantID)
}

func (r *postgresSubmissionRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := make([]models.Submission, 0)
	for rows.Next() {
		var s models.Submission
		var modelRaw, judgeRaw []byte
		if scanErr := rows.Scan(
			&s.ID, &s.CompetitionID, &s.ChallengeID, &s.ParticipantID, &s.PromptText, &s.Status,
			&modelRaw, &judgeRaw, &s.FinalScore, &s.SubmittedAt, &s.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		if err := r.decodeScores(&s, modelRaw, judgeRaw); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return submissions, nil
}

// ListIDsByChallenge groups submission ids by challenge for one competition,
// the shape the distributor consumes.
func (r *postgresSubmissionRepository) ListIDsByChallenge(ctx context.Context, competitionID int) (map[int][]int, error) {
	query := `
		SELECT id, challenge_id FROM submissions
		WHERE competition_id = $1
		ORDER BY challenge_id ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byChallenge := make(map[int][]int)
	for rows.Next() {
		var id, challengeID int
		if scanErr := rows.Scan(&id, &challengeID); scanErr != nil {
			return nil, scanErr
		}
		byChallenge[challengeID] = append(byChallenge[challengeID], id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return byChallenge, nil
}

func (r *postgresSubmissionRepository) UpdateStatus(ctx context.Context, id int, status models.SubmissionStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE submissions SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update submission status: %w", err)
	}
	return checkAffectedRows(result, ErrSubmissionNotFound)
}

// SetModelScore writes one model's score under its key. jsonb_set keeps the
// update atomic per document; concurrent scorers for different models do
// not clobber each other.
func (r *postgresSubmissionRepository) SetModelScore(ctx context.Context, id int, modelName string, score float64, status models.SubmissionStatus) error {
	query := `
		UPDATE submissions SET
			model_scores = jsonb_set(coalesce(model_scores, '{}'::jsonb), ARRAY[$1], to_jsonb($2::numeric)),
			status       = $3,
			updated_at   = now()
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, modelName, score, status, id)
	if err != nil {
		return fmt.Errorf("failed to set model score: %w", err)
	}
	return checkAffectedRows(result, ErrSubmissionNotFound)
}

// SetJudgeReview replaces the judge's entry wholesale (last-write-wins per
// judge id, per the review contract).
func (r *postgresSubmissionRepository) SetJudgeReview(ctx context.Context, id int, judgeID int, review models.JudgeReview, status models.SubmissionStatus) error {
	reviewJSON, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("failed to marshal judge review: %w", err)
	}

	query := `
		UPDATE submissions SET
			judge_scores = jsonb_set(coalesce(judge_scores, '{}'::jsonb), ARRAY[$1], $2::jsonb),
			status       = $3,
			updated_at   = now()
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, fmt.Sprintf("%d", judgeID), reviewJSON, status, id)
	if err != nil {
		return fmt.Errorf("failed to set judge review: %w", err)
	}
	return checkAffectedRows(result, ErrSubmissionNotFound)
}

func (r *postgresSubmissionRepository) UpdateFinalScore(ctx context.Context, exec SQLExecutor, id int, finalScore float64) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE submissions SET final_score = $1, updated_at = now() WHERE id = $2`, finalScore, id)
	if err != nil {
		return fmt.Errorf("failed to update submission final score: %w", err)
	}
	return checkAffectedRows(result, ErrSubmissionNotFound)
}

// decodeScores unpacks the two JSONB documents. Judge ids arrive as JSON
// object keys (strings) and are parsed back to ints at this boundary.
func (r *postgresSubmissionRepository) decodeScores(s *models.Submission, modelRaw, judgeRaw []byte) error {
	s.ModelScores = make(map[string]float64)
	if err := scanJSON(modelRaw, &s.ModelScores); err != nil {
		return err
	}

	byKey := make(map[string]models.JudgeReview)
	if err := scanJSON(judgeRaw, &byKey); err != nil {
		return err
	}
	s.JudgeScores = make(map[int]models.JudgeReview, len(byKey))
	for key, review := range byKey {
		var judgeID int
		if _, err := fmt.Sscanf(key, "%d", &judgeID); err != nil {
			return fmt.Errorf("malformed judge id key %q in submission %d: %w", key, s.ID, err)
		}
		s.JudgeScores[judgeID] = review
	}
	return nil
}

func (r *postgresSubmissionRepository) handleSubmissionError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "submissions_challenge_id_fkey":
				return ErrSubmissionInvalidChallenge
			case "submissions_competition_id_fkey":
				return ErrCompetitionNotFound
			}
		}
	}
	return err
}
