package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/promptarena/prompt-arena/models"
)

var ErrProgressNotFound = errors.New("participant progress not found")

type ParticipantRepository interface {
	// MarkChallengeCompleted appends the challenge to the participant's
	// completed set (idempotent; the set never shrinks) and keeps the
	// counter in sync.
	MarkChallengeCompleted(ctx context.Context, exec SQLExecutor, competitionID, userID, challengeID int) error

	GetProgress(ctx context.Context, competitionID, userID int) (*models.ParticipantProgress, error)
	ListByCompetition(ctx context.Context, competitionID int) ([]models.ParticipantProgress, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipantRepository) MarkChallengeCompleted(ctx context.Context, exec SQLExecutor, competitionID, userID, challengeID int) error {
	executor := r.getExecutor(exec)

	// array_position keeps the append idempotent under the unique
	// (competition_id, user_id) row; the whole statement is a single
	// atomic upsert.
	query := `
		INSERT INTO participant_progress (competition_id, user_id, completed_challenges, completed_count)
		VALUES ($1, $2, ARRAY[$3]::int[], 1)
		ON CONFLICT (competition_id, user_id) DO UPDATE SET
			completed_challenges = CASE
				WHEN array_position(participant_progress.completed_challenges, $3) IS NULL
				THEN array_append(participant_progress.completed_challenges, $3)
				ELSE participant_progress.completed_challenges
			END,
			completed_count = CASE
				WHEN array_position(participant_progress.completed_challenges, $3) IS NULL
				THEN participant_progress.completed_count + 1
				ELSE participant_progress.completed_count
			END,
			updated_at = now()`

	if _, err := executor.ExecContext(ctx, query, competitionID, userID, challengeID); err != nil {
		return fmt.Errorf("failed to mark challenge completed: %w", err)
	}
	return nil
}

const progressColumns = `id, competition_id, user_id, completed_challenges, completed_count, updated_at`

func (r *postgresParticipantRepository) GetProgress(ctx context.Context, competitionID, userID int) (*models.ParticipantProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM participant_progress WHERE competition_id = $1 AND user_id = $2`

	p := &models.ParticipantProgress{}
	var completed pq.Int64Array
	err := r.db.QueryRowContext(ctx, query, competitionID, userID).Scan(
		&p.ID, &p.CompetitionID, &p.UserID, &completed, &p.CompletedCount, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	p.CompletedChallenges = int64sToInts(completed)
	return p, nil
}

func (r *postgresParticipantRepository) ListByCompetition(ctx context.Context, competitionID int) ([]models.ParticipantProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM participant_progress WHERE competition_id = $1 ORDER BY user_id ASC`

	rows, err := r.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	progress := make([]models.ParticipantProgress, 0)
	for rows.Next() {
		var p models.ParticipantProgress
		var completed pq.Int64Array
		if scanErr := rows.Scan(
			&p.ID, &p.CompetitionID, &p.UserID, &completed, &p.CompletedCount, &p.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		p.CompletedChallenges = int64sToInts(completed)
		progress = append(progress, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return progress, nil
}

func int64sToInts(in pq.Int64Array) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
