package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/promptarena/prompt-arena/models"
)

var ErrAssignmentNotFound = errors.New("judge assignment not found")

type AssignmentRepository interface {
	// ReplaceForCompetition deletes all assignment records for the
	// competition and writes the new set inside one transaction, so
	// re-running distribution replaces rather than appends.
	ReplaceForCompetition(ctx context.Context, exec SQLExecutor, competitionID int, assignments map[int]*models.JudgeAssignment) error

	GetByJudge(ctx context.Context, competitionID, judgeID int) (*models.JudgeAssignment, error)
	ListByCompetition(ctx context.Context, competitionID int) ([]models.JudgeAssignment, error)
	IncrementReviewed(ctx context.Context, competitionID, judgeID int) error
}

type postgresAssignmentRepository struct {
	db *sql.DB
}

func NewPostgresAssignmentRepository(db *sql.DB) AssignmentRepository {
	return &postgresAssignmentRepository{db: db}
}

func (r *postgresAssignmentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresAssignmentRepository) ReplaceForCompetition(ctx context.Context, exec SQLExecutor, competitionID int, assignments map[int]*models.JudgeAssignment) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM judge_assignments WHERE competition_id = $1`, competitionID); err != nil {
		return fmt.Errorf("failed to clear previous assignments: %w", err)
	}

	query := `
		INSERT INTO judge_assignments (
			competition_id, judge_id, total_assigned, submission_ids, per_challenge, reviewed_count
		) VALUES ($1, $2, $3, $4, $5, 0)
		RETURNING id, created_at`

	for _, a := range assignments {
		err := executor.QueryRowContext(ctx, query,
			competitionID, a.JudgeID, a.TotalAssigned, pq.Array(a.SubmissionIDs), asJSON(a.PerChallenge),
		).Scan(&a.ID, &a.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert assignment for judge %d: %w", a.JudgeID, err)
		}
	}
	return nil
}

const assignmentColumns = `id, competition_id, judge_id, total_assigned, submission_ids, per_challenge, reviewed_count, created_at`

func (r *postgresAssignmentRepository) GetByJudge(ctx context.Context, competitionID, judgeID int) (*models.JudgeAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM judge_assignments WHERE competition_id = $1 AND judge_id = $2`

	a := &models.JudgeAssignment{}
	var ids pq.Int64Array
	var perChallengeRaw []byte
	err := r.db.QueryRowContext(ctx, query, competitionID, judgeID).Scan(
		&a.ID, &a.CompetitionID, &a.JudgeID, &a.TotalAssigned, &ids, &perChallengeRaw, &a.ReviewedCount, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if err := r.decode(a, ids, perChallengeRaw); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *postgresAssignmentRepository) ListByCompetition(ctx context.Context, competitionID int) ([]models.JudgeAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM judge_assignments WHERE competition_id = $1 ORDER BY judge_id ASC`

	rows, err := r.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]models.JudgeAssignment, 0)
	for rows.Next() {
		var a models.JudgeAssignment
		var ids pq.Int64Array
		var perChallengeRaw []byte
		if scanErr := rows.Scan(
			&a.ID, &a.CompetitionID, &a.JudgeID, &a.TotalAssigned, &ids, &perChallengeRaw, &a.ReviewedCount, &a.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		if err := r.decode(&a, ids, perChallengeRaw); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *postgresAssignmentRepository) IncrementReviewed(ctx context.Context, competitionID, judgeID int) error {
	query := `UPDATE judge_assignments SET reviewed_count = reviewed_count + 1 WHERE competition_id = $1 AND judge_id = $2`
	result, err := r.db.ExecContext(ctx, query, competitionID, judgeID)
	if err != nil {
		return fmt.Errorf("failed to increment reviewed count: %w", err)
	}
	return checkAffectedRows(result, ErrAssignmentNotFound)
}

// decode unpacks the submission id array and the per-challenge JSONB map
// (keys arrive as strings and are parsed back to challenge ids).
func (r *postgresAssignmentRepository) decode(a *models.JudgeAssignment, ids pq.Int64Array, perChallengeRaw []byte) error {
	a.SubmissionIDs = make([]int, len(ids))
	for i, id := range ids {
		a.SubmissionIDs[i] = int(id)
	}

	byKey := make(map[string]int)
	if err := scanJSON(perChallengeRaw, &byKey); err != nil {
		return err
	}
	a.PerChallenge = make(map[int]int, len(byKey))
	for key, count := range byKey {
		var challengeID int
		if _, err := fmt.Sscanf(key, "%d", &challengeID); err != nil {
			return fmt.Errorf("malformed challenge id key %q in assignment %d: %w", key, a.ID, err)
		}
		a.PerChallenge[challengeID] = count
	}
	return nil
}
