package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/promptarena/prompt-arena/models"
)

var (
	ErrCompetitionNotFound      = errors.New("competition not found")
	ErrCompetitionTitleConflict = errors.New("competition title already exists")
)

type ListCompetitionsFilter struct {
	Active *bool
	Limit  int
	Offset int
}

type CompetitionRepository interface {
	Create(ctx context.Context, competition *models.Competition) error
	GetByID(ctx context.Context, id int) (*models.Competition, error)
	List(ctx context.Context, filter ListCompetitionsFilter) ([]models.Competition, error)
	Update(ctx context.Context, competition *models.Competition) error
	SetLocked(ctx context.Context, id int, locked bool) error
	SetJudgingComplete(ctx context.Context, id int, complete bool) error
	UpdateMaxScore(ctx context.Context, exec SQLExecutor, id int, maxScore float64) error
}

type postgresCompetitionRepository struct {
	db *sql.DB
}

func NewPostgresCompetitionRepository(db *sql.DB) CompetitionRepository {
	return &postgresCompetitionRepository{db: db}
}

func (r *postgresCompetitionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const competitionColumns = `id, title, description, active, locked, deadline, top_n_cutoff, max_score, judging_complete, created_at`

func (r *postgresCompetitionRepository) Create(ctx context.Context, c *models.Competition) error {
	query := `
		INSERT INTO competitions (title, description, active, locked, deadline, top_n_cutoff)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, max_score, judging_complete, created_at`

	err := r.db.QueryRowContext(ctx, query,
		c.Title, c.Description, c.Active, c.Locked, c.Deadline, c.TopNCutoff,
	).Scan(&c.ID, &c.MaxScore, &c.JudgingComplete, &c.CreatedAt)

	return r.handleCompetitionError(err)
}

func (r *postgresCompetitionRepository) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	query := `SELECT ` + competitionColumns + ` FROM competitions WHERE id = $1`

	c := &models.Competition{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.Description, &c.Active, &c.Locked, &c.Deadline,
		&c.TopNCutoff, &c.MaxScore, &c.JudgingComplete, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresCompetitionRepository) List(ctx context.Context, filter ListCompetitionsFilter) ([]models.Competition, error) {
	query := `SELECT ` + competitionColumns + ` FROM competitions WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Active != nil {
		query += fmt.Sprintf(" AND active = $%d", argID)
		args = append(args, *filter.Active)
		argID++
	}

	query += " ORDER BY deadline DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competitions := make([]models.Competition, 0)
	for rows.Next() {
		var c models.Competition
		if scanErr := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.Active, &c.Locked, &c.Deadline,
			&c.TopNCutoff, &c.MaxScore, &c.JudgingComplete, &c.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		competitions = append(competitions, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return competitions, nil
}

func (r *postgresCompetitionRepository) Update(ctx context.Context, c *models.Competition) error {
	query := `
		UPDATE competitions SET
			title = $1,
			description = $2,
			active = $3,
			deadline = $4,
			top_n_cutoff = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		c.Title, c.Description, c.Active, c.Deadline, c.TopNCutoff, c.ID,
	)
	if err != nil {
		return r.handleCompetitionError(err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) SetLocked(ctx context.Context, id int, locked bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE competitions SET locked = $1 WHERE id = $2`, locked, id)
	if err != nil {
		return fmt.Errorf("failed to update competition lock: %w", err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) SetJudgingComplete(ctx context.Context, id int, complete bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE competitions SET judging_complete = $1 WHERE id = $2`, complete, id)
	if err != nil {
		return fmt.Errorf("failed to update judging_complete: %w", err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) UpdateMaxScore(ctx context.Context, exec SQLExecutor, id int, maxScore float64) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE competitions SET max_score = $1 WHERE id = $2`, maxScore, id)
	if err != nil {
		return fmt.Errorf("failed to update competition max score: %w", err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) handleCompetitionError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "competitions_title_key" {
			return ErrCompetitionTitleConflict
		}
	}
	return err
}
