package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/promptarena/prompt-arena/models"
)

var (
	ErrChallengeNotFound           = errors.New("challenge not found")
	ErrChallengeInvalidCompetition = errors.New("invalid competition reference")
)

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *models.Challenge) error
	GetByID(ctx context.Context, id int) (*models.Challenge, error)
	ListByCompetition(ctx context.Context, competitionID int) ([]models.Challenge, error)
	Update(ctx context.Context, challenge *models.Challenge) error
	Delete(ctx context.Context, id int) error
}

type postgresChallengeRepository struct {
	db *sql.DB
}

func NewPostgresChallengeRepository(db *sql.DB) ChallengeRepository {
	return &postgresChallengeRepository{db: db}
}

func (r *postgresChallengeRepository) Create(ctx context.Context, c *models.Challenge) error {
	query := `
		INSERT INTO challenges (competition_id, title, description, rubric, max_score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		c.CompetitionID, c.Title, c.Description, asJSON(c.Rubric), c.MaxScore,
	).Scan(&c.ID, &c.CreatedAt)

	return r.handleChallengeError(err)
}

func (r *postgresChallengeRepository) GetByID(ctx context.Context, id int) (*models.Challenge, error) {
	query := `
		SELECT id, competition_id, title, description, rubric, max_score, created_at
		FROM challenges WHERE id = $1`

	c := &models.Challenge{}
	var rubricRaw []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.CompetitionID, &c.Title, &c.Description, &rubricRaw, &c.MaxScore, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	if err := scanJSON(rubricRaw, &c.Rubric); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresChallengeRepository) ListByCompetition(ctx context.Context, competitionID int) ([]models.Challenge, error) {
	query := `
		SELECT id, competition_id, title, description, rubric, max_score, created_at
		FROM challenges
		WHERE competition_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	challenges := make([]models.Challenge, 0)
	for rows.Next() {
		var c models.Challenge
		var rubricRaw []byte
		if scanErr := rows.Scan(
			&c.ID, &c.CompetitionID, &c.Title, &c.Description, &rubricRaw, &c.MaxScore, &c.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		if err := scanJSON(rubricRaw, &c.Rubric); err != nil {
			return nil, err
		}
		challenges = append(challenges, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return challenges, nil
}

func (r *postgresChallengeRepository) Update(ctx context.Context, c *models.Challenge) error {
	query := `
		UPDATE challenges SET
			title = $1,
			description = $2,
			rubric = $3,
			max_score = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		c.Title, c.Description, asJSON(c.Rubric), c.MaxScore, c.ID,
	)
	if err != nil {
		return r.handleChallengeError(err)
	}
	return checkAffectedRows(result, ErrChallengeNotFound)
}

func (r *postgresChallengeRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM challenges WHERE id = $1`, id)
	if err != nil {
		return r.handleChallengeError(err)
	}
	return checkAffectedRows(result, ErrChallengeNotFound)
}

func (r *postgresChallengeRepository) handleChallengeError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" && pqErr.Constraint == "challenges_competition_id_fkey" {
			return ErrChallengeInvalidCompetition
		}
	}
	return err
}
