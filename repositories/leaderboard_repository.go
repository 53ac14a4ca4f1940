package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/promptarena/prompt-arena/models"
)

var ErrLeaderboardEmpty = errors.New("leaderboard has not been built for this competition")

type LeaderboardRepository interface {
	// Replace swaps the competition's materialized rows for the given
	// set inside one transaction.
	Replace(ctx context.Context, exec SQLExecutor, competitionID int, entries []models.LeaderboardEntry) error

	// GetPage reads entries after the given rank cursor, ordered by
	// rank. Cursor pagination keeps pages stable while rows are being
	// appended: a rank boundary never shifts the way an offset does.
	GetPage(ctx context.Context, competitionID, pageSize, afterRank int) (*models.LeaderboardPage, error)

	GetEntry(ctx context.Context, competitionID, participantID int) (*models.LeaderboardEntry, error)
}

type postgresLeaderboardRepository struct {
	db *sql.DB
}

func NewPostgresLeaderboardRepository(db *sql.DB) LeaderboardRepository {
	return &postgresLeaderboardRepository{db: db}
}

func (r *postgresLeaderboardRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLeaderboardRepository) Replace(ctx context.Context, exec SQLExecutor, competitionID int, entries []models.LeaderboardEntry) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM leaderboard_entries WHERE competition_id = $1`, competitionID); err != nil {
		return fmt.Errorf("failed to clear previous leaderboard: %w", err)
	}

	query := `
		INSERT INTO leaderboard_entries (
			competition_id, participant_id, rank, auto_score, judge_score, final_score, earliest_submission
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, e := range entries {
		if _, err := executor.ExecContext(ctx, query,
			competitionID, e.ParticipantID, e.Rank, e.AutoScore, e.JudgeScore, e.FinalScore, e.EarliestSubmission,
		); err != nil {
			return fmt.Errorf("failed to insert leaderboard entry for participant %d: %w", e.ParticipantID, err)
		}
	}
	return nil
}

const leaderboardColumns = `competition_id, participant_id, rank, auto_score, judge_score, final_score, earliest_submission, updated_at`

func (r *postgresLeaderboardRepository) GetPage(ctx context.Context, competitionID, pageSize, afterRank int) (*models.LeaderboardPage, error) {
	if pageSize <= 0 {
		pageSize = 50
	}

	// Fetch one extra row to know whether another page exists.
	query := `
		SELECT ` + leaderboardColumns + `
		FROM leaderboard_entries
		WHERE competition_id = $1 AND rank > $2
		ORDER BY rank ASC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, competitionID, afterRank, pageSize+1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0, pageSize)
	for rows.Next() {
		var e models.LeaderboardEntry
		if scanErr := rows.Scan(
			&e.CompetitionID, &e.ParticipantID, &e.Rank, &e.AutoScore, &e.JudgeScore,
			&e.FinalScore, &e.EarliestSubmission, &e.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	page := &models.LeaderboardPage{Entries: entries}
	if len(entries) > pageSize {
		page.Entries = entries[:pageSize]
		page.HasMore = true
	}
	if len(page.Entries) > 0 {
		page.NextCursor = page.Entries[len(page.Entries)-1].Rank
	}
	return page, nil
}

func (r *postgresLeaderboardRepository) GetEntry(ctx context.Context, competitionID, participantID int) (*models.LeaderboardEntry, error) {
	query := `SELECT ` + leaderboardColumns + ` FROM leaderboard_entries WHERE competition_id = $1 AND participant_id = $2`

	e := &models.LeaderboardEntry{}
	err := r.db.QueryRowContext(ctx, query, competitionID, participantID).Scan(
		&e.CompetitionID, &e.ParticipantID, &e.Rank, &e.AutoScore, &e.JudgeScore,
		&e.FinalScore, &e.EarliestSubmission, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeaderboardEmpty
		}
		return nil, err
	}
	return e, nil
}
