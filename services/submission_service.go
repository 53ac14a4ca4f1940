package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/promptarena/prompt-arena/models"
	"github.com/promptarena/prompt-arena/repositories"
	"github.com/promptarena/prompt-arena/scoring"
)

type SubmitInput struct {
	PromptText string `json:"prompt_text" validate:"required"`
}

type SubmissionService interface {
	// Submit upserts the participant's submission for the challenge:
	// one submission per (participant, challenge), later submissions
	// overwrite. The upsert and the participant-progress update run in
	// one transaction.
	Submit(ctx context.Context, participantID, challengeID int, input SubmitInput) (*models.Submission, error)

	GetByID(ctx context.Context, id int) (*models.Submission, error)
	ListMine(ctx context.Context, competitionID, participantID int) ([]models.Submission, error)
	ListByCompetition(ctx context.Context, competitionID int) ([]models.Submission, error)
	MarkForManualReview(ctx context.Context, id int) (*models.Submission, error)
	GetProgress(ctx context.Context, competitionID, participantID int) (*models.ParticipantProgress, error)
}

type submissionService struct {
	db              *sql.DB
	submissionRepo  repositories.SubmissionRepository
	challengeRepo   repositories.ChallengeRepository
	competitionRepo repositories.CompetitionRepository
	participantRepo repositories.ParticipantRepository
}

func NewSubmissionService(
	db *sql.DB,
	submissionRepo repositories.SubmissionRepository,
	challengeRepo repositories.ChallengeRepository,
	competitionRepo repositories.CompetitionRepository,
	participantRepo repositories.ParticipantRepository,
) SubmissionService {
	return &submissionService{
		db:              db,
		submissionRepo:  submissionRepo,
		challengeRepo:   challengeRepo,
		competitionRepo: competitionRepo,
		participantRepo: participantRepo,
	}
}

func (s *submissionService) Submit(ctx context.Context, participantID, challengeID int, input SubmitInput) (*models.Submission, error) {
	promptText := input.PromptText
	if strings.TrimSpace(promptText) == "" {
		return nil, ErrPromptEmpty
	}
	if len(promptText) > models.MaxPromptBytes {
		return nil, ErrPromptTooLarge
	}

	challenge, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, repositories.ErrChallengeNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}

	competition, err := s.competitionRepo.GetByID(ctx, challenge.CompetitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	if !competition.Active {
		return nil, ErrCompetitionInactive
	}
	if competition.Locked {
		return nil, ErrCompetitionLocked
	}
	if time.Now().After(competition.Deadline) {
		return nil, ErrDeadlinePassed
	}

	submission := &models.Submission{
		CompetitionID: competition.ID,
		ChallengeID:   challengeID,
		ParticipantID: participantID,
		PromptText:    promptText,
		Status:        models.SubmissionPending,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.submissionRepo.Upsert(ctx, tx, submission); err != nil {
		return nil, err
	}
	if err := s.participantRepo.MarkChallengeCompleted(ctx, tx, competition.ID, participantID, challengeID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit submission: %w", err)
	}

	// Reload the persisted row so the caller sees exactly what was
	// stored (reset status, cleared score maps on overwrite).
	return s.submissionRepo.GetByParticipantChallenge(ctx, participantID, challengeID)
}

func (s *submissionService) GetByID(ctx context.Context, id int) (*models.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSubmissionNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return submission, nil
}

func (s *submissionService) ListMine(ctx context.Context, competitionID, participantID int) ([]models.Submission, error) {
	return s.submissionRepo.ListByParticipant(ctx, competitionID, participantID)
}

func (s *submissionService) ListByCompetition(ctx context.Context, competitionID int) ([]models.Submission, error) {
	return s.submissionRepo.ListByCompetition(ctx, competitionID)
}

func (s *submissionService) MarkForManualReview(ctx context.Context, id int) (*models.Submission, error) {
	if err := s.submissionRepo.UpdateStatus(ctx, id, models.SubmissionManualReview); err != nil {
		if errors.Is(err, repositories.ErrSubmissionNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// derivedFinalScore is the submission-level figure persisted in
// final_score: the best automated total, averaged with the judge mean
// once reviews exist. The leaderboard recomputes its own finals from
// the raw scores; this column never feeds ranking.
func derivedFinalScore(s *models.Submission) (float64, bool) {
	best, scored := s.BestModelScore()
	mean, judged := s.MeanJudgeScore()
	switch {
	case scored && judged:
		return scoring.Round2((1-judgeBlendWeight)*best + judgeBlendWeight*mean), true
	case scored:
		return scoring.Round2(best), true
	case judged:
		return scoring.Round2(mean), true
	}
	return 0, false
}

func (s *submissionService) GetProgress(ctx context.Context, competitionID, participantID int) (*models.ParticipantProgress, error) {
	progress, err := s.participantRepo.GetProgress(ctx, competitionID, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrProgressNotFound) {
			// No submissions yet: report empty progress, not an error.
			return &models.ParticipantProgress{
				CompetitionID:       competitionID,
				UserID:              participantID,
				CompletedChallenges: []int{},
			}, nil
		}
		return nil, err
	}
	return progress, nil
}
