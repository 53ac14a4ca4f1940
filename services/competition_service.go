package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/promptarena/prompt-arena/models"
	"github.com/promptarena/prompt-arena/repositories"
	"github.com/promptarena/prompt-arena/scoring"
)

type CreateCompetitionInput struct {
	Title       string    `json:"title" validate:"required"`
	Description *string   `json:"description"`
	Deadline    time.Time `json:"deadline" validate:"required"`
	TopNCutoff  int       `json:"top_n_cutoff" validate:"gte=0"`
	Active      bool      `json:"active"`
}

type UpdateCompetitionInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	TopNCutoff  *int       `json:"top_n_cutoff"`
	Active      *bool      `json:"active"`
}

type CompetitionService interface {
	Create(ctx context.Context, input CreateCompetitionInput) (*models.Competition, error)
	GetByID(ctx context.Context, id int) (*models.Competition, error)
	List(ctx context.Context, filter repositories.ListCompetitionsFilter) ([]models.Competition, error)
	Update(ctx context.Context, id int, input UpdateCompetitionInput) (*models.Competition, error)
	SetLocked(ctx context.Context, id int, locked bool) (*models.Competition, error)
	MarkJudgingComplete(ctx context.Context, id int) (*models.Competition, error)

	// RecomputeMaxScore sums each challenge's attainable score
	// (sum of 100*weight over its rubric) and persists the aggregate on
	// the competition. Batch computation, separate from per-submission
	// scoring.
	RecomputeMaxScore(ctx context.Context, id int) (*models.Competition, error)
}

type competitionService struct {
	competitionRepo repositories.CompetitionRepository
	challengeRepo   repositories.ChallengeRepository
	logger          *slog.Logger
}

func NewCompetitionService(
	competitionRepo repositories.CompetitionRepository,
	challengeRepo repositories.ChallengeRepository,
	logger *slog.Logger,
) CompetitionService {
	return &competitionService{
		competitionRepo: competitionRepo,
		challengeRepo:   challengeRepo,
		logger:          logger,
	}
}

func (s *competitionService) Create(ctx context.Context, input CreateCompetitionInput) (*models.Competition, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidationFailed)
	}
	if input.TopNCutoff < 0 {
		return nil, fmt.Errorf("%w: top_n_cutoff must not be negative", ErrValidationFailed)
	}

	competition := &models.Competition{
		Title:       title,
		Description: input.Description,
		Active:      input.Active,
		Deadline:    input.Deadline,
		TopNCutoff:  input.TopNCutoff,
	}

	if err := s.competitionRepo.Create(ctx, competition); err != nil {
		return nil, err
	}
	return competition, nil
}

func (s *competitionService) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	competition, err := s.competitionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return competition, nil
}

func (s *competitionService) List(ctx context.Context, filter repositories.ListCompetitionsFilter) ([]models.Competition, error) {
	return s.competitionRepo.List(ctx, filter)
}

func (s *competitionService) Update(ctx context.Context, id int, input UpdateCompetitionInput) (*models.Competition, error) {
	competition, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidationFailed)
		}
		competition.Title = title
	}
	if input.Description != nil {
		competition.Description = input.Description
	}
	if input.Deadline != nil {
		competition.Deadline = *input.Deadline
	}
	if input.TopNCutoff != nil {
		if *input.TopNCutoff < 0 {
			return nil, fmt.Errorf("%w: top_n_cutoff must not be negative", ErrValidationFailed)
		}
		competition.TopNCutoff = *input.TopNCutoff
	}
	if input.Active != nil {
		competition.Active = *input.Active
	}

	if err := s.competitionRepo.Update(ctx, competition); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return competition, nil
}

func (s *competitionService) SetLocked(ctx context.Context, id int, locked bool) (*models.Competition, error) {
	if err := s.competitionRepo.SetLocked(ctx, id, locked); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *competitionService) MarkJudgingComplete(ctx context.Context, id int) (*models.Competition, error) {
	competition, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if competition.JudgingComplete {
		return nil, ErrJudgingAlreadyDone
	}

	if err := s.competitionRepo.SetJudgingComplete(ctx, id, true); err != nil {
		return nil, err
	}
	competition.JudgingComplete = true

	s.logger.Info("judging marked complete", slog.Int("competition_id", id))
	return competition, nil
}

func (s *competitionService) RecomputeMaxScore(ctx context.Context, id int) (*models.Competition, error) {
	competition, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	challenges, err := s.challengeRepo.ListByCompetition(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	total := 0.0
	for _, challenge := range challenges {
		total += scoring.ChallengeMaxScore(challenge.Rubric)
	}
	total = scoring.Round2(total)

	if err := s.competitionRepo.UpdateMaxScore(ctx, nil, id, total); err != nil {
		return nil, err
	}
	competition.MaxScore = total

	s.logger.Info("competition max score recomputed",
		slog.Int("competition_id", id),
		slog.Float64("max_score", total),
		slog.Int("challenges", len(challenges)),
	)
	return competition, nil
}
