package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/promptarena/prompt-arena/models"
	"github.com/promptarena/prompt-arena/repositories"
)

type CreateChallengeInput struct {
	Title       string        `json:"title" validate:"required"`
	Description *string       `json:"description"`
	Rubric      models.Rubric `json:"rubric" validate:"required"`
	MaxScore    *float64      `json:"max_score"`
}

type UpdateChallengeInput struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Rubric      *models.Rubric `json:"rubric"`
	MaxScore    *float64       `json:"max_score"`
}

type ChallengeService interface {
	Create(ctx context.Context, competitionID int, input CreateChallengeInput) (*models.Challenge, error)
	GetByID(ctx context.Context, id int) (*models.Challenge, error)
	ListByCompetition(ctx context.Context, competitionID int) ([]models.Challenge, error)
	Update(ctx context.Context, id int, input UpdateChallengeInput) (*models.Challenge, error)
	Delete(ctx context.Context, id int) error
}

type challengeService struct {
	challengeRepo   repositories.ChallengeRepository
	competitionRepo repositories.CompetitionRepository
}

func NewChallengeService(
	challengeRepo repositories.ChallengeRepository,
	competitionRepo repositories.CompetitionRepository,
) ChallengeService {
	return &challengeService{
		challengeRepo:   challengeRepo,
		competitionRepo: competitionRepo,
	}
}

// Create validates the rubric before anything is written: a rubric that
// fails validation rejects the whole challenge, never a partial write.
func (s *challengeService) Create(ctx context.Context, competitionID int, input CreateChallengeInput) (*models.Challenge, error) {
	if _, err := s.competitionRepo.GetByID(ctx, competitionID); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidationFailed)
	}

	rubric := input.Rubric.Clean()
	if err := rubric.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	maxScore := models.DefaultChallengeMaxScore
	if input.MaxScore != nil {
		if *input.MaxScore <= 0 {
			return nil, fmt.Errorf("%w: max_score must be positive", ErrValidationFailed)
		}
		maxScore = *input.MaxScore
	}

	challenge := &models.Challenge{
		CompetitionID: competitionID,
		Title:         title,
		Description:   input.Description,
		Rubric:        rubric,
		MaxScore:      maxScore,
	}

	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		if errors.Is(err, repositories.ErrChallengeInvalidCompetition) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return challenge, nil
}

func (s *challengeService) GetByID(ctx context.Context, id int) (*models.Challenge, error) {
	challenge, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrChallengeNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	return challenge, nil
}

func (s *challengeService) ListByCompetition(ctx context.Context, competitionID int) ([]models.Challenge, error) {
	if _, err := s.competitionRepo.GetByID(ctx, competitionID); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return s.challengeRepo.ListByCompetition(ctx, competitionID)
}

func (s *challengeService) Update(ctx context.Context, id int, input UpdateChallengeInput) (*models.Challenge, error) {
	challenge, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidationFailed)
		}
		challenge.Title = title
	}
	if input.Description != nil {
		challenge.Description = input.Description
	}
	if input.Rubric != nil {
		rubric := input.Rubric.Clean()
		if err := rubric.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		challenge.Rubric = rubric
	}
	if input.MaxScore != nil {
		if *input.MaxScore <= 0 {
			return nil, fmt.Errorf("%w: max_score must be positive", ErrValidationFailed)
		}
		challenge.MaxScore = *input.MaxScore
	}

	if err := s.challengeRepo.Update(ctx, challenge); err != nil {
		if errors.Is(err, repositories.ErrChallengeNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}
	return challenge, nil
}

func (s *challengeService) Delete(ctx context.Context, id int) error {
	err := s.challengeRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrChallengeNotFound) {
		return ErrChallengeNotFound
	}
	return err
}
