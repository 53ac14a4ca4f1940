package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/promptarena/prompt-arena/llm"
	"github.com/promptarena/prompt-arena/models"
	"github.com/promptarena/prompt-arena/repositories"
	"github.com/promptarena/prompt-arena/scoring"
	"github.com/promptarena/prompt-arena/telemetry"
	"golang.org/x/sync/errgroup"
)

// evaluateConcurrency bounds parallel model calls during a batch run.
const evaluateConcurrency = 4

type EvaluationService interface {
	// EvaluateSubmission runs every configured scorer on one submission,
	// stores a weighted total per model and flips pending -> scored.
	EvaluateSubmission(ctx context.Context, submissionID int) (*models.Submission, error)

	// EvaluatePending evaluates all pending submissions of a competition
	// concurrently. Individual failures are logged and counted, they do
	// not abort the batch.
	EvaluatePending(ctx context.Context, competitionID int) (evaluated int, failed int, err error)
}

type evaluationService struct {
	submissionRepo repositories.SubmissionRepository
	challengeRepo  repositories.ChallengeRepository
	scorers        []llm.Scorer
	logger         *slog.Logger
}

func NewEvaluationService(
	submissionRepo repositories.SubmissionRepository,
	challengeRepo repositories.ChallengeRepository,
	scorers []llm.Scorer,
	logger *slog.Logger,
) EvaluationService {
	return &evaluationService{
		submissionRepo: submissionRepo,
		challengeRepo:  challengeRepo,
		scorers:        scorers,
		logger:         logger,
	}
}

func (s *evaluationService) EvaluateSubmission(ctx context.Context, submissionID int) (*models.Submission, error) {
	if len(s.scorers) == 0 {
		return nil, ErrScorerNotConfigured
	}

	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubmissionNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	challenge, err := s.challengeRepo.GetByID(ctx, submission.ChallengeID)
	if err != nil {
		if errors.Is(err, repositories.ErrChallengeNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}

	for _, scorer := range s.scorers {
		criterionScores, scoreErr := scorer.ScorePrompt(ctx, challenge, submission.PromptText)
		telemetry.ObserveEvaluation(scorer.ModelName(), scoreErr)
		if scoreErr != nil {
			return nil, fmt.Errorf("model %s failed to score submission %d: %w", scorer.ModelName(), submissionID, scoreErr)
		}

		total := scoring.WeightedTotal(criterionScores, challenge.Rubric)
		if err := s.submissionRepo.SetModelScore(ctx, submissionID, scorer.ModelName(), total, models.SubmissionScored); err != nil {
			return nil, err
		}

		s.logger.Info("submission scored",
			slog.Int("submission_id", submissionID),
			slog.String("model", scorer.ModelName()),
			slog.Float64("score", total),
		)
	}

	updated, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if final, ok := derivedFinalScore(updated); ok {
		if err := s.submissionRepo.UpdateFinalScore(ctx, nil, submissionID, final); err != nil {
			return nil, err
		}
		updated.FinalScore = &final
	}
	return updated, nil
}

func (s *evaluationService) EvaluatePending(ctx context.Context, competitionID int) (int, int, error) {
	if len(s.scorers) == 0 {
		return 0, 0, ErrScorerNotConfigured
	}

	submissions, err := s.submissionRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	pending := make([]int, 0, len(submissions))
	for _, submission := range submissions {
		if submission.Status == models.SubmissionPending {
			pending = append(pending, submission.ID)
		}
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	results := make([]error, len(pending))
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(evaluateConcurrency)

	for i, submissionID := range pending {
		i, submissionID := i, submissionID
		g.Go(func() error {
			_, evalErr := s.EvaluateSubmission(groupCtx, submissionID)
			results[i] = evalErr
			if evalErr != nil {
				s.logger.Error("batch evaluation failed for submission",
					slog.Int("submission_id", submissionID),
					slog.Any("error", evalErr),
				)
			}
			// Per-submission errors are recorded, not returned: one bad
			// submission must not cancel the rest of the batch.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	evaluated, failed := 0, 0
	for _, evalErr := range results {
		if evalErr != nil {
			failed++
		} else {
			evaluated++
		}
	}
	return evaluated, failed, nil
}
