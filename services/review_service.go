package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/promptarena/prompt-arena/live"
	"github.com/promptarena/prompt-arena/models"
	"github.com/promptarena/prompt-arena/repositories"
	"github.com/promptarena/prompt-arena/scoring"
)

type ReviewInput struct {
	Scores map[string]float64 `json:"scores" validate:"required"`
	Notes  string             `json:"notes"`
}

type ReviewService interface {
	// SubmitReview records a judge's rubric scores for a submission.
	// The judge's assignment record is the authority on what they may
	// review; a submission outside it is rejected regardless of role.
	// Re-reviewing replaces the judge's previous entry (last-write-wins
	// per judge).
	SubmitReview(ctx context.Context, judgeID, submissionID int, input ReviewInput) (*models.Submission, error)

	// GetForReview returns a submission for the judge to read before
	// reviewing. The assignment record gates reads the same way it
	// gates writes.
	GetForReview(ctx context.Context, judgeID, submissionID int) (*models.Submission, error)
}

type reviewService struct {
	submissionRepo repositories.SubmissionRepository
	challengeRepo  repositories.ChallengeRepository
	assignmentRepo repositories.AssignmentRepository
	hub            *live.Hub
	logger         *slog.Logger
}

func NewReviewService(
	submissionRepo repositories.SubmissionRepository,
	challengeRepo repositories.ChallengeRepository,
	assignmentRepo repositories.AssignmentRepository,
	hub *live.Hub,
	logger *slog.Logger,
) ReviewService {
	return &reviewService{
		submissionRepo: submissionRepo,
		challengeRepo:  challengeRepo,
		assignmentRepo: assignmentRepo,
		hub:            hub,
		logger:         logger,
	}
}

// assignedSubmission loads the submission and verifies it belongs to the
// judge's assignment record for its competition.
func (s *reviewService) assignedSubmission(ctx context.Context, judgeID, submissionID int) (*models.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubmissionNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	assignment, err := s.assignmentRepo.GetByJudge(ctx, submission.CompetitionID, judgeID)
	if err != nil {
		if errors.Is(err, repositories.ErrAssignmentNotFound) {
			return nil, ErrSubmissionNotAssigned
		}
		return nil, err
	}
	if !assignment.Contains(submissionID) {
		return nil, ErrSubmissionNotAssigned
	}
	return submission, nil
}

func (s *reviewService) GetForReview(ctx context.Context, judgeID, submissionID int) (*models.Submission, error) {
	return s.assignedSubmission(ctx, judgeID, submissionID)
}

func (s *reviewService) SubmitReview(ctx context.Context, judgeID, submissionID int, input ReviewInput) (*models.Submission, error) {
	submission, err := s.assignedSubmission(ctx, judgeID, submissionID)
	if err != nil {
		return nil, err
	}

	challenge, err := s.challengeRepo.GetByID(ctx, submission.ChallengeID)
	if err != nil {
		if errors.Is(err, repositories.ErrChallengeNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}

	if err := validateReviewScores(input.Scores, challenge.Rubric); err != nil {
		return nil, err
	}

	review := models.JudgeReview{
		Scores:     input.Scores,
		Notes:      input.Notes,
		Total:      scoring.WeightedTotal(input.Scores, challenge.Rubric),
		ReviewedAt: time.Now().UTC(),
	}

	_, alreadyReviewed := submission.JudgeScores[judgeID]

	if err := s.submissionRepo.SetJudgeReview(ctx, submissionID, judgeID, review, models.SubmissionEvaluated); err != nil {
		return nil, err
	}

	// Count each submission once per judge even when re-reviewed.
	if !alreadyReviewed {
		if err := s.assignmentRepo.IncrementReviewed(ctx, submission.CompetitionID, judgeID); err != nil {
			s.logger.Error("failed to increment reviewed counter",
				slog.Int("judge_id", judgeID),
				slog.Int("competition_id", submission.CompetitionID),
				slog.Any("error", err),
			)
		}
	}

	s.logger.Info("judge review recorded",
		slog.Int("submission_id", submissionID),
		slog.Int("judge_id", judgeID),
		slog.Float64("total", review.Total),
	)

	s.hub.BroadcastEvent(live.Event{
		Type:          live.EventScoresUpdated,
		CompetitionID: submission.CompetitionID,
		Payload:       map[string]int{"submission_id": submissionID},
	})

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

// validateReviewScores rejects the review wholesale when any score is out
// of range or names a criterion not in the rubric.
func validateReviewScores(scores map[string]float64, rubric models.Rubric) error {
	if len(scores) == 0 {
		return fmt.Errorf("%w: at least one criterion score is required", ErrValidationFailed)
	}

	known := make(map[string]struct{}, len(rubric))
	for _, c := range rubric {
		known[c.Name] = struct{}{}
	}

	for name, score := range scores {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCriterion, name)
		}
		if score < 0 || score > 100 {
			return fmt.Errorf("%w: %q=%.2f", ErrInvalidScore, name, score)
		}
	}
	return nil
}
