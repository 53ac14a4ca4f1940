package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/promptarena/prompt-arena/live"
	"github.com/promptarena/prompt-arena/models"
	"github.com/promptarena/prompt-arena/repositories"
	"github.com/promptarena/prompt-arena/scoring"
)

type AssignmentService interface {
	// Distribute partitions the competition's submissions across all
	// users with the judge role and replaces the per-judge assignment
	// records in one transaction. Re-running replaces the previous
	// distribution; with no judges it reports every challenge as
	// unassigned instead of failing.
	Distribute(ctx context.Context, competitionID int) (*models.DistributionResult, error)

	// GetForJudge returns the judge's own assignment record; admins may
	// read any judge's record.
	GetForJudge(ctx context.Context, competitionID, judgeID int) (*models.JudgeAssignment, error)

	ListByCompetition(ctx context.Context, competitionID int) ([]models.JudgeAssignment, error)
}

type assignmentService struct {
	db              *sql.DB
	assignmentRepo  repositories.AssignmentRepository
	submissionRepo  repositories.SubmissionRepository
	competitionRepo repositories.CompetitionRepository
	userRepo        repositories.UserRepository
	emailService    *EmailService
	hub             *live.Hub
	maxPerChallenge int
	logger          *slog.Logger
}

func NewAssignmentService(
	db *sql.DB,
	assignmentRepo repositories.AssignmentRepository,
	submissionRepo repositories.SubmissionRepository,
	competitionRepo repositories.CompetitionRepository,
	userRepo repositories.UserRepository,
	emailService *EmailService,
	hub *live.Hub,
	maxPerChallenge int,
	logger *slog.Logger,
) AssignmentService {
	return &assignmentService{
		db:              db,
		assignmentRepo:  assignmentRepo,
		submissionRepo:  submissionRepo,
		competitionRepo: competitionRepo,
		userRepo:        userRepo,
		emailService:    emailService,
		hub:             hub,
		maxPerChallenge: maxPerChallenge,
		logger:          logger,
	}
}

func (s *assignmentService) Distribute(ctx context.Context, competitionID int) (*models.DistributionResult, error) {
	competition, err := s.competitionRepo.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}

	judges, err := s.userRepo.ListByRole(ctx, models.RoleJudge)
	if err != nil {
		return nil, fmt.Errorf("failed to list judges: %w", err)
	}
	judgeIDs := make([]int, len(judges))
	for i, judge := range judges {
		judgeIDs[i] = judge.ID
	}

	submissionsByChallenge, err := s.submissionRepo.ListIDsByChallenge(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to group submissions by challenge: %w", err)
	}

	result := scoring.Distribute(competitionID, judgeIDs, submissionsByChallenge, s.maxPerChallenge)

	// An empty distribution still replaces the stored records: a re-run
	// after the last judge was demoted must not leave the previous
	// distribution behind. The empty case is a single delete and needs
	// no transaction.
	if len(result.Assignments) == 0 {
		if err := s.assignmentRepo.ReplaceForCompetition(ctx, nil, competitionID, nil); err != nil {
			return nil, err
		}
	} else {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		if err := s.assignmentRepo.ReplaceForCompetition(ctx, tx, competitionID, result.Assignments); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit assignments: %w", err)
		}
	}

	s.logger.Info("distribution completed",
		slog.Int("competition_id", competitionID),
		slog.Int("judges", len(judgeIDs)),
		slog.Int("submissions", result.TotalSubmissions),
		slog.Int("unassigned_challenges", len(result.UnassignedChallenges)),
	)

	// Notifications are best-effort: a failed email must not undo a
	// committed distribution.
	if s.emailService != nil {
		for _, judge := range judges {
			assignment, ok := result.Assignments[judge.ID]
			if !ok || assignment.TotalAssigned == 0 {
				continue
			}
			if err := s.emailService.SendAssignmentEmail(judge.Email, competition.Title, assignment.TotalAssigned); err != nil {
				s.logger.Error("failed to send assignment email",
					slog.String("email", judge.Email),
					slog.Any("error", err),
				)
			}
		}
	}

	s.hub.BroadcastEvent(live.Event{
		Type:          live.EventAssignmentsUpdated,
		CompetitionID: competitionID,
		Payload: map[string]int{
			"judges":      len(result.Assignments),
			"submissions": result.TotalSubmissions,
		},
	})

	return &result, nil
}

func (s *assignmentService) GetForJudge(ctx context.Context, competitionID, judgeID int) (*models.JudgeAssignment, error) {
	assignment, err := s.assignmentRepo.GetByJudge(ctx, competitionID, judgeID)
	if err != nil {
		if errors.Is(err, repositories.ErrAssignmentNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return assignment, nil
}

func (s *assignmentService) ListByCompetition(ctx context.Context, competitionID int) ([]models.JudgeAssignment, error) {
	return s.assignmentRepo.ListByCompetition(ctx, competitionID)
}
