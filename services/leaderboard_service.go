package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/promptarena/prompt-arena/live"
	"github.com/promptarena/prompt-arena/models"
	"github.com/promptarena/prompt-arena/repositories"
	"github.com/promptarena/prompt-arena/scoring"
	"github.com/promptarena/prompt-arena/telemetry"
)

// judgeBlendWeight is the share of the judge score in the blended final
// once judging is complete (the rest comes from the automated score).
const judgeBlendWeight = 0.5

type LeaderboardService interface {
	// Build recomputes and persists the competition's leaderboard.
	// Until judging is complete the final score is the automated score;
	// after that, entries inside the top-N cutoff with at least one
	// judge review get a blended final. Rebuilds are explicit (admin
	// call or scheduler), never a side effect of a score write.
	Build(ctx context.Context, competitionID int) ([]models.LeaderboardEntry, error)

	GetPage(ctx context.Context, competitionID, pageSize, afterRank int) (*models.LeaderboardPage, error)

	// GetEntryForParticipant returns one participant's row, or
	// ErrLeaderboardNotBuilt when the board holds no row for them.
	GetEntryForParticipant(ctx context.Context, competitionID, participantID int) (*models.LeaderboardEntry, error)
}

type leaderboardService struct {
	db              *sql.DB
	leaderboardRepo repositories.LeaderboardRepository
	submissionRepo  repositories.SubmissionRepository
	competitionRepo repositories.CompetitionRepository
	hub             *live.Hub
	logger          *slog.Logger
}

func NewLeaderboardService(
	db *sql.DB,
	leaderboardRepo repositories.LeaderboardRepository,
	submissionRepo repositories.SubmissionRepository,
	competitionRepo repositories.CompetitionRepository,
	hub *live.Hub,
	logger *slog.Logger,
) LeaderboardService {
	return &leaderboardService{
		db:              db,
		leaderboardRepo: leaderboardRepo,
		submissionRepo:  submissionRepo,
		competitionRepo: competitionRepo,
		hub:             hub,
		logger:          logger,
	}
}

// participantTotals accumulates one participant's scores while walking
// the competition's submissions.
type participantTotals struct {
	autoSum       float64
	judgeSum      float64
	judgedCount   int
	earliest      time.Time
	hasSubmission bool
}

func (s *leaderboardService) Build(ctx context.Context, competitionID int) ([]models.LeaderboardEntry, error) {
	competition, err := s.competitionRepo.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}

	submissions, err := s.submissionRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	entries := s.buildEntries(competition, submissions)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.leaderboardRepo.Replace(ctx, tx, competitionID, entries); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit leaderboard: %w", err)
	}

	telemetry.ObserveLeaderboardRebuild()
	s.logger.Info("leaderboard rebuilt",
		slog.Int("competition_id", competitionID),
		slog.Int("entries", len(entries)),
		slog.Bool("judging_complete", competition.JudgingComplete),
	)

	s.hub.BroadcastEvent(live.Event{
		Type:          live.EventLeaderboardUpdated,
		CompetitionID: competitionID,
		Payload:       map[string]int{"entries": len(entries)},
	})

	return entries, nil
}

// buildEntries turns the competition's submissions into ranked entries:
// per-participant totals, rank assignment and, once judging is complete,
// the blended finals inside the top-N cutoff.
func (s *leaderboardService) buildEntries(competition *models.Competition, submissions []models.Submission) []models.LeaderboardEntry {
	totals := make(map[int]*participantTotals)
	for i := range submissions {
		submission := &submissions[i]

		best, scored := submission.BestModelScore()
		judgeMean, judged := submission.MeanJudgeScore()
		if !scored && !judged {
			// Entirely unscored submissions do not place a participant
			// on the board.
			continue
		}

		t, ok := totals[submission.ParticipantID]
		if !ok {
			t = &participantTotals{}
			totals[submission.ParticipantID] = t
		}
		if !t.hasSubmission || submission.SubmittedAt.Before(t.earliest) {
			t.earliest = submission.SubmittedAt
			t.hasSubmission = true
		}
		if scored {
			t.autoSum += best
		}
		if judged {
			t.judgeSum += judgeMean
			t.judgedCount++
		}
	}

	entries := make([]models.LeaderboardEntry, 0, len(totals))
	for participantID, t := range totals {
		entry := models.LeaderboardEntry{
			CompetitionID:      competition.ID,
			ParticipantID:      participantID,
			AutoScore:          scoring.Round2(t.autoSum),
			FinalScore:         scoring.Round2(t.autoSum),
			EarliestSubmission: t.earliest,
		}
		if t.judgedCount > 0 {
			judgeScore := scoring.Round2(t.judgeSum / float64(t.judgedCount))
			entry.JudgeScore = &judgeScore
		}
		// Unjudged entries keep JudgeScore nil: absent is not zero.
		entries = append(entries, entry)
	}

	scoring.Rank(entries)

	if competition.JudgingComplete {
		s.blendFinals(entries, competition.TopNCutoff)
		scoring.Rank(entries)
	}
	return entries
}

// blendFinals applies the blended final score to ranked entries inside
// the top-N cutoff that have a judge score. Entries without one keep the
// automated final: an unjudged entry must not be dragged down.
func (s *leaderboardService) blendFinals(entries []models.LeaderboardEntry, topN int) {
	if topN <= 0 || topN > len(entries) {
		topN = len(entries)
	}
	for i := 0; i < topN; i++ {
		if entries[i].JudgeScore == nil {
			continue
		}
		blended := (1-judgeBlendWeight)*entries[i].AutoScore + judgeBlendWeight*(*entries[i].JudgeScore)
		entries[i].FinalScore = scoring.Round2(blended)
	}
}

func (s *leaderboardService) GetPage(ctx context.Context, competitionID, pageSize, afterRank int) (*models.LeaderboardPage, error) {
	if _, err := s.competitionRepo.GetByID(ctx, competitionID); err != nil {
		if errors.Is(err, repositories.ErrCompetitionNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return s.leaderboardRepo.GetPage(ctx, competitionID, pageSize, afterRank)
}

func (s *leaderboardService) GetEntryForParticipant(ctx context.Context, competitionID, participantID int) (*models.LeaderboardEntry, error) {
	entry, err := s.leaderboardRepo.GetEntry(ctx, competitionID, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeaderboardEmpty) {
			return nil, ErrLeaderboardNotBuilt
		}
		return nil, err
	}
	return entry, nil
}
