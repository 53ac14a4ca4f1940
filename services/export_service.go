package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/promptarena/prompt-arena/repositories"
	"github.com/promptarena/prompt-arena/storage"
)

// ExportResult carries the rendered CSV plus, when an uploader is
// configured, the public URL of the archived copy.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	ArchiveURL  string
}

type ExportService interface {
	ExportParticipants(ctx context.Context, competitionID int) (*ExportResult, error)
	ExportSubmissions(ctx context.Context, competitionID int) (*ExportResult, error)
}

type exportService struct {
	submissionRepo  repositories.SubmissionRepository
	participantRepo repositories.ParticipantRepository
	userRepo        repositories.UserRepository
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewExportService(
	submissionRepo repositories.SubmissionRepository,
	participantRepo repositories.ParticipantRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) ExportService {
	return &exportService{
		submissionRepo:  submissionRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		uploader:        uploader,
		logger:          logger,
	}
}

func (s *exportService) ExportParticipants(ctx context.Context, competitionID int) (*ExportResult, error) {
	progress, err := s.participantRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	var buf bytes.Buffer
	writeCSVRow(&buf, []string{"user_id", "email", "name", "completed_count", "completed_challenges"})

	for _, p := range progress {
		email, name := "", ""
		if user, userErr := s.userRepo.GetByID(ctx, p.UserID); userErr == nil {
			email = user.Email
			name = strings.TrimSpace(user.FirstName + " " + user.LastName)
		}
		writeCSVRow(&buf, []string{
			strconv.Itoa(p.UserID),
			email,
			name,
			strconv.Itoa(p.CompletedCount),
			joinInts(p.CompletedChallenges),
		})
	}

	return s.finish(ctx, fmt.Sprintf("competition_%d_participants.csv", competitionID), buf.Bytes())
}

func (s *exportService) ExportSubmissions(ctx context.Context, competitionID int) (*ExportResult, error) {
	submissions, err := s.submissionRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	var buf bytes.Buffer
	writeCSVRow(&buf, []string{"id", "challenge_id", "participant_id", "status", "best_model_score", "judge_count", "submitted_at"})

	for i := range submissions {
		sub := &submissions[i]
		best := ""
		if score, ok := sub.BestModelScore(); ok {
			best = strconv.FormatFloat(score, 'f', 2, 64)
		}
		writeCSVRow(&buf, []string{
			strconv.Itoa(sub.ID),
			strconv.Itoa(sub.ChallengeID),
			strconv.Itoa(sub.ParticipantID),
			string(sub.Status),
			best,
			strconv.Itoa(len(sub.JudgeScores)),
			sub.SubmittedAt.UTC().Format(time.RFC3339),
		})
	}

	return s.finish(ctx, fmt.Sprintf("competition_%d_submissions.csv", competitionID), buf.Bytes())
}

func (s *exportService) finish(ctx context.Context, filename string, data []byte) (*ExportResult, error) {
	result := &ExportResult{
		Filename:    filename,
		ContentType: "text/csv",
		Data:        data,
	}

	// Archiving is best-effort: the caller still gets the CSV when the
	// object store is down or unconfigured.
	if s.uploader != nil {
		key := fmt.Sprintf("exports/%s/%s", time.Now().UTC().Format("2006-01-02"), filename)
		upload, err := s.uploader.Upload(ctx, key, result.ContentType, bytes.NewReader(data))
		if err != nil {
			s.logger.Error("failed to archive export", slog.String("key", key), slog.Any("error", err))
		} else {
			result.ArchiveURL = upload.Location
		}
	}

	return result, nil
}

// writeCSVRow writes one comma-joined row. Every field is wrapped in
// double quotes with internal quotes doubled — the fixed convention for
// these exports, stricter than encoding/csv's minimal quoting.
func writeCSVRow(buf *bytes.Buffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ";")
}
