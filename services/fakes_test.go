package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/promptarena/prompt-arena/models"
	"github.com/promptarena/prompt-arena/repositories"
)

// In-memory repository fakes shared by the service tests in this package.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSubmissionRepo struct {
	submissions map[int]*models.Submission
	nextID      int
	finalScores map[int]float64
}

func newFakeSubmissionRepo(submissions ...*models.Submission) *fakeSubmissionRepo {
	r := &fakeSubmissionRepo{
		submissions: make(map[int]*models.Submission),
		finalScores: make(map[int]float64),
	}
	for _, s := range submissions {
		r.submissions[s.ID] = s
		if s.ID >= r.nextID {
			r.nextID = s.ID + 1
		}
	}
	return r
}

func (r *fakeSubmissionRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, s *models.Submission) error {
	for _, existing := range r.submissions {
		if existing.ParticipantID == s.ParticipantID && existing.ChallengeID == s.ChallengeID {
			existing.PromptText = s.PromptText
			existing.Status = s.Status
			existing.ModelScores = map[string]float64{}
			existing.JudgeScores = map[int]models.JudgeReview{}
			existing.FinalScore = nil
			s.ID = existing.ID
			return nil
		}
	}
	s.ID = r.nextID
	r.nextID++
	stored := *s
	stored.ModelScores = map[string]float64{}
	stored.JudgeScores = map[int]models.JudgeReview{}
	r.submissions[s.ID] = &stored
	return nil
}

func (r *fakeSubmissionRepo) GetByID(ctx context.Context, id int) (*models.Submission, error) {
	s, ok := r.submissions[id]
	if !ok {
		return nil, repositories.ErrSubmissionNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSubmissionRepo) GetByParticipantChallenge(ctx context.Context, participantID, challengeID int) (*models.Submission, error) {
	for _, s := range r.submissions {
		if s.ParticipantID == participantID && s.ChallengeID == challengeID {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repositories.ErrSubmissionNotFound
}

func (r *fakeSubmissionRepo) ListByCompetition(ctx context.Context, competitionID int) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range r.submissions {
		if s.CompetitionID == competitionID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) ListByParticipant(ctx context.Context, competitionID, participantID int) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range r.submissions {
		if s.CompetitionID == competitionID && s.ParticipantID == participantID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) ListIDsByChallenge(ctx context.Context, competitionID int) (map[int][]int, error) {
	byChallenge := make(map[int][]int)
	for _, s := range r.submissions {
		if s.CompetitionID == competitionID {
			byChallenge[s.ChallengeID] = append(byChallenge[s.ChallengeID], s.ID)
		}
	}
	return byChallenge, nil
}

func (r *fakeSubmissionRepo) UpdateStatus(ctx context.Context, id int, status models.SubmissionStatus) error {
	s, ok := r.submissions[id]
	if !ok {
		return repositories.ErrSubmissionNotFound
	}
	s.Status = status
	return nil
}

func (r *fakeSubmissionRepo) SetModelScore(ctx context.Context, id int, modelName string, score float64, status models.SubmissionStatus) error {
	s, ok := r.submissions[id]
	if !ok {
		return repositories.ErrSubmissionNotFound
	}
	if s.ModelScores == nil {
		s.ModelScores = map[string]float64{}
	}
	s.ModelScores[modelName] = score
	s.Status = status
	return nil
}

func (r *fakeSubmissionRepo) SetJudgeReview(ctx context.Context, id int, judgeID int, review models.JudgeReview, status models.SubmissionStatus) error {
	s, ok := r.submissions[id]
	if !ok {
		return repositories.ErrSubmissionNotFound
	}
	if s.JudgeScores == nil {
		s.JudgeScores = map[int]models.JudgeReview{}
	}
	s.JudgeScores[judgeID] = review
	s.Status = status
	return nil
}

func (r *fakeSubmissionRepo) UpdateFinalScore(ctx context.Context, exec repositories.SQLExecutor, id int, finalScore float64) error {
	s, ok := r.submissions[id]
	if !ok {
		return repositories.ErrSubmissionNotFound
	}
	score := finalScore
	s.FinalScore = &score
	r.finalScores[id] = finalScore
	return nil
}

type fakeAssignmentRepo struct {
	assignments  map[int]*models.JudgeAssignment // keyed by judge id
	replaceCalls int
	incremented  map[int]int
}

func newFakeAssignmentRepo(assignments ...*models.JudgeAssignment) *fakeAssignmentRepo {
	r := &fakeAssignmentRepo{
		assignments: make(map[int]*models.JudgeAssignment),
		incremented: make(map[int]int),
	}
	for _, a := range assignments {
		r.assignments[a.JudgeID] = a
	}
	return r
}

func (r *fakeAssignmentRepo) ReplaceForCompetition(ctx context.Context, exec repositories.SQLExecutor, competitionID int, assignments map[int]*models.JudgeAssignment) error {
	r.replaceCalls++
	r.assignments = make(map[int]*models.JudgeAssignment)
	for judgeID, a := range assignments {
		r.assignments[judgeID] = a
	}
	return nil
}

func (r *fakeAssignmentRepo) GetByJudge(ctx context.Context, competitionID, judgeID int) (*models.JudgeAssignment, error) {
	a, ok := r.assignments[judgeID]
	if !ok {
		return nil, repositories.ErrAssignmentNotFound
	}
	return a, nil
}

func (r *fakeAssignmentRepo) ListByCompetition(ctx context.Context, competitionID int) ([]models.JudgeAssignment, error) {
	var out []models.JudgeAssignment
	for _, a := range r.assignments {
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAssignmentRepo) IncrementReviewed(ctx context.Context, competitionID, judgeID int) error {
	r.incremented[judgeID]++
	return nil
}

type fakeChallengeRepo struct {
	challenges map[int]*models.Challenge
}

func newFakeChallengeRepo(challenges ...*models.Challenge) *fakeChallengeRepo {
	r := &fakeChallengeRepo{challenges: make(map[int]*models.Challenge)}
	for _, c := range challenges {
		r.challenges[c.ID] = c
	}
	return r
}

func (r *fakeChallengeRepo) Create(ctx context.Context, c *models.Challenge) error {
	c.ID = len(r.challenges) + 1
	r.challenges[c.ID] = c
	return nil
}

func (r *fakeChallengeRepo) GetByID(ctx context.Context, id int) (*models.Challenge, error) {
	c, ok := r.challenges[id]
	if !ok {
		return nil, repositories.ErrChallengeNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeChallengeRepo) ListByCompetition(ctx context.Context, competitionID int) ([]models.Challenge, error) {
	var out []models.Challenge
	for _, c := range r.challenges {
		if c.CompetitionID == competitionID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeChallengeRepo) Update(ctx context.Context, c *models.Challenge) error {
	if _, ok := r.challenges[c.ID]; !ok {
		return repositories.ErrChallengeNotFound
	}
	r.challenges[c.ID] = c
	return nil
}

func (r *fakeChallengeRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.challenges[id]; !ok {
		return repositories.ErrChallengeNotFound
	}
	delete(r.challenges, id)
	return nil
}

type fakeCompetitionRepo struct {
	competitions map[int]*models.Competition
}

func newFakeCompetitionRepo(competitions ...*models.Competition) *fakeCompetitionRepo {
	r := &fakeCompetitionRepo{competitions: make(map[int]*models.Competition)}
	for _, c := range competitions {
		r.competitions[c.ID] = c
	}
	return r
}

func (r *fakeCompetitionRepo) Create(ctx context.Context, c *models.Competition) error {
	c.ID = len(r.competitions) + 1
	r.competitions[c.ID] = c
	return nil
}

func (r *fakeCompetitionRepo) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	c, ok := r.competitions[id]
	if !ok {
		return nil, repositories.ErrCompetitionNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCompetitionRepo) List(ctx context.Context, filter repositories.ListCompetitionsFilter) ([]models.Competition, error) {
	var out []models.Competition
	for _, c := range r.competitions {
		if filter.Active != nil && c.Active != *filter.Active {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCompetitionRepo) Update(ctx context.Context, c *models.Competition) error {
	if _, ok := r.competitions[c.ID]; !ok {
		return repositories.ErrCompetitionNotFound
	}
	r.competitions[c.ID] = c
	return nil
}

func (r *fakeCompetitionRepo) SetLocked(ctx context.Context, id int, locked bool) error {
	c, ok := r.competitions[id]
	if !ok {
		return repositories.ErrCompetitionNotFound
	}
	c.Locked = locked
	return nil
}

func (r *fakeCompetitionRepo) SetJudgingComplete(ctx context.Context, id int, complete bool) error {
	c, ok := r.competitions[id]
	if !ok {
		return repositories.ErrCompetitionNotFound
	}
	c.JudgingComplete = complete
	return nil
}

func (r *fakeCompetitionRepo) UpdateMaxScore(ctx context.Context, exec repositories.SQLExecutor, id int, maxScore float64) error {
	c, ok := r.competitions[id]
	if !ok {
		return repositories.ErrCompetitionNotFound
	}
	c.MaxScore = maxScore
	return nil
}

type fakeLeaderboardRepo struct {
	entries map[int]*models.LeaderboardEntry // keyed by participant id
}

func newFakeLeaderboardRepo(entries ...*models.LeaderboardEntry) *fakeLeaderboardRepo {
	r := &fakeLeaderboardRepo{entries: make(map[int]*models.LeaderboardEntry)}
	for _, e := range entries {
		r.entries[e.ParticipantID] = e
	}
	return r
}

func (r *fakeLeaderboardRepo) Replace(ctx context.Context, exec repositories.SQLExecutor, competitionID int, entries []models.LeaderboardEntry) error {
	r.entries = make(map[int]*models.LeaderboardEntry)
	for i := range entries {
		r.entries[entries[i].ParticipantID] = &entries[i]
	}
	return nil
}

func (r *fakeLeaderboardRepo) GetPage(ctx context.Context, competitionID, pageSize, afterRank int) (*models.LeaderboardPage, error) {
	page := &models.LeaderboardPage{Entries: []models.LeaderboardEntry{}}
	for _, e := range r.entries {
		if e.Rank > afterRank {
			page.Entries = append(page.Entries, *e)
		}
	}
	return page, nil
}

func (r *fakeLeaderboardRepo) GetEntry(ctx context.Context, competitionID, participantID int) (*models.LeaderboardEntry, error) {
	e, ok := r.entries[participantID]
	if !ok {
		return nil, repositories.ErrLeaderboardEmpty
	}
	copied := *e
	return &copied, nil
}
