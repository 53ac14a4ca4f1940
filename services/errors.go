package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules.
	ErrValidationFailed    = errors.New("validation failed")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrPromptTooLarge      = errors.New("prompt text exceeds the maximum allowed size")
	ErrPromptEmpty         = errors.New("prompt text must not be empty")
	ErrCompetitionLocked   = errors.New("competition is locked for submissions")
	ErrCompetitionInactive = errors.New("competition is not active")
	ErrDeadlinePassed      = errors.New("competition deadline has passed")
	ErrInvalidRole         = errors.New("invalid role provided")
	ErrInvalidScore        = errors.New("criterion score must be between 0 and 100")
	ErrUnknownCriterion    = errors.New("score references a criterion not in the rubric")
	ErrScorerNotConfigured = errors.New("no automated scorer is configured")
	ErrJudgingAlreadyDone  = errors.New("judging is already marked complete")

	// Conflicts.
	ErrUserEmailConflict = errors.New("email address is already in use")

	// Authentication and access.
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrSubmissionNotAssigned  = errors.New("submission is not assigned to this judge")

	// Entity-specific not-found errors (more context than ErrNotFound).
	ErrUserNotFound        = errors.New("user not found")
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrAssignmentNotFound  = errors.New("judge assignment not found")
	ErrLeaderboardNotBuilt = errors.New("leaderboard has not been built yet")
)
