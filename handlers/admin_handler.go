package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/promptarena/prompt-arena/middleware"
	"github.com/promptarena/prompt-arena/models"
	"github.com/promptarena/prompt-arena/services"
)

type AdminHandler struct {
	userService       services.UserService
	assignmentService services.AssignmentService
	evaluationService services.EvaluationService
	submissionService services.SubmissionService
	exportService     services.ExportService
}

func NewAdminHandler(
	userService services.UserService,
	assignmentService services.AssignmentService,
	evaluationService services.EvaluationService,
	submissionService services.SubmissionService,
	exportService services.ExportService,
) *AdminHandler {
	return &AdminHandler{
		userService:       userService,
		assignmentService: assignmentService,
		evaluationService: evaluationService,
		submissionService: submissionService,
		exportService:     exportService,
	}
}

// UpdateUserRole grants a role to a user, subject to the caller's own
// role (admins cannot mint admins, superadmins are untouchable).
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	actorRole, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Role models.UserRole `json:"role" validate:"required"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.UpdateRole(r.Context(), actorRole, userID, input.Role)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DistributeAssignments partitions a competition's submissions across
// the judge pool and replaces any previous distribution.
func (h *AdminHandler) DistributeAssignments(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.assignmentService.Distribute(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"distribution": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	assignments, err := h.assignmentService.ListByCompetition(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"assignments": assignments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EvaluateSubmission runs automated scoring on one submission.
func (h *AdminHandler) EvaluateSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID, err := getIDFromURL(r, "submissionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	submission, err := h.evaluationService.EvaluateSubmission(r.Context(), submissionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"submission": submission}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EvaluatePending runs automated scoring on every pending submission in
// the competition.
func (h *AdminHandler) EvaluatePending(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	evaluated, failed, err := h.evaluationService.EvaluatePending(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"evaluated": evaluated,
		"failed":    failed,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	submissions, err := h.submissionService.ListByCompetition(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"submissions": submissions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MarkForManualReview flags a submission for a human pass.
func (h *AdminHandler) MarkForManualReview(w http.ResponseWriter, r *http.Request) {
	submissionID, err := getIDFromURL(r, "submissionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	submission, err := h.submissionService.MarkForManualReview(r.Context(), submissionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"submission": submission}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportParticipants streams the participants CSV.
func (h *AdminHandler) ExportParticipants(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.exportService.ExportParticipants)
}

// ExportSubmissions streams the submissions CSV.
func (h *AdminHandler) ExportSubmissions(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.exportService.ExportSubmissions)
}

func (h *AdminHandler) export(
	w http.ResponseWriter,
	r *http.Request,
	run func(ctx context.Context, competitionID int) (*services.ExportResult, error),
) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := run(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	if result.ArchiveURL != "" {
		w.Header().Set("X-Archive-Location", result.ArchiveURL)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data)
}
