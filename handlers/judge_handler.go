package handlers

import (
	"net/http"

	"github.com/promptarena/prompt-arena/middleware"
	"github.com/promptarena/prompt-arena/models"
	"github.com/promptarena/prompt-arena/services"
)

type JudgeHandler struct {
	assignmentService services.AssignmentService
	reviewService     services.ReviewService
}

func NewJudgeHandler(
	assignmentService services.AssignmentService,
	reviewService services.ReviewService,
) *JudgeHandler {
	return &JudgeHandler{
		assignmentService: assignmentService,
		reviewService:     reviewService,
	}
}

// GetAssignments returns one judge's assignment record. Judges may only
// read their own; admins may read anyone's.
func (h *JudgeHandler) GetAssignments(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	callerRole, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	judgeID, err := getIDFromURL(r, "judgeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	isAdmin := callerRole == models.RoleAdmin || callerRole == models.RoleSuperAdmin
	if judgeID != callerID && !isAdmin {
		forbiddenResponse(w, r, "judges may only view their own assignments")
		return
	}

	assignment, err := h.assignmentService.GetForJudge(r.Context(), competitionID, judgeID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"assignment": assignment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetAssignedSubmission returns a submission for review. The caller's
// assignment record gates the read: a judge cannot fetch a submission
// that was never distributed to them.
func (h *JudgeHandler) GetAssignedSubmission(w http.ResponseWriter, r *http.Request) {
	judgeID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	id, err := getIDFromURL(r, "submissionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	submission, err := h.reviewService.GetForReview(r.Context(), judgeID, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"submission": submission}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitReview records the caller's rubric scores for a submission.
func (h *JudgeHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	judgeID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	submissionID, err := getIDFromURL(r, "submissionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ReviewInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if fields := validateStruct(input); fields != nil {
		failedValidationResponse(w, r, fields)
		return
	}

	submission, err := h.reviewService.SubmitReview(r.Context(), judgeID, submissionID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"submission": submission}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
