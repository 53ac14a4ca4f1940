package handlers

import (
	"net/http"

	"github.com/promptarena/prompt-arena/middleware"
	"github.com/promptarena/prompt-arena/services"
)

const defaultLeaderboardPageSize = 50

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// GetPage returns one page of the persisted leaderboard. Pagination is
// cursor-based on rank: pass the last rank of the previous page as
// after_rank.
func (h *LeaderboardHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pageSize, err := queryInt(r, "page_size", defaultLeaderboardPageSize)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = defaultLeaderboardPageSize
	}

	afterRank, err := queryInt(r, "after_rank", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if afterRank < 0 {
		afterRank = 0
	}

	page, err := h.leaderboardService.GetPage(r.Context(), competitionID, pageSize, afterRank)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": page}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetMyEntry returns the caller's own leaderboard row. Responds 404 while
// the board has not been built or the caller has no scored submissions.
func (h *LeaderboardHandler) GetMyEntry(w http.ResponseWriter, r *http.Request) {
	participantID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.leaderboardService.GetEntryForParticipant(r.Context(), competitionID, participantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Rebuild recomputes and persists the leaderboard (admin only).
func (h *LeaderboardHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.leaderboardService.Build(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"entries": len(entries),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
