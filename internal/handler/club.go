package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hackclub/food-passport/internal/apperror"
	"github.com/hackclub/food-passport/internal/auth"
	"github.com/hackclub/food-passport/internal/service"
)

// ClubHandler manages club creation, joining, and directory lookups.
type ClubHandler struct {
	clubs  *service.ClubService
	logger *slog.Logger
}

// NewClubHandler creates a ClubHandler.
func NewClubHandler(clubs *service.ClubService, logger *slog.Logger) *ClubHandler {
	return &ClubHandler{clubs: clubs, logger: logger}
}

// createClubRequest is the JSON body for POST /api/clubs. Location and
// description are optional — the frontend may prefill them from a
// directory lookup.
type createClubRequest struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

type joinClubRequest struct {
	JoinCode string `json:"joinCode"`
}

// HandleCreate registers a new club with the caller as its first member.
//
// HTTP: POST /api/clubs (requires auth)
func (h *ClubHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("no_credential", "not logged in"))
		return
	}

	var req createClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	club, err := h.clubs.CreateClub(r.Context(), session.UserID, req.Name, req.Location, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, club)
}

// HandleJoin attaches the caller to an existing club by join code.
//
// HTTP: POST /api/clubs/join (requires auth)
func (h *ClubHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("no_credential", "not logged in"))
		return
	}

	var req joinClubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	club, err := h.clubs.JoinClub(r.Context(), session.UserID, req.JoinCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, club)
}

// HandleLookup asks the hosted directory about a join code so the create
// form can be prefilled. Unknown code, or no directory configured, is a
// plain 404 — the form just stays blank.
//
// HTTP: GET /api/clubs/lookup?code=CHEF01 (requires auth)
func (h *ClubHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	info, err := h.clubs.LookupClub(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
