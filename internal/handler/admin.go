package handler

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/hackclub/food-passport/internal/service"
)

// AdminHandler serves the HQ dashboard: every submission and club across
// all users, deletions for cleaning up test data, and the stored photos.
// The router wraps all of these in auth.RequireAdmin.
type AdminHandler struct {
	clubs    *service.ClubService
	passport *service.PassportService
	logger   *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(clubs *service.ClubService, passport *service.PassportService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{clubs: clubs, passport: passport, logger: logger}
}

// HandleListSubmissions returns every submission with user, workshop, and
// club display fields joined in. Filtering happens client-side.
//
// HTTP: GET /api/admin/submissions
func (h *AdminHandler) HandleListSubmissions(w http.ResponseWriter, r *http.Request) {
	records, err := h.passport.ListSubmissions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// HandleListClubs returns every club with leader and member-count
// summaries.
//
// HTTP: GET /api/admin/clubs
func (h *AdminHandler) HandleListClubs(w http.ResponseWriter, r *http.Request) {
	records, err := h.clubs.ListClubs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// HandleDeleteSubmission removes a single submission, identified by the
// (user, workshop) pair that keys the register.
//
// HTTP: DELETE /api/admin/submissions/{userID}/{workshopID}
func (h *AdminHandler) HandleDeleteSubmission(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	workshopID := chi.URLParam(r, "workshopID")

	if err := h.passport.DeleteSubmission(r.Context(), userID, workshopID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleDeleteClub removes a club. Members are detached, not deleted, and
// their submissions survive.
//
// HTTP: DELETE /api/admin/clubs/{id}
func (h *AdminHandler) HandleDeleteClub(w http.ResponseWriter, r *http.Request) {
	if err := h.clubs.DeleteClub(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandlePhoto streams a stored submission photo.
//
// HTTP: GET /uploads/{ref}
//
// Photos hold kids' faces and locations, so this sits behind the admin
// gate rather than being served as a public static directory.
func (h *AdminHandler) HandlePhoto(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")

	f, err := h.passport.OpenPhoto(ref)
	if err != nil {
		writeError(w, err)
		return
	}
	defer f.Close()

	if ct := mime.TypeByExtension(filepath.Ext(ref)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	// Content-addressed names never change, so cache hard.
	w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	if _, err := io.Copy(w, f); err != nil {
		h.logger.Warn("streaming photo failed", slog.String("ref", ref), slog.String("error", err.Error()))
	}
}
