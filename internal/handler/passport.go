package handler

import (
	"log/slog"
	"net/http"

	"github.com/hackclub/food-passport/internal/apperror"
	"github.com/hackclub/food-passport/internal/auth"
	"github.com/hackclub/food-passport/internal/service"
	"github.com/hackclub/food-passport/internal/storage"
)

// maxSubmitForm bounds the whole multipart form: the photo cap plus slack
// for the text fields and multipart framing.
const maxSubmitForm = storage.MaxPhotoSize + 2<<20

// PassportHandler serves the workshop passport: the list of workshops with
// the caller's submissions, and the submission endpoint itself.
type PassportHandler struct {
	passport *service.PassportService
	logger   *slog.Logger
}

// NewPassportHandler creates a PassportHandler.
func NewPassportHandler(passport *service.PassportService, logger *slog.Logger) *PassportHandler {
	return &PassportHandler{passport: passport, logger: logger}
}

// HandleList returns every workshop visible to the caller, each annotated
// with the caller's submission when one exists.
//
// HTTP: GET /api/workshops (requires auth)
func (h *PassportHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("no_credential", "not logged in"))
		return
	}

	entries, err := h.passport.ListPassport(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleSubmit records a workshop completion.
//
// HTTP: POST /api/submissions (requires auth)
//
// MULTIPART FORM:
// The photo makes this a multipart/form-data request, not JSON:
//   - photo        (file, required)
//   - eventCode    (required)
//   - workshopSlug or workshopId (one required)
//   - notes        (optional)
//
// Resubmitting for the same workshop replaces the previous entry.
func (h *PassportHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("no_credential", "not logged in"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSubmitForm)
	if err := r.ParseMultipartForm(maxSubmitForm); err != nil {
		writeError(w, apperror.ValidationFailed("body", "expected a multipart form with a photo"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := service.SubmitRequest{
		WorkshopID:   r.FormValue("workshopId"),
		WorkshopSlug: r.FormValue("workshopSlug"),
		EventCode:    r.FormValue("eventCode"),
		Notes:        r.FormValue("notes"),
	}

	file, header, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		req.Photo = file
		req.PhotoContentType = header.Header.Get("Content-Type")
	}
	// err != nil leaves req.Photo nil; the service turns that into a
	// validation error with a proper message.

	sub, err := h.passport.Submit(r.Context(), session.UserID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	// 200, not 201: submit is an upsert, so the "resource created" signal
	// would be wrong on every resubmission.
	writeJSON(w, http.StatusOK, sub)
}
