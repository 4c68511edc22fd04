package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hackclub/food-passport/internal/apperror"
	"github.com/hackclub/food-passport/internal/model"
	"github.com/hackclub/food-passport/internal/repository"
	"github.com/hackclub/food-passport/internal/storage"
)

// PassportService handles the workshop register: which workshops a user can
// see, recording a submission, and the admin views over all submissions.
type PassportService struct {
	users       repository.UserRepository
	workshops   repository.WorkshopRepository
	submissions repository.SubmissionRepository
	photos      *storage.PhotoStore
	logger      *slog.Logger
}

// NewPassportService creates a PassportService.
func NewPassportService(
	users repository.UserRepository,
	workshops repository.WorkshopRepository,
	submissions repository.SubmissionRepository,
	photos *storage.PhotoStore,
	logger *slog.Logger,
) *PassportService {
	return &PassportService{
		users:       users,
		workshops:   workshops,
		submissions: submissions,
		photos:      photos,
		logger:      logger,
	}
}

// SubmitRequest carries everything a workshop submission needs. Either
// WorkshopID or WorkshopSlug identifies the workshop; ID wins when both are
// set.
type SubmitRequest struct {
	WorkshopID       string
	WorkshopSlug     string
	EventCode        string
	Notes            string
	Photo            io.Reader
	PhotoContentType string
}

// ListPassport returns every workshop visible to the user, each annotated
// with the user's submission when one exists.
//
// VISIBILITY:
// Global workshops are visible to everyone. Club-scoped workshops are
// visible only to members of that club, keyed by the club's join code.
func (s *PassportService) ListPassport(ctx context.Context, userID string) ([]model.PassportEntry, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	clubCode := ""
	if profile.Club != nil {
		clubCode = profile.Club.JoinCode
	}

	workshops, err := s.workshops.ListVisible(ctx, clubCode)
	if err != nil {
		return nil, err
	}
	subs, err := s.submissions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byWorkshop := make(map[string]*model.Submission, len(subs))
	for i := range subs {
		byWorkshop[subs[i].WorkshopID] = &subs[i]
	}

	entries := make([]model.PassportEntry, 0, len(workshops))
	for _, ws := range workshops {
		entries = append(entries, model.PassportEntry{
			Workshop:   ws,
			Submission: byWorkshop[ws.ID],
		})
	}
	return entries, nil
}

// Submit records (or re-records) that the user completed a workshop.
//
// LAST WRITE WINS:
// A resubmission for the same workshop replaces the previous event code,
// photo, and notes — the repository upserts on (user, workshop), so there
// is never more than one row per pair.
func (s *PassportService) Submit(ctx context.Context, userID string, req SubmitRequest) (*model.Submission, error) {
	eventCode := strings.TrimSpace(req.EventCode)
	if eventCode == "" {
		return nil, apperror.ValidationFailed("eventCode", "event code is required")
	}
	if req.Photo == nil {
		return nil, apperror.ValidationFailed("photo", "a photo of the result is required")
	}

	workshop, err := s.resolveWorkshop(ctx, req.WorkshopID, req.WorkshopSlug)
	if err != nil {
		return nil, err
	}

	photoRef, err := s.photos.Save(req.Photo, req.PhotoContentType)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUnsupportedType):
			return nil, apperror.ValidationFailed("photo", "photo must be a jpeg, png, gif, webp, or heic image")
		case errors.Is(err, storage.ErrTooLarge):
			return nil, apperror.ValidationFailed("photo", "photo is too large (10 MiB max)")
		case errors.Is(err, storage.ErrEmpty):
			return nil, apperror.ValidationFailed("photo", "photo upload was empty")
		default:
			return nil, fmt.Errorf("service: storing photo: %w", err)
		}
	}

	sub := &model.Submission{
		UserID:      userID,
		WorkshopID:  workshop.ID,
		Completed:   true,
		SubmittedAt: time.Now().UTC(),
		EventCode:   eventCode,
		PhotoRef:    photoRef,
		Notes:       strings.TrimSpace(req.Notes),
	}
	if err := s.submissions.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("service: recording submission: %w", err)
	}

	s.logger.Info("workshop submitted",
		slog.String("user_id", userID),
		slog.String("workshop", workshop.Slug),
		slog.String("event_code", eventCode),
	)
	return sub, nil
}

// ListSubmissions returns every submission with user, workshop, and club
// display fields joined in. Admin only.
func (s *PassportService) ListSubmissions(ctx context.Context) ([]model.SubmissionRecord, error) {
	return s.submissions.ListAll(ctx)
}

// DeleteSubmission removes one submission. The photo file stays on disk —
// content-addressed files may be shared between submissions.
func (s *PassportService) DeleteSubmission(ctx context.Context, userID, workshopID string) error {
	if err := s.submissions.Delete(ctx, userID, workshopID); err != nil {
		return err
	}
	s.logger.Info("submission deleted",
		slog.String("user_id", userID),
		slog.String("workshop_id", workshopID),
	)
	return nil
}

// OpenPhoto returns the stored photo for a submission reference.
func (s *PassportService) OpenPhoto(ref string) (io.ReadCloser, error) {
	f, err := s.photos.Open(ref)
	if err != nil {
		return nil, apperror.NotFound("photo", ref)
	}
	return f, nil
}

func (s *PassportService) resolveWorkshop(ctx context.Context, id, slug string) (*model.Workshop, error) {
	switch {
	case id != "":
		return s.workshops.GetByID(ctx, id)
	case slug != "":
		return s.workshops.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	default:
		return nil, apperror.ValidationFailed("workshop", "a workshop id or slug is required")
	}
}
