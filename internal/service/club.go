package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hackclub/food-passport/internal/apperror"
	"github.com/hackclub/food-passport/internal/directory"
	"github.com/hackclub/food-passport/internal/model"
	"github.com/hackclub/food-passport/internal/repository"
)

// JOIN CODE ALPHABET:
// Uppercase letters and digits minus the lookalikes (I, L, O, 0, 1) — these
// codes get read aloud at club meetings and typed from a whiteboard.
const joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	joinCodeLength    = 6
	maxClubNameLength = 100
	createAttempts    = 3
)

// ClubService handles club creation, membership, and the admin club views.
//
// The directory client is optional (nil when no API key is configured);
// LookupClub degrades to "not found" and everything else works unchanged.
type ClubService struct {
	users  repository.UserRepository
	clubs  repository.ClubRepository
	lookup *directory.Client
	logger *slog.Logger
}

// NewClubService creates a ClubService. lookup may be nil.
func NewClubService(
	users repository.UserRepository,
	clubs repository.ClubRepository,
	lookup *directory.Client,
	logger *slog.Logger,
) *ClubService {
	return &ClubService{
		users:  users,
		clubs:  clubs,
		lookup: lookup,
		logger: logger,
	}
}

// GetProfile returns the user together with their club, if any.
func (s *ClubService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return s.users.GetProfile(ctx, userID)
}

// ResolveRole reports the user's current role from the database. This is
// what the admin middleware consults, so a role change applies on the very
// next request instead of waiting for the session token to expire.
func (s *ClubService) ResolveRole(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// CreateClub registers a club and makes the creator its first member.
//
// The club row and the creator's membership land in one transaction
// (ClubRepository.CreateWithOwner), so a failed assignment leaves no
// orphaned club behind.
//
// Join codes are random, and random means collisions are possible — a
// duplicate surfaces as a UNIQUE violation from the insert, so we retry
// with a fresh code a couple of times before giving up.
func (s *ClubService) CreateClub(ctx context.Context, ownerID, name, location, description string) (*model.Club, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "club name is required")
	}
	if len(name) > maxClubNameLength {
		return nil, apperror.ValidationFailed("name", fmt.Sprintf("club name must be at most %d characters", maxClubNameLength))
	}

	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		club := &model.Club{
			Name:        name,
			JoinCode:    newJoinCode(),
			Location:    strings.TrimSpace(location),
			Description: strings.TrimSpace(description),
		}
		err := s.clubs.CreateWithOwner(ctx, club, ownerID)
		if err == nil {
			s.logger.Info("club created",
				slog.String("club_id", club.ID),
				slog.String("join_code", club.JoinCode),
				slog.String("owner_id", ownerID),
			)
			return club, nil
		}
		if errors.Is(err, apperror.ErrNotFound) {
			// The owner row is gone; a new code won't fix that.
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("service: creating club: %w", lastErr)
}

// JoinClub attaches the user to the club with the given join code.
// Joining a club you are already in is a no-op, not an error.
func (s *ClubService) JoinClub(ctx context.Context, userID, joinCode string) (*model.Club, error) {
	joinCode = normalizeJoinCode(joinCode)
	if joinCode == "" {
		return nil, apperror.ValidationFailed("joinCode", "join code is required")
	}

	club, err := s.clubs.GetByJoinCode(ctx, joinCode)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetClub(ctx, userID, club.ID); err != nil {
		return nil, err
	}

	s.logger.Info("user joined club",
		slog.String("user_id", userID),
		slog.String("club_id", club.ID),
	)
	return club, nil
}

// LookupClub asks the hosted Hack Club directory about a join code so the
// create-club form can be prefilled. An unconfigured client and an unknown
// code both come back as ErrNotFound — the form just stays blank.
func (s *ClubService) LookupClub(ctx context.Context, code string) (*directory.ClubInfo, error) {
	code = normalizeJoinCode(code)
	if code == "" {
		return nil, apperror.ValidationFailed("code", "lookup code is required")
	}

	info, err := s.lookup.LookupClub(ctx, code)
	if err != nil {
		if errors.Is(err, directory.ErrNotConfigured) {
			return nil, apperror.NotFound("club", code)
		}
		s.logger.Warn("directory lookup failed", slog.String("code", code), slog.String("error", err.Error()))
		return nil, apperror.NotFound("club", code)
	}
	return info, nil
}

// ListClubs returns every club with leader and member-count summaries.
// Admin only; the handler layer enforces that.
func (s *ClubService) ListClubs(ctx context.Context) ([]model.ClubRecord, error) {
	return s.clubs.List(ctx)
}

// DeleteClub removes a club. Members are detached (club_id set to NULL by
// the schema), never deleted.
func (s *ClubService) DeleteClub(ctx context.Context, id string) error {
	if err := s.clubs.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("club deleted", slog.String("club_id", id))
	return nil
}

func newJoinCode() string {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("service: reading random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf)
}

func normalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
