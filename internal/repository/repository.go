// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage is the only implementation;
// tests substitute hand-written fakes.
package repository

import (
	"context"

	"github.com/hackclub/food-passport/internal/model"
)

// UserRepository manages user records keyed by internal ID, with upsert
// keyed by the stable Slack ID.
type UserRepository interface {
	// Upsert inserts or updates by user.SlackID. On update the existing
	// internal ID and club reference are preserved; profile fields and
	// role take the incoming values. Idempotent: N calls with the same
	// SlackID leave exactly one row.
	Upsert(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetProfile returns the user joined with their club (nil when none).
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	SetClub(ctx context.Context, userID, clubID string) error
}

// ClubRepository manages clubs and the atomic create-and-bind-owner step.
type ClubRepository interface {
	// CreateWithOwner inserts the club and sets ownerID's club reference
	// in a single transaction. If the owner doesn't resolve, nothing is
	// written — no orphan club rows.
	CreateWithOwner(ctx context.Context, club *model.Club, ownerID string) error
	GetByID(ctx context.Context, id string) (*model.Club, error)
	GetByJoinCode(ctx context.Context, joinCode string) (*model.Club, error)
	// List returns all clubs with leader/member display data for the
	// admin dashboard.
	List(ctx context.Context) ([]model.ClubRecord, error)
	Delete(ctx context.Context, id string) error
}

// WorkshopRepository reads the seeded workshop set.
type WorkshopRepository interface {
	GetByID(ctx context.Context, id string) (*model.Workshop, error)
	GetBySlug(ctx context.Context, slug string) (*model.Workshop, error)
	// ListVisible returns workshops scoped "global" plus those scoped to
	// clubJoinCode. An empty clubJoinCode returns only global workshops.
	ListVisible(ctx context.Context, clubJoinCode string) ([]model.Workshop, error)
}

// SubmissionRepository manages the (user, workshop) submission register.
type SubmissionRepository interface {
	// Upsert writes the submission keyed by (UserID, WorkshopID).
	// Last write wins — there is no history of previous attempts.
	Upsert(ctx context.Context, sub *model.Submission) error
	Get(ctx context.Context, userID, workshopID string) (*model.Submission, error)
	ListByUser(ctx context.Context, userID string) ([]model.Submission, error)
	// ListAll returns every submission with denormalized display fields
	// for the admin dashboard. No server-side filtering.
	ListAll(ctx context.Context) ([]model.SubmissionRecord, error)
	Delete(ctx context.Context, userID, workshopID string) error
}
