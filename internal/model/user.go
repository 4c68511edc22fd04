// Package model defines the data structures used throughout the application.
package model

import "time"

// Role values a user can hold. New accounts default to RoleLeader — the
// passport is aimed at club leaders, so "can create a club" is the
// first-class persona. RoleAdmin is granted via the ADMIN_SLACK_IDS config
// list and re-checked at every login.
const (
	RoleMember = "member"
	RoleLeader = "leader"
	RoleAdmin  = "admin"
)

// User represents a registered account.
//
// We use Slack OAuth as the identity provider, so the stable external
// identifier is the Slack user ID (a string like "U0123ABCD"). We still
// generate our own internal xid so primary keys aren't tied to a third
// party's numbering scheme.
//
// ClubID is a pointer because most users start without a club — nil means
// "no club yet", which maps cleanly to a NULL foreign key.
type User struct {
	ID          string    `json:"id"          db:"id"`
	SlackID     string    `json:"slackId"     db:"slack_id"` // Slack's user ID, e.g. "U0123ABCD"
	DisplayName string    `json:"displayName" db:"display_name"`
	Email       string    `json:"email"       db:"email"`      // may be empty if Slack doesn't share it
	AvatarURL   string    `json:"avatarUrl"   db:"avatar_url"` // largest image Slack offered, may be empty
	Role        string    `json:"role"        db:"role"`
	ClubID      *string   `json:"clubId"      db:"club_id"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}

// Profile is a user joined with their club, as returned by /api/me.
// Club is nil when the user hasn't created or joined one yet.
type Profile struct {
	User
	Club *Club `json:"club"`
}
