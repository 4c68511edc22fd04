package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/hackclub/food-passport/internal/apperror"
	"github.com/hackclub/food-passport/internal/model"
	"github.com/hackclub/food-passport/internal/repository"
)

// UserDB implements repository.UserRepository.
type UserDB struct {
	conn *sql.DB
}

var _ repository.UserRepository = (*UserDB)(nil)

// Upsert inserts or updates a user keyed by their Slack ID.
//
// Slack guarantees the user ID is stable and unique, so login can always
// upsert on slack_id: first login inserts, every later login refreshes the
// profile fields. The existing internal ID and club reference are kept —
// re-logging-in must never detach someone from their club.
//
// We look the row up first instead of using INSERT OR REPLACE because
// REPLACE would delete-and-reinsert, firing the ON DELETE CASCADE on
// user_workshops and silently wiping the user's submissions.
func (u *UserDB) Upsert(ctx context.Context, user *model.User) error {
	var existingID string
	var clubID sql.NullString
	err := u.conn.QueryRowContext(ctx,
		`SELECT id, club_id FROM users WHERE slack_id = ?`, user.SlackID,
	).Scan(&existingID, &clubID)

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: looking up user by slack_id %s: %w", user.SlackID, err)
	}

	if existingID != "" {
		user.ID = existingID
		if clubID.Valid {
			user.ClubID = &clubID.String
		}
		user.UpdatedAt = time.Now()
		_, err = u.conn.ExecContext(ctx,
			`UPDATE users SET display_name = ?, email = ?, avatar_url = ?, role = ?, updated_at = ?
			 WHERE id = ?`,
			user.DisplayName, user.Email, user.AvatarURL, user.Role, user.UpdatedAt, user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleLeader
	}

	_, err = u.conn.ExecContext(ctx,
		`INSERT INTO users (id, slack_id, display_name, email, avatar_url, role, club_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		user.ID, user.SlackID, user.DisplayName, user.Email, user.AvatarURL, user.Role,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user (slackID=%s): %w", user.SlackID, err)
	}

	return nil
}

// GetByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := u.conn.QueryRowContext(ctx,
		`SELECT id, slack_id, display_name, email, avatar_url, role, club_id, created_at, updated_at
		 FROM users WHERE id = ?`, id,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return user, nil
}

// GetProfile returns the user joined with their club in one query.
// Club is nil when the user hasn't joined one.
func (u *UserDB) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	var clubID sql.NullString
	var cID, cName, cJoinCode, cLocation, cDescription sql.NullString
	var cCreatedAt sql.NullTime

	err := u.conn.QueryRowContext(ctx,
		`SELECT u.id, u.slack_id, u.display_name, u.email, u.avatar_url, u.role, u.club_id,
		        u.created_at, u.updated_at,
		        c.id, c.name, c.join_code, c.location, c.description, c.created_at
		 FROM users u
		 LEFT JOIN clubs c ON c.id = u.club_id
		 WHERE u.id = ?`, id,
	).Scan(
		&p.ID, &p.SlackID, &p.DisplayName, &p.Email, &p.AvatarURL, &p.Role, &clubID,
		&p.CreatedAt, &p.UpdatedAt,
		&cID, &cName, &cJoinCode, &cLocation, &cDescription, &cCreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting profile %s: %w", id, err)
	}

	if clubID.Valid {
		p.ClubID = &clubID.String
	}
	if cID.Valid {
		p.Club = &model.Club{
			ID:          cID.String,
			Name:        cName.String,
			JoinCode:    cJoinCode.String,
			Location:    cLocation.String,
			Description: cDescription.String,
			CreatedAt:   cCreatedAt.Time,
		}
	}

	return &p, nil
}

// SetClub points the user's club reference at clubID. Setting the same
// club twice is a no-op beyond rewriting the same value.
func (u *UserDB) SetClub(ctx context.Context, userID, clubID string) error {
	res, err := u.conn.ExecContext(ctx,
		`UPDATE users SET club_id = ?, updated_at = ? WHERE id = ?`,
		clubID, time.Now(), userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting club for user %s: %w", userID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: setting club for user %s: %w", userID, err)
	}
	if rows == 0 {
		return apperror.NotFound("user", userID)
	}
	return nil
}

// scanUser reads a full user row. Works for both QueryRow and Rows via the
// shared scanner interface.
func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var clubID sql.NullString
	err := row.Scan(
		&u.ID, &u.SlackID, &u.DisplayName, &u.Email, &u.AvatarURL, &u.Role, &clubID,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if clubID.Valid {
		u.ClubID = &clubID.String
	}
	return &u, nil
}
