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

// ClubDB implements repository.ClubRepository.
type ClubDB struct {
	conn *sql.DB
}

var _ repository.ClubRepository = (*ClubDB)(nil)

// CreateWithOwner inserts the club and binds the owner in one transaction.
//
// "Create club" and "make this user a member of it" must be atomic: a club
// row nobody points at should never durably exist. A transaction gives us
// that directly — if the owner update touches zero rows (stale session,
// deleted user), the whole thing rolls back and the caller observes no
// partial state.
func (c *ClubDB) CreateWithOwner(ctx context.Context, club *model.Club, ownerID string) error {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning club transaction: %w", err)
	}
	defer tx.Rollback() // no-op after a successful Commit

	if club.ID == "" {
		club.ID = xid.New().String()
	}
	club.CreatedAt = time.Now()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO clubs (id, name, join_code, location, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		club.ID, club.Name, club.JoinCode, club.Location, club.Description, club.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting club %q: %w", club.Name, err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET club_id = ?, updated_at = ? WHERE id = ?`,
		club.ID, time.Now(), ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: assigning club to owner %s: %w", ownerID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: assigning club to owner %s: %w", ownerID, err)
	}
	if rows == 0 {
		return apperror.NotFound("user", ownerID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing club creation: %w", err)
	}
	return nil
}

// GetByID retrieves a club by ID.
func (c *ClubDB) GetByID(ctx context.Context, id string) (*model.Club, error) {
	club, err := c.getWhere(ctx, "id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("club", id)
		}
		return nil, fmt.Errorf("sqlite: getting club %s: %w", id, err)
	}
	return club, nil
}

// GetByJoinCode retrieves a club by its shareable join code.
func (c *ClubDB) GetByJoinCode(ctx context.Context, joinCode string) (*model.Club, error) {
	club, err := c.getWhere(ctx, "join_code = ?", joinCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("club", joinCode)
		}
		return nil, fmt.Errorf("sqlite: getting club by code %s: %w", joinCode, err)
	}
	return club, nil
}

func (c *ClubDB) getWhere(ctx context.Context, where string, arg any) (*model.Club, error) {
	var club model.Club
	err := c.conn.QueryRowContext(ctx,
		`SELECT id, name, join_code, location, description, created_at
		 FROM clubs WHERE `+where, arg,
	).Scan(&club.ID, &club.Name, &club.JoinCode, &club.Location, &club.Description, &club.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// List returns every club with the denormalized display fields the admin
// dashboard shows. "Leader" is the earliest member — clubs don't carry an
// owner column; ownership is just the creating leader's membership.
func (c *ClubDB) List(ctx context.Context) ([]model.ClubRecord, error) {
	rows, err := c.conn.QueryContext(ctx,
		`SELECT c.id, c.name, c.join_code, c.location, c.description, c.created_at,
		        COALESCE((SELECT u.display_name FROM users u
		                  WHERE u.club_id = c.id ORDER BY u.created_at LIMIT 1), ''),
		        (SELECT COUNT(*) FROM users u WHERE u.club_id = c.id)
		 FROM clubs c
		 ORDER BY c.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing clubs: %w", err)
	}
	defer rows.Close()

	records := []model.ClubRecord{}
	for rows.Next() {
		var r model.ClubRecord
		if err := rows.Scan(
			&r.ID, &r.Name, &r.JoinCode, &r.Location, &r.Description, &r.CreatedAt,
			&r.LeaderName, &r.MemberCount,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning club row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Delete hard-deletes a club. The users.club_id foreign key is declared
// ON DELETE SET NULL, so members are detached, not removed; their
// submissions are untouched.
func (c *ClubDB) Delete(ctx context.Context, id string) error {
	res, err := c.conn.ExecContext(ctx, `DELETE FROM clubs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting club %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting club %s: %w", id, err)
	}
	if rows == 0 {
		return apperror.NotFound("club", id)
	}
	return nil
}
