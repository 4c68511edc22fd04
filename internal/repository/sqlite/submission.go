package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hackclub/food-passport/internal/apperror"
	"github.com/hackclub/food-passport/internal/model"
	"github.com/hackclub/food-passport/internal/repository"
)

// SubmissionDB implements repository.SubmissionRepository over the
// user_workshops table.
type SubmissionDB struct {
	conn *sql.DB
}

var _ repository.SubmissionRepository = (*SubmissionDB)(nil)

// Upsert writes a submission keyed by (user_id, workshop_id).
//
// ON CONFLICT DO UPDATE is a single atomic statement — two overlapping
// submits for the same pair serialize at the row and the later one wins.
// Unlike INSERT OR REPLACE it doesn't delete-and-reinsert, so foreign keys
// and the rowid are left alone.
func (s *SubmissionDB) Upsert(ctx context.Context, sub *model.Submission) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO user_workshops (user_id, workshop_id, completed, submitted_at, event_code, photo_ref, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, workshop_id) DO UPDATE SET
		 	completed    = excluded.completed,
		 	submitted_at = excluded.submitted_at,
		 	event_code   = excluded.event_code,
		 	photo_ref    = excluded.photo_ref,
		 	notes        = excluded.notes`,
		sub.UserID, sub.WorkshopID, sub.Completed, sub.SubmittedAt,
		sub.EventCode, sub.PhotoRef, sub.Notes,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting submission (%s, %s): %w", sub.UserID, sub.WorkshopID, err)
	}
	return nil
}

// Get retrieves one submission by its composite key.
func (s *SubmissionDB) Get(ctx context.Context, userID, workshopID string) (*model.Submission, error) {
	var sub model.Submission
	err := s.conn.QueryRowContext(ctx,
		`SELECT user_id, workshop_id, completed, submitted_at, event_code, photo_ref, notes
		 FROM user_workshops WHERE user_id = ? AND workshop_id = ?`,
		userID, workshopID,
	).Scan(&sub.UserID, &sub.WorkshopID, &sub.Completed, &sub.SubmittedAt,
		&sub.EventCode, &sub.PhotoRef, &sub.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("submission", userID+"/"+workshopID)
		}
		return nil, fmt.Errorf("sqlite: getting submission (%s, %s): %w", userID, workshopID, err)
	}
	return &sub, nil
}

// ListByUser returns all of one user's submissions, used to merge
// completion state into the passport view.
func (s *SubmissionDB) ListByUser(ctx context.Context, userID string) ([]model.Submission, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT user_id, workshop_id, completed, submitted_at, event_code, photo_ref, notes
		 FROM user_workshops WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing submissions for user %s: %w", userID, err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var sub model.Submission
		if err := rows.Scan(&sub.UserID, &sub.WorkshopID, &sub.Completed, &sub.SubmittedAt,
			&sub.EventCode, &sub.PhotoRef, &sub.Notes); err != nil {
			return nil, fmt.Errorf("sqlite: scanning submission row: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ListAll returns every submission joined with user, workshop, and club
// display data for the admin dashboard. Filtering is client-side, so this
// always returns the full set, newest first.
func (s *SubmissionDB) ListAll(ctx context.Context) ([]model.SubmissionRecord, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT s.user_id, s.workshop_id, s.completed, s.submitted_at, s.event_code, s.photo_ref, s.notes,
		        u.display_name, u.slack_id,
		        w.slug, w.title, w.emoji,
		        COALESCE(c.name, '')
		 FROM user_workshops s
		 JOIN users u      ON u.id = s.user_id
		 JOIN workshops w  ON w.id = s.workshop_id
		 LEFT JOIN clubs c ON c.id = u.club_id
		 ORDER BY s.submitted_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing all submissions: %w", err)
	}
	defer rows.Close()

	records := []model.SubmissionRecord{}
	for rows.Next() {
		var r model.SubmissionRecord
		if err := rows.Scan(&r.UserID, &r.WorkshopID, &r.Completed, &r.SubmittedAt,
			&r.EventCode, &r.PhotoRef, &r.Notes,
			&r.UserName, &r.UserSlackID,
			&r.WorkshopSlug, &r.WorkshopTitle, &r.WorkshopEmoji,
			&r.ClubName); err != nil {
			return nil, fmt.Errorf("sqlite: scanning submission record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Delete hard-deletes one submission.
func (s *SubmissionDB) Delete(ctx context.Context, userID, workshopID string) error {
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM user_workshops WHERE user_id = ? AND workshop_id = ?`,
		userID, workshopID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting submission (%s, %s): %w", userID, workshopID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting submission (%s, %s): %w", userID, workshopID, err)
	}
	if rows == 0 {
		return apperror.NotFound("submission", userID+"/"+workshopID)
	}
	return nil
}
