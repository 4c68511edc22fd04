package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/hackclub/food-passport/internal/apperror"
	"github.com/hackclub/food-passport/internal/model"
	"github.com/hackclub/food-passport/internal/repository"
)

// WorkshopDB implements repository.WorkshopRepository.
type WorkshopDB struct {
	conn *sql.DB
}

var _ repository.WorkshopRepository = (*WorkshopDB)(nil)

const workshopColumns = `id, slug, title, emoji, description, scope`

// GetByID retrieves a workshop by ID.
func (w *WorkshopDB) GetByID(ctx context.Context, id string) (*model.Workshop, error) {
	ws, err := w.getWhere(ctx, "id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("workshop", id)
		}
		return nil, fmt.Errorf("sqlite: getting workshop %s: %w", id, err)
	}
	return ws, nil
}

// GetBySlug retrieves a workshop by its URL-friendly slug.
func (w *WorkshopDB) GetBySlug(ctx context.Context, slug string) (*model.Workshop, error) {
	ws, err := w.getWhere(ctx, "slug = ?", slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("workshop", slug)
		}
		return nil, fmt.Errorf("sqlite: getting workshop by slug %s: %w", slug, err)
	}
	return ws, nil
}

func (w *WorkshopDB) getWhere(ctx context.Context, where string, arg any) (*model.Workshop, error) {
	var ws model.Workshop
	err := w.conn.QueryRowContext(ctx,
		`SELECT `+workshopColumns+` FROM workshops WHERE `+where, arg,
	).Scan(&ws.ID, &ws.Slug, &ws.Title, &ws.Emoji, &ws.Description, &ws.Scope)
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// ListVisible returns all workshops visible to a member of the club with
// the given join code: the global set plus that club's private workshops.
// An empty code (user without a club) returns only the global set.
// No pagination — the full visible set is small and returned every call.
func (w *WorkshopDB) ListVisible(ctx context.Context, clubJoinCode string) ([]model.Workshop, error) {
	rows, err := w.conn.QueryContext(ctx,
		`SELECT `+workshopColumns+`
		 FROM workshops
		 WHERE scope = ? OR (? != '' AND scope = ?)
		 ORDER BY slug`,
		model.ScopeGlobal, clubJoinCode, clubJoinCode,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing workshops: %w", err)
	}
	defer rows.Close()

	workshops := []model.Workshop{}
	for rows.Next() {
		var ws model.Workshop
		if err := rows.Scan(&ws.ID, &ws.Slug, &ws.Title, &ws.Emoji, &ws.Description, &ws.Scope); err != nil {
			return nil, fmt.Errorf("sqlite: scanning workshop row: %w", err)
		}
		workshops = append(workshops, ws)
	}
	return workshops, rows.Err()
}

// Create inserts a workshop. Used by the migration seeds and by tests that
// need club-scoped workshops; there is no user-facing authoring flow.
func (w *WorkshopDB) Create(ctx context.Context, ws *model.Workshop) error {
	if ws.ID == "" {
		ws.ID = xid.New().String()
	}
	if ws.Scope == "" {
		ws.Scope = model.ScopeGlobal
	}
	_, err := w.conn.ExecContext(ctx,
		`INSERT INTO workshops (id, slug, title, emoji, description, scope)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ws.ID, ws.Slug, ws.Title, ws.Emoji, ws.Description, ws.Scope,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting workshop %s: %w", ws.Slug, err)
	}
	return nil
}
