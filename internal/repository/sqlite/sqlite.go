// Package sqlite implements the repository interfaces over SQLite.
//
// WHY SQLITE?
// The passport is a single small server; an embedded database keeps the
// deployment to one binary plus one file. We use modernc.org/sqlite — a
// pure-Go translation of SQLite — so there's no CGo and cross-compilation
// stays painless. Tests use ":memory:" for a fresh, disposable database.
//
// The schema lives here as in-repo migrations (CREATE TABLE IF NOT EXISTS
// plus idempotent seeds), the same way the rest of the file is the single
// source of truth for column names and foreign-key policy.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB connection pool. The per-entity repositories
// (Users(), Clubs(), ...) share this pool; the server owns the DB and
// closes it on shutdown.
type DB struct {
	conn *sql.DB
}

// New opens the database, configures pragmas, and runs migrations.
//
// dbPath examples:
//   - "data/passport.db" → file-based, persistent
//   - ":memory:"         → in-memory, for tests
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows one writer at a time, and ":memory:" databases exist
	// per-connection — a pool of one sidesteps both.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — matters for a
	// web server where requests overlap.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The club-deletion
	// cascade (users.club_id → NULL) depends on this being on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always deferred wherever New is called.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserDB { return &UserDB{conn: db.conn} }

// Clubs returns the club repository backed by this database.
func (db *DB) Clubs() *ClubDB { return &ClubDB{conn: db.conn} }

// Workshops returns the workshop repository backed by this database.
func (db *DB) Workshops() *WorkshopDB { return &WorkshopDB{conn: db.conn} }

// Submissions returns the submission repository backed by this database.
func (db *DB) Submissions() *SubmissionDB { return &SubmissionDB{conn: db.conn} }

// migrate creates the schema and seeds the default workshop set.
//
// CASCADE POLICY (decided here, once):
//   - Deleting a club NULLs its members' club_id. Their submissions stay —
//     submissions belong to (user, workshop), not to a club.
//   - Deleting a user removes their submissions.
//   - Workshops scoped to a deleted club's join code simply stop being
//     visible; no cleanup needed.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS clubs (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			join_code   TEXT NOT NULL UNIQUE,
			location    TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			slack_id     TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			email        TEXT NOT NULL DEFAULT '',
			avatar_url   TEXT NOT NULL DEFAULT '',
			role         TEXT NOT NULL DEFAULT 'leader'
			             CHECK (role IN ('member', 'leader', 'admin')),
			club_id      TEXT REFERENCES clubs(id) ON DELETE SET NULL,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_club_id ON users(club_id);

		CREATE TABLE IF NOT EXISTS workshops (
			id          TEXT PRIMARY KEY,
			slug        TEXT NOT NULL UNIQUE,
			title       TEXT NOT NULL,
			emoji       TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			scope       TEXT NOT NULL DEFAULT 'global'
		);
		CREATE INDEX IF NOT EXISTS idx_workshops_scope ON workshops(scope);

		CREATE TABLE IF NOT EXISTS user_workshops (
			user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			workshop_id  TEXT NOT NULL REFERENCES workshops(id) ON DELETE CASCADE,
			completed    INTEGER NOT NULL DEFAULT 0,
			submitted_at DATETIME NOT NULL,
			event_code   TEXT NOT NULL,
			photo_ref    TEXT NOT NULL DEFAULT '',
			notes        TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (user_id, workshop_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return db.seedWorkshops()
}

// seedWorkshops inserts the default global workshop set. INSERT OR IGNORE
// keeps it idempotent across restarts; existing rows are never touched, so
// a club-scoped workshop added by hand survives.
func (db *DB) seedWorkshops() error {
	seeds := []struct {
		id, slug, title, emoji, description string
	}{
		{"ws_glaze", "glaze", "Glaze", "🍩", "Decorate donuts while you decorate a website with CSS."},
		{"ws_knead", "knead", "Knead", "🥖", "Knead dough and knead through your first command line tools."},
		{"ws_simmer", "simmer", "Simmer", "🍜", "Slow-cook a ramen broth and a long-running script."},
		{"ws_whisk", "whisk", "Whisk", "🥞", "Whip up pancakes and a frontend framework starter."},
		{"ws_caramelize", "caramelize", "Caramelize", "🍮", "Melt sugar and merge conflicts at the same table."},
		{"ws_plate_up", "plate-up", "Plate Up", "🍽️", "Present your final dish and ship your final project."},
	}

	for _, s := range seeds {
		_, err := db.conn.Exec(
			`INSERT OR IGNORE INTO workshops (id, slug, title, emoji, description, scope)
			 VALUES (?, ?, ?, ?, ?, 'global')`,
			s.id, s.slug, s.title, s.emoji, s.description,
		)
		if err != nil {
			return fmt.Errorf("seeding workshop %s: %w", s.slug, err)
		}
	}
	return nil
}
