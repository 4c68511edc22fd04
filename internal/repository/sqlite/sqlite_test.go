package sqlite

import (
	"context"
	"testing"

	"github.com/hackclub/food-passport/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// ":memory:" gives every test a fresh database that lives only for the
// test — fast, isolated, destroyed on close. t.Helper() makes failures
// report at the caller's line, and t.Cleanup closes the pool even when a
// subtest fails.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser upserts a fresh user and fails the test on error.
func createTestUser(t *testing.T, db *DB, slackID, name string) *model.User {
	t.Helper()
	user := &model.User{
		SlackID:     slackID,
		DisplayName: name,
		Email:       name + "@example.com",
		AvatarURL:   "https://avatars.example/512.png",
	}
	if err := db.Users().Upsert(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestClub creates a club owned by the given user.
func createTestClub(t *testing.T, db *DB, ownerID, name, joinCode string) *model.Club {
	t.Helper()
	club := &model.Club{Name: name, JoinCode: joinCode}
	if err := db.Clubs().CreateWithOwner(context.Background(), club, ownerID); err != nil {
		t.Fatalf("failed to create test club: %v", err)
	}
	return club
}

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()
	var n int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}

func TestMigrate_SeedsGlobalWorkshops(t *testing.T) {
	db := newTestDB(t)

	workshops, err := db.Workshops().ListVisible(context.Background(), "")
	if err != nil {
		t.Fatalf("ListVisible() error = %v", err)
	}
	if len(workshops) == 0 {
		t.Fatal("migration should seed the default workshop set")
	}
	for _, ws := range workshops {
		if ws.Scope != model.ScopeGlobal {
			t.Errorf("seeded workshop %s has scope %q, want global", ws.Slug, ws.Scope)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	// Running migrations again must not error or duplicate seeds.
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}

	before := countRows(t, db, "workshops")
	if err := db.migrate(); err != nil {
		t.Fatalf("third migrate() error = %v", err)
	}
	if after := countRows(t, db, "workshops"); after != before {
		t.Errorf("workshop count changed from %d to %d across migrations", before, after)
	}
}
