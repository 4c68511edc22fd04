package handler_test

// End-to-end-ish handler tests: real services over an in-memory SQLite
// database, real session tokens, and a chi router mirroring the server's
// layout. Only the Slack OAuth provider is left unconfigured — the
// callback paths under test fail before ever reaching Slack.

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hackclub/food-passport/internal/auth"
	"github.com/hackclub/food-passport/internal/handler"
	"github.com/hackclub/food-passport/internal/model"
	"github.com/hackclub/food-passport/internal/repository/sqlite"
	"github.com/hackclub/food-passport/internal/service"
	"github.com/hackclub/food-passport/internal/storage"
)

type testEnv struct {
	db     *sqlite.DB
	tokens *auth.TokenService
	router *chi.Mux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	photos, err := storage.NewPhotoStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewPhotoStore: %v", err)
	}

	slack := auth.NewSlackProvider("", "", "") // unconfigured on purpose

	authSvc := service.NewAuthService(db.Users(), tokens, []string{"UADMIN"}, logger)
	clubSvc := service.NewClubService(db.Users(), db.Clubs(), nil, logger)
	passportSvc := service.NewPassportService(db.Users(), db.Workshops(), db.Submissions(), photos, logger)

	authH := handler.NewAuthHandler(slack, authSvc, clubSvc, false, logger)
	clubH := handler.NewClubHandler(clubSvc, logger)
	passportH := handler.NewPassportHandler(passportSvc, logger)
	adminH := handler.NewAdminHandler(clubSvc, passportSvc, logger)

	r := chi.NewRouter()
	r.Get("/auth/slack/login", authH.HandleSlackLogin)
	r.Get("/auth/slack/callback", authH.HandleSlackCallback)
	r.Post("/auth/logout", authH.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/api/me", authH.HandleMe)
		r.Post("/api/clubs", clubH.HandleCreate)
		r.Post("/api/clubs/join", clubH.HandleJoin)
		r.Get("/api/clubs/lookup", clubH.HandleLookup)
		r.Get("/api/workshops", passportH.HandleList)
		r.Post("/api/submissions", passportH.HandleSubmit)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(clubSvc))
			r.Get("/api/admin/submissions", adminH.HandleListSubmissions)
			r.Get("/api/admin/clubs", adminH.HandleListClubs)
			r.Delete("/api/admin/submissions/{userID}/{workshopID}", adminH.HandleDeleteSubmission)
			r.Delete("/api/admin/clubs/{id}", adminH.HandleDeleteClub)
			r.Get("/uploads/{ref}", adminH.HandlePhoto)
		})
	})

	return &testEnv{db: db, tokens: tokens, router: r}
}

// loginAs creates a user directly in the database and returns their record
// plus a valid session cookie.
func (e *testEnv) loginAs(t *testing.T, slackID, role string) (*model.User, *http.Cookie) {
	t.Helper()

	user := &model.User{
		SlackID:     slackID,
		DisplayName: "User " + slackID,
		Role:        role,
	}
	if err := e.db.Users().Upsert(context.Background(), user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	token, err := e.tokens.Generate(user.ID, user.SlackID)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return user, &http.Cookie{Name: auth.SessionCookie, Value: token}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}
