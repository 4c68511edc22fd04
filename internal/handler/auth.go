package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/rs/xid"

	"github.com/hackclub/food-passport/internal/apperror"
	"github.com/hackclub/food-passport/internal/auth"
	"github.com/hackclub/food-passport/internal/service"
)

// AuthHandler manages the Slack OAuth login flow and session management.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSlackLogin    → redirect the browser to Slack's authorization page
//   - HandleSlackCallback → receive the code, exchange it, issue the JWT cookie
//   - HandleLogout        → clear the session cookie
//   - HandleMe            → return the logged-in user's profile with their club
type AuthHandler struct {
	slack  *auth.SlackProvider
	auths  *service.AuthService
	clubs  *service.ClubService
	secure bool // set the Secure flag on cookies (production, HTTPS)
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(
	slack *auth.SlackProvider,
	auths *service.AuthService,
	clubs *service.ClubService,
	secure bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		slack:  slack,
		auths:  auths,
		clubs:  clubs,
		secure: secure,
		logger: logger,
	}
}

const stateCookie = "oauth_state"

// HandleSlackLogin redirects the user to Slack's authorization page.
//
// HTTP: GET /auth/slack/login
//
// CSRF PROTECTION VIA STATE:
// We generate a random state string and store it in a short-lived cookie.
// When Slack calls back, HandleSlackCallback verifies the state matches,
// which proves the callback belongs to a flow this server started.
func (h *AuthHandler) HandleSlackLogin(w http.ResponseWriter, r *http.Request) {
	if !h.slack.Configured() {
		h.redirectLoginError(w, r, "config_error")
		return
	}

	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   300, // 5 minutes — long enough to approve, short enough to limit risk
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.slack.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleSlackCallback completes the OAuth login flow.
//
// HTTP: GET /auth/slack/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check) and clear the state cookie
//  2. Exchange the code for a Slack identity
//  3. Upsert the user and issue the session JWT in an HttpOnly cookie
//  4. Redirect to the passport page
//
// Every failure redirects to /login?error=<reason> instead of rendering an
// error page — the login page owns the presentation of auth failures.
func (h *AuthHandler) HandleSlackCallback(w http.ResponseWriter, r *http.Request) {
	// State first. A mismatch means this callback doesn't belong to a
	// flow we started, so nothing else in the query can be trusted.
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || r.URL.Query().Get("state") != cookie.Value {
		h.logger.Warn("auth callback: state missing or mismatched")
		h.redirectLoginError(w, r, "invalid_state")
		return
	}

	// The state cookie is single-use, success or not.
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// Slack reports denial (and other upstream problems) via ?error=
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: slack returned error", slog.String("error", errParam))
		h.redirectLoginError(w, r, "slack_"+errParam)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectLoginError(w, r, "missing_code")
		return
	}

	if !h.slack.Configured() {
		h.redirectLoginError(w, r, "config_error")
		return
	}

	slackUser, err := h.slack.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: slack exchange failed", slog.String("error", err.Error()))
		h.redirectLoginError(w, r, apperror.CodeOf(err, "token_exchange_failed"))
		return
	}

	result, err := h.auths.LoginWithSlack(r.Context(), slackUser)
	if err != nil {
		h.logger.Error("auth callback: login failed",
			slog.String("slack_id", slackUser.ID),
			slog.String("error", err.Error()),
		)
		h.redirectLoginError(w, r, "internal_error")
		return
	}

	// HttpOnly: JavaScript can't read the token (XSS protection).
	// SameSite=Lax: sent on top-level navigations, not cross-site POSTs.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/passport", http.StatusFound)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /auth/logout
//
// POST, not GET: logout changes state, and GET would be prefetchable.
// Sessions are stateless JWTs, so "logout" just deletes the cookie — the
// token stays valid until expiry, but the browser can no longer send it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// HandleMe returns the logged-in user's profile, club included.
//
// HTTP: GET /api/me (requires auth)
//
// Role and club come from the database, not the token — the token only
// proves identity, so a promotion or a club join shows up immediately.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("no_credential", "not logged in"))
		return
	}

	profile, err := h.clubs.GetProfile(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *AuthHandler) redirectLoginError(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, "/login?error="+url.QueryEscape(reason), http.StatusFound)
}
