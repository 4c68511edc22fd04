package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	slackendpoint "golang.org/x/oauth2/slack"

	"github.com/hackclub/food-passport/internal/apperror"
)

// upstreamTimeout bounds every server-to-server call to Slack. Without it
// a hung token exchange would hold the callback request open until the
// default transport gives up.
const upstreamTimeout = 10 * time.Second

const identityURL = "https://slack.com/api/users.identity"

// SlackUser is the normalized profile the rest of the app works with.
// The raw Slack response is bigger and messier — the adapter boundary is
// the only place that knows its shape.
type SlackUser struct {
	ID        string // Slack user ID, e.g. "U0123ABCD" — stable, never changes
	Name      string // first non-empty of real name / handle / "Hack Clubber"
	Email     string // may be empty if the identity.email scope was denied
	AvatarURL string // largest image Slack offered, may be empty
}

// identityResponse is the portion of Slack's users.identity response we
// care about. Slack wraps everything in {"ok": bool, "error": "..."} —
// a 200 status does NOT mean success.
type identityResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	User  struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		RealName string `json:"real_name"`
		Email    string `json:"email"`
		Image512 string `json:"image_512"`
		Image192 string `json:"image_192"`
		Image72  string `json:"image_72"`
		Image48  string `json:"image_48"`
	} `json:"user"`
}

// SlackProvider wraps golang.org/x/oauth2 for the Slack Authorization Code
// flow.
//
// OAUTH 2.0 AUTHORIZATION CODE FLOW:
// 1. Our server redirects the user to Slack's authorize endpoint with our
//    client_id, redirect_uri, state, and the identity.* scopes.
// 2. The user approves the request in their Slack workspace.
// 3. Slack redirects back to redirect_uri with a short-lived "code".
// 4. Our server exchanges the code for an access token (server-to-server,
//    using the client secret — the token never touches the browser).
// 5. Our server calls users.identity with the token for the profile.
//
// Codes are single-use at Slack: exchanging the same code twice fails at
// step 4, which is why a failed login always restarts from step 1.
type SlackProvider struct {
	config      *oauth2.Config
	identityURL string
}

// NewSlackProvider creates a SlackProvider with the given OAuth app
// credentials. callbackURL must exactly match a redirect URL registered on
// the Slack app.
func NewSlackProvider(clientID, clientSecret, callbackURL string) *SlackProvider {
	return &SlackProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"identity.basic", "identity.email", "identity.avatar"},
			Endpoint:     slackendpoint.Endpoint,
		},
		identityURL: identityURL,
	}
}

// Configured reports whether OAuth credentials were provided. The callback
// handler turns an unconfigured provider into a config_error redirect
// instead of attempting a doomed exchange.
func (p *SlackProvider) Configured() bool {
	return p.config.ClientID != "" && p.config.ClientSecret != ""
}

// AuthURL returns the Slack authorize URL to redirect the user to.
//
// The state parameter is a random value the login handler stores in a
// short-lived cookie before redirecting. The callback verifies the
// returned state against that cookie, which proves the flow started here
// and not on an attacker's page (CSRF protection).
func (p *SlackProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: trades the authorization code for a
// normalized Slack profile.
//
// Every failure comes back as an *apperror.AppError with ErrUpstream and a
// machine-readable Code the callback handler puts in the login redirect:
//
//	token_exchange_failed → exchange POST failed at the transport level
//	slack_<error>         → Slack rejected the exchange (e.g. slack_invalid_code)
//	missing_token         → exchange succeeded but returned no access token
//	user_fetch_failed     → users.identity call failed at the transport level
//	identity_<error>      → users.identity returned ok:false
//	invalid_user_data     → profile has no stable user ID
func (p *SlackProvider) Exchange(ctx context.Context, code string) (*SlackUser, error) {
	ctx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		// oauth2.RetrieveError means Slack answered with an error payload
		// (invalid_code, invalid_grant, ...) rather than the call failing.
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode != "" {
			return nil, apperror.Upstream(
				"slack_"+retrieveErr.ErrorCode,
				fmt.Sprintf("slack rejected the code exchange: %s", retrieveErr.ErrorCode),
				err,
			)
		}
		return nil, apperror.Upstream("token_exchange_failed", "slack token exchange failed", err)
	}

	if token.AccessToken == "" {
		return nil, apperror.Upstream("missing_token", "slack returned no access token", nil)
	}

	// oauth2.Config.Client returns an *http.Client that attaches the
	// bearer token to every request.
	client := p.config.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.identityURL, nil)
	if err != nil {
		return nil, apperror.Upstream("user_fetch_failed", "building identity request failed", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperror.Upstream("user_fetch_failed", "slack identity fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Upstream(
			"user_fetch_failed",
			fmt.Sprintf("slack identity endpoint returned status %d", resp.StatusCode),
			nil,
		)
	}

	var identity identityResponse
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, apperror.Upstream("user_fetch_failed", "decoding slack identity response failed", err)
	}

	if !identity.OK {
		code := identity.Error
		if code == "" {
			code = "unknown"
		}
		return nil, apperror.Upstream(
			"identity_"+code,
			fmt.Sprintf("slack identity call reported: %s", code),
			nil,
		)
	}

	if identity.User.ID == "" {
		return nil, apperror.Upstream("invalid_user_data", "slack identity has no user id", nil)
	}

	return &SlackUser{
		ID:        identity.User.ID,
		Name:      firstNonEmpty(identity.User.RealName, identity.User.Name, "Hack Clubber"),
		Email:     identity.User.Email,
		AvatarURL: firstNonEmpty(identity.User.Image512, identity.User.Image192, identity.User.Image72, identity.User.Image48),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
