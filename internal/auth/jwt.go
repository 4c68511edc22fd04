// Package auth provides the Slack OAuth flow, session token issuing, and
// the request middleware that verifies sessions.
//
// SESSION MODEL:
// There is no server-side session store. The signed JWT in the "session"
// cookie IS the session — the server only needs the signing secret to
// verify it. The token carries the internal user ID and the Slack ID, and
// nothing else: role and club membership are re-read from the database on
// every authorization-sensitive request, so they can never go stale inside
// a week-old cookie.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"sub":"<userID>","slack_id":"U...","exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secret)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is the fixed validity window of a session credential. After
// expiry the user logs in again via Slack — there are no refresh tokens.
const SessionTTL = 7 * 24 * time.Hour

const issuer = "food-passport"

// TokenService signs and verifies session tokens. It holds the HMAC secret
// used for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: SESSION_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Session is the verified content of a session token.
type Session struct {
	UserID  string
	SlackID string
}

// claims is the JWT payload. Subject carries the internal user ID; the
// Slack ID rides along as a custom claim so logs can correlate sessions
// with Slack accounts without a DB lookup.
type claims struct {
	SlackID string `json:"slack_id,omitempty"`
	jwt.RegisteredClaims
}

// Generate creates and signs a session token valid for SessionTTL (7 days).
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, and fine for a
// single-server deployment where issuer and verifier share the secret.
func (s *TokenService) Generate(userID, slackID string) (string, error) {
	return s.GenerateWithDuration(userID, slackID, SessionTTL)
}

// GenerateWithDuration creates a token with a custom expiry. Exists so
// tests can issue already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID, slackID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		SlackID: slackID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token string.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired
//   - Issuer matches (rejects tokens minted by other apps)
//   - Algorithm is HS256 (jwt.WithValidMethods prevents algorithm
//     confusion attacks, where an attacker sends an unsigned "none" token)
//
// Callers must treat EVERY failure the same way — an expired token, a
// forged one, and a garbage string all collapse to "invalid credential"
// at the middleware. Distinguishing them for the client would only help
// an attacker probe the verifier.
func (s *TokenService) Validate(tokenStr string) (*Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return &Session{UserID: c.Subject, SlackID: c.SlackID}, nil
}
