// GO TESTING BASICS:
// 1. Test files MUST end in _test.go — Go's tooling auto-discovers them
// 2. Test functions MUST start with "Test" and take *testing.T as the only param
// 3. Same package as the code being tested (so we can access unexported stuff)
// 4. Run with: go test ./internal/apperror/ -v
package apperror

import (
	"errors"
	"fmt"
	"testing"
)

// TABLE-DRIVEN TESTS:
// Go's idiomatic pattern for testing multiple cases — a slice of cases and
// one loop, with each case named in the test output.

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("workshop", "glaze"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("eventCode", "event code is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrAuth",
			err:       Unauthorized("no_credential", "authentication required"),
			target:    ErrAuth,
			wantMatch: true,
		},
		{
			name:      "Upstream wraps ErrUpstream",
			err:       Upstream("token_exchange_failed", "slack token exchange failed", nil),
			target:    ErrUpstream,
			wantMatch: true,
		},
		{
			name:      "Upstream with cause still matches ErrUpstream",
			err:       Upstream("user_fetch_failed", "identity fetch failed", errors.New("connection refused")),
			target:    ErrUpstream,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("admin access required"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("club", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Unauthorized does NOT match ErrUpstream",
			err:       Unauthorized("invalid_credential", "bad token"),
			target:    ErrUpstream,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorsIs_ThroughWrapping(t *testing.T) {
	// Services wrap with fmt.Errorf("...: %w", err); the chain must survive.
	inner := NotFound("user", "u-1")
	outer := fmt.Errorf("directory: resolving profile: %w", inner)

	if !errors.Is(outer, ErrNotFound) {
		t.Error("wrapped NotFound should still match ErrNotFound")
	}

	var appErr *AppError
	if !errors.As(outer, &appErr) {
		t.Fatal("errors.As should extract *AppError from a wrapped chain")
	}
	if appErr.Message != "user not found with id u-1" {
		t.Errorf("Message = %q", appErr.Message)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("submission", "abc123"),
			wantMessage: "submission not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("name", "club name is required"),
			wantMessage: "club name is required",
		},
		{
			name:        "Upstream uses custom message",
			err:         Upstream("slack_access_denied", "slack reported access_denied", nil),
			wantMessage: "slack reported access_denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{
			name:     "code set on AppError",
			err:      Upstream("token_exchange_failed", "exchange failed", nil),
			fallback: "internal_error",
			want:     "token_exchange_failed",
		},
		{
			name:     "code survives wrapping",
			err:      fmt.Errorf("auth: %w", Unauthorized("invalid_credential", "expired")),
			fallback: "internal_error",
			want:     "invalid_credential",
		},
		{
			name:     "no code falls back",
			err:      NotFound("workshop", "glaze"),
			fallback: "internal_error",
			want:     "internal_error",
		},
		{
			name:     "plain error falls back",
			err:      errors.New("boom"),
			fallback: "internal_error",
			want:     "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err, tt.fallback); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationFailedField(t *testing.T) {
	// The Field lets handlers tell the frontend WHICH field was invalid.
	err := ValidationFailed("photo", "a photo is required")

	if err.Field != "photo" {
		t.Errorf("Field = %q, want %q", err.Field, "photo")
	}
}
