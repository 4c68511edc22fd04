// Package service — authentication business logic.
//
// AuthService is the business logic layer for authentication. It sits between
// the HTTP handlers and the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT)
//
// KEY RESPONSIBILITIES:
//   - Orchestrate the Slack OAuth callback: upsert the user, issue the token
//   - Decide each user's role at login time (admin list vs. default leader)
//   - Keep auth rules in one place, away from HTTP concerns
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hackclub/food-passport/internal/auth"
	"github.com/hackclub/food-passport/internal/model"
	"github.com/hackclub/food-passport/internal/repository"
)

// AuthService handles the authentication business logic.
type AuthService struct {
	users    repository.UserRepository
	tokens   *auth.TokenService
	adminIDs map[string]struct{}
	logger   *slog.Logger
}

// NewAuthService creates an AuthService. adminIDs is the set of Slack user
// IDs that get the admin role on login; everyone else is a club leader.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	adminIDs []string,
	logger *slog.Logger,
) *AuthService {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		adminIDs: admins,
		logger:   logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the HTTP handler
// can set the cookie and redirect in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginWithSlack completes the Slack OAuth flow.
//
// After the handler exchanges the authorization code for a SlackUser
// profile, this method:
//
//  1. Upserts the user keyed on the Slack ID (create on first login,
//     refresh profile fields on every later login)
//  2. Issues a session JWT carrying the stable user/Slack IDs
//
// ROLE IS RE-DECIDED ON EVERY LOGIN:
// The admin set lives in configuration, not the database. Re-checking it
// here means adding or removing an admin takes effect the next time that
// person logs in, with no migration.
func (s *AuthService) LoginWithSlack(ctx context.Context, su *auth.SlackUser) (*AuthResult, error) {
	if su == nil || su.ID == "" {
		return nil, fmt.Errorf("service: slack user missing id")
	}

	role := model.RoleLeader
	if _, ok := s.adminIDs[su.ID]; ok {
		role = model.RoleAdmin
	}

	user := &model.User{
		SlackID:     su.ID,
		DisplayName: su.Name,
		Email:       su.Email,
		AvatarURL:   su.AvatarURL,
		Role:        role,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service: upserting user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID, user.SlackID)
	if err != nil {
		return nil, fmt.Errorf("service: generating token: %w", err)
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("slack_id", user.SlackID),
		slog.String("role", user.Role),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID fetches a user record. Used by handlers that need the fresh
// role or club assignment rather than what the token was issued with.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}
