// Package auth implements the login lookup, password storage and session
// tokens.
package auth

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/HansenDafa/indostereoset-annotation/internal/models"
	"github.com/HansenDafa/indostereoset-annotation/internal/state"
)

// Service logs users in and out against the shared store
type Service struct {
	store   *state.Store
	reducer state.Reducer
	tokens  *TokenManager
	logger  *zap.Logger
}

// NewService creates a new auth service
func NewService(store *state.Store, reducer state.Reducer, tokens *TokenManager, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		reducer: reducer,
		tokens:  tokens,
		logger:  logger,
	}
}

// Login checks name and password and opens a session
func (s *Service) Login(name, password string) (*models.LoginResponse, error) {
	user, err := s.reducer.Login(s.store.Snapshot(), name, password)
	if err != nil {
		s.logger.Debug("Login rejected", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.String("user_id", user.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))

	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout ends the session identified by claims
func (s *Service) Logout(claims *models.Claims) {
	s.tokens.Revoke(claims)
	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
}

// CurrentUser returns the user behind a session
func (s *Service) CurrentUser(claims *models.Claims) (models.User, bool) {
	return state.FindUser(s.store.Snapshot(), claims.UserID)
}

// UserCount returns the number of registered users
func (s *Service) UserCount() int {
	return len(s.store.Snapshot().Users)
}

// Tokens exposes the token manager for the auth middleware
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}
