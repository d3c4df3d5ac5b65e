package service

import (
	"context"
	"fmt"

	"lexicon/internal/repository"
)

// AuthService handles authentication logic
type AuthService struct {
	userRepo    repository.UserRepository
	stats       StatisticsRecorder
	botPassword string
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, stats StatisticsRecorder, botPassword string) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		stats:       stats,
		botPassword: botPassword,
	}
}

// CheckPassword verifies if provided password matches
func (s *AuthService) CheckPassword(password string) bool {
	return password == s.botPassword
}

// IsAuthorized checks if user is authorized
func (s *AuthService) IsAuthorized(ctx context.Context, userID int64) (bool, error) {
	return s.userRepo.IsAuthorized(ctx, userID)
}

// AuthorizeUser authorizes a user
func (s *AuthService) AuthorizeUser(ctx context.Context, userID int64) error {
	return s.userRepo.AuthorizeUser(ctx, userID)
}

// EnsureUserExists creates user record and its statistics if they don't exist
func (s *AuthService) EnsureUserExists(ctx context.Context, userID int64, username string) error {
	if err := s.userRepo.EnsureUserExists(ctx, userID, username); err != nil {
		return err
	}
	if err := s.stats.EnsureStatistics(ctx, userID); err != nil {
		return fmt.Errorf("failed to create statistics: %w", err)
	}
	return nil
}
