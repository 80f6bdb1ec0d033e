package service

import (
	"context"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
	"github.com/monuwu/ClickTales-sub001/internal/auth/store"
)

// UserService is the thin profile layer on top of the store.
type UserService struct {
	Store store.Store
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// GetUserByEmail resolves an account by its login email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.Store.Users().GetUserByEmail(ctx, email)
}

// GetUserByUsername backs the public profile lookup.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.Store.Users().GetUserByUsername(ctx, username)
}

// UpdateProfile mutates the caller's display name and avatar.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name, avatar string) (domain.User, error) {
	if err := s.Store.Users().UpdateProfile(ctx, userID, name, avatar); err != nil {
		return domain.User{}, err
	}
	return s.Store.Users().GetUserByID(ctx, userID)
}

// ListUsers returns all users, newest first. Admin only; enforcement happens
// at the HTTP layer via RequireRole.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}
