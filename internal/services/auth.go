package services

import (
	"context"
	"fmt"

	"github.com/plantora/storefront/internal/apiclient"
	"github.com/plantora/storefront/internal/models"
)

// AuthService wraps the backend authentication endpoints
type AuthService struct {
	api *apiclient.Client
}

// NewAuthService creates a new auth service
func NewAuthService(api *apiclient.Client) *AuthService {
	return &AuthService{api: api}
}

// Login exchanges credentials for a token and user profile
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result models.AuthResult
	if err := s.api.Post(ctx, "/api/auth/login", "", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates an account and returns the signed-in result
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.AuthResult, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var result models.AuthResult
	if err := s.api.Post(ctx, "/api/auth/register", "", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Profile fetches the profile for a token, validating the credential
func (s *AuthService) Profile(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := s.api.Get(ctx, "/api/auth/profile", token, &user); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &user, nil
}
