package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookhaven/bookhaven-server/internal/auth"
	"github.com/bookhaven/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhaven/bookhaven-server/internal/errors"
	"github.com/bookhaven/bookhaven-server/internal/id"
	"github.com/bookhaven/bookhaven-server/internal/store"
	"github.com/bookhaven/bookhaven-server/internal/store/sqlite"
)

// AuthService handles user signup, login, and token lifecycle.
type AuthService struct {
	store        *sqlite.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(st *sqlite.Store, tokenService *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        st,
		tokenService: tokenService,
		logger:       logger,
	}
}

// SignupRequest contains new account data.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse contains the authenticated user and their token pair.
type AuthResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// Signup creates a new user account with the USER role and logs it in.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Entity:       domain.Entity{ID: userID},
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         domain.RoleUser,
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("User signed up", "user_id", userID, "email", user.Email)
	}

	return resp, nil
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether email exists
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("User logged in", "user_id", user.ID)
	}

	return resp, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair.
// The user is re-read from the store so the new access token carries the
// current role, not the one at issue time.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.tokenService.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired refresh token")
	}

	user, err := s.store.GetUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("account no longer exists")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return s.issueTokens(user)
}

// VerifyAccessToken validates an access token and returns its claims.
// Identity and role come from the verified token alone; no store read
// happens per request.
func (s *AuthService) VerifyAccessToken(tokenString string) (*auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

// AccessTokenDuration exposes the configured access token lifetime for
// cookie expiry.
func (s *AuthService) AccessTokenDuration() int {
	return int(s.tokenService.AccessTokenDuration().Seconds())
}

func (s *AuthService) issueTokens(user *domain.User) (*AuthResponse, error) {
	accessToken, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokenService.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
