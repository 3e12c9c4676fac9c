package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookhaven/bookhaven-server/internal/domain"
	"github.com/bookhaven/bookhaven-server/internal/service"
)

// accessTokenCookieName is the HTTP-only cookie carrying the access token
// for browser clients.
const accessTokenCookieName = "accessToken"

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "signup",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/signup",
		Summary:     "Create account",
		Description: "Creates a new user account and logs it in",
		Tags:        []string{"Authentication"},
	}, s.handleSignup)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns access and refresh tokens",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for a new token pair",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Clears the access token cookie",
		Tags:        []string{"Authentication"},
	}, s.handleLogout)
}

// === DTOs ===

// SignupRequest is the request body for account creation.
type SignupRequest struct {
	Email    string `json:"email" doc:"User email address"`
	Password string `json:"password" doc:"User password (min 8 characters)"`
	Name     string `json:"name" doc:"Display name"`
}

// SignupInput wraps the signup request for Huma.
type SignupInput struct {
	Body SignupRequest
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" doc:"User email"`
	Password string `json:"password" doc:"User password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" doc:"Refresh token"`
}

// RefreshInput wraps the refresh request for Huma.
type RefreshInput struct {
	Body RefreshRequest
}

// UserResponse contains user information in API responses.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Email     string    `json:"email" doc:"User email"`
	Name      string    `json:"name" doc:"Display name"`
	Role      string    `json:"role" doc:"User role (USER or ADMIN)"`
	CreatedAt time.Time `json:"createdAt" doc:"Creation timestamp"`
	UpdatedAt time.Time `json:"updatedAt" doc:"Last update timestamp"`
}

// AuthResponse contains authentication tokens and user info.
type AuthResponse struct {
	User         UserResponse `json:"user" doc:"Authenticated user"`
	AccessToken  string       `json:"accessToken" doc:"PASETO access token"`
	RefreshToken string       `json:"refreshToken" doc:"PASETO refresh token"`
	TokenType    string       `json:"tokenType" doc:"Token type (Bearer)"`
	ExpiresIn    int          `json:"expiresIn" doc:"Access token expiry in seconds"`
}

// AuthOutput wraps the auth response for Huma and sets the access token cookie.
type AuthOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      AuthResponse
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// LogoutOutput wraps the logout response and clears the access token cookie.
type LogoutOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      MessageResponse
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func (s *Server) toAuthOutput(resp *service.AuthResponse) *AuthOutput {
	return &AuthOutput{
		SetCookie: s.accessTokenCookie(resp.AccessToken),
		Body: AuthResponse{
			User:         toUserResponse(resp.User),
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    s.services.Auth.AccessTokenDuration(),
		},
	}
}

// accessTokenCookie builds the HTTP-only cookie carrying the access token.
func (s *Server) accessTokenCookie(token string) http.Cookie {
	return http.Cookie{
		Name:     accessTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   s.services.Auth.AccessTokenDuration(),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// clearedAccessTokenCookie expires the access token cookie immediately.
func clearedAccessTokenCookie() http.Cookie {
	return http.Cookie{
		Name:     accessTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// === Handlers ===

func (s *Server) handleSignup(ctx context.Context, input *SignupInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Signup(ctx, service.SignupRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Name:     input.Body.Name,
	})
	if err != nil {
		return nil, err
	}

	return s.toAuthOutput(resp), nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return s.toAuthOutput(resp), nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Refresh(ctx, input.Body.RefreshToken)
	if err != nil {
		return nil, err
	}

	return s.toAuthOutput(resp), nil
}

// handleLogout clears the cookie only. Tokens are not revocable server-side;
// they simply age out.
func (s *Server) handleLogout(_ context.Context, _ *struct{}) (*LogoutOutput, error) {
	return &LogoutOutput{
		SetCookie: clearedAccessTokenCookie(),
		Body:      MessageResponse{Message: "Logged out"},
	}, nil
}
