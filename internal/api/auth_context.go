package api

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookhaven/bookhaven-server/internal/auth"
	domainerrors "github.com/bookhaven/bookhaven-server/internal/errors"
)

// AuthParams carries the two accepted credential locations. Browser clients
// send the access token in an HTTP-only cookie; API clients use the
// Authorization header. The cookie wins when both are present.
type AuthParams struct {
	Authorization string      `header:"Authorization" doc:"Bearer access token"`
	AccessCookie  http.Cookie `cookie:"accessToken" doc:"Access token cookie set on login"`
}

// authenticateRequest validates the request credentials and returns the
// verified token claims. Identity is claims-only: no store read per request.
func (s *Server) authenticateRequest(params AuthParams) (*auth.AccessClaims, error) {
	token := params.AccessCookie.Value
	if token == "" {
		if params.Authorization == "" {
			return nil, huma.Error401Unauthorized("Missing credentials")
		}
		parts := strings.SplitN(params.Authorization, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return nil, huma.Error401Unauthorized("Invalid authorization header format")
		}
		token = parts[1]
	}

	claims, err := s.services.Auth.VerifyAccessToken(token)
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid or expired token")
	}

	return claims, nil
}

// authenticateAndRequireAdmin validates the credentials and requires the
// ADMIN role. The role comes from the verified claims, not the store.
func (s *Server) authenticateAndRequireAdmin(params AuthParams) (*auth.AccessClaims, error) {
	claims, err := s.authenticateRequest(params)
	if err != nil {
		return nil, err
	}

	if !claims.Role.IsAdmin() {
		return nil, domainerrors.Forbidden("Admin access required")
	}

	return claims, nil
}
