package auth

import (
	"encoding/json/v2"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/bookhaven/bookhaven-server/internal/domain"
	"github.com/bookhaven/bookhaven-server/internal/id"
)

const (
	tokenIssuer = "bookhaven-server"

	// Separate audiences keep a refresh token from ever passing
	// access-token verification, even if the keys were shared.
	accessAudience  = "bookhaven-client"
	refreshAudience = "bookhaven-refresh"
)

// TokenService handles PASETO token generation and verification.
// Access and refresh tokens use independent symmetric keys so that a leak
// of one secret does not compromise the other token class.
type TokenService struct {
	accessKey            paseto.V4SymmetricKey
	refreshKey           paseto.V4SymmetricKey
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
}

// NewTokenService creates a new token service with the given configuration.
// Both keys must be exactly 32 bytes.
func NewTokenService(accessKeyBytes, refreshKeyBytes []byte, accessDuration, refreshDuration time.Duration) (*TokenService, error) {
	accessKey, err := paseto.V4SymmetricKeyFromBytes(accessKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("create access token key: %w", err)
	}

	refreshKey, err := paseto.V4SymmetricKeyFromBytes(refreshKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("create refresh token key: %w", err)
	}

	return &TokenService{
		accessKey:            accessKey,
		refreshKey:           refreshKey,
		accessTokenDuration:  accessDuration,
		refreshTokenDuration: refreshDuration,
	}, nil
}

// GenerateAccessToken creates a new PASETO v4.local access token for the user.
// The token is encrypted and contains user claims.
func (s *TokenService) GenerateAccessToken(user *domain.User) (string, error) {
	now := time.Now()

	token := paseto.NewToken()

	// Add the standard claims
	token.SetIssuer(tokenIssuer)
	token.SetSubject(user.ID)
	token.SetAudience(accessAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.accessTokenDuration))

	// Generate unique token ID
	tokenID, err := id.Generate("token")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	// Our custom claims
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("user_id", user.ID)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("email", user.Email)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("role", user.Role)

	encrypted := token.V4Encrypt(s.accessKey, nil)
	return encrypted, nil
}

// VerifyAccessToken verifies and parses a PASETO access token.
// Returns the claims if valid, or an error if they're invalid or expired.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParser()

	// Add validation rules (basically just checks the claims we set above)
	parser.AddRule(paseto.ForAudience(accessAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	// Parse and decrypt v4.local token
	token, err := parser.ParseV4Local(s.accessKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	return &claims, nil
}

// GenerateRefreshToken creates a new PASETO v4.local refresh token for the user.
// It is sealed with the refresh key and carries only the subject.
func (s *TokenService) GenerateRefreshToken(user *domain.User) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(user.ID)
	token.SetAudience(refreshAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.refreshTokenDuration))

	tokenID, err := id.Generate("token")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	encrypted := token.V4Encrypt(s.refreshKey, nil)
	return encrypted, nil
}

// VerifyRefreshToken verifies and parses a PASETO refresh token.
func (s *TokenService) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(refreshAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.refreshKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	var claims RefreshClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	return &claims, nil
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.accessTokenDuration
}

// RefreshTokenDuration returns the configured refresh token lifetime.
func (s *TokenService) RefreshTokenDuration() time.Duration {
	return s.refreshTokenDuration
}
