package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookhaven/bookhaven-server/internal/auth"
	"github.com/bookhaven/bookhaven-server/internal/config"
	"github.com/bookhaven/bookhaven-server/internal/logger"
)

// AuthKeys groups the two token sealing keys. Access and refresh tokens
// are sealed with independent keys so one cannot stand in for the other.
type AuthKeys struct {
	Access  []byte
	Refresh []byte
}

// ProvideAuthKeys loads or generates the token sealing keys.
func ProvideAuthKeys(i do.Injector) (*AuthKeys, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	accessKey, err := auth.LoadOrGenerateKey(cfg.Data.BasePath, auth.AccessKeyFile)
	if err != nil {
		return nil, err
	}

	refreshKey, err := auth.LoadOrGenerateKey(cfg.Data.BasePath, auth.RefreshKeyFile)
	if err != nil {
		return nil, err
	}

	cfg.Auth.AccessTokenKey = accessKey
	cfg.Auth.RefreshTokenKey = refreshKey

	log.Info("Token keys loaded",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
		"refresh_token_duration", cfg.Auth.RefreshTokenDuration,
	)

	return &AuthKeys{Access: accessKey, Refresh: refreshKey}, nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	keys := do.MustInvoke[*AuthKeys](i)

	return auth.NewTokenService(keys.Access, keys.Refresh, cfg.Auth.AccessTokenDuration, cfg.Auth.RefreshTokenDuration)
}
