// Package auth provides authentication and authorization functionality.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// PASETO v4 requires a 256-bit (32-byte) symmetric key.
	keyLength = 32
	// Expected hex-encoded length (32 bytes = 64 hex characters).
	keyHexLength = 64
)

// Well-known key file names under the data directory. Access and refresh
// tokens are sealed with independent keys.
const (
	AccessKeyFile  = "access.key"
	RefreshKeyFile = "refresh.key"
)

// LoadOrGenerateKey loads or generates a PASETO v4 symmetric key.
// The key is stored in <dataPath>/<name> as a hex-encoded string.
// If the file doesn't exist, a new key is generated and saved.
// Returns the decoded 32-byte key ready for use.
func LoadOrGenerateKey(dataPath, name string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, name)

	// Try to load existing key.
	//#nosec G304 -- Key path is derived from the validated data path
	if keyBytes, err := os.ReadFile(keyPath); err == nil {
		keyHex := strings.TrimSpace(string(keyBytes))

		// Validate hex format (should be 64 hex chars = 32 bytes).
		if len(keyHex) != keyHexLength {
			return nil, fmt.Errorf("invalid key length in %s: expected %d hex chars, got %d", name, keyHexLength, len(keyHex))
		}

		// Decode hex to bytes.
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid key format in %s: not valid hex: %w", name, err)
		}

		return key, nil
	}

	// Generate new key (32 bytes = 256 bits for PASETO v4).
	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key %s: %w", name, err)
	}

	// Encode as hex for storage.
	keyHex := hex.EncodeToString(key)

	// Ensure data directory exists.
	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Save key to file with restricted permissions.
	if err := os.WriteFile(keyPath, []byte(keyHex), 0o600); err != nil {
		return nil, fmt.Errorf("failed to save key %s: %w", name, err)
	}

	return key, nil
}
