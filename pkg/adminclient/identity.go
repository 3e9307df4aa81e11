package adminclient

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IdentityProvider returns the durable per-device client key, generating and
// persisting one on first use. The key is not a credential; it only keys the
// server-side attempt ledger, so a plain random suffix is enough.
type IdentityProvider struct {
	path string
}

// NewIdentityProvider creates a provider storing the key at the given path.
// An empty path selects the default location under the user config dir.
func NewIdentityProvider(path string) *IdentityProvider {
	return &IdentityProvider{path: path}
}

// DefaultIdentityPath returns the per-user location of the client key file
func DefaultIdentityPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("unable to resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, "cakeshop", "client_id"), nil
}

// GetOrCreate returns the stored client key, generating and persisting a new
// one if none exists. Idempotent: repeated calls return the same key.
func (p *IdentityProvider) GetOrCreate() (string, error) {
	path := p.path
	if path == "" {
		var err error
		path, err = DefaultIdentityPath()
		if err != nil {
			return "", err
		}
	}

	if data, err := os.ReadFile(path); err == nil {
		if key := strings.TrimSpace(string(data)); key != "" {
			return key, nil
		}
	}

	key := generateClientKey()

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("unable to create identity dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(key+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("unable to persist client key: %w", err)
	}

	return key, nil
}

// generateClientKey builds a probabilistically-unique identifier in the same
// shape the storefront uses: client_<unix ms>_<random suffix>
func generateClientKey() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("client_%d_%s", time.Now().UnixMilli(), suffix)
}
