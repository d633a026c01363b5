package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Metadata  map[string]string
	Value     string
	Version   string
	CreatedAt string
}

// SecretManager defines the port for resolving credentials such as the
// CyberSource secret key. Implementations own authentication with the
// backing service and caching.
type SecretManager interface {
	// GetSecret retrieves a secret by name/path. The path format is
	// backend-specific: an env var name, an AWS secret id or ARN, or a
	// Vault KV path.
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
