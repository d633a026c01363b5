package secrets

import (
	"context"
	"fmt"
	"os"

	"github.com/kevin07696/cybersource-adapter/internal/domain/ports"
)

// envSecretManager resolves secrets from environment variables. Development
// convenience; use AWS Secrets Manager or Vault in production.
type envSecretManager struct {
	logger ports.Logger
}

// NewEnvSecretManager creates a secret manager backed by the process
// environment. The secret path is the variable name.
func NewEnvSecretManager(logger ports.Logger) ports.SecretManager {
	return &envSecretManager{logger: logger}
}

// GetSecret reads a secret from the environment
func (m *envSecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	value := os.Getenv(path)
	if value == "" {
		return nil, fmt.Errorf("secret not found in environment: %s", path)
	}

	m.logger.Debug("secret resolved from environment", ports.String("path", path))

	return &ports.Secret{
		Value:   value,
		Version: "v1",
	}, nil
}
