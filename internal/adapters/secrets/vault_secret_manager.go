package secrets

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"

	"github.com/kevin07696/cybersource-adapter/internal/domain/ports"
)

// VaultConfig contains configuration for the HashiCorp Vault adapter
type VaultConfig struct {
	// Vault server address, e.g. "https://vault.example.com:8200"
	Address string

	// Token authentication
	Token string

	// KV v2 mount point, default "secret"
	Mount string
}

// vaultSecretManager implements the SecretManager port for HashiCorp Vault
// KV v2
type vaultSecretManager struct {
	client *vault.Client
	mount  string
	logger ports.Logger
}

// NewVaultSecretManager creates a new Vault adapter
func NewVaultSecretManager(cfg *VaultConfig, logger ports.Logger) (ports.SecretManager, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("vault address is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("vault token is required")
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	mount := cfg.Mount
	if mount == "" {
		mount = "secret"
	}

	logger.Info("Vault adapter initialized",
		ports.String("address", cfg.Address),
		ports.String("mount", mount),
	)

	return &vaultSecretManager{
		client: client,
		mount:  mount,
		logger: logger,
	}, nil
}

// GetSecret retrieves a secret from the KV v2 engine. The secret is expected
// to hold its payload under the "value" key.
func (m *vaultSecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	kv, err := m.client.KVv2(m.mount).Get(ctx, path)
	if err != nil {
		m.logger.Error("failed to retrieve secret from vault",
			ports.String("path", path),
			ports.Err(err),
		)
		return nil, fmt.Errorf("get secret %s: %w", path, err)
	}

	value, ok := kv.Data["value"].(string)
	if !ok {
		return nil, fmt.Errorf("secret %s has no string 'value' key", path)
	}

	secret := &ports.Secret{
		Value:    value,
		Version:  fmt.Sprintf("%d", kv.VersionMetadata.Version),
		Metadata: make(map[string]string),
	}
	if !kv.VersionMetadata.CreatedTime.IsZero() {
		secret.CreatedAt = kv.VersionMetadata.CreatedTime.Format("2006-01-02T15:04:05Z07:00")
	}
	return secret, nil
}
