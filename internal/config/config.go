package config

import (
	"fmt"
	"os"
	"strconv"
)

// Authentication modes for the CyberSource API
const (
	AuthTypeHTTPSignature = "http_signature"
	AuthTypeJWT           = "jwt"
)

// Named environments and the hosts they resolve to
const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"

	sandboxHost    = "apitest.cybersource.com"
	productionHost = "api.cybersource.com"
)

// Config holds all application configuration
type Config struct {
	CyberSource CyberSourceConfig
	Server      ServerConfig
	Database    DatabaseConfig
	Secrets     SecretsConfig
	Logger      LoggerConfig
}

// CyberSourceConfig holds merchant identity, auth mode, environment and
// transport policy. Built once, immutable thereafter.
type CyberSourceConfig struct {
	MerchantID      string
	APIKeyID        string
	SecretKey       string // base64-encoded shared secret
	Environment     string // sandbox, production, or a raw API host
	AuthType        string
	DefaultCurrency string
	LogFile         string
	TLSVerify       bool
	Debug           bool
	RequestTimeout  int // seconds
	ConnectTimeout  int // seconds
}

// ServerConfig holds the HTTP surface configuration
type ServerConfig struct {
	Host        string
	Port        int
	MetricsPort int
}

// DatabaseConfig holds PostgreSQL configuration for the optional audit store
type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Database string
	SSLMode  string
	Port     int
	MaxConns int32
	MinConns int32
	Enabled  bool
}

// SecretsConfig selects how the CyberSource secret key is resolved
type SecretsConfig struct {
	Backend       string // env, aws, vault
	SecretKeyPath string // name/path of the secret in the selected backend
	AWSRegion     string
	AWSEndpoint   string
	VaultAddress  string
	VaultToken    string
	VaultMount    string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string
	Development bool
}

// Load reads configuration from environment variables and validates the
// CyberSource credentials. The secret key may be resolved later through a
// secret manager; everything else is required up front.
func Load() (*Config, error) {
	cfg := &Config{
		CyberSource: CyberSourceConfig{
			MerchantID:      getEnv("CYBERSOURCE_MERCHANT_ID", ""),
			APIKeyID:        getEnv("CYBERSOURCE_API_KEY_ID", ""),
			SecretKey:       getEnv("CYBERSOURCE_SECRET_KEY", ""),
			Environment:     getEnv("CYBERSOURCE_ENVIRONMENT", EnvironmentSandbox),
			AuthType:        getEnv("CYBERSOURCE_AUTH_TYPE", AuthTypeHTTPSignature),
			TLSVerify:       getEnvAsBool("CYBERSOURCE_TLS_VERIFY", true),
			RequestTimeout:  getEnvAsInt("CYBERSOURCE_TIMEOUT", 300),
			ConnectTimeout:  getEnvAsInt("CYBERSOURCE_CONNECT_TIMEOUT", 30),
			Debug:           getEnvAsBool("CYBERSOURCE_DEBUG", false),
			LogFile:         getEnv("CYBERSOURCE_LOG_FILE", ""),
			DefaultCurrency: getEnv("CYBERSOURCE_CURRENCY", "USD"),
		},
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("AUDIT_DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "cybersource"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		},
		Secrets: SecretsConfig{
			Backend:       getEnv("SECRETS_BACKEND", "env"),
			SecretKeyPath: getEnv("SECRETS_KEY_PATH", "CYBERSOURCE_SECRET_KEY"),
			AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
			AWSEndpoint:   getEnv("AWS_SECRETS_ENDPOINT", ""),
			VaultAddress:  getEnv("VAULT_ADDR", ""),
			VaultToken:    getEnv("VAULT_TOKEN", ""),
			VaultMount:    getEnv("VAULT_MOUNT", "secret"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if cfg.CyberSource.MerchantID == "" {
		return nil, fmt.Errorf("CYBERSOURCE_MERCHANT_ID is required")
	}
	if cfg.CyberSource.APIKeyID == "" {
		return nil, fmt.Errorf("CYBERSOURCE_API_KEY_ID is required")
	}
	if err := validateAuthType(cfg.CyberSource.AuthType); err != nil {
		return nil, err
	}
	if cfg.Database.Enabled && cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required when AUDIT_DB_ENABLED is set")
	}

	return cfg, nil
}

// Validate checks that the credentials are complete. Called again by the
// gateway client constructor once the secret key has been resolved.
func (c *CyberSourceConfig) Validate() error {
	if c.MerchantID == "" {
		return fmt.Errorf("merchant id is required")
	}
	if c.APIKeyID == "" {
		return fmt.Errorf("api key id is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is required")
	}
	return validateAuthType(c.AuthType)
}

func validateAuthType(authType string) error {
	switch authType {
	case AuthTypeHTTPSignature:
		return nil
	case AuthTypeJWT:
		return fmt.Errorf("jwt authentication requires a certificate keystore and is not supported; use %s", AuthTypeHTTPSignature)
	default:
		return fmt.Errorf("unknown auth type %q", authType)
	}
}

// Host resolves the environment to an API host
func (c *CyberSourceConfig) Host() string {
	switch c.Environment {
	case EnvironmentSandbox, "":
		return sandboxHost
	case EnvironmentProduction:
		return productionHost
	default:
		return c.Environment
	}
}

// BaseURL returns the gateway base URL
func (c *CyberSourceConfig) BaseURL() string {
	return "https://" + c.Host()
}

// ConnectionString returns the PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
