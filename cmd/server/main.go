package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kevin07696/cybersource-adapter/internal/adapters/cybersource"
	"github.com/kevin07696/cybersource-adapter/internal/adapters/postgres"
	"github.com/kevin07696/cybersource-adapter/internal/adapters/secrets"
	"github.com/kevin07696/cybersource-adapter/internal/config"
	"github.com/kevin07696/cybersource-adapter/internal/domain/ports"
	paymenthandler "github.com/kevin07696/cybersource-adapter/internal/handlers/payment"
	"github.com/kevin07696/cybersource-adapter/internal/logging"
	paymentservice "github.com/kevin07696/cybersource-adapter/internal/services/payment"
	"github.com/kevin07696/cybersource-adapter/pkg/observability"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := initLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()
	logger := logging.NewZapLogger(zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := resolveSecretKey(ctx, cfg, logger); err != nil {
		logger.Error("failed to resolve secret key", ports.Err(err))
		os.Exit(1)
	}

	gateway, err := cybersource.NewClient(cfg.CyberSource, nil, logger)
	if err != nil {
		logger.Error("failed to create gateway client", ports.Err(err))
		os.Exit(1)
	}

	var store ports.TransactionStore
	if cfg.Database.Enabled {
		pool, err := pgxpool.New(ctx, cfg.Database.ConnectionString())
		if err != nil {
			logger.Error("failed to connect to audit database", ports.Err(err))
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("audit database unreachable", ports.Err(err))
			os.Exit(1)
		}
		store = postgres.NewTransactionStore(pool)
		logger.Info("audit store enabled",
			ports.String("host", cfg.Database.Host),
			ports.String("database", cfg.Database.Database),
		)
	}

	service := paymentservice.NewService(gateway, store, logger)
	handler := paymenthandler.NewHandler(service, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(time.Duration(cfg.CyberSource.RequestTimeout+30) * time.Second))
	router.Mount("/v1/payments", handler.Routes())

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.CyberSource.RequestTimeout+30) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	metricsServer := observability.StartMetricsServer(strconv.Itoa(cfg.Server.MetricsPort))

	go func() {
		logger.Info("server listening",
			ports.String("addr", server.Addr),
			ports.String("environment", cfg.CyberSource.Environment),
			ports.String("merchant_id", cfg.CyberSource.MerchantID),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", ports.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", ports.Err(err))
	}
	if err := observability.ShutdownMetricsServer(metricsServer); err != nil {
		logger.Error("metrics server shutdown failed", ports.Err(err))
	}
}

// resolveSecretKey fills in the CyberSource shared secret from the configured
// backend. The env backend reads the variable directly, so a secret already
// present in the config is kept as-is.
func resolveSecretKey(ctx context.Context, cfg *config.Config, logger ports.Logger) error {
	var manager ports.SecretManager
	var err error

	switch cfg.Secrets.Backend {
	case "env", "":
		if cfg.CyberSource.SecretKey != "" {
			return nil
		}
		manager = secrets.NewEnvSecretManager(logger)
	case "aws":
		awsCfg := secrets.DefaultAWSSecretsManagerConfig(cfg.Secrets.AWSRegion)
		awsCfg.Endpoint = cfg.Secrets.AWSEndpoint
		manager, err = secrets.NewAWSSecretsManager(ctx, awsCfg, logger)
		if err != nil {
			return err
		}
	case "vault":
		manager, err = secrets.NewVaultSecretManager(&secrets.VaultConfig{
			Address: cfg.Secrets.VaultAddress,
			Token:   cfg.Secrets.VaultToken,
			Mount:   cfg.Secrets.VaultMount,
		}, logger)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown secrets backend %q", cfg.Secrets.Backend)
	}

	secret, err := manager.GetSecret(ctx, cfg.Secrets.SecretKeyPath)
	if err != nil {
		return err
	}
	cfg.CyberSource.SecretKey = secret.Value
	return nil
}

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Logger.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	if err := zapCfg.Level.UnmarshalText([]byte(cfg.Logger.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logger.Level, err)
	}
	if cfg.CyberSource.Debug {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	if cfg.CyberSource.LogFile != "" {
		zapCfg.OutputPaths = append(zapCfg.OutputPaths, cfg.CyberSource.LogFile)
	}
	return zapCfg.Build()
}
