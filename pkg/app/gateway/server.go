// Package gateway implements app.Runner for the signal gateway process.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dexhook/signal-gateway/pkg/app/httpserver"
	"github.com/dexhook/signal-gateway/pkg/auth"
	"github.com/dexhook/signal-gateway/pkg/config"
	"github.com/dexhook/signal-gateway/pkg/credential"
	"github.com/dexhook/signal-gateway/pkg/network"
	"github.com/dexhook/signal-gateway/pkg/onboarding"
	"github.com/dexhook/signal-gateway/pkg/pgutil"
	signalsvc "github.com/dexhook/signal-gateway/pkg/signal"
	"github.com/dexhook/signal-gateway/pkg/trading"
	"github.com/dexhook/signal-gateway/pkg/userstore"
	"github.com/dexhook/signal-gateway/pkg/vault"
	"github.com/dexhook/signal-gateway/pkg/webhook"
)

const defaultRequestTimeout = 60

// Server holds cfg to init the gateway server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new gateway server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("gateway config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting signal gateway",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("default_network", cfg.DefaultNetwork().String()),
		zap.Bool("dry_run", cfg.Trading.DryRun),
	)

	masterKey, err := s.getMasterKey()
	if err != nil {
		return err
	}

	cipher, err := vault.NewMasterKeyCipher(masterKey)
	if err != nil {
		return fmt.Errorf("init vault cipher: %w", err)
	}

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() { _ = db.Close() }()

	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	registry, err := s.loadRegistry()
	if err != nil {
		return err
	}

	store := userstore.NewStore(db)
	authenticator := webhook.NewAuthenticator(store, cipher, logger)
	resolver := credential.NewResolver(cipher, cfg.DefaultNetwork(), logger)
	factory := s.buildClientFactory(registry, logger)

	signalService := signalsvc.NewLog(
		signalsvc.NewService(authenticator, resolver, factory, logger),
		logger,
	)

	onboardingService := onboarding.NewLog(
		logger,
		onboarding.NewService(store, cipher, logger),
	)

	validator, err := s.operatorValidator()
	if err != nil {
		return err
	}

	router := s.setupRouter(signalService, onboardingService, validator, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return httpserver.ServeAndWait(ctx, logger, srv, cfg.Shutdown.Timeout)
}

func (s *Server) getMasterKey() ([]byte, error) {
	masterKeyStr := os.Getenv(s.cfg.Vault.MasterKeyEnv)
	if masterKeyStr == "" {
		return nil, fmt.Errorf(
			"vault master key not set: env=%s (hint: openssl rand -base64 32)",
			s.cfg.Vault.MasterKeyEnv,
		)
	}

	masterKey, err := vault.MasterKeyFromBase64(masterKeyStr)
	if err != nil {
		return nil, fmt.Errorf("invalid vault master key: %w", err)
	}
	return masterKey, nil
}

func (s *Server) loadRegistry() (network.Registry, error) {
	if s.cfg.Networks.RegistryPath == "" {
		return network.DefaultRegistry(), nil
	}
	registry, err := network.LoadRegistry(s.cfg.Networks.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("load network registry: %w", err)
	}
	return registry, nil
}

func (s *Server) buildClientFactory(registry network.Registry, logger *zap.Logger) trading.ClientFactory {
	if s.cfg.Trading.DryRun {
		logger.Warn("Trading is in dry-run mode, orders will not reach the exchange")
		return trading.NewDryRunFactory(logger)
	}
	return trading.NewIndexerFactory(registry, logger)
}

func (s *Server) operatorValidator() (*auth.JWTValidator, error) {
	secret := os.Getenv(s.cfg.Operator.JWTSecretEnv)
	validator := auth.NewJWTValidator([]byte(secret), s.cfg.Operator.JWTIssuer)
	if !validator.IsConfigured() {
		return nil, fmt.Errorf("operator jwt secret not set: env=%s", s.cfg.Operator.JWTSecretEnv)
	}
	return validator, nil
}

func (s *Server) setupRouter(
	signalService signalsvc.Service,
	onboardingService onboarding.Service,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Second * defaultRequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Public webhook endpoint
	signalsvc.RegisterRoutes(r, signalService, logger)

	// Operator endpoints behind bearer auth
	r.Group(func(gr chi.Router) {
		gr.Use(validator.Middleware())
		onboarding.RegisterRoutes(gr, onboardingService)
	})

	return r
}
