package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allthepins/identity-adapter/internal/api"
	"github.com/allthepins/identity-adapter/internal/api/handlers"
	"github.com/allthepins/identity-adapter/internal/auth"
	"github.com/allthepins/identity-adapter/internal/config"
	"github.com/allthepins/identity-adapter/internal/identity"
	"github.com/allthepins/identity-adapter/internal/platform/logger"
	"github.com/allthepins/identity-adapter/internal/verification"
	"github.com/joho/godotenv"
)

const serviceName = "identity-adapter"

func main() {
	if err := run(); err != nil {
		slog.Error("auth api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional outside local development.
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	cfg, err := config.LoadAPI()
	if err != nil {
		return err
	}

	log := logger.New(serviceName, cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cognitoClient, err := identity.NewCognitoClient(ctx, identity.ClientOptions{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.CognitoEndpoint,
	})
	if err != nil {
		return err
	}

	provider, err := identity.NewCognito(cognitoClient, cfg.Cognito.ClientID)
	if err != nil {
		return err
	}

	redisClient, err := verification.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}

	store, err := verification.NewRedisStore(redisClient, cfg.Auth.VerificationCodeTTL)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close redis client", "error", err)
		}
	}()

	service, err := auth.NewService(auth.Config{
		Provider:           provider,
		Verifier:           store,
		Logger:             log,
		UserPoolID:         cfg.Cognito.UserPoolID,
		AccessTokenExpiry:  cfg.Auth.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.Auth.RefreshTokenExpiry,
	})
	if err != nil {
		return err
	}

	if cfg.Auth.ExposeVerificationCodes {
		log.Warn("verification codes are exposed in API responses")
	}
	handler := handlers.NewAuthHandler(service, log, handlers.WithExposedCodes(cfg.Auth.ExposeVerificationCodes))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(handler, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
