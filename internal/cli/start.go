package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"quiz-platform-service/internal/app"
	"quiz-platform-service/internal/auth"
	"quiz-platform-service/internal/config"
	"quiz-platform-service/internal/seed"
	transport "quiz-platform-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		if !b.inMemory {
			return fmt.Errorf("auth.jwt_secret (or JWT_SECRET) is required")
		}
		secret = uuid.NewString()
		log.Printf("jwt secret not configured, using an ephemeral one")
	}
	issuer, err := auth.NewTokenIssuer(secret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
	if err != nil {
		return err
	}

	baseURL := cfg.Certificates.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + finalPort
	}

	feed := app.NewResultFeed()
	authService := app.NewAuthService(b.users, issuer, b.revoked, cfg.Auth.BcryptCost)
	catalog := app.NewCatalogService(b.catalog, b.quizzes)
	attempts := app.NewAttemptService(b.attempts, b.quizzes, app.NewCertificateMinter(baseURL), feed)
	users := app.NewUserService(b.users, b.attempts, b.catalog)

	if b.inMemory {
		if err := seed.Sample(ctx, catalog, b.users, seedAdmin(), cfg.Auth.BcryptCost); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewServer(authService, catalog, attempts, users, feed).Routes(),
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	go func() {
		log.Printf("starting quiz platform on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
