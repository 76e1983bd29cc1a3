package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"quiz-platform-service/internal/app"
	"quiz-platform-service/internal/config"
	"quiz-platform-service/internal/seed"
)

// NewSeedCmd loads the sample catalog and admin account into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample catalog and admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	catalog := app.NewCatalogService(b.catalog, b.quizzes)
	return seed.Sample(ctx, catalog, b.users, seedAdmin(), cfg.Auth.BcryptCost)
}

func seedAdmin() seed.Admin {
	admin := seed.Admin{
		Email:    os.Getenv("SEED_ADMIN_EMAIL"),
		Password: os.Getenv("SEED_ADMIN_PASSWORD"),
		FullName: "Admin User",
	}
	if admin.Email == "" {
		admin.Email = "admin@quizplatform.local"
	}
	if admin.Password == "" {
		admin.Password = "AdminPass123!"
	}
	return admin
}
