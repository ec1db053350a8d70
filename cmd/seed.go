package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Capstone-project-team7/Back/internal/config"
	"github.com/Capstone-project-team7/Back/internal/database"
	"github.com/Capstone-project-team7/Back/internal/model"
	"github.com/Capstone-project-team7/Back/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run migrations and seeds (migrate up, then database/seeds/*.sql)",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := database.RunSeeds(db); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if err := backfillQuotas(db, cfg); err != nil {
		return fmt.Errorf("quota backfill: %w", err)
	}
	return nil
}

// backfillQuotas provisions the default quota row for any seeded user that
// lacks one, so ingestion never hits a missing quota for fixture accounts.
func backfillQuotas(db *gorm.DB, cfg *config.Config) error {
	quotas := service.NewQuotaService(db, nil, nil, cfg.QuotaDefaultTotal, zap.NewNop())
	var userIDs []int64
	if err := db.Model(&model.User{}).Pluck("id", &userIDs).Error; err != nil {
		return err
	}
	for _, id := range userIDs {
		if err := quotas.Ensure(context.Background(), id); err != nil {
			return err
		}
	}
	return nil
}
