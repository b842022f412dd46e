package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/user-management/internal/rbac"
	rbacPostgres "github.com/frahmantamala/user-management/internal/rbac/postgres"
	"github.com/frahmantamala/user-management/pkg/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed roles, permissions and the admin account",
	Long: `Insert the configured roles and permissions that are not already present,
grant every permission to the administrator role and create the admin user.
Safe to run repeatedly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		logger.Init(cfg.Logging.Level, cfg.Logging.Format)
		lg := logger.LoggerWrapper()

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		seeder := rbac.NewSeeder(rbacPostgres.NewRepository(gormDB), lg, cfg.Security.BCryptCost)
		if err := seeder.Seed(cfg.Seed); err != nil {
			log.Fatalf("seeding failed: %v", err)
		}

		lg.Info("seeding complete",
			"roles", cfg.Seed.Roles,
			"permissions", cfg.Seed.Permissions,
			"admin_email", cfg.Seed.AdminEmail)
	},
}
