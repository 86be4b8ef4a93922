package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dom/personal-blog/internal/config"
	"github.com/dom/personal-blog/internal/logging"
	"github.com/dom/personal-blog/internal/repository"
	"github.com/dom/personal-blog/internal/repository/postgres"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// app carries what every subcommand needs once the root pre-run has loaded
// configuration and opened the database.
type app struct {
	cfg    *config.Config
	db     *gorm.DB
	repos  *repository.Repositories
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "blogctl",
		Short:         "Operator tooling for the personal blog backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			a.logger = logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

			db, err := postgres.NewConnection(cfg.DatabaseURL, logger.Warn)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			a.db = db
			a.repos = postgres.NewRepositories(db)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.db == nil {
				return nil
			}
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}

	root.AddCommand(
		newMigrateCmd(a),
		newUserCmd(a),
		newSessionsCmd(a),
	)
	return root
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := postgres.Migrate(a.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
