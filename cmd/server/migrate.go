package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/and161185/todo-keeper/internal/migrate"
	"github.com/and161185/todo-keeper/internal/repository/mongodb"
)

func newMigrateCmd() *cobra.Command {
	cfg := &config{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Prepare the storage schema and exit",
		Long: `Apply pending SQL migrations (postgres) or create the collection
indexes (mongo). Serving does the same on startup.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyOSEnv(cmd.Flags()); err != nil {
				return err
			}
			return cfg.validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			return runMigrate(ctx, cmd, cfg)
		},
	}
	cfg.storeFlags(cmd.Flags())
	return cmd
}

func runMigrate(ctx context.Context, cmd *cobra.Command, cfg *config) error {
	if cfg.Store == storePostgres {
		if err := migrate.Up(ctx, cfg.DSN); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		v, err := migrate.Version(ctx, cfg.DSN)
		if err != nil {
			return err
		}
		cmd.Printf("postgres schema at version %d\n", v)
		return nil
	}

	db, err := mongodb.Connect(ctx, cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(context.Background()) }()
	if err := mongodb.EnsureIndexes(ctx, db.Database); err != nil {
		return err
	}
	cmd.Printf("mongo indexes ready in %s\n", cfg.MongoDB)
	return nil
}
