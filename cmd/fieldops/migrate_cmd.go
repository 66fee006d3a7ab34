package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/iota-uz/fieldops/migrations"
	"github.com/iota-uz/fieldops/pkg/configuration"
)

func newMigrateCmd() *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect schema migrations",
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", "", "connection string of the schema owner (defaults to DB_* settings)")

	run := func(fn func(ctx context.Context, db *sql.DB) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			db, err := openMigrationDB(dsn)
			if err != nil {
				return err
			}
			defer db.Close()
			return fn(cmd.Context(), db)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: run(func(ctx context.Context, db *sql.DB) error {
				return goose.UpContext(ctx, db, ".")
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: run(func(ctx context.Context, db *sql.DB) error {
				return goose.DownContext(ctx, db, ".")
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the migration status",
			RunE: run(func(ctx context.Context, db *sql.DB) error {
				return goose.StatusContext(ctx, db, ".")
			}),
		},
	)
	return cmd
}

func openMigrationDB(dsn string) (*sql.DB, error) {
	conf := configuration.Use()
	if dsn == "" {
		dsn = conf.Database.Opts
	}
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(conf.MigrationsTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, err
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
