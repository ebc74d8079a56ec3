package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	_ "github.com/lib/pq"
	"github.com/urfave/cli/v3"

	"github.com/pageza/gecko-recipes/backend/internal/database"
	"github.com/pageza/gecko-recipes/backend/internal/logging"
)

const name = "recipes-migrate"

// overridden during build with ldflags
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().Run(ctx, os.Args); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:    name,
		Version: version,
		Usage:   "Apply or roll back the recipe database schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Postgres connection URL",
				Sources:  cli.EnvVars("DATABASE_URL"),
				Required: true,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: withMigrator(func(ctx context.Context, m *database.Migrator) error {
					applied, err := m.Up(ctx)
					if err != nil {
						return err
					}
					if len(applied) == 0 {
						fmt.Println("Database is up to date.")
						return nil
					}
					for _, name := range applied {
						fmt.Printf("Applied %s\n", name)
					}
					return nil
				}),
			},
			{
				Name:  "down",
				Usage: "Roll back the most recently applied migration",
				Action: withMigrator(func(ctx context.Context, m *database.Migrator) error {
					name, err := m.Down(ctx)
					if errors.Is(err, database.ErrNoMigrations) {
						fmt.Println("No migrations to roll back.")
						return nil
					}
					if err != nil {
						return err
					}
					fmt.Printf("Rolled back %s\n", name)
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "List migrations and when they were applied",
				Action: withMigrator(func(ctx context.Context, m *database.Migrator) error {
					statuses, err := m.Status(ctx)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED AT")
					for _, s := range statuses {
						applied := "pending"
						if s.AppliedAt != nil {
							applied = s.AppliedAt.Format(time.RFC3339)
						}
						fmt.Fprintf(w, "%s\t%s\t%s\n", s.Version, s.Name, applied)
					}
					return w.Flush()
				}),
			},
		},
	}
}

// withMigrator opens the database named by --database-url for the duration
// of one subcommand.
func withMigrator(fn func(context.Context, *database.Migrator) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		log := logging.SetDefault(name, version, cmd.String("log-level"))

		db, err := sql.Open("postgres", cmd.String("database-url"))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		m, err := database.NewMigrator(db, log)
		if err != nil {
			return err
		}
		return fn(ctx, m)
	}
}
