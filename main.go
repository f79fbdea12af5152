package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/Black-And-White-Club/ruler-bot/app"
	rulermigrations "github.com/Black-And-White-Club/ruler-bot/app/modules/ruler/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/ruler-bot/config"
	"github.com/Black-And-White-Club/ruler-bot/internal/db/tablestore"
	"github.com/Black-And-White-Club/ruler-bot/internal/observability"
)

func main() {
	cliApp := &cli.App{
		Name:  "ruler-bot",
		Usage: "chat size game backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "process chat commands and serve the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending database migrations and exit",
				Action: migrateUp,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}

	runErr := application.Run(ctx)
	if err := application.Close(); err != nil {
		application.Logger.Error("Error during shutdown", "error", err)
	}
	return runErr
}

func migrateUp(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Observability.LogLevel,
		Format: cfg.Observability.LogFormat,
	})

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	store, err := tablestore.Open(ctx, tablestore.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN}, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	group, err := rulermigrations.Apply(ctx, store.DB())
	if err != nil {
		return err
	}
	if group.IsZero() {
		fmt.Println("No new migrations to run")
	} else {
		fmt.Printf("Migrated to %s\n", group)
	}
	return nil
}
