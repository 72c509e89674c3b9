package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/slaguard/internal/app"
	"github.com/alexanderramin/slaguard/internal/cli"
	"github.com/alexanderramin/slaguard/internal/config"
	"github.com/alexanderramin/slaguard/internal/db"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	components, err := app.New(database, cfg, app.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer components.Close()

	// A fresh store starts with the rules file, or the built-in catalog.
	if _, err := components.Rules.EnsureCatalog(context.Background(), cfg.RulesFile); err != nil {
		return fmt.Errorf("loading rule catalog: %w", err)
	}

	a := &cli.App{
		Rules:       components.Rules,
		WorkItems:   components.WorkItems,
		Technicians: components.Technicians,
		Sweep:       components.Sweep,
		Assignments: components.Assignments,
		Ledger:      components.Ledger,
		Metrics:     components.Metrics,
		Scheduler:   components.Scheduler,
	}
	a.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(a).Execute()
}
