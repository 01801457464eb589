// Package main provides the schema migration command
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/mealbuddy/engine/internal/infrastructure/config"
	"github.com/mealbuddy/engine/internal/infrastructure/persistence/migrations"
	"github.com/mealbuddy/engine/pkg/logger"
)

const usage = `Usage: migrate [-config path] <command>

Commands:
  up             apply all pending migrations
  down           roll back the latest migration
  version        print the applied version
  status         print the applied version and pending migrations
  force VERSION  set the version without running migrations
`

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, command string, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations require the postgres driver, configured driver is %q", cfg.Database.Driver)
	}

	log, _, err := logger.New(logger.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	m, err := migrations.Open(cfg.GetMigrationURL(), cfg.Database.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	case "status":
		status, err := m.Status()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	case "force":
		if len(args) != 1 {
			return fmt.Errorf("force requires a version")
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return m.Force(version)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
