// cmd/dbtools/migrate/main.go
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Runway/internal/config"
	"github.com/codr1/Runway/internal/db"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to the YAML config (database filename is read from it)")
		dbPath     = flag.String("db", "", "Path to SQLite database, overrides -config")
		command    = flag.String("command", "", "Command to run (up, down, steps, version)")
		steps      = flag.Int("n", 1, "Number of migrations for the steps command, negative rolls back")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	path, err := resolveDBPath(*dbPath, *configPath)
	if err != nil || *command == "" {
		if err != nil {
			log.Error().Err(err).Msg("Cannot resolve database path")
		}
		flag.Usage()
		os.Exit(1)
	}

	if err := run(path, *command, *steps); err != nil {
		log.Fatal().Err(err).Str("db", path).Str("command", *command).Msg("Migration failed")
	}
}

func resolveDBPath(dbPath, configPath string) (string, error) {
	if dbPath != "" {
		return filepath.Abs(dbPath)
	}
	if configPath == "" {
		return "", fmt.Errorf("either -db or -config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	return filepath.Abs(cfg.Database.Filename)
}

func run(path, command string, steps int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer sqlDB.Close()

	migrator, err := db.NewMigrator(sqlDB)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "steps":
		err = migrator.Steps(steps)
	case "version":
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
	if err != nil {
		return err
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Str("command", command).Msg("Migration complete")
	return nil
}
