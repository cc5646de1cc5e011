// Command migrate manages the PostgreSQL schema for the TradeDist backend.
// It wraps golang-migrate with the project's migration layout and adds
// create/list helpers for authoring new migration pairs.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tradedist/backend/internal/infrastructure/config"
	"github.com/tradedist/backend/internal/infrastructure/logger"
	"github.com/tradedist/backend/internal/infrastructure/migration"
)

type cliOptions struct {
	migrationsPath string
	logLevel       string
	confirmDrop    bool
}

func main() {
	var opts cliOptions
	flag.StringVar(&opts.migrationsPath, "path", "", "migrations directory (default: ./migrations)")
	flag.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.BoolVar(&opts.confirmDrop, "confirm", false, "confirm destructive commands (drop)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      opts.logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	if err := run(log, opts, args[0], args[1:]); err != nil {
		log.Fatal("Migration command failed",
			zap.String("command", args[0]), zap.Error(err))
	}
}

func run(log *zap.Logger, opts cliOptions, command string, args []string) error {
	path, err := resolveMigrationsPath(opts.migrationsPath)
	if err != nil {
		return err
	}
	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("migrations_path", path))

	// create and list only touch the filesystem.
	switch command {
	case "create":
		return createMigration(log, path, args)
	case "list":
		return listMigrations(log, path)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, path, log)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := intArg(args, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "goto":
		v, err := intArg(args, "target version")
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("target version must not be negative: %d", v)
		}
		return m.GoTo(uint(v))
	case "version":
		return showVersion(log, m)
	case "force":
		v, err := intArg(args, "version")
		if err != nil {
			return err
		}
		log.Warn("Forcing migration version", zap.Int("version", v))
		return m.Force(v)
	case "drop":
		if !opts.confirmDrop {
			return errors.New("drop removes every database object; rerun with -confirm")
		}
		return m.Drop()
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// resolveMigrationsPath falls back from the working directory to the
// directory next to the binary, so the tool works both from the repo root
// and from a deployed artifact.
func resolveMigrationsPath(explicit string) (string, error) {
	path := explicit
	if path == "" {
		path = "migrations"
		if _, err := os.Stat(path); err != nil {
			if execPath, eerr := os.Executable(); eerr == nil {
				candidate := filepath.Join(filepath.Dir(execPath), "..", "..", "migrations")
				if _, serr := os.Stat(candidate); serr == nil {
					path = candidate
				}
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve migrations path: %w", err)
	}
	return abs, nil
}

func createMigration(log *zap.Logger, path string, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: migrate create <name> [description]")
	}
	description := ""
	if len(args) > 1 {
		description = args[1]
	}

	mf, err := migration.CreateMigration(path, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath))
	return nil
}

func listMigrations(log *zap.Logger, path string) error {
	names, err := migration.ListMigrations(path)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		log.Info("No migrations found")
		return nil
	}
	log.Info("Available migrations", zap.Int("count", len(names)))
	for _, name := range names {
		fmt.Println("  -", name)
	}
	return nil
}

func showVersion(log *zap.Logger, m *migration.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		log.Info("No migrations applied")
		return nil
	}
	log.Info("Current migration version",
		zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `TradeDist schema migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    apply all pending migrations
  down                  roll back all migrations
  step <n>              apply n migrations (negative rolls back)
  goto <version>        migrate to a specific version
  version               print the current version and dirty flag
  force <version>       overwrite the recorded version without running SQL
  drop                  drop every database object (requires -confirm)
  create <name> [desc]  write a new up/down migration pair
  list                  list migration versions on disk

Flags:
  -path string          migrations directory (default: ./migrations)
  -log-level string     debug, info, warn or error (default: info)
  -confirm              acknowledge destructive commands

Database connection comes from TRADEDIST_DATABASE_* environment variables
or the config file, the same as the server binary.`)
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s required", what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return n, nil
}
