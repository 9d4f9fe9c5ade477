package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/aissms/reeval-backend/internal/config"
	"github.com/aissms/reeval-backend/internal/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
)

// migrateLogger routes golang-migrate progress output through zerolog.
type migrateLogger struct {
	log     zerolog.Logger
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Info().Msgf(format, v...)
}

func (l migrateLogger) Verbose() bool { return l.verbose }

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat).With().Str("component", "migrate").Logger()

	var (
		migrationDir string
		dbURL        string
		verbose      bool
	)
	flag.StringVar(&migrationDir, "path", cfg.MigrationsPath, "Path to migration files (MIGRATIONS_PATH)")
	flag.StringVar(&dbURL, "database", cfg.DatabaseURL, "PostgreSQL URL (DATABASE_URL)")
	flag.BoolVar(&verbose, "verbose", false, "Log every applied migration")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(2)
	}
	if dbURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}

	m, err := migrate.New("file://"+migrationDir, dbURL)
	if err != nil {
		log.Fatal().Err(err).Str("path", migrationDir).Msg("Migration failed to initialize")
	}
	m.Log = migrateLogger{log: log, verbose: verbose}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("Close migrate")
		}
	}()

	switch args[0] {
	case "up":
		run(log, "up", m.Up())
	case "down":
		run(log, "down", m.Down())
	case "steps":
		n := intArg(log, args, "steps")
		run(log, "steps", m.Steps(n))
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("No migration applied yet")
			return
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Version failed")
		}
		fmt.Printf("Version: %d, Dirty: %t\n", version, dirty)
		return
	case "force":
		v := intArg(log, args, "force")
		if err := m.Force(v); err != nil {
			log.Fatal().Err(err).Int("version", v).Msg("Force failed")
		}
		log.Info().Int("version", v).Msg("Forced schema version")
		return
	default:
		printUsage()
		os.Exit(2)
	}

	if version, dirty, err := m.Version(); err == nil {
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Schema version")
	}
}

// run treats ErrNoChange as success so repeated deploys stay quiet.
func run(log zerolog.Logger, command string, err error) {
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info().Str("command", command).Msg("Schema already up to date")
	case err != nil:
		log.Fatal().Err(err).Str("command", command).Msg("Migration failed")
	default:
		log.Info().Str("command", command).Msg("Migration applied")
	}
}

func intArg(log zerolog.Logger, args []string, command string) int {
	if len(args) < 2 {
		log.Fatal().Str("command", command).Msg("Missing numeric argument")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("Invalid numeric argument")
	}
	return n
}

func printUsage() {
	fmt.Println("Usage: migrate [flags] <command>")
	fmt.Println("Commands: up, down, steps <n>, version, force <version>")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
