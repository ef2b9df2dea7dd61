package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"
)

const (
	databaseFlag      = "database"
	migrationPathFlag = "migrations-path"
	downFlag          = "down"

	databaseEnvName = "STOREFRONT_SQL_DB"
)

type flags struct {
	database       string
	migrationsPath string
	down           bool
}

func main() {
	f := getFlagsValues()
	validateFlags(f)
	makeMigrations(f)
}

type migrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func newMigrationLogger() *migrationLogger {
	return &migrationLogger{
		logger:  slog.New(slog.NewJSONHandler(os.Stderr, nil)),
		verbose: true,
	}
}

func (ml *migrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(fmt.Sprintf(format, v...))
}

func (ml *migrationLogger) Verbose() bool {
	return ml.verbose
}

// getFlagsValues falls back to the environment for the database address.
func getFlagsValues() flags {
	database := pflag.StringP(databaseFlag, "d", "", "postgres address without scheme")
	migrationsPath := pflag.StringP(migrationPathFlag, "m", "./migrations", "")
	down := pflag.Bool(downFlag, false, "roll back all migrations")
	pflag.Parse()

	f := flags{
		database:       *database,
		migrationsPath: *migrationsPath,
		down:           *down,
	}
	if f.database == "" {
		f.database = os.Getenv(databaseEnvName)
	}
	return f
}

func validateFlags(f flags) {
	var errs []error

	if f.database == "" {
		errs = append(errs, fmt.Errorf(
			"--%s flag or %s env: required", databaseFlag, databaseEnvName,
		))
	}

	if f.migrationsPath == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", migrationPathFlag))
	}

	if len(errs) != 0 {
		slog.Error("too few args", "err", errors.Join(errs...))
		fallDown()
	}
}

func makeMigrations(f flags) {
	m, err := migrate.New(
		fmt.Sprintf("file://%s", f.migrationsPath),
		fmt.Sprintf("pgx5://%s", f.database),
	)
	if err != nil {
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}
	defer m.Close()

	m.Log = newMigrationLogger()

	apply, direction := m.Up, "up"
	if f.down {
		apply, direction = m.Down, "down"
	}

	if err := apply(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return
		}
		slog.Error("failed to migrate", "direction", direction, "err", err)
		fallDown()
	}
	m.Log.Printf("migrations applied: %s", direction)
}

func fallDown() {
	os.Exit(2)
}
