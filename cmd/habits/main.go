package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/kmcewan/habits/internal/analytics"
	"github.com/kmcewan/habits/internal/cli"
	"github.com/kmcewan/habits/internal/cli/backups"
	"github.com/kmcewan/habits/internal/cli/system"
	"github.com/kmcewan/habits/internal/constants"
	"github.com/kmcewan/habits/internal/engine"
	"github.com/kmcewan/habits/internal/errors"
	"github.com/kmcewan/habits/internal/keyring"
	"github.com/kmcewan/habits/internal/logger"
	"github.com/kmcewan/habits/internal/storage"
	"github.com/kmcewan/habits/internal/storage/postgres"
	"github.com/kmcewan/habits/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database file path or PostgreSQL connection string. Credentials must NOT be embedded in the connection string; use the OS keyring or the HABITS_DB_CONNECTION environment variable instead." default:"~/.config/habits/habits.db"`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Init        system.InitCmd    `cmd:"" help:"Initialize habits storage."`
	Migrate     system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor      system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui         system.TuiCmd     `cmd:"" help:"Launch the interactive task board." default:"1"`
	Habit       cli.HabitCmd      `cmd:"" help:"Manage habits."`
	Task        cli.TaskCmd       `cmd:"" help:"List and resolve tasks."`
	Stats       cli.StatsCmd      `cmd:"" help:"Show streaks, success rates and elapsed days."`
	Credentials system.ConfigCmd  `cmd:"" name:"config" help:"Manage the stored database connection."`
	Backup      struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
}

func main() {
	// A local .env can supply HABITS_DB_CONNECTION during development.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with task series, streaks and success rates"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	store, configDir, err := selectStore(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	eng := engine.NewService(store)
	appCtx := &cli.Context{
		Store:      store,
		Engine:     eng,
		Aggregator: analytics.NewAggregator(store),
	}

	// Every command except init expects an existing database.
	if ctx.Selected() != nil && ctx.Selected().Name != "init" {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		errors.Fatal(err)
	}
}

// selectStore resolves the storage backend: an explicit PostgreSQL
// connection string wins, then the HABITS_DB_CONNECTION environment
// variable, then a connection stored in the OS keyring, and finally the
// local SQLite file.
func selectStore(config string) (storage.Provider, string, error) {
	if isPostgres(config) {
		return newPostgresStore(config)
	}

	path := expandHome(config)
	configDir := filepath.Dir(path)

	if config == constants.DefaultConfigPath {
		if envConn := os.Getenv("HABITS_DB_CONNECTION"); isPostgres(envConn) {
			store, _, err := newPostgresStore(envConn)
			return store, configDir, err
		}
		if connStr, err := keyring.GetConnectionString(); err == nil && isPostgres(connStr) {
			store := postgres.NewStore(connStr)
			return store, configDir, nil
		}
	}

	return sqlite.NewStore(path), configDir, nil
}

func newPostgresStore(connStr string) (storage.Provider, string, error) {
	if _, err := postgres.ValidateConnString(connStr); err != nil {
		if err == postgres.ErrEmbeddedCredentials {
			return nil, "", fmt.Errorf("connection strings with embedded credentials are not allowed on the command line; store the full string with 'habits config set' instead")
		}
		return nil, "", err
	}
	configDir := filepath.Dir(expandHome(constants.DefaultConfigPath))
	return postgres.NewStore(connStr), configDir, nil
}

func isPostgres(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
