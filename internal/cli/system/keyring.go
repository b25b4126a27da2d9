package system

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/kmcewan/habits/internal/cli"
	"github.com/kmcewan/habits/internal/keyring"
	"github.com/kmcewan/habits/internal/storage/postgres"
)

// ConfigCmd manages the database connection stored in the OS keyring.
type ConfigCmd struct {
	Set    ConfigSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
	Get    ConfigGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
	Delete ConfigDeleteCmd `cmd:"" help:"Remove the stored connection string."`
}

type ConfigSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring."`
}

func (cmd *ConfigSetCmd) Run(ctx *cli.Context) error {
	if !strings.HasPrefix(cmd.ConnectionString, "postgres://") &&
		!strings.HasPrefix(cmd.ConnectionString, "postgresql://") &&
		!strings.Contains(cmd.ConnectionString, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			// The keyring is encrypted, so embedded credentials are
			// acceptable there, just not on the command line or disk.
			fmt.Println("⚠ Warning: connection string contains embedded credentials.")
			fmt.Println("  It will be stored as-is in the encrypted OS keyring.")
		} else {
			return fmt.Errorf("invalid connection string: %w", err)
		}
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	fmt.Println("✓ Connection string stored in OS keyring")
	fmt.Println("  habits will use it automatically when no --config flag is given")
	return nil
}

type ConfigGetCmd struct{}

func (cmd *ConfigGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'habits config set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}

	fmt.Println("Connection string retrieved from keyring:")
	fmt.Println(maskPassword(connStr))
	return nil
}

type ConfigDeleteCmd struct{}

func (cmd *ConfigDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	fmt.Println("✓ Connection string removed from OS keyring")
	return nil
}

// maskPassword hides the password portion of a connection string for display.
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			return connStr
		}
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), "****")
		}
		return u.String()
	}

	parts := strings.Fields(connStr)
	for i, part := range parts {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "password") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}
