package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/rizq/internal/cli"
	"github.com/julianstephens/rizq/internal/keyring"
	"github.com/julianstephens/rizq/internal/storage/postgres"
	"github.com/julianstephens/rizq/internal/storage/redis"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store the store connection string in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	Status KeyringStatusCmd `cmd:"" help:"Check keyring availability." default:"1"`
	User   KeyringUserCmd   `cmd:"" help:"Show, set or clear the stored user identity."`
}

// KeyringSetCmd stores a PostgreSQL or Redis connection string in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL or Redis connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	switch {
	case postgres.IsConnString(cmd.ConnectionString):
		if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			// The keyring is encrypted, so an embedded password is tolerated here
			ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
			ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
		}
	case redis.IsURL(cmd.ConnectionString):
	default:
		return errors.New("connection string must be a PostgreSQL connection string or a redis:// URL")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	ctx.Println("✓ Connection string stored successfully in OS keyring")
	ctx.Println("  You can now use rizq without the --config flag")
	return nil
}

type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'rizq keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}

	ctx.Println("Connection string retrieved from keyring:")
	ctx.Println(maskPassword(connStr))
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return err
	}
	ctx.Println("✓ Connection string deleted from OS keyring")
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	ctx.Println("✓ OS keyring is available")

	if _, err := keyring.GetConnectionString(); err == nil {
		ctx.Println("✓ Connection string is stored in keyring")
	} else if errors.Is(err, keyring.ErrNotFound) {
		ctx.Println("ℹ No connection string stored in keyring")
	}
	if id, err := keyring.GetUserID(); err == nil {
		ctx.Printf("✓ User identity: %s\n", id)
	} else if errors.Is(err, keyring.ErrNotFound) {
		ctx.Println("ℹ No user identity stored, records are not scoped")
	}
	return nil
}

// KeyringUserCmd manages the identity that scopes stored records
type KeyringUserCmd struct {
	ID    string `arg:"" optional:"" help:"Identity to store."`
	Clear bool   `help:"Forget the stored identity."`
}

func (cmd *KeyringUserCmd) Run(ctx *cli.Context) error {
	switch {
	case cmd.Clear:
		if err := keyring.DeleteUserID(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return err
		}
		ctx.Println("✓ User identity cleared")
	case cmd.ID != "":
		if err := keyring.SetUserID(cmd.ID); err != nil {
			return err
		}
		ctx.Printf("✓ Records will be stored for %s\n", strings.TrimSpace(cmd.ID))
	default:
		id, err := keyring.GetUserID()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				ctx.Println("No user identity stored")
				return nil
			}
			return err
		}
		ctx.Println(id)
	}
	return nil
}

// maskPassword hides passwords in URL and key=value connection strings
func maskPassword(connStr string) string {
	if idx := strings.Index(connStr, "://"); idx != -1 {
		remaining := connStr[idx+3:]
		if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
			userInfo := remaining[:atIdx]
			if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
				return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
			}
		}
		return connStr
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}
	return connStr
}
