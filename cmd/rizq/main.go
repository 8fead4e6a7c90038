package main

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/rizq/internal/backup"
	"github.com/julianstephens/rizq/internal/cli"
	"github.com/julianstephens/rizq/internal/cli/backups"
	"github.com/julianstephens/rizq/internal/cli/catalog"
	"github.com/julianstephens/rizq/internal/cli/practice"
	"github.com/julianstephens/rizq/internal/cli/system"
	"github.com/julianstephens/rizq/internal/constants"
	"github.com/julianstephens/rizq/internal/errors"
	"github.com/julianstephens/rizq/internal/logger"
)

var CLI struct {
	Version       kong.VersionFlag
	Config        string        `help:"SQLite path, file:// directory, memory:, PostgreSQL or Redis connection string. Credentials must NOT be embedded; use the keyring or RIZQ_DB_CONNECTION." type:"string" default:"${config}" env:"RIZQ_CONFIG"`
	Content       string        `help:"Content source: builtin, db, or a YAML catalog path." default:"${content}" env:"RIZQ_CONTENT"`
	User          string        `help:"User identity for scoped storage keys." env:"RIZQ_USER"`
	Timezone      string        `help:"IANA timezone used for day boundaries." default:"Local" env:"RIZQ_TIMEZONE"`
	Timeout       time.Duration `help:"Time budget for loading today's habits." default:"${timeout}" env:"RIZQ_TIMEOUT"`
	RetentionDays int           `help:"Days of completion history to keep." default:"${retention}" env:"RIZQ_RETENTION_DAYS"`
	BackupDir     string        `help:"Directory for habit and progress backups." default:"${backupdir}" env:"RIZQ_BACKUP_DIR"`
	Debug         bool          `help:"Enable debug logging." env:"RIZQ_DEBUG"`

	Init       system.InitCmd       `cmd:"" help:"Initialize rizq storage."`
	Doctor     system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Tui        system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Keyring    system.KeyringCmd    `cmd:"" help:"Manage secrets in the OS keyring."`
	Today      practice.TodayCmd    `cmd:"" help:"Show today's habits."`
	Complete   practice.CompleteCmd `cmd:"" help:"Mark a dua completed today."`
	Progress   practice.ProgressCmd `cmd:"" help:"Show level, XP and streak."`
	History    practice.HistoryCmd  `cmd:"" help:"Show recent completions."`
	Reset      practice.ResetCmd    `cmd:"" help:"Reset XP, level and streak."`
	Journey    catalog.JourneyCmd   `cmd:"" help:"Subscribe to or leave journeys."`
	Custom     catalog.CustomCmd    `cmd:"" help:"Manage custom habits."`
	ContentCmd catalog.ContentCmd   `cmd:"" name:"content" help:"Browse and seed the dua catalog."`
	Backup     backups.BackupCmd    `cmd:"" help:"Manage habit and progress backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily dua habits, journeys and progress"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":   constants.Version,
			"config":    constants.DefaultConfigPath,
			"content":   constants.ContentBuiltin,
			"timeout":   constants.DefaultLoadTimeout.String(),
			"retention": strconv.Itoa(constants.DefaultRetentionDays),
			"backupdir": filepath.Join(filepath.Dir(constants.DefaultConfigPath), backup.BackupDirName),
		},
	)

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(kong.ExpandPath(constants.DefaultConfigPath)),
	}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}

	// Keyring commands manage the secrets the store itself may need
	if strings.HasPrefix(ctx.Command(), "keyring") {
		if err := ctx.Run(&cli.Context{}); err != nil {
			errors.Fatal(err)
		}
		return
	}

	appCtx, err := cli.NewContext(cli.Options{
		DSN:           expandHome(cli.ResolveDSN(CLI.Config, constants.DefaultConfigPath)),
		Content:       CLI.Content,
		UserID:        cli.ResolveUserID(CLI.User),
		Timezone:      CLI.Timezone,
		Timeout:       CLI.Timeout,
		RetentionDays: CLI.RetentionDays,
		BackupDir:     expandHome(CLI.BackupDir),
	})
	if err != nil {
		errors.Fatal(err)
	}

	err = ctx.Run(appCtx)
	appCtx.Close()
	if err != nil {
		errors.Fatal(err)
	}
}

// expandHome expands a leading ~ so connection strings pass through untouched.
func expandHome(dsn string) string {
	if strings.HasPrefix(dsn, "~") {
		return kong.ExpandPath(dsn)
	}
	return dsn
}
