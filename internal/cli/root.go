package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/rizq/internal/aggregator"
	"github.com/julianstephens/rizq/internal/backup"
	"github.com/julianstephens/rizq/internal/constants"
	"github.com/julianstephens/rizq/internal/content"
	"github.com/julianstephens/rizq/internal/content/sqlstore"
	"github.com/julianstephens/rizq/internal/habits"
	"github.com/julianstephens/rizq/internal/keyring"
	"github.com/julianstephens/rizq/internal/logger"
	"github.com/julianstephens/rizq/internal/migration"
	"github.com/julianstephens/rizq/internal/profile"
	"github.com/julianstephens/rizq/internal/storage"
	"github.com/julianstephens/rizq/internal/storage/postgres"
	"github.com/julianstephens/rizq/internal/storage/redis"
	"github.com/julianstephens/rizq/internal/storage/sqlite"
	"github.com/julianstephens/rizq/internal/utils"
	"github.com/julianstephens/rizq/migrations"
)

// Options are the resolved global flags.
type Options struct {
	DSN           string
	Content       string
	UserID        string
	Timezone      string
	Timeout       time.Duration
	RetentionDays int
	// BackupDir enables backups when set.
	BackupDir string
}

type Context struct {
	KV         storage.KV
	Habits     *habits.Store
	Profile    *profile.Ledger
	Content    content.Provider
	Aggregator *aggregator.Aggregator
	Backups    *backup.Manager
	Location   *time.Location
	UserID     string
	Out        io.Writer

	aggOpts []aggregator.Option
}

// sqlBackend is implemented by the stores that can also hold the content tables.
type sqlBackend interface {
	DB() *sql.DB
}

// OpenKV picks a backend from the DSN prefix. Anything unrecognised is a SQLite path.
func OpenKV(dsn string) (storage.KV, error) {
	switch {
	case dsn == "memory:" || dsn == "memory":
		return storage.NewMemoryStore(), nil
	case strings.HasPrefix(dsn, "file://"):
		return storage.NewFileStore(strings.TrimPrefix(dsn, "file://")), nil
	case postgres.IsConnString(dsn):
		if _, err := postgres.ValidateConnString(dsn); err != nil {
			return nil, err
		}
		return postgres.New(dsn), nil
	case redis.IsURL(dsn):
		return redis.New(dsn), nil
	default:
		return sqlite.NewStore(dsn), nil
	}
}

// ResolveDSN applies the keyring and RIZQ_DB_CONNECTION fallbacks. They only
// take effect while the --config flag still holds its default value.
func ResolveDSN(flagValue, defaultValue string) string {
	if flagValue != defaultValue {
		return flagValue
	}
	if env := os.Getenv("RIZQ_DB_CONNECTION"); env != "" {
		return env
	}
	connStr, err := keyring.GetConnectionString()
	if err == nil && connStr != "" {
		return connStr
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		logger.Debug("Keyring lookup skipped", "error", err)
	}
	return flagValue
}

// ResolveUserID returns the explicit identity, or the one stored in the keyring.
func ResolveUserID(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	id, err := keyring.GetUserID()
	if err != nil {
		return ""
	}
	return id
}

// NewContext opens the store and wires every component against it.
func NewContext(opts Options) (*Context, error) {
	loc, err := utils.LoadLocation(opts.Timezone)
	if err != nil {
		return nil, err
	}

	kv, err := OpenKV(opts.DSN)
	if err != nil {
		return nil, err
	}
	if err := kv.Open(); err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", kv.Location(), err)
	}

	provider, err := OpenContent(opts.Content, kv)
	if err != nil {
		kv.Close()
		return nil, err
	}

	ctx := &Context{
		KV:       kv,
		Content:  provider,
		Location: loc,
		UserID:   opts.UserID,
		Out:      os.Stdout,
	}
	keys := backup.Keys{
		Habits:  storage.ScopedKey(constants.HabitsStorageKey, opts.UserID),
		Profile: storage.ScopedKey(constants.ProfileStorageKey, opts.UserID),
	}
	ctx.Habits = habits.New(kv,
		habits.WithKey(keys.Habits),
		habits.WithLocation(loc),
		habits.WithRetentionDays(opts.RetentionDays))
	ctx.Profile = profile.New(kv,
		profile.WithKey(keys.Profile),
		profile.WithLocation(loc))
	ctx.aggOpts = []aggregator.Option{
		aggregator.WithTimeout(opts.Timeout),
		aggregator.WithProgressRecorder(ctx.Profile),
	}
	ctx.Aggregator = ctx.NewAggregator()
	if opts.BackupDir != "" {
		ctx.Backups = backup.NewManager(kv, opts.BackupDir, keys, ctx.Habits, ctx.Profile)
	}

	logger.Debug("Context ready", "store", kv.Location(), "content", opts.Content, "user", opts.UserID, "timezone", loc.String())
	return ctx, nil
}

// NewAggregator builds an aggregator sharing the context's stores, with extra options applied last.
func (c *Context) NewAggregator(extra ...aggregator.Option) *aggregator.Aggregator {
	opts := append(append([]aggregator.Option(nil), c.aggOpts...), extra...)
	return aggregator.New(c.Habits, c.Content, opts...)
}

// OpenContent resolves the --content flag: "builtin", "db" or a YAML file path.
func OpenContent(source string, kv storage.KV) (content.Provider, error) {
	switch source {
	case "", constants.ContentBuiltin:
		return content.Builtin(), nil
	case constants.ContentDatabase:
		store, err := SQLContent(kv)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		catalog, err := content.LoadFile(source)
		if err != nil {
			return nil, err
		}
		return catalog, nil
	}
}

// SQLContent returns the SQL catalog sharing kv's connection.
func SQLContent(kv storage.KV) (*sqlstore.Store, error) {
	db, dialect, ok := sqlHandle(kv)
	if !ok {
		return nil, fmt.Errorf("content source %q needs a SQLite or PostgreSQL store, got %s", constants.ContentDatabase, kv.Location())
	}
	return sqlstore.New(db, dialect), nil
}

// MigrationRunner returns a runner over kv's schema. ok is false for non-SQL stores.
func MigrationRunner(kv storage.KV) (runner *migration.Runner, ok bool, err error) {
	db, dialect, ok := sqlHandle(kv)
	if !ok {
		return nil, false, nil
	}
	dir := "sqlite"
	if dialect == migration.DialectPostgres {
		dir = "postgres"
	}
	sub, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return nil, true, fmt.Errorf("failed to access %s migrations: %w", dir, err)
	}
	return migration.NewRunner(db, sub, dialect), true, nil
}

func sqlHandle(kv storage.KV) (*sql.DB, migration.Dialect, bool) {
	backend, ok := kv.(sqlBackend)
	if !ok || backend.DB() == nil {
		return nil, 0, false
	}
	if _, isPG := kv.(*postgres.Store); isPG {
		return backend.DB(), migration.DialectPostgres, true
	}
	return backend.DB(), migration.DialectSQLite, true
}

func (c *Context) Close() error {
	if c.KV == nil {
		return nil
	}
	return c.KV.Close()
}

// Writer is where command output goes, stdout unless Out is set.
func (c *Context) Writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Writer(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Writer(), args...)
}
