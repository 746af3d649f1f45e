package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Config struct {
	URL             string        `envconfig:"URL" required:"true"`
	ApplicationName string        `split_words:"true" default:"ai-toolkit"`
	Timeout         time.Duration `split_words:"true" default:"10s"`
	MaxOpenConns    int           `split_words:"true" default:"5"`
	LogQueries      bool          `split_words:"true" default:"false"`
}

func New(cfg Config) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.URL)
	if err := validateDSN(dsn); err != nil {
		return nil, err
	}

	opts := []pgdriver.Option{
		pgdriver.WithDSN(dsn),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, pgdriver.WithTimeout(cfg.Timeout))
	}
	if name := strings.TrimSpace(cfg.ApplicationName); name != "" {
		opts = append(opts, pgdriver.WithApplicationName(name))
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.LogQueries {
		db.AddQueryHook(QueryLogger{})
	}
	return db, nil
}

func MustNew(cfg Config) *bun.DB {
	db, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return db
}

// Ping verifies the connection within the given timeout.
func Ping(ctx context.Context, db *bun.DB, timeout time.Duration) error {
	if db == nil {
		return errors.New("postgres: nil db")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

func validateDSN(dsn string) error {
	if dsn == "" {
		return errors.New("postgres: database url is required")
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("postgres: invalid database url: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
	default:
		return fmt.Errorf("postgres: unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("postgres: database url has no host")
	}
	return nil
}

// QueryLogger writes every bun query to the global zerolog logger at debug level.
type QueryLogger struct{}

var _ bun.QueryHook = QueryLogger{}

func (QueryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (QueryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	evt := log.Debug()
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		evt = log.Warn().Err(event.Err)
	}
	evt.
		Str("query", event.Query).
		Dur("duration", time.Since(event.StartTime)).
		Msg("postgres query")
}
