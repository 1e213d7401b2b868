// Package postgres runs fluentsql statements on PostgreSQL through sqlx.
// The lib/pq driver is registered as "postgres" and the pgx stdlib driver
// as "pgx".
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/tinywasm/fluentsql"
	"github.com/tinywasm/fluentsql/config"
	"github.com/tinywasm/fluentsql/internal/log"
	"github.com/tinywasm/fluentsql/internal/observability"
)

// Client wraps sqlx.DB and implements fluentsql.TxExecutor.
type Client struct {
	db      *sqlx.DB
	metrics *observability.MetricsCollector
}

var _ fluentsql.TxExecutor = (*Client)(nil)

// NewClient connects with driver ("postgres" or "pgx") and configures the pool.
func NewClient(ctx context.Context, driver string, cfg *config.PostgreSQLConfig) (*Client, error) {
	if driver == "" {
		driver = config.DriverPQ
	}
	connStr := buildConnectionString(cfg)

	db, err := sqlx.ConnectContext(ctx, driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	log.Info("PostgreSQL connected (driver %s, host %s, database %s)", driver, cfg.Host, cfg.Database)
	return NewClientFromDB(db), nil
}

// NewClientFromDB wraps an already open connection pool.
func NewClientFromDB(db *sqlx.DB) *Client {
	return &Client{db: db, metrics: observability.NewMetricsCollector()}
}

// buildConnectionString returns cfg.DSN when set, otherwise a keyword/value
// connection string understood by both drivers.
func buildConnectionString(cfg *config.PostgreSQLConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	var parts []string

	parts = append(parts, fmt.Sprintf("host=%s", cfg.Host))
	parts = append(parts, fmt.Sprintf("port=%d", cfg.Port))
	parts = append(parts, fmt.Sprintf("dbname=%s", cfg.Database))

	if cfg.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", cfg.Password))
	}
	if cfg.SSLMode != "" {
		parts = append(parts, fmt.Sprintf("sslmode=%s", cfg.SSLMode))
	}
	if cfg.ConnectTimeout > 0 {
		parts = append(parts, fmt.Sprintf("connect_timeout=%d", cfg.ConnectTimeout))
	}

	return strings.Join(parts, " ")
}

// DB returns the underlying *sqlx.DB connection
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Metrics returns the statement and transaction counters of this client.
func (c *Client) Metrics() *observability.MetricsCollector {
	return c.metrics
}

// Ping tests the database connection
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Query prepares and runs a row-returning statement.
func (c *Client) Query(ctx context.Context, query string, args ...fluentsql.Value) ([]fluentsql.Row, error) {
	rows, err := queryRows(ctx, c.db, query, args)
	c.metrics.RecordQuery(err)
	return rows, err
}

// Exec prepares and runs a statement without rows.
func (c *Client) Exec(ctx context.Context, query string, args ...fluentsql.Value) (fluentsql.Result, error) {
	res, err := execStatement(ctx, c.db, query, args)
	c.metrics.RecordExec(err)
	return res, err
}

// BeginTx starts a transaction bound executor.
func (c *Client) BeginTx(ctx context.Context) (fluentsql.TxBoundExecutor, error) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, wrapError("BEGIN", err)
	}
	return &txExecutor{
		tx:      tx,
		txID:    c.metrics.StartTransaction(),
		metrics: c.metrics,
	}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	log.Info("PostgreSQL connection closed")
	return c.db.Close()
}

// RowLocator is PostgreSQL's physical row id. PostgreSQL rejects ORDER BY and
// LIMIT on UPDATE and DELETE, so those are composed as a ctid sub-select.
const RowLocator = "ctid"

// Open connects with cfg and returns a DB configured from cfg.Builder.
// Connection failures match fluentsql.ErrConnection.
func Open(ctx context.Context, cfg *config.Config, opts ...fluentsql.Option) (*fluentsql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := NewClient(ctx, cfg.Driver, &cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fluentsql.ErrConnection, err)
	}
	base := []fluentsql.Option{
		fluentsql.WithPrefix(cfg.Builder.TablePrefix),
		fluentsql.WithReturning(cfg.Builder.IDColumn),
		fluentsql.WithPageLimit(cfg.Builder.PageLimit),
		fluentsql.WithDebug(cfg.Builder.Debug),
		fluentsql.WithRowLocator(RowLocator),
	}
	return fluentsql.New(client, append(base, opts...)...), nil
}

// connectTimeout bounds Open when the caller passes a context without deadline.
const connectTimeout = 30 * time.Second

// OpenFromEnv loads config.LoadFromEnv and opens a DB.
func OpenFromEnv(ctx context.Context, opts ...fluentsql.Option) (*fluentsql.DB, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, connectTimeout)
		defer cancel()
	}
	return Open(ctx, cfg, opts...)
}
