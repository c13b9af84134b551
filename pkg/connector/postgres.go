// pkg/connector/postgres.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/David-Botos/sales-clean/pkg/config"
)

// PostgresConnector implements the DatabaseConnector interface for PostgreSQL
type PostgresConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.PostgresConfig
}

// NewPostgresConnector creates and initializes a new PostgreSQL connector
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*PostgresConnector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("postgres configuration cannot be nil")
	}

	// Log connection attempt
	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	// Open database connection
	db, err := sqlx.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	// Configure connection pool
	ApplyConnectionSettings(
		db.DB,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	// Verify connection
	if err := PingWithTimeout(ctx, db.DB, 5*time.Second); err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to connect to PostgreSQL: %w", err), db.Close())
	}

	return newPostgresConnector(db, cfg, logger), nil
}

func newPostgresConnector(db *sqlx.DB, cfg *config.PostgresConfig, logger *zap.Logger) *PostgresConnector {
	c := &PostgresConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}
	LogConnectionStats(logger, cfg.Database, db.DB)
	return c
}

// DB returns the underlying database connection
func (c *PostgresConnector) DB() *sql.DB {
	return c.db.DB
}

// DBX returns the sqlx handle
func (c *PostgresConnector) DBX() *sqlx.DB {
	return c.db
}

// Validate verifies the PostgreSQL connection and that the audit schema exists
func (c *PostgresConnector) Validate(ctx context.Context) error {
	// Check database version
	var version string
	if err := c.db.GetContext(ctx, &version, "SELECT version()"); err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}
	c.logger.Info("Connected to PostgreSQL", zap.String("version", version))

	if err := c.ensureSchema(ctx, c.cfg.AuditSchema); err != nil {
		return fmt.Errorf("failed to create/verify schema %s: %w", c.cfg.AuditSchema, err)
	}

	c.logger.Info("PostgreSQL connection validated",
		zap.String("database", c.cfg.Database),
		zap.String("host", c.cfg.Host),
		zap.Int("port", c.cfg.Port))

	return nil
}

// Close closes the database connection
func (c *PostgresConnector) Close() error {
	c.logger.Info("Closing PostgreSQL connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db.DB)
	return c.db.Close()
}

// ensureSchema creates a schema if it doesn't exist
func (c *PostgresConnector) ensureSchema(ctx context.Context, schema string) error {
	_, err := c.ExecWithTimeout(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(schema), c.statementTimeout())
	return err
}

// ExecWithTimeout executes a statement bounded by timeout
func (c *PostgresConnector) ExecWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...any,
) (sql.Result, error) {
	return execWithTimeout(ctx, c.db.DB, query, timeout, args...)
}

func (c *PostgresConnector) statementTimeout() time.Duration {
	if c.cfg.StatementTimeout > 0 {
		return c.cfg.StatementTimeout
	}
	return 30 * time.Second
}
