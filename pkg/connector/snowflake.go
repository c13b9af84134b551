// pkg/connector/snowflake.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/David-Botos/sales-clean/pkg/config"
)

// SnowflakeConnector implements the DatabaseConnector interface for Snowflake
type SnowflakeConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.SnowflakeConfig
}

// NewSnowflakeConnector creates a new Snowflake connection
func NewSnowflakeConnector(ctx context.Context, cfg *config.SnowflakeConfig, logger *zap.Logger) (*SnowflakeConnector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("snowflake configuration cannot be nil")
	}

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("role", cfg.Role))

	dsn, err := sf.DSN(cfg.DriverConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	// Open connection pool
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Snowflake connection: %w", err)
	}

	// Configure connection pool
	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	// Verify connection
	if err := PingWithTimeout(ctx, db, 10*time.Second); err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to connect to Snowflake: %w", err), db.Close())
	}

	// Set query timeout if configured
	if cfg.QueryTimeout > 0 {
		_, err = db.ExecContext(
			ctx,
			fmt.Sprintf("ALTER SESSION SET STATEMENT_TIMEOUT_IN_SECONDS = %d",
				int(cfg.QueryTimeout.Seconds())),
		)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	return newSnowflakeConnector(db, cfg, logger), nil
}

func newSnowflakeConnector(db *sql.DB, cfg *config.SnowflakeConfig, logger *zap.Logger) *SnowflakeConnector {
	c := &SnowflakeConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}
	LogConnectionStats(logger, cfg.Database, db)
	return c
}

// DB returns the underlying database connection
func (c *SnowflakeConnector) DB() *sql.DB {
	return c.db
}

// Validate verifies the Snowflake connection and that the source table exists
func (c *SnowflakeConnector) Validate(ctx context.Context) error {
	// Check basic connectivity and permissions
	var role, database, warehouse sql.NullString
	err := c.db.QueryRowContext(ctx, "SELECT CURRENT_ROLE(), CURRENT_DATABASE(), CURRENT_WAREHOUSE()").Scan(
		&role, &database, &warehouse)
	if err != nil {
		return fmt.Errorf("failed to verify Snowflake access: %w", err)
	}

	c.logger.Info("Connected to Snowflake",
		zap.String("role", role.String),
		zap.String("database", database.String),
		zap.String("warehouse", warehouse.String))

	// Verify we're connected to the correct database
	if !strings.EqualFold(database.String, c.cfg.Database) {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)",
			database.String, c.cfg.Database)
	}

	exists, err := c.TableExists(ctx, c.cfg.Schema, c.cfg.Table)
	if err != nil {
		return fmt.Errorf("failed to verify source table: %w", err)
	}
	if !exists {
		return fmt.Errorf("source table %s not found", c.cfg.QualifiedTable())
	}

	return nil
}

// Close closes the database connection
func (c *SnowflakeConnector) Close() error {
	c.logger.Info("Closing Snowflake connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}

// TableExists reports whether schema.table is visible to the current role
func (c *SnowflakeConnector) TableExists(ctx context.Context, schema, table string) (bool, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`,
		strings.ToUpper(schema), strings.ToUpper(table),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// QueryWithTimeout executes a query with a timeout. The returned cancel func
// must be called once the rows are consumed.
func (c *SnowflakeConnector) QueryWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...any,
) (*sql.Rows, context.CancelFunc, error) {
	return queryWithTimeout(ctx, c.db, query, timeout, args...)
}

// BatchQuery fetches data in batches to handle large result sets. The query
// must carry an ORDER BY so that LIMIT/OFFSET pages are stable.
func (c *SnowflakeConnector) BatchQuery(
	ctx context.Context,
	query string,
	batchSize int,
	processor func(*sql.Rows) error,
) error {
	// Set default batch size if not provided
	if batchSize <= 0 {
		batchSize = 10000
	}
	timeout := c.cfg.QueryTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Execute query with LIMIT and OFFSET to fetch data in batches
	offset := 0
	for {
		batchQuery := fmt.Sprintf("%s LIMIT %d OFFSET %d", query, batchSize, offset)
		rows, cancel, err := c.QueryWithTimeout(ctx, batchQuery, timeout)
		if err != nil {
			return fmt.Errorf("batch query failed at offset %d: %w", offset, err)
		}

		rowCount, err := processBatch(rows, processor)
		cancel()
		if err != nil {
			return fmt.Errorf("row processing failed at offset %d: %w", offset, err)
		}

		// If fewer rows than batch size were returned, we're done
		if rowCount < batchSize {
			break
		}

		// Move to next batch
		offset += batchSize
	}

	return nil
}

func processBatch(rows *sql.Rows, processor func(*sql.Rows) error) (n int, err error) {
	defer func() {
		err = multierr.Append(err, rows.Close())
	}()
	for rows.Next() {
		n++
		if err := processor(rows); err != nil {
			return n, err
		}
	}
	return n, rows.Err()
}
