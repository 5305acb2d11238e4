package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/grovellows/tender-backend/shared"
)

var DB *sql.DB

// Connect establishes a connection to the PostgreSQL database using default
// pool settings.
func Connect(databaseURL string) error {
	return ConnectWithConfig(databaseURL, shared.NewDefaultUnifiedConfiguration().Database)
}

// ConnectWithConfig establishes a connection to the PostgreSQL database with
// explicit connection pool configuration.
func ConnectWithConfig(databaseURL string, cfg shared.DatabaseConfig) error {
	logger := logrus.WithField("component", "Database")

	if databaseURL == "" {
		return shared.NewServiceError(
			shared.ErrorCategoryConfiguration,
			"MISSING_DATABASE_URL",
			"database URL is not configured",
			"Database",
			"Connect",
			false,
			nil,
		)
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return shared.WrapError(err, shared.ErrorCategoryDatabase, "OPEN_FAILED",
			"failed to open database connection", "Database", "Connect")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return shared.WrapError(err, shared.ErrorCategoryDatabase, "PING_FAILED",
			"failed to ping database", "Database", "Connect")
	}

	DB = db

	logger.WithFields(logrus.Fields{
		"max_open_conns":    cfg.MaxOpenConns,
		"max_idle_conns":    cfg.MaxIdleConns,
		"conn_max_lifetime": cfg.ConnMaxLifetime.String(),
	}).Info("Database connection established")

	return nil
}

// Close closes the database connection pool.
func Close() error {
	if DB == nil {
		return nil
	}
	logrus.WithField("component", "Database").Info("Closing database connection")
	return DB.Close()
}

// HealthCheck verifies the database connection is alive.
func HealthCheck(ctx context.Context) error {
	if DB == nil {
		return shared.NewServiceError(
			shared.ErrorCategoryDatabase,
			"NOT_CONNECTED",
			"database connection is not initialized",
			"Database",
			"HealthCheck",
			false,
			nil,
		)
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := DB.PingContext(checkCtx); err != nil {
		return shared.WrapError(err, shared.ErrorCategoryDatabase, "PING_FAILED",
			"database health check failed", "Database", "HealthCheck")
	}
	return nil
}

// GetConnectionStats returns database connection pool statistics.
func GetConnectionStats() map[string]interface{} {
	if DB == nil {
		return map[string]interface{}{"connected": false}
	}

	stats := DB.Stats()
	return map[string]interface{}{
		"connected":            true,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
		"max_open_connections": stats.MaxOpenConnections,
	}
}

// Migrate applies the schema file at the given path. Statements are executed
// one at a time so a failure can be attributed to a specific statement.
func Migrate(schemaPath string) error {
	logger := logrus.WithField("component", "Database")

	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		return shared.WrapError(err, shared.ErrorCategoryConfiguration, "SCHEMA_READ_FAILED",
			fmt.Sprintf("failed to read schema file %s", schemaPath), "Database", "Migrate")
	}

	statements := parseSQLStatements(string(schemaBytes))
	logger.WithField("statement_count", len(statements)).Info("Applying database schema")

	for i, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return shared.WrapError(err, shared.ErrorCategoryDatabase, "MIGRATION_FAILED",
				fmt.Sprintf("failed to execute schema statement %d", i+1), "Database", "Migrate")
		}
	}

	logger.Info("Database schema applied successfully")
	return nil
}

// parseSQLStatements splits a schema file into individual executable
// statements, stripping comment-only lines. Dollar-quoted bodies (functions,
// triggers) are kept intact.
func parseSQLStatements(schema string) []string {
	var statements []string
	var current strings.Builder
	inDollarQuote := false

	for _, line := range strings.Split(schema, "\n") {
		trimmed := strings.TrimSpace(line)

		if !inDollarQuote && (trimmed == "" || strings.HasPrefix(trimmed, "--")) {
			continue
		}

		if strings.Count(line, "$$")%2 == 1 {
			inDollarQuote = !inDollarQuote
		}

		current.WriteString(line)
		current.WriteString("\n")

		if !inDollarQuote && strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSpace(current.String())
			if stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		statements = append(statements, remaining)
	}

	return statements
}

// ValidateSchema verifies that the tables the application depends on exist
// with their required columns. Intended as a startup sanity check after
// Migrate.
func ValidateSchema(ctx context.Context) error {
	required := map[string][]string{
		"tenders": {
			"id", "source_id", "title", "description", "deadline",
			"category", "platform_source", "application_url",
			"status", "is_applied", "application_status", "applied_by",
		},
		"developer_projects": {
			"id", "developer_name", "project_name", "status", "timeline_phases",
			"scraped_at",
		},
	}

	for table, columns := range required {
		exists, err := tableExists(ctx, table)
		if err != nil {
			return err
		}
		if !exists {
			return shared.NewServiceError(
				shared.ErrorCategoryDatabase,
				"MISSING_TABLE",
				fmt.Sprintf("required table %s does not exist", table),
				"Database",
				"ValidateSchema",
				false,
				nil,
			)
		}

		existing, err := tableColumns(ctx, table)
		if err != nil {
			return err
		}
		for _, col := range columns {
			if !existing[col] {
				return shared.NewServiceError(
					shared.ErrorCategoryDatabase,
					"MISSING_COLUMN",
					fmt.Sprintf("table %s is missing required column %s", table, col),
					"Database",
					"ValidateSchema",
					false,
					nil,
				)
			}
		}
	}

	logrus.WithField("component", "Database").Info("Schema validation passed")
	return nil
}

func tableExists(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, table).Scan(&exists)
	if err != nil {
		return false, shared.WrapError(err, shared.ErrorCategoryDatabase, "SCHEMA_QUERY_FAILED",
			"failed to check table existence", "Database", "ValidateSchema")
	}
	return exists, nil
}

func tableColumns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1`, table)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "SCHEMA_QUERY_FAILED",
			"failed to read table columns", "Database", "ValidateSchema")
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "SCHEMA_SCAN_FAILED",
				"failed to scan column name", "Database", "ValidateSchema")
		}
		columns[name] = true
	}
	return columns, rows.Err()
}
