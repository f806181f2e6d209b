package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// SupportsLastInsertId returns true if the driver supports LastInsertId()
	SupportsLastInsertId() bool

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// InsertIgnore returns an INSERT that silently skips rows violating a unique constraint
	InsertIgnore(table string, columns ...string) string

	// ForUpdate turns a SELECT into one that locks the rows it reads until the transaction ends
	ForUpdate(query string) string

	// IsUniqueViolation reports whether err was raised by a unique or primary key constraint
	IsUniqueViolation(err error) bool

	// IsForeignKeyViolation reports whether err was raised by a foreign key constraint
	IsForeignKeyViolation(err error) bool
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// insertValues renders "table (a, b) VALUES (?, ?)"
func insertValues(table string, columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return table + " (" + strings.Join(columns, ", ") + ") VALUES (" + placeholders + ")"
}

var dialects = []Dialect{NewSQLiteDialect(), NewPostgresDialect(), NewMySQLDialect()}

// IsUniqueViolation reports whether err is a unique constraint violation from any supported driver
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	for _, d := range dialects {
		if d.IsUniqueViolation(err) {
			return true
		}
	}
	return false
}

// IsForeignKeyViolation reports whether err is a foreign key violation from any supported driver
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	for _, d := range dialects {
		if d.IsForeignKeyViolation(err) {
			return true
		}
	}
	return false
}
