package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

func TestDialectBasics(t *testing.T) {
	tests := []struct {
		name             string
		dialect          Dialect
		driver           string
		lastInsertID     bool
		migrationsSubdir string
	}{
		{"SQLite", NewSQLiteDialect(), "sqlite3", true, "sqlite"},
		{"PostgreSQL", NewPostgresDialect(), "postgres", false, "postgres"},
		{"MySQL", NewMySQLDialect(), "mysql", true, "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.driver {
				t.Errorf("DriverName() = %v, want %v", got, tt.driver)
			}
			if got := tt.dialect.SupportsLastInsertId(); got != tt.lastInsertID {
				t.Errorf("SupportsLastInsertId() = %v, want %v", got, tt.lastInsertID)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.migrationsSubdir {
				t.Errorf("MigrationsSubdir() = %v, want %v", got, tt.migrationsSubdir)
			}
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM accounts WHERE id = ?",
			expected: "SELECT * FROM accounts WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM accounts WHERE id = ?",
			expected: "SELECT * FROM accounts WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO attempts (account_id, phrase_id) VALUES (?, ?)",
			expected: "INSERT INTO attempts (account_id, phrase_id) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE phrases SET phrase_text = ? WHERE id = ?",
			expected: "UPDATE phrases SET phrase_text = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestInsertIgnore(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		expected string
	}{
		{"SQLite", NewSQLiteDialect(), "INSERT OR IGNORE INTO rank_awards (account_id, belt) VALUES (?, ?)"},
		{"PostgreSQL", NewPostgresDialect(), "INSERT INTO rank_awards (account_id, belt) VALUES (?, ?) ON CONFLICT DO NOTHING"},
		{"MySQL", NewMySQLDialect(), "INSERT IGNORE INTO rank_awards (account_id, belt) VALUES (?, ?)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.InsertIgnore("rank_awards", "account_id", "belt")
			if result != tt.expected {
				t.Errorf("InsertIgnore() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestForUpdate(t *testing.T) {
	query := "SELECT id FROM accounts WHERE id = ?"
	tests := []struct {
		name     string
		dialect  Dialect
		expected string
	}{
		{"SQLite", NewSQLiteDialect(), query},
		{"PostgreSQL", NewPostgresDialect(), query + " FOR UPDATE"},
		{"MySQL", NewMySQLDialect(), query + " FOR UPDATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.ForUpdate(query); got != tt.expected {
				t.Errorf("ForUpdate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	sqliteDSN := NewSQLiteDialect().DSN(DialectConfig{Path: "app.db"})
	if sqliteDSN != "app.db?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate" {
		t.Errorf("unexpected sqlite DSN %q", sqliteDSN)
	}

	custom := NewSQLiteDialect().DSN(DialectConfig{Path: "app.db?mode=ro"})
	if custom != "app.db?mode=ro" {
		t.Errorf("explicit sqlite parameters should be kept, got %q", custom)
	}

	tests := []struct {
		url      string
		expected string
	}{
		{"u:p@tcp(localhost:3306)/app", "u:p@tcp(localhost:3306)/app?parseTime=true"},
		{"u:p@tcp(localhost:3306)/app?charset=utf8mb4", "u:p@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=true"},
		{"u:p@tcp(localhost:3306)/app?parseTime=true", "u:p@tcp(localhost:3306)/app?parseTime=true"},
	}
	for _, tt := range tests {
		if got := NewMySQLDialect().DSN(DialectConfig{URL: tt.url}); got != tt.expected {
			t.Errorf("mysql DSN(%q) = %q, want %q", tt.url, got, tt.expected)
		}
	}
}

func TestConstraintViolationDetection(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		unique     bool
		foreignKey bool
	}{
		{"nil", nil, false, false},
		{"plain error", errors.New("boom"), false, false},
		{"postgres unique", &pq.Error{Code: "23505"}, true, false},
		{"postgres foreign key", &pq.Error{Code: "23503"}, false, true},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, true, false},
		{"mysql foreign key", &mysql.MySQLError{Number: 1452}, false, true},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, true, false},
		{"sqlite primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, true, false},
		{"sqlite foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, false, true},
		{"wrapped postgres unique", fmt.Errorf("failed to insert: %w", &pq.Error{Code: "23505"}), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.unique {
				t.Errorf("IsUniqueViolation() = %v, want %v", got, tt.unique)
			}
			if got := IsForeignKeyViolation(tt.err); got != tt.foreignKey {
				t.Errorf("IsForeignKeyViolation() = %v, want %v", got, tt.foreignKey)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	content := `
-- accounts
CREATE TABLE a (
    id INTEGER
);

INSERT INTO a (id) VALUES (1);
CREATE INDEX idx ON a(id)
`
	stmts := splitStatements(content)
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[1] != "INSERT INTO a (id) VALUES (1);" {
		t.Errorf("unexpected second statement %q", stmts[1])
	}
	if stmts[2] != "CREATE INDEX idx ON a(id)" {
		t.Errorf("unexpected trailing statement %q", stmts[2])
	}
}
