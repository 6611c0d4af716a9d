package database

import (
	"strings"
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "sqlite"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "postgres"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "mysql"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
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
			query:    "SELECT store_value FROM kv_store WHERE store_key = ?",
			expected: "SELECT store_value FROM kv_store WHERE store_key = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT store_value FROM kv_store WHERE store_key = ?",
			expected: "SELECT store_value FROM kv_store WHERE store_key = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO kv_store (store_key, store_value) VALUES (?, ?)",
			expected: "INSERT INTO kv_store (store_key, store_value) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE kv_store SET store_value = ? WHERE store_key = ?",
			expected: "UPDATE kv_store SET store_value = ? WHERE store_key = ?",
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

func TestUpsertKVQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		contains string
	}{
		{name: "SQLite", dialect: NewSQLiteDialect(), contains: "ON CONFLICT(store_key)"},
		{name: "PostgreSQL", dialect: NewPostgresDialect(), contains: "ON CONFLICT (store_key)"},
		{name: "MySQL", dialect: NewMySQLDialect(), contains: "ON DUPLICATE KEY UPDATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := tt.dialect.UpsertKVQuery()
			if !strings.Contains(query, tt.contains) {
				t.Errorf("UpsertKVQuery() = %q, want it to contain %q", query, tt.contains)
			}
		})
	}
}

func TestUpsertKVQueryPostgresPlaceholders(t *testing.T) {
	dialect := NewPostgresDialect()
	rewritten := dialect.RewriteQuery(dialect.UpsertKVQuery())
	if !strings.Contains(rewritten, "VALUES ($1, $2,") {
		t.Errorf("expected numbered placeholders, got %q", rewritten)
	}
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		input   string
		driver  string
		wantErr bool
	}{
		{input: "", driver: "sqlite3"},
		{input: "SQLite", driver: "sqlite3"},
		{input: "postgresql", driver: "postgres"},
		{input: "mysql", driver: "mysql"},
		{input: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			dialect, err := DialectFor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DialectFor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && dialect.DriverName() != tt.driver {
				t.Errorf("DialectFor(%q) driver = %s, want %s", tt.input, dialect.DriverName(), tt.driver)
			}
		})
	}
}
