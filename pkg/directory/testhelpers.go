package directory

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
)

// PostgresForTest opens the database named by TEST_POSTGRES_PRIMARY, runs
// the directory migrations, and empties user_profiles so the test starts
// from a clean directory. The sqlite path covers the default test run;
// this exists for CI jobs that exercise the real JSONB columns and
// partial indexes.
func PostgresForTest(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("TEST_POSTGRES_PRIMARY")
	if dbURL == "" {
		t.Skip("TEST_POSTGRES_PRIMARY not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Skipf("connect %s: %v", dbURL, err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Ping(); err != nil {
		t.Skipf("database not reachable: %v", err)
	}

	ctx := context.Background()
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	if _, err := db.ExecContext(ctx, `TRUNCATE user_profiles RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate user_profiles: %v", err)
	}

	return db
}
