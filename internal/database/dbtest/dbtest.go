// Package dbtest provides migrated databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"alloneword/internal/database"
	"alloneword/migrations"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// NewSQLite returns a migrated SQLite database in a temp dir that is closed with the test
func NewSQLite(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations(context.Background(), migrations.FS))
	return db
}

// NewPostgres starts a postgres container, runs migrations against it and
// terminates it when the test finishes. Skipped in -short mode.
func NewPostgres(t *testing.T) *database.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "alloneword",
			"POSTGRES_PASSWORD": "alloneword",
			"POSTGRES_DB":       "alloneword",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}

	cont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })

	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://alloneword:alloneword@%s:%s/alloneword?sslmode=disable", host, port.Port())

	var db *database.DB
	require.Eventually(t, func() bool {
		db, err = database.Open(database.NewPostgresDialect(), database.DialectConfig{URL: url})
		return err == nil
	}, 30*time.Second, 500*time.Millisecond, "postgres never became ready")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations(context.Background(), migrations.FS))
	return db
}
