package repositories

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/octoview/octoview/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	script, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	require.NoError(t, err)

	_, err = db.Exec(string(script))
	require.NoError(t, err)

	return db
}

func seedIntegration(t *testing.T, db *sql.DB) *models.Integration {
	t.Helper()

	integration := models.NewIntegration("9001", "octocat")
	integration.AvatarURL = "https://example.com/octocat.png"
	integration.Email = "octocat@example.com"
	integration.AccessToken = "deadbeef"

	require.NoError(t, NewIntegrationRepository(db).Create(integration))
	return integration
}

func seedRepository(t *testing.T, db *sql.DB, integrationID string, repoID int64, fullName string) *models.Repository {
	t.Helper()

	repo := models.NewRepository(repoID, filepath.Base(fullName), fullName, integrationID)
	require.NoError(t, NewRepositoryRepository(db).Upsert(repo))
	return repo
}

func timeAt(t *testing.T, value string) *time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return &parsed
}
