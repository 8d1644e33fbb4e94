package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/octoview/octoview/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrationCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewIntegrationRepository(db)

	created := models.NewIntegration("9001", "octocat")
	created.Email = "octocat@example.com"
	created.AccessToken = "deadbeef"
	created.Profile = &models.Profile{Name: "The Octocat", PublicRepos: 8}
	require.NoError(t, repo.Create(created))

	got, err := repo.GetByGithubID("9001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "octocat", got.Username)
	assert.Equal(t, "deadbeef", got.AccessToken)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "The Octocat", got.Profile.Name)
	assert.Nil(t, got.LastSyncedAt)

	_, err = repo.GetByGithubID("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestIntegrationUpdateLastSynced(t *testing.T) {
	db := newTestDB(t)
	repo := NewIntegrationRepository(db)

	integration := seedIntegration(t, db)

	syncedAt := time.Now().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastSynced(integration.GithubID, syncedAt))

	got, err := repo.GetByGithubID(integration.GithubID)
	require.NoError(t, err)
	require.NotNil(t, got.LastSyncedAt)
	assert.WithinDuration(t, syncedAt, *got.LastSyncedAt, time.Second)
}

func TestIntegrationListSyncedBefore(t *testing.T) {
	db := newTestDB(t)
	repo := NewIntegrationRepository(db)

	neverSynced := models.NewIntegration("1", "never")
	require.NoError(t, repo.Create(neverSynced))

	stale := models.NewIntegration("2", "stale")
	require.NoError(t, repo.Create(stale))
	require.NoError(t, repo.UpdateLastSynced("2", time.Now().Add(-48*time.Hour)))

	fresh := models.NewIntegration("3", "fresh")
	require.NoError(t, repo.Create(fresh))
	require.NoError(t, repo.UpdateLastSynced("3", time.Now()))

	got, err := repo.ListSyncedBefore(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)

	usernames := []string{got[0].Username, got[1].Username}
	assert.Contains(t, usernames, "never")
	assert.Contains(t, usernames, "stale")
}

func TestIntegrationDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	integrationRepo := NewIntegrationRepository(db)

	integration := seedIntegration(t, db)
	repo := seedRepository(t, db, integration.ID, 555, "octocat/widgets")

	commit := models.NewCommit(repo.RepoID, "abc123", integration.ID)
	commit.Message = "initial import"
	commit.AuthorName = "octocat"
	require.NoError(t, NewCommitRepository(db).Upsert(commit))

	issue := models.NewIssue(repo.RepoID, 1, integration.ID)
	issue.Title = "widgets are broken"
	issue.State = "open"
	require.NoError(t, NewIssueRepository(db).Upsert(issue))

	require.NoError(t, integrationRepo.Delete(integration.GithubID))

	var count int
	for _, table := range []string{"repositories", "commits", "issues"} {
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
		assert.Zero(t, count, "expected %s rows to cascade", table)
	}
}
