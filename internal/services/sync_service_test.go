package services

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/octoview/octoview/internal/models"
	"github.com/octoview/octoview/internal/repositories"
	"github.com/octoview/octoview/pkg/crypto"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testVaultKey = "0123456789abcdef0123456789abcdef"
	testVaultIV  = "0123456789abcdef"
)

type syncFixture struct {
	db                 *sql.DB
	integration        *models.Integration
	integrationService *IntegrationService
	syncService        *SyncService
	commitRepo         *repositories.CommitRepository
	pullRequestRepo    *repositories.PullRequestRepository
	issueRepo          *repositories.IssueRepository
}

func newSyncFixture(t *testing.T, handler http.Handler) *syncFixture {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// A second pooled connection would see a fresh in-memory database
	db.SetMaxOpenConns(1)

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	script, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(script))
	require.NoError(t, err)

	vault, err := crypto.NewVault(testVaultKey, testVaultIV)
	require.NoError(t, err)

	githubData, _ := newFakeGitHub(t, handler)

	integrationRepo := repositories.NewIntegrationRepository(db)
	orgRepo := repositories.NewOrganizationRepository(db)
	repoRepo := repositories.NewRepositoryRepository(db)
	commitRepo := repositories.NewCommitRepository(db)
	pullRequestRepo := repositories.NewPullRequestRepository(db)
	issueRepo := repositories.NewIssueRepository(db)

	integrationService := NewIntegrationService(integrationRepo, vault)
	orgService := NewOrganizationService(githubData, orgRepo)
	repoService := NewRepositoryService(githubData, repoRepo)
	syncService := NewSyncService(githubData, integrationService, orgService, repoService, commitRepo, pullRequestRepo, issueRepo)

	encryptedToken, err := vault.Encrypt("test-token")
	require.NoError(t, err)

	integration := models.NewIntegration("9001", "octocat")
	integration.AccessToken = encryptedToken
	require.NoError(t, integrationRepo.Create(integration))

	return &syncFixture{
		db:                 db,
		integration:        integration,
		integrationService: integrationService,
		syncService:        syncService,
		commitRepo:         commitRepo,
		pullRequestRepo:    pullRequestRepo,
		issueRepo:          issueRepo,
	}
}

// onFirstPage replies with items on page 1 and an empty page afterwards.
func onFirstPage(items interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			writePage(w, 4999, items)
			return
		}
		writePage(w, 4999, []interface{}{})
	}
}

func newSyncHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/user/orgs", onFirstPage([]map[string]interface{}{
		{"login": "acme", "id": 777, "avatar_url": "https://example.com/acme.png"},
	}))
	mux.HandleFunc("/orgs/acme/repos", onFirstPage([]map[string]interface{}{
		{"id": 100, "name": "widgets", "full_name": "acme/widgets", "owner": map[string]interface{}{"login": "acme", "id": 777}},
	}))
	mux.HandleFunc("/user/repos", onFirstPage([]map[string]interface{}{
		{"id": 200, "name": "personal", "full_name": "octocat/personal", "owner": map[string]interface{}{"login": "octocat", "id": 9001}},
	}))

	mux.HandleFunc("/repos/acme/widgets/commits", onFirstPage(fakeCommits("aaa", "bbb", "ccc")))
	mux.HandleFunc("/repos/acme/widgets/pulls", onFirstPage([]map[string]interface{}{
		{"id": 1000, "number": 1, "state": "open", "title": "add gadgets", "user": map[string]interface{}{"login": "alice", "id": 1}},
	}))
	mux.HandleFunc("/repos/acme/widgets/issues", onFirstPage([]map[string]interface{}{
		{"id": 2000, "number": 2, "state": "open", "title": "real issue"},
		{"id": 2001, "number": 3, "state": "open", "title": "pr in disguise", "pull_request": map[string]interface{}{"url": "https://example.com/pull/3"}},
	}))

	// The personal repository has no commits at all
	mux.HandleFunc("/repos/octocat/personal/commits", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message": "Git Repository is empty."}`))
	})
	mux.HandleFunc("/repos/octocat/personal/pulls", onFirstPage([]interface{}{}))
	mux.HandleFunc("/repos/octocat/personal/issues", onFirstPage([]interface{}{}))

	return mux
}

func TestSyncAllAggregatesAcrossRepositories(t *testing.T) {
	fixture := newSyncFixture(t, newSyncHandler())

	report, err := fixture.syncService.SyncAll(context.Background(), fixture.integration)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Organizations)
	assert.Equal(t, 1, report.Repositories.Organizational)
	assert.Equal(t, 1, report.Repositories.Personal)

	assert.Equal(t, 3, report.SyncedData.Totals.Commits)
	assert.Equal(t, 1, report.SyncedData.Totals.Pulls)
	assert.Equal(t, 1, report.SyncedData.Totals.Issues, "pull-request-shaped records are not counted as issues")
	assert.False(t, report.RateLimited)

	// The empty personal repository is reported, not fatal
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "personal is empty")

	// Everything landed in the store
	var commits, pulls, issues int
	require.NoError(t, fixture.db.QueryRow("SELECT COUNT(*) FROM commits").Scan(&commits))
	require.NoError(t, fixture.db.QueryRow("SELECT COUNT(*) FROM pull_requests").Scan(&pulls))
	require.NoError(t, fixture.db.QueryRow("SELECT COUNT(*) FROM issues").Scan(&issues))
	assert.Equal(t, 3, commits)
	assert.Equal(t, 1, pulls)
	assert.Equal(t, 1, issues)

	// Organizational data carries the org association
	var orgID string
	require.NoError(t, fixture.db.QueryRow("SELECT org_id FROM commits WHERE sha = 'aaa'").Scan(&orgID))
	assert.Equal(t, "777", orgID)

	// The integration is stamped with the sync time
	updated, err := fixture.integrationService.GetByGithubID(fixture.integration.GithubID)
	require.NoError(t, err)
	require.NotNil(t, updated.LastSyncedAt)
}

func TestSyncAllIsIdempotent(t *testing.T) {
	fixture := newSyncFixture(t, newSyncHandler())

	_, err := fixture.syncService.SyncAll(context.Background(), fixture.integration)
	require.NoError(t, err)

	report, err := fixture.syncService.SyncAll(context.Background(), fixture.integration)
	require.NoError(t, err)
	assert.Equal(t, 3, report.SyncedData.Totals.Commits)

	var commits int
	require.NoError(t, fixture.db.QueryRow("SELECT COUNT(*) FROM commits").Scan(&commits))
	assert.Equal(t, 3, commits, "replaying a sync must not duplicate rows")
}

func TestSyncAllAbortsOnBadCredentials(t *testing.T) {
	fixture := newSyncFixture(t, newSyncHandler())

	// Corrupt the stored ciphertext
	fixture.integration.AccessToken = "not-hex"

	_, err := fixture.syncService.SyncAll(context.Background(), fixture.integration)
	require.Error(t, err)

	var commits int
	require.NoError(t, fixture.db.QueryRow("SELECT COUNT(*) FROM commits").Scan(&commits))
	assert.Zero(t, commits, "a credential failure must not write anything")
}

func TestSyncAllSurfacesRateLimitedStop(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/orgs", onFirstPage([]interface{}{}))
	mux.HandleFunc("/user/repos", onFirstPage([]map[string]interface{}{
		{"id": 200, "name": "personal", "full_name": "octocat/personal", "owner": map[string]interface{}{"login": "octocat", "id": 9001}},
	}))
	// Quota runs out on the first commit page
	mux.HandleFunc("/repos/octocat/personal/commits", func(w http.ResponseWriter, r *http.Request) {
		writePage(w, 0, fakeCommits("aaa"))
	})
	mux.HandleFunc("/repos/octocat/personal/pulls", onFirstPage([]interface{}{}))
	mux.HandleFunc("/repos/octocat/personal/issues", onFirstPage([]interface{}{}))

	fixture := newSyncFixture(t, mux)

	report, err := fixture.syncService.SyncAll(context.Background(), fixture.integration)
	require.NoError(t, err)

	assert.True(t, report.RateLimited, "an early stop must be visible in the report")
	assert.Equal(t, 1, report.SyncedData.Totals.Commits, "data fetched before the stop is kept")
}
