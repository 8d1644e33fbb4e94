package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/octoview/octoview/internal/models"
	"github.com/octoview/octoview/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoDataFixture(t *testing.T, handler http.Handler) (*RepoDataService, *syncFixture, *models.Repository) {
	t.Helper()

	fixture := newSyncFixture(t, handler)

	githubData, _ := newFakeGitHub(t, handler)
	svc := NewRepoDataService(githubData,
		fixture.commitRepo,
		fixture.pullRequestRepo,
		fixture.issueRepo,
	)

	repo := models.NewRepository(555, "widgets", "octocat/widgets", fixture.integration.ID)
	repo.Owner = &models.UserRef{Login: "octocat", ID: 9001}
	require.NoError(t, repositories.NewRepositoryRepository(fixture.db).Upsert(repo))

	return svc, fixture, repo
}

func repoDataHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/widgets/commits", func(w http.ResponseWriter, r *http.Request) {
		writePage(w, 4999, fakeCommits("aaa", "bbb"))
	})
	mux.HandleFunc("/repos/octocat/widgets/issues", func(w http.ResponseWriter, r *http.Request) {
		writePage(w, 4999, []map[string]interface{}{
			{"id": 2000, "number": 2, "state": "open", "title": "real issue"},
			{"id": 2001, "number": 3, "state": "open", "title": "pr in disguise", "pull_request": map[string]interface{}{"url": "https://example.com/pull/3"}},
		})
	})
	return mux
}

func TestFetchPagePersistsAndEchoesPagination(t *testing.T) {
	svc, fixture, repo := newRepoDataFixture(t, repoDataHandler())

	client := svc.githubData.NewClient("test-token")
	page, err := svc.FetchPage(context.Background(), client, fixture.integration, repo, nil,
		"commits", "octocat", "widgets", 2, 50)
	require.NoError(t, err)

	assert.Equal(t, 2, page.Pagination.CurrentPage)
	assert.Equal(t, 50, page.Pagination.PageSize)
	assert.False(t, page.Pagination.EmptyRepository)

	commits, ok := page.Data.([]*models.Commit)
	require.True(t, ok)
	require.Len(t, commits, 2)
	assert.Equal(t, 2, commits[0].FetchPage, "records remember the page they arrived on")
	assert.Equal(t, 50, commits[0].FetchPageSize)

	// The page was persisted on the way through
	var stored int
	require.NoError(t, fixture.db.QueryRow("SELECT COUNT(*) FROM commits").Scan(&stored))
	assert.Equal(t, 2, stored)
}

func TestFetchPageFiltersPullRequestShapedIssues(t *testing.T) {
	svc, fixture, repo := newRepoDataFixture(t, repoDataHandler())

	client := svc.githubData.NewClient("test-token")
	page, err := svc.FetchPage(context.Background(), client, fixture.integration, repo, nil,
		"issues", "octocat", "widgets", 1, 30)
	require.NoError(t, err)

	issues, ok := page.Data.([]*models.Issue)
	require.True(t, ok)
	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].Number)
}

func TestFetchPageEmptyRepository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/widgets/commits", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message": "Git Repository is empty."}`))
	})

	svc, fixture, repo := newRepoDataFixture(t, mux)

	client := svc.githubData.NewClient("test-token")
	page, err := svc.FetchPage(context.Background(), client, fixture.integration, repo, nil,
		"commits", "octocat", "widgets", 1, 30)
	require.NoError(t, err, "an empty repository is a successful empty page")

	assert.True(t, page.Pagination.EmptyRepository)
	assert.False(t, page.Pagination.HasMore)

	commits, ok := page.Data.([]*models.Commit)
	require.True(t, ok)
	assert.Empty(t, commits)
}

func TestFetchPageRejectsUnknownDataType(t *testing.T) {
	svc, fixture, repo := newRepoDataFixture(t, http.NewServeMux())

	client := svc.githubData.NewClient("test-token")
	_, err := svc.FetchPage(context.Background(), client, fixture.integration, repo, nil,
		"stargazers", "octocat", "widgets", 1, 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid repository data type")
}
