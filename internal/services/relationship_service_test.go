package services

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/octoview/octoview/internal/models"
	"github.com/octoview/octoview/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationshipsCombineCollections(t *testing.T) {
	fixture := newSyncFixture(t, http.NewServeMux())

	repo := models.NewRepository(555, "widgets", "octocat/widgets", fixture.integration.ID)
	require.NoError(t, repositories.NewRepositoryRepository(fixture.db).Upsert(repo))

	// Five commits, two pull requests, one open issue plus one closed
	for i := 0; i < 5; i++ {
		authored := time.Date(2024, 3, 1+i, 10, 0, 0, 0, time.UTC)
		commit := models.NewCommit(repo.RepoID, fmt.Sprintf("sha-%d", i), fixture.integration.ID)
		commit.AuthorName = "octocat"
		commit.AuthorDate = &authored
		require.NoError(t, fixture.commitRepo.Upsert(commit))
	}
	for i := 1; i <= 2; i++ {
		pr := models.NewPullRequest(repo.RepoID, i, fixture.integration.ID)
		pr.Title = "change"
		pr.State = "open"
		require.NoError(t, fixture.pullRequestRepo.Upsert(pr))
	}
	for i, state := range []string{"open", "closed"} {
		issue := models.NewIssue(repo.RepoID, i+1, fixture.integration.ID)
		issue.Title = "issue"
		issue.State = state
		require.NoError(t, fixture.issueRepo.Upsert(issue))
	}

	svc := NewRelationshipService(fixture.commitRepo, fixture.pullRequestRepo, fixture.issueRepo)

	got, err := svc.Fetch(fixture.integration, repo, 1, 2, RelationshipFilters{})
	require.NoError(t, err)

	assert.Equal(t, "octocat/widgets", got.Repository.FullName)
	assert.Equal(t, 5, got.Commits.TotalCount)
	assert.Equal(t, 2, got.PullRequests.TotalCount)
	assert.Equal(t, 2, got.Issues.TotalCount)

	commits := got.Commits.Data.([]*models.Commit)
	assert.Len(t, commits, 2, "each collection pages independently")

	assert.Equal(t, 1, got.Pagination.CurrentPage)
	assert.Equal(t, 2, got.Pagination.PageSize)
	assert.Equal(t, 3, got.Pagination.TotalPages, "driven by the largest collection")
}

func TestRelationshipsApplyFilters(t *testing.T) {
	fixture := newSyncFixture(t, http.NewServeMux())

	repo := models.NewRepository(555, "widgets", "octocat/widgets", fixture.integration.ID)
	require.NoError(t, repositories.NewRepositoryRepository(fixture.db).Upsert(repo))

	early := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{early, late} {
		commit := models.NewCommit(repo.RepoID, fmt.Sprintf("sha-%d", i), fixture.integration.ID)
		commit.AuthorName = "octocat"
		date := at
		commit.AuthorDate = &date
		require.NoError(t, fixture.commitRepo.Upsert(commit))
	}
	for i, state := range []string{"open", "closed"} {
		issue := models.NewIssue(repo.RepoID, i+1, fixture.integration.ID)
		issue.Title = "issue"
		issue.State = state
		require.NoError(t, fixture.issueRepo.Upsert(issue))
	}

	svc := NewRelationshipService(fixture.commitRepo, fixture.pullRequestRepo, fixture.issueRepo)

	open := "open"
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	got, err := svc.Fetch(fixture.integration, repo, 1, 10, RelationshipFilters{
		State:     &open,
		StartDate: &from,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, got.Commits.TotalCount, "date window filters commits")
	assert.Equal(t, 1, got.Issues.TotalCount, "state filters issues")
}
