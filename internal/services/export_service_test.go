package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/octoview/octoview/internal/models"
	"github.com/octoview/octoview/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWorkbookLaysOutSheets(t *testing.T) {
	fixture := newSyncFixture(t, http.NewServeMux())

	repo := models.NewRepository(555, "widgets", "octocat/widgets", fixture.integration.ID)
	require.NoError(t, repositories.NewRepositoryRepository(fixture.db).Upsert(repo))

	authored := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	commit := models.NewCommit(repo.RepoID, "abc123", fixture.integration.ID)
	commit.Message = "fix the widget\n\nlonger body"
	commit.AuthorName = "octocat"
	commit.AuthorDate = &authored
	require.NoError(t, fixture.commitRepo.Upsert(commit))

	pr := models.NewPullRequest(repo.RepoID, 42, fixture.integration.ID)
	pr.Title = "add gadgets"
	pr.State = "open"
	pr.User = &models.UserRef{Login: "alice", ID: 1}
	require.NoError(t, fixture.pullRequestRepo.Upsert(pr))

	issue := models.NewIssue(repo.RepoID, 7, fixture.integration.ID)
	issue.Title = "widgets are broken"
	issue.State = "open"
	issue.Labels = []models.Label{{ID: 1, Name: "bug"}, {ID: 2, Name: "p1"}}
	require.NoError(t, fixture.issueRepo.Upsert(issue))

	svc := NewExportService(fixture.commitRepo, fixture.pullRequestRepo, fixture.issueRepo)
	workbook, err := svc.BuildWorkbook(fixture.integration, repo)
	require.NoError(t, err)
	defer workbook.Close()

	assert.Equal(t, []string{"Commits", "Pull Requests", "Issues"}, workbook.GetSheetList())

	sha, err := workbook.GetCellValue("Commits", "A2")
	require.NoError(t, err)
	assert.Equal(t, "abc123", sha)

	message, err := workbook.GetCellValue("Commits", "B2")
	require.NoError(t, err)
	assert.Equal(t, "fix the widget", message, "only the subject line is exported")

	title, err := workbook.GetCellValue("Pull Requests", "B2")
	require.NoError(t, err)
	assert.Equal(t, "add gadgets", title)

	labels, err := workbook.GetCellValue("Issues", "E2")
	require.NoError(t, err)
	assert.Equal(t, "bug, p1", labels)
}
