package repositories

import (
	"testing"

	"github.com/octoview/octoview/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueUpsertUpdatesState(t *testing.T) {
	db := newTestDB(t)
	issueRepo := NewIssueRepository(db)

	integration := seedIntegration(t, db)
	repo := seedRepository(t, db, integration.ID, 555, "octocat/widgets")

	open := models.NewIssue(repo.RepoID, 7, integration.ID)
	open.Title = "widgets are broken"
	open.State = "open"
	open.Labels = []models.Label{{ID: 1, Name: "bug", Color: "ff0000"}}
	open.Assignees = []models.UserRef{{Login: "octocat", ID: 9001}}
	require.NoError(t, issueRepo.Upsert(open))

	closed := models.NewIssue(repo.RepoID, 7, integration.ID)
	closed.Title = "widgets are broken"
	closed.State = "closed"
	require.NoError(t, issueRepo.Upsert(closed))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM issues").Scan(&count))
	assert.Equal(t, 1, count)

	issues, err := issueRepo.ListByRepo(repo.RepoID, integration.ID, 1, 10, nil)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "closed", issues[0].State)
}

func TestIssueListByRepoFiltersByState(t *testing.T) {
	db := newTestDB(t)
	issueRepo := NewIssueRepository(db)

	integration := seedIntegration(t, db)
	repo := seedRepository(t, db, integration.ID, 555, "octocat/widgets")

	for i, state := range []string{"open", "closed", "open"} {
		issue := models.NewIssue(repo.RepoID, i+1, integration.ID)
		issue.Title = "issue"
		issue.State = state
		require.NoError(t, issueRepo.Upsert(issue))
	}

	open := "open"
	issues, err := issueRepo.ListByRepo(repo.RepoID, integration.ID, 1, 10, &open)
	require.NoError(t, err)
	assert.Len(t, issues, 2)

	count, err := issueRepo.CountByRepo(repo.RepoID, integration.ID, &open)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIssueSubDocumentsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	issueRepo := NewIssueRepository(db)

	integration := seedIntegration(t, db)
	repo := seedRepository(t, db, integration.ID, 555, "octocat/widgets")

	milestone := "v2.0"
	issue := models.NewIssue(repo.RepoID, 1, integration.ID)
	issue.Title = "tracking"
	issue.State = "open"
	issue.Labels = []models.Label{{ID: 1, Name: "bug", Color: "ff0000"}, {ID: 2, Name: "p1", Color: "00ff00"}}
	issue.Assignees = []models.UserRef{{Login: "octocat", ID: 9001}}
	issue.Milestone = &milestone
	require.NoError(t, issueRepo.Upsert(issue))

	issues, err := issueRepo.ListByRepo(repo.RepoID, integration.ID, 1, 10, nil)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	got := issues[0]
	require.Len(t, got.Labels, 2)
	assert.Equal(t, "bug", got.Labels[0].Name)
	require.Len(t, got.Assignees, 1)
	assert.Equal(t, "octocat", got.Assignees[0].Login)
	require.NotNil(t, got.Milestone)
	assert.Equal(t, "v2.0", *got.Milestone)
}
