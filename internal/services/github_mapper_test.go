package services

import (
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapOrganizationFallsBackToLogin(t *testing.T) {
	org := &github.Organization{
		ID:    github.Int64(777),
		Login: github.String("acme"),
	}

	m := mapOrganization(org, "integration-1")
	assert.Equal(t, "777", m.OrgID)
	assert.Equal(t, "acme", m.Login)
	assert.Equal(t, "acme", m.Name, "a missing display name falls back to the login")

	named := &github.Organization{
		ID:    github.Int64(778),
		Login: github.String("acme"),
		Name:  github.String("Acme Inc"),
	}
	assert.Equal(t, "Acme Inc", mapOrganization(named, "integration-1").Name)
}

func TestMapCommitFlattensNestedPayload(t *testing.T) {
	authored := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	c := &github.RepositoryCommit{
		SHA: github.String("abc123"),
		Commit: &github.Commit{
			Message: github.String("fix the widget"),
			Author: &github.CommitAuthor{
				Name:  github.String("octocat"),
				Email: github.String("octocat@example.com"),
				Date:  &github.Timestamp{Time: authored},
			},
		},
		Author:  &github.User{Login: github.String("octocat"), ID: github.Int64(9001)},
		Parents: []*github.Commit{{SHA: github.String("p1")}},
	}

	orgID := "777"
	m := mapCommit(c, 555, &orgID, "integration-1", fetchMeta{page: 2, pageSize: 100, fetchedAt: time.Now()})

	assert.Equal(t, int64(555), m.RepoID)
	assert.Equal(t, "abc123", m.SHA)
	assert.Equal(t, "fix the widget", m.Message)
	assert.Equal(t, "octocat", m.AuthorName)
	require.NotNil(t, m.AuthorDate)
	assert.True(t, m.AuthorDate.Equal(authored))
	require.NotNil(t, m.Author)
	assert.Equal(t, int64(9001), m.Author.ID)
	assert.Equal(t, []string{"p1"}, m.Parents)
	require.NotNil(t, m.OrgID)
	assert.Equal(t, "777", *m.OrgID)
	assert.Equal(t, 2, m.FetchPage)
	assert.Equal(t, 100, m.FetchPageSize)
}

func TestMapIssueCarriesSubDocuments(t *testing.T) {
	issue := &github.Issue{
		ID:     github.Int64(2000),
		Number: github.Int(7),
		Title:  github.String("widgets are broken"),
		State:  github.String("open"),
		Labels: []*github.Label{
			{ID: github.Int64(1), Name: github.String("bug"), Color: github.String("ff0000")},
		},
		Assignees: []*github.User{
			{Login: github.String("alice"), ID: github.Int64(1)},
		},
		Milestone: &github.Milestone{Title: github.String("v2.0")},
	}

	m := mapIssue(issue, 555, nil, "integration-1", fetchMeta{page: 1, pageSize: 100, fetchedAt: time.Now()})

	require.Len(t, m.Labels, 1)
	assert.Equal(t, "bug", m.Labels[0].Name)
	require.Len(t, m.Assignees, 1)
	assert.Equal(t, "alice", m.Assignees[0].Login)
	require.NotNil(t, m.Milestone)
	assert.Equal(t, "v2.0", *m.Milestone)
	assert.Nil(t, m.OrgID)
}
