package services

import (
	"strconv"
	"time"

	"github.com/octoview/octoview/internal/models"

	"github.com/google/go-github/v57/github"
)

// Normalization from GitHub API payloads to store models. One canonical
// shape per entity; every ingestion path funnels through these.

func userRef(u *github.User) *models.UserRef {
	if u == nil {
		return nil
	}
	return &models.UserRef{
		Login:     u.GetLogin(),
		ID:        u.GetID(),
		AvatarURL: u.GetAvatarURL(),
	}
}

func timePtr(ts *github.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time
	return &t
}

func mapOrganization(org *github.Organization, integrationID string) *models.Organization {
	m := models.NewOrganization(
		strconv.FormatInt(org.GetID(), 10),
		org.GetLogin(),
		org.GetName(),
		integrationID,
	)
	if m.Name == "" {
		m.Name = org.GetLogin()
	}
	m.AvatarURL = org.GetAvatarURL()
	m.Description = org.Description
	m.URL = org.GetURL()
	m.ReposURL = org.GetReposURL()
	m.EventsURL = org.GetEventsURL()
	m.HooksURL = org.GetHooksURL()
	m.IssuesURL = org.GetIssuesURL()
	m.MembersURL = org.GetMembersURL()
	m.PublicMembersURL = org.GetPublicMembersURL()
	return m
}

func mapRepository(repo *github.Repository, orgID *string, integrationID string) *models.Repository {
	m := models.NewRepository(repo.GetID(), repo.GetName(), repo.GetFullName(), integrationID)
	m.Owner = userRef(repo.GetOwner())
	m.Private = repo.GetPrivate()
	m.Description = repo.Description
	m.URL = repo.GetURL()
	m.HTMLURL = repo.GetHTMLURL()
	m.Language = repo.Language
	m.DefaultBranch = repo.DefaultBranch
	m.Stars = repo.GetStargazersCount()
	m.Forks = repo.GetForksCount()
	m.Watchers = repo.GetWatchersCount()
	m.OpenIssues = repo.GetOpenIssuesCount()
	m.GithubCreatedAt = timePtr(repo.CreatedAt)
	m.GithubUpdatedAt = timePtr(repo.UpdatedAt)
	m.GithubPushedAt = timePtr(repo.PushedAt)
	m.OrgID = orgID
	return m
}

type fetchMeta struct {
	page      int
	pageSize  int
	fetchedAt time.Time
}

func mapCommit(c *github.RepositoryCommit, repoID int64, orgID *string, integrationID string, meta fetchMeta) *models.Commit {
	m := models.NewCommit(repoID, c.GetSHA(), integrationID)
	m.URL = c.GetURL()
	m.HTMLURL = c.GetHTMLURL()
	m.Author = userRef(c.GetAuthor())
	m.Committer = userRef(c.GetCommitter())
	m.OrgID = orgID
	m.FetchPage = meta.page
	m.FetchPageSize = meta.pageSize
	fetchedAt := meta.fetchedAt
	m.FetchedAt = &fetchedAt

	if commit := c.GetCommit(); commit != nil {
		m.Message = commit.GetMessage()
		if author := commit.GetAuthor(); author != nil {
			m.AuthorName = author.GetName()
			m.AuthorEmail = author.Email
			m.AuthorDate = timePtr(author.Date)
		}
		if committer := commit.GetCommitter(); committer != nil {
			m.CommitterName = committer.GetName()
			m.CommitterEmail = committer.Email
			m.CommitterDate = timePtr(committer.Date)
		}
	}

	for _, parent := range c.Parents {
		m.Parents = append(m.Parents, parent.GetSHA())
	}

	return m
}

func mapPullRequest(pr *github.PullRequest, repoID int64, orgID *string, integrationID string, meta fetchMeta) *models.PullRequest {
	m := models.NewPullRequest(repoID, pr.GetNumber(), integrationID)
	m.GithubPRID = pr.GetID()
	m.Title = pr.GetTitle()
	m.State = pr.GetState()
	m.User = userRef(pr.GetUser())
	m.Body = pr.Body
	m.GithubCreatedAt = timePtr(pr.CreatedAt)
	m.GithubUpdatedAt = timePtr(pr.UpdatedAt)
	m.ClosedAt = timePtr(pr.ClosedAt)
	m.MergedAt = timePtr(pr.MergedAt)
	m.URL = pr.GetURL()
	m.HTMLURL = pr.GetHTMLURL()
	m.OrgID = orgID
	m.FetchPage = meta.page
	m.FetchPageSize = meta.pageSize
	fetchedAt := meta.fetchedAt
	m.FetchedAt = &fetchedAt
	return m
}

// isPullRequestShaped reports whether an upstream issue record is really a
// pull request. GitHub's issues endpoint returns both; only true issues are
// persisted.
func isPullRequestShaped(issue *github.Issue) bool {
	return issue.PullRequestLinks != nil
}

func mapIssue(issue *github.Issue, repoID int64, orgID *string, integrationID string, meta fetchMeta) *models.Issue {
	m := models.NewIssue(repoID, issue.GetNumber(), integrationID)
	m.GithubIssueID = issue.GetID()
	m.Title = issue.GetTitle()
	m.State = issue.GetState()
	m.User = userRef(issue.GetUser())
	m.Body = issue.Body
	m.GithubCreatedAt = timePtr(issue.CreatedAt)
	m.GithubUpdatedAt = timePtr(issue.UpdatedAt)
	m.ClosedAt = timePtr(issue.ClosedAt)
	m.Comments = issue.GetComments()
	m.Locked = issue.GetLocked()
	m.URL = issue.GetURL()
	m.HTMLURL = issue.GetHTMLURL()
	m.OrgID = orgID
	m.FetchPage = meta.page
	m.FetchPageSize = meta.pageSize
	fetchedAt := meta.fetchedAt
	m.FetchedAt = &fetchedAt

	for _, label := range issue.Labels {
		m.Labels = append(m.Labels, models.Label{
			ID:          label.GetID(),
			Name:        label.GetName(),
			Color:       label.GetColor(),
			Description: label.Description,
		})
	}
	for _, assignee := range issue.Assignees {
		if ref := userRef(assignee); ref != nil {
			m.Assignees = append(m.Assignees, *ref)
		}
	}
	if milestone := issue.GetMilestone(); milestone != nil {
		title := milestone.GetTitle()
		m.Milestone = &title
	}

	return m
}
