package models

import (
	"time"

	"github.com/google/uuid"
)

// Label is a GitHub issue label sub-document.
type Label struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Description *string `json:"description"`
}

// Issue mirrors one GitHub issue, keyed by (repoId, number). Upstream
// records carrying a pull_request marker are excluded before they ever
// reach the store.
type Issue struct {
	ID              string     `json:"id"`
	RepoID          int64      `json:"repoId"`
	Number          int        `json:"number"`
	GithubIssueID   int64      `json:"githubIssueId"`
	Title           string     `json:"title"`
	State           string     `json:"state"`
	User            *UserRef   `json:"user"`
	Body            *string    `json:"body"`
	GithubCreatedAt *time.Time `json:"createdAt"`
	GithubUpdatedAt *time.Time `json:"updatedAt"`
	ClosedAt        *time.Time `json:"closedAt"`
	Labels          []Label    `json:"labels"`
	Assignees       []UserRef  `json:"assignees"`
	Milestone       *string    `json:"milestone,omitempty"`
	Comments        int        `json:"comments"`
	Locked          bool       `json:"locked"`
	URL             string     `json:"url"`
	HTMLURL         string     `json:"htmlUrl"`
	OrgID           *string    `json:"orgId,omitempty"`
	FetchPage       int        `json:"_page"`
	FetchPageSize   int        `json:"_pageSize"`
	FetchedAt       *time.Time `json:"fetchedAt,omitempty"`
	IntegrationID   string     `json:"githubIntegrationId"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewIssue creates a new Issue with a generated UUID
func NewIssue(repoID int64, number int, integrationID string) *Issue {
	now := time.Now()
	return &Issue{
		ID:            uuid.New().String(),
		RepoID:        repoID,
		Number:        number,
		IntegrationID: integrationID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
