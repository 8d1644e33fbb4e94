package models

import (
	"time"

	"github.com/google/uuid"
)

// Commit mirrors one Git commit as reported by the API. Commits are
// immutable upstream, so the (repoId, sha) upsert is effectively an
// idempotent insert.
type Commit struct {
	ID             string     `json:"id"`
	RepoID         int64      `json:"repoId"`
	SHA            string     `json:"sha"`
	Message        string     `json:"message"`
	AuthorName     string     `json:"authorName"`
	AuthorEmail    *string    `json:"authorEmail"`
	AuthorDate     *time.Time `json:"authorDate"`
	CommitterName  string     `json:"committerName"`
	CommitterEmail *string    `json:"committerEmail"`
	CommitterDate  *time.Time `json:"committerDate"`
	Author         *UserRef   `json:"author,omitempty"`
	Committer      *UserRef   `json:"committer,omitempty"`
	Parents        []string   `json:"parents,omitempty"`
	URL            string     `json:"url"`
	HTMLURL        string     `json:"htmlUrl"`
	OrgID          *string    `json:"orgId,omitempty"`
	FetchPage      int        `json:"_page"`
	FetchPageSize  int        `json:"_pageSize"`
	FetchedAt      *time.Time `json:"fetchedAt,omitempty"`
	IntegrationID  string     `json:"githubIntegrationId"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewCommit creates a new Commit with a generated UUID
func NewCommit(repoID int64, sha, integrationID string) *Commit {
	now := time.Now()
	return &Commit{
		ID:            uuid.New().String(),
		RepoID:        repoID,
		SHA:           sha,
		IntegrationID: integrationID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
