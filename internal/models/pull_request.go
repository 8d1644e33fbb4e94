package models

import (
	"time"

	"github.com/google/uuid"
)

// PullRequest mirrors one GitHub pull request, keyed by (repoId, number).
type PullRequest struct {
	ID              string     `json:"id"`
	RepoID          int64      `json:"repoId"`
	Number          int        `json:"number"`
	GithubPRID      int64      `json:"githubPrId"`
	Title           string     `json:"title"`
	State           string     `json:"state"`
	User            *UserRef   `json:"user"`
	Body            *string    `json:"body"`
	GithubCreatedAt *time.Time `json:"createdAt"`
	GithubUpdatedAt *time.Time `json:"updatedAt"`
	ClosedAt        *time.Time `json:"closedAt"`
	MergedAt        *time.Time `json:"mergedAt"`
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

// NewPullRequest creates a new PullRequest with a generated UUID
func NewPullRequest(repoID int64, number int, integrationID string) *PullRequest {
	now := time.Now()
	return &PullRequest{
		ID:            uuid.New().String(),
		RepoID:        repoID,
		Number:        number,
		IntegrationID: integrationID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
