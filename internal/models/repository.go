package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRef is the minimal GitHub user sub-document stored alongside owned
// entities (repository owners, commit authors, PR/issue reporters).
type UserRef struct {
	Login     string `json:"login"`
	ID        int64  `json:"id"`
	AvatarURL string `json:"avatarUrl"`
}

// Repository mirrors a GitHub repository, personal or organizational.
// RepoID is the upstream identifier, unique across the store regardless of
// organization.
type Repository struct {
	ID              string     `json:"id"`
	RepoID          int64      `json:"repoId"`
	Name            string     `json:"name"`
	FullName        string     `json:"fullName"`
	Owner           *UserRef   `json:"owner"`
	Private         bool       `json:"private"`
	Description     *string    `json:"description"`
	URL             string     `json:"url"`
	HTMLURL         string     `json:"htmlUrl"`
	Language        *string    `json:"language"`
	DefaultBranch   *string    `json:"defaultBranch"`
	Stars           int        `json:"stars"`
	Forks           int        `json:"forks"`
	Watchers        int        `json:"watchers"`
	OpenIssues      int        `json:"openIssues"`
	GithubCreatedAt *time.Time `json:"createdAt"`
	GithubUpdatedAt *time.Time `json:"updatedAt"`
	GithubPushedAt  *time.Time `json:"pushedAt"`
	OrgID           *string    `json:"orgId,omitempty"`
	IntegrationID   string     `json:"githubIntegrationId"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewRepository creates a new Repository with a generated UUID
func NewRepository(repoID int64, name, fullName, integrationID string) *Repository {
	now := time.Now()
	return &Repository{
		ID:            uuid.New().String(),
		RepoID:        repoID,
		Name:          name,
		FullName:      fullName,
		IntegrationID: integrationID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
