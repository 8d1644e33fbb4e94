package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization mirrors a GitHub organization the integration's account
// belongs to. OrgID is the upstream identifier and the upsert key.
type Organization struct {
	ID               string    `json:"id"`
	OrgID            string    `json:"orgId"`
	Login            string    `json:"login"`
	Name             string    `json:"name"`
	AvatarURL        string    `json:"avatarUrl"`
	Description      *string   `json:"description"`
	URL              string    `json:"url"`
	ReposURL         string    `json:"reposUrl"`
	EventsURL        string    `json:"eventsUrl"`
	HooksURL         string    `json:"hooksUrl"`
	IssuesURL        string    `json:"issuesUrl"`
	MembersURL       string    `json:"membersUrl"`
	PublicMembersURL string    `json:"publicMembersUrl"`
	IntegrationID    string    `json:"githubIntegrationId"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewOrganization creates a new Organization with a generated UUID
func NewOrganization(orgID, login, name, integrationID string) *Organization {
	now := time.Now()
	return &Organization{
		ID:            uuid.New().String(),
		OrgID:         orgID,
		Login:         login,
		Name:          name,
		IntegrationID: integrationID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
