package models

import (
	"time"

	"github.com/google/uuid"
)

// Integration links a local session to one GitHub account and its OAuth
// credentials. Token fields hold vault ciphertext, never plaintext, and are
// excluded from JSON serialization.
type Integration struct {
	ID           string     `json:"id"`
	GithubID     string     `json:"githubId"`
	Username     string     `json:"username"`
	AvatarURL    string     `json:"avatarUrl"`
	Email        string     `json:"email"`
	AccessToken  string     `json:"-"`
	RefreshToken *string    `json:"-"`
	Profile      *Profile   `json:"profile,omitempty"`
	ConnectedAt  time.Time  `json:"connectionDate"`
	LastSyncedAt *time.Time `json:"lastSynced,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Profile is the free-form account profile captured at login time.
type Profile struct {
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
	Company     string `json:"company"`
	Blog        string `json:"blog"`
	PublicRepos int    `json:"publicRepos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

// NewIntegration creates a new Integration with a generated UUID
func NewIntegration(githubID, username string) *Integration {
	now := time.Now()
	return &Integration{
		ID:          uuid.New().String(),
		GithubID:    githubID,
		Username:    username,
		ConnectedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
