package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/octoview/octoview/internal/models"
	"github.com/octoview/octoview/internal/repositories"
	"github.com/octoview/octoview/pkg/crypto"

	"golang.org/x/oauth2"
)

// IntegrationService owns the Integration lifecycle. Tokens pass through
// the vault on every write and read; plaintext never reaches the store.
type IntegrationService struct {
	integrationRepo *repositories.IntegrationRepository
	vault           *crypto.Vault
}

func NewIntegrationService(integrationRepo *repositories.IntegrationRepository, vault *crypto.Vault) *IntegrationService {
	return &IntegrationService{
		integrationRepo: integrationRepo,
		vault:           vault,
	}
}

// UpsertFromOAuth creates the Integration on first login or refreshes the
// profile and tokens on every subsequent one.
func (s *IntegrationService) UpsertFromOAuth(user *GitHubUser, token *oauth2.Token) (*models.Integration, error) {
	encryptedAccess, err := s.vault.Encrypt(token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("encrypting access token: %w", err)
	}

	var encryptedRefresh *string
	if token.RefreshToken != "" {
		enc, err := s.vault.Encrypt(token.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("encrypting refresh token: %w", err)
		}
		encryptedRefresh = &enc
	}

	integration, err := s.integrationRepo.GetByGithubID(user.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if integration == nil {
		integration = models.NewIntegration(user.ID, user.Login)
		integration.Email = user.Email
		integration.AvatarURL = user.AvatarURL
		integration.Profile = user.Profile
		integration.AccessToken = encryptedAccess
		integration.RefreshToken = encryptedRefresh
		if err := s.integrationRepo.Create(integration); err != nil {
			return nil, fmt.Errorf("creating integration: %w", err)
		}
		return integration, nil
	}

	integration.Username = user.Login
	integration.Email = user.Email
	integration.AvatarURL = user.AvatarURL
	integration.Profile = user.Profile
	integration.AccessToken = encryptedAccess
	if encryptedRefresh != nil {
		integration.RefreshToken = encryptedRefresh
	}
	if err := s.integrationRepo.Update(integration); err != nil {
		return nil, fmt.Errorf("updating integration: %w", err)
	}

	return integration, nil
}

// DecryptedToken returns the plaintext access token for upstream calls.
func (s *IntegrationService) DecryptedToken(integration *models.Integration) (string, error) {
	return s.vault.Decrypt(integration.AccessToken)
}

// GetByGithubID retrieves an integration by external account id, returning
// nil without error when absent.
func (s *IntegrationService) GetByGithubID(githubID string) (*models.Integration, error) {
	integration, err := s.integrationRepo.GetByGithubID(githubID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return integration, err
}

// List retrieves all integrations
func (s *IntegrationService) List() ([]*models.Integration, error) {
	return s.integrationRepo.List()
}

// ListStale retrieves integrations not synced since the cutoff
func (s *IntegrationService) ListStale(cutoff time.Time) ([]*models.Integration, error) {
	return s.integrationRepo.ListSyncedBefore(cutoff)
}

// Disconnect removes the integration; dependent organizations,
// repositories, commits, pull requests and issues cascade with it.
func (s *IntegrationService) Disconnect(githubID string) error {
	return s.integrationRepo.Delete(githubID)
}

// MarkSynced stamps a completed sync
func (s *IntegrationService) MarkSynced(githubID string, syncedAt time.Time) error {
	return s.integrationRepo.UpdateLastSynced(githubID, syncedAt)
}
