package repositories

import (
	"database/sql"
	"time"

	"github.com/octoview/octoview/internal/models"
)

type IntegrationRepository struct {
	db *sql.DB
}

func NewIntegrationRepository(db *sql.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

const integrationColumns = `id, github_id, username, avatar_url, email, access_token, refresh_token,
	   profile, connected_at, last_synced_at, created_at, updated_at`

// Create creates a new integration
func (r *IntegrationRepository) Create(integration *models.Integration) error {
	profile, err := jsonColumn(integration.Profile)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO integrations (
			id, github_id, username, avatar_url, email, access_token, refresh_token,
			profile, connected_at, last_synced_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		integration.ID, integration.GithubID, integration.Username, integration.AvatarURL,
		integration.Email, integration.AccessToken, integration.RefreshToken,
		profile, integration.ConnectedAt, integration.LastSyncedAt,
	)

	return err
}

// GetByGithubID retrieves an integration by its external account id
func (r *IntegrationRepository) GetByGithubID(githubID string) (*models.Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM integrations WHERE github_id = ?`
	return r.scanOne(r.db.QueryRow(query, githubID))
}

// GetByID retrieves an integration by ID
func (r *IntegrationRepository) GetByID(id string) (*models.Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM integrations WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id))
}

// List retrieves all integrations
func (r *IntegrationRepository) List() ([]*models.Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM integrations ORDER BY connected_at`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var integrations []*models.Integration
	for rows.Next() {
		integration, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		integrations = append(integrations, integration)
	}

	return integrations, rows.Err()
}

// ListSyncedBefore retrieves integrations whose last sync is older than the
// cutoff, including those never synced.
func (r *IntegrationRepository) ListSyncedBefore(cutoff time.Time) ([]*models.Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM integrations
		WHERE last_synced_at IS NULL OR last_synced_at < ?`

	rows, err := r.db.Query(query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var integrations []*models.Integration
	for rows.Next() {
		integration, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		integrations = append(integrations, integration)
	}

	return integrations, rows.Err()
}

// Update updates an existing integration
func (r *IntegrationRepository) Update(integration *models.Integration) error {
	profile, err := jsonColumn(integration.Profile)
	if err != nil {
		return err
	}

	query := `
		UPDATE integrations SET
			username = ?, avatar_url = ?, email = ?, access_token = ?, refresh_token = ?,
			profile = ?, last_synced_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE github_id = ?
	`

	_, err = r.db.Exec(query,
		integration.Username, integration.AvatarURL, integration.Email,
		integration.AccessToken, integration.RefreshToken, profile,
		integration.LastSyncedAt, integration.GithubID,
	)

	return err
}

// UpdateLastSynced stamps the integration with a completed sync time
func (r *IntegrationRepository) UpdateLastSynced(githubID string, syncedAt time.Time) error {
	query := `UPDATE integrations SET last_synced_at = ?, updated_at = CURRENT_TIMESTAMP WHERE github_id = ?`
	_, err := r.db.Exec(query, syncedAt, githubID)
	return err
}

// Delete deletes an integration; dependent rows cascade via foreign keys
func (r *IntegrationRepository) Delete(githubID string) error {
	query := `DELETE FROM integrations WHERE github_id = ?`
	_, err := r.db.Exec(query, githubID)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *IntegrationRepository) scanOne(row rowScanner) (*models.Integration, error) {
	integration := &models.Integration{}
	var profile sql.NullString

	err := row.Scan(
		&integration.ID, &integration.GithubID, &integration.Username, &integration.AvatarURL,
		&integration.Email, &integration.AccessToken, &integration.RefreshToken,
		&profile, &integration.ConnectedAt, &integration.LastSyncedAt,
		&integration.CreatedAt, &integration.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := scanJSON(profile, &integration.Profile); err != nil {
		return nil, err
	}

	return integration, nil
}
