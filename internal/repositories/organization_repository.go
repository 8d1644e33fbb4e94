package repositories

import (
	"database/sql"

	"github.com/octoview/octoview/internal/models"
)

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

const organizationColumns = `id, org_id, login, name, avatar_url, description, url, repos_url,
	   events_url, hooks_url, issues_url, members_url, public_members_url,
	   integration_id, created_at, updated_at`

// Upsert inserts the organization or updates it in place, keyed by the
// upstream org id. Replaying the same page is a no-op.
func (r *OrganizationRepository) Upsert(org *models.Organization) error {
	query := `
		INSERT INTO organizations (
			id, org_id, login, name, avatar_url, description, url, repos_url,
			events_url, hooks_url, issues_url, members_url, public_members_url, integration_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(org_id) DO UPDATE SET
			login = excluded.login,
			name = excluded.name,
			avatar_url = excluded.avatar_url,
			description = excluded.description,
			url = excluded.url,
			repos_url = excluded.repos_url,
			events_url = excluded.events_url,
			hooks_url = excluded.hooks_url,
			issues_url = excluded.issues_url,
			members_url = excluded.members_url,
			public_members_url = excluded.public_members_url,
			integration_id = excluded.integration_id,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.Exec(query,
		org.ID, org.OrgID, org.Login, org.Name, org.AvatarURL, org.Description,
		org.URL, org.ReposURL, org.EventsURL, org.HooksURL, org.IssuesURL,
		org.MembersURL, org.PublicMembersURL, org.IntegrationID,
	)

	return err
}

// GetByOrgID retrieves an organization by its upstream id
func (r *OrganizationRepository) GetByOrgID(orgID string) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE org_id = ?`
	return r.scanOne(r.db.QueryRow(query, orgID))
}

// GetByIntegrationID retrieves all organizations owned by an integration
func (r *OrganizationRepository) GetByIntegrationID(integrationID string) ([]*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE integration_id = ? ORDER BY login`

	rows, err := r.db.Query(query, integrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}

	return orgs, rows.Err()
}

// Delete deletes an organization by its upstream id
func (r *OrganizationRepository) Delete(orgID string) error {
	query := `DELETE FROM organizations WHERE org_id = ?`
	_, err := r.db.Exec(query, orgID)
	return err
}

func (r *OrganizationRepository) scanOne(row rowScanner) (*models.Organization, error) {
	org := &models.Organization{}

	err := row.Scan(
		&org.ID, &org.OrgID, &org.Login, &org.Name, &org.AvatarURL, &org.Description,
		&org.URL, &org.ReposURL, &org.EventsURL, &org.HooksURL, &org.IssuesURL,
		&org.MembersURL, &org.PublicMembersURL, &org.IntegrationID,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return org, nil
}
