package repositories

import (
	"database/sql"

	"github.com/octoview/octoview/internal/models"
)

type RepositoryRepository struct {
	db *sql.DB
}

func NewRepositoryRepository(db *sql.DB) *RepositoryRepository {
	return &RepositoryRepository{db: db}
}

const repositoryColumns = `id, repo_id, name, full_name, owner, private, description, url, html_url,
	   language, default_branch, stars, forks, watchers, open_issues,
	   github_created_at, github_updated_at, github_pushed_at,
	   org_id, integration_id, created_at, updated_at`

// Upsert inserts the repository or updates it in place, keyed by the
// upstream repo id, which is unique regardless of organization.
func (r *RepositoryRepository) Upsert(repo *models.Repository) error {
	owner, err := jsonColumn(repo.Owner)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO repositories (
			id, repo_id, name, full_name, owner, private, description, url, html_url,
			language, default_branch, stars, forks, watchers, open_issues,
			github_created_at, github_updated_at, github_pushed_at, org_id, integration_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repo_id) DO UPDATE SET
			name = excluded.name,
			full_name = excluded.full_name,
			owner = excluded.owner,
			private = excluded.private,
			description = excluded.description,
			url = excluded.url,
			html_url = excluded.html_url,
			language = excluded.language,
			default_branch = excluded.default_branch,
			stars = excluded.stars,
			forks = excluded.forks,
			watchers = excluded.watchers,
			open_issues = excluded.open_issues,
			github_created_at = excluded.github_created_at,
			github_updated_at = excluded.github_updated_at,
			github_pushed_at = excluded.github_pushed_at,
			org_id = COALESCE(excluded.org_id, org_id),
			integration_id = excluded.integration_id,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err = r.db.Exec(query,
		repo.ID, repo.RepoID, repo.Name, repo.FullName, owner, repo.Private,
		repo.Description, repo.URL, repo.HTMLURL, repo.Language, repo.DefaultBranch,
		repo.Stars, repo.Forks, repo.Watchers, repo.OpenIssues,
		repo.GithubCreatedAt, repo.GithubUpdatedAt, repo.GithubPushedAt,
		repo.OrgID, repo.IntegrationID,
	)

	return err
}

// GetByRepoID retrieves a repository by its upstream id
func (r *RepositoryRepository) GetByRepoID(repoID int64) (*models.Repository, error) {
	query := `SELECT ` + repositoryColumns + ` FROM repositories WHERE repo_id = ?`
	return r.scanOne(r.db.QueryRow(query, repoID))
}

// GetByFullName retrieves a repository by its "owner/name" slug
func (r *RepositoryRepository) GetByFullName(fullName string) (*models.Repository, error) {
	query := `SELECT ` + repositoryColumns + ` FROM repositories WHERE full_name = ?`
	return r.scanOne(r.db.QueryRow(query, fullName))
}

// GetByIntegrationID retrieves all repositories owned by an integration
func (r *RepositoryRepository) GetByIntegrationID(integrationID string) ([]*models.Repository, error) {
	query := `SELECT ` + repositoryColumns + ` FROM repositories WHERE integration_id = ? ORDER BY full_name`

	rows, err := r.db.Query(query, integrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []*models.Repository
	for rows.Next() {
		repo, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}

	return repos, rows.Err()
}

func (r *RepositoryRepository) scanOne(row rowScanner) (*models.Repository, error) {
	repo := &models.Repository{}
	var owner sql.NullString

	err := row.Scan(
		&repo.ID, &repo.RepoID, &repo.Name, &repo.FullName, &owner, &repo.Private,
		&repo.Description, &repo.URL, &repo.HTMLURL, &repo.Language, &repo.DefaultBranch,
		&repo.Stars, &repo.Forks, &repo.Watchers, &repo.OpenIssues,
		&repo.GithubCreatedAt, &repo.GithubUpdatedAt, &repo.GithubPushedAt,
		&repo.OrgID, &repo.IntegrationID, &repo.CreatedAt, &repo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := scanJSON(owner, &repo.Owner); err != nil {
		return nil, err
	}

	return repo, nil
}
