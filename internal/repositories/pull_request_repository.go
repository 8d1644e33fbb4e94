package repositories

import (
	"database/sql"

	"github.com/octoview/octoview/internal/models"
)

type PullRequestRepository struct {
	db *sql.DB
}

func NewPullRequestRepository(db *sql.DB) *PullRequestRepository {
	return &PullRequestRepository{db: db}
}

const pullRequestColumns = `id, repo_id, number, pr_id, title, state, user, body,
	   github_created_at, github_updated_at, closed_at, merged_at, url, html_url,
	   org_id, fetch_page, fetch_page_size, fetched_at, integration_id, created_at, updated_at`

const pullRequestUpsertQuery = `
	INSERT INTO pull_requests (
		id, repo_id, number, pr_id, title, state, user, body,
		github_created_at, github_updated_at, closed_at, merged_at, url, html_url,
		org_id, fetch_page, fetch_page_size, fetched_at, integration_id
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(repo_id, number) DO UPDATE SET
		pr_id = excluded.pr_id,
		title = excluded.title,
		state = excluded.state,
		user = excluded.user,
		body = excluded.body,
		github_created_at = excluded.github_created_at,
		github_updated_at = excluded.github_updated_at,
		closed_at = excluded.closed_at,
		merged_at = excluded.merged_at,
		url = excluded.url,
		html_url = excluded.html_url,
		org_id = COALESCE(excluded.org_id, org_id),
		fetch_page = excluded.fetch_page,
		fetch_page_size = excluded.fetch_page_size,
		fetched_at = excluded.fetched_at,
		integration_id = excluded.integration_id,
		updated_at = CURRENT_TIMESTAMP
`

// Upsert inserts the pull request or updates it in place, keyed by
// (repo_id, number). Last write wins on conflicting fields.
func (r *PullRequestRepository) Upsert(pr *models.PullRequest) error {
	args, err := pullRequestUpsertArgs(pr)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(pullRequestUpsertQuery, args...)
	return err
}

// UpsertBatch upserts a page of pull requests inside one transaction
func (r *PullRequestRepository) UpsertBatch(prs []*models.PullRequest) error {
	if len(prs) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(pullRequestUpsertQuery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, pr := range prs {
		args, err := pullRequestUpsertArgs(pr)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pullRequestUpsertArgs(pr *models.PullRequest) ([]interface{}, error) {
	user, err := jsonColumn(pr.User)
	if err != nil {
		return nil, err
	}

	return []interface{}{
		pr.ID, pr.RepoID, pr.Number, pr.GithubPRID, pr.Title, pr.State, user, pr.Body,
		pr.GithubCreatedAt, pr.GithubUpdatedAt, pr.ClosedAt, pr.MergedAt,
		pr.URL, pr.HTMLURL, pr.OrgID, pr.FetchPage, pr.FetchPageSize, pr.FetchedAt,
		pr.IntegrationID,
	}, nil
}

// ListByRepo retrieves one page of pull requests for a repository ordered
// by creation date descending, optionally filtered by state.
func (r *PullRequestRepository) ListByRepo(repoID int64, integrationID string, page, pageSize int, state *string) ([]*models.PullRequest, error) {
	query := `SELECT ` + pullRequestColumns + ` FROM pull_requests WHERE repo_id = ? AND integration_id = ?`
	args := []interface{}{repoID, integrationID}

	if state != nil && *state != "" {
		query += ` AND state = ?`
		args = append(args, *state)
	}

	query += ` ORDER BY github_created_at DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prs []*models.PullRequest
	for rows.Next() {
		pr, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		prs = append(prs, pr)
	}

	return prs, rows.Err()
}

// CountByRepo counts pull requests for a repository with the same filters as ListByRepo
func (r *PullRequestRepository) CountByRepo(repoID int64, integrationID string, state *string) (int, error) {
	query := `SELECT COUNT(*) FROM pull_requests WHERE repo_id = ? AND integration_id = ?`
	args := []interface{}{repoID, integrationID}

	if state != nil && *state != "" {
		query += ` AND state = ?`
		args = append(args, *state)
	}

	var count int
	err := r.db.QueryRow(query, args...).Scan(&count)
	return count, err
}

func (r *PullRequestRepository) scanOne(row rowScanner) (*models.PullRequest, error) {
	pr := &models.PullRequest{}
	var user sql.NullString

	err := row.Scan(
		&pr.ID, &pr.RepoID, &pr.Number, &pr.GithubPRID, &pr.Title, &pr.State, &user, &pr.Body,
		&pr.GithubCreatedAt, &pr.GithubUpdatedAt, &pr.ClosedAt, &pr.MergedAt,
		&pr.URL, &pr.HTMLURL, &pr.OrgID, &pr.FetchPage, &pr.FetchPageSize, &pr.FetchedAt,
		&pr.IntegrationID, &pr.CreatedAt, &pr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := scanJSON(user, &pr.User); err != nil {
		return nil, err
	}

	return pr, nil
}
