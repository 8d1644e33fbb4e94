package repositories

import (
	"database/sql"

	"github.com/octoview/octoview/internal/models"
)

type IssueRepository struct {
	db *sql.DB
}

func NewIssueRepository(db *sql.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

const issueColumns = `id, repo_id, number, issue_id, title, state, user, body,
	   github_created_at, github_updated_at, closed_at, labels, assignees, milestone,
	   comments, locked, url, html_url, org_id, fetch_page, fetch_page_size, fetched_at,
	   integration_id, created_at, updated_at`

const issueUpsertQuery = `
	INSERT INTO issues (
		id, repo_id, number, issue_id, title, state, user, body,
		github_created_at, github_updated_at, closed_at, labels, assignees, milestone,
		comments, locked, url, html_url, org_id, fetch_page, fetch_page_size, fetched_at, integration_id
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(repo_id, number) DO UPDATE SET
		issue_id = excluded.issue_id,
		title = excluded.title,
		state = excluded.state,
		user = excluded.user,
		body = excluded.body,
		github_created_at = excluded.github_created_at,
		github_updated_at = excluded.github_updated_at,
		closed_at = excluded.closed_at,
		labels = excluded.labels,
		assignees = excluded.assignees,
		milestone = excluded.milestone,
		comments = excluded.comments,
		locked = excluded.locked,
		url = excluded.url,
		html_url = excluded.html_url,
		org_id = COALESCE(excluded.org_id, org_id),
		fetch_page = excluded.fetch_page,
		fetch_page_size = excluded.fetch_page_size,
		fetched_at = excluded.fetched_at,
		integration_id = excluded.integration_id,
		updated_at = CURRENT_TIMESTAMP
`

// Upsert inserts the issue or updates it in place, keyed by (repo_id, number)
func (r *IssueRepository) Upsert(issue *models.Issue) error {
	args, err := issueUpsertArgs(issue)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(issueUpsertQuery, args...)
	return err
}

// UpsertBatch upserts a page of issues inside one transaction
func (r *IssueRepository) UpsertBatch(issues []*models.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(issueUpsertQuery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, issue := range issues {
		args, err := issueUpsertArgs(issue)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func issueUpsertArgs(issue *models.Issue) ([]interface{}, error) {
	user, err := jsonColumn(issue.User)
	if err != nil {
		return nil, err
	}
	labels, err := jsonColumn(issue.Labels)
	if err != nil {
		return nil, err
	}
	assignees, err := jsonColumn(issue.Assignees)
	if err != nil {
		return nil, err
	}

	return []interface{}{
		issue.ID, issue.RepoID, issue.Number, issue.GithubIssueID, issue.Title, issue.State,
		user, issue.Body, issue.GithubCreatedAt, issue.GithubUpdatedAt, issue.ClosedAt,
		labels, assignees, issue.Milestone, issue.Comments, issue.Locked,
		issue.URL, issue.HTMLURL, issue.OrgID,
		issue.FetchPage, issue.FetchPageSize, issue.FetchedAt, issue.IntegrationID,
	}, nil
}

// ListByRepo retrieves one page of issues for a repository ordered by
// creation date descending, optionally filtered by state.
func (r *IssueRepository) ListByRepo(repoID int64, integrationID string, page, pageSize int, state *string) ([]*models.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE repo_id = ? AND integration_id = ?`
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

	var issues []*models.Issue
	for rows.Next() {
		issue, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}

	return issues, rows.Err()
}

// CountByRepo counts issues for a repository with the same filters as ListByRepo
func (r *IssueRepository) CountByRepo(repoID int64, integrationID string, state *string) (int, error) {
	query := `SELECT COUNT(*) FROM issues WHERE repo_id = ? AND integration_id = ?`
	args := []interface{}{repoID, integrationID}

	if state != nil && *state != "" {
		query += ` AND state = ?`
		args = append(args, *state)
	}

	var count int
	err := r.db.QueryRow(query, args...).Scan(&count)
	return count, err
}

func (r *IssueRepository) scanOne(row rowScanner) (*models.Issue, error) {
	issue := &models.Issue{}
	var user, labels, assignees sql.NullString

	err := row.Scan(
		&issue.ID, &issue.RepoID, &issue.Number, &issue.GithubIssueID, &issue.Title, &issue.State,
		&user, &issue.Body, &issue.GithubCreatedAt, &issue.GithubUpdatedAt, &issue.ClosedAt,
		&labels, &assignees, &issue.Milestone, &issue.Comments, &issue.Locked,
		&issue.URL, &issue.HTMLURL, &issue.OrgID,
		&issue.FetchPage, &issue.FetchPageSize, &issue.FetchedAt,
		&issue.IntegrationID, &issue.CreatedAt, &issue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := scanJSON(user, &issue.User); err != nil {
		return nil, err
	}
	if err := scanJSON(labels, &issue.Labels); err != nil {
		return nil, err
	}
	if err := scanJSON(assignees, &issue.Assignees); err != nil {
		return nil, err
	}

	return issue, nil
}
