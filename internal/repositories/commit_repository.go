package repositories

import (
	"database/sql"
	"time"

	"github.com/octoview/octoview/internal/models"
)

type CommitRepository struct {
	db *sql.DB
}

func NewCommitRepository(db *sql.DB) *CommitRepository {
	return &CommitRepository{db: db}
}

const commitColumns = `id, repo_id, sha, message, author_name, author_email, author_date,
	   committer_name, committer_email, committer_date, author_user, committer_user,
	   parents, url, html_url, org_id, fetch_page, fetch_page_size, fetched_at,
	   integration_id, created_at, updated_at`

const commitUpsertQuery = `
	INSERT INTO commits (
		id, repo_id, sha, message, author_name, author_email, author_date,
		committer_name, committer_email, committer_date, author_user, committer_user,
		parents, url, html_url, org_id, fetch_page, fetch_page_size, fetched_at, integration_id
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(repo_id, sha) DO UPDATE SET
		message = excluded.message,
		author_name = excluded.author_name,
		author_email = excluded.author_email,
		author_date = excluded.author_date,
		committer_name = excluded.committer_name,
		committer_email = excluded.committer_email,
		committer_date = excluded.committer_date,
		author_user = excluded.author_user,
		committer_user = excluded.committer_user,
		parents = excluded.parents,
		url = excluded.url,
		html_url = excluded.html_url,
		org_id = COALESCE(excluded.org_id, org_id),
		fetch_page = excluded.fetch_page,
		fetch_page_size = excluded.fetch_page_size,
		fetched_at = excluded.fetched_at,
		integration_id = excluded.integration_id,
		updated_at = CURRENT_TIMESTAMP
`

// Upsert inserts the commit or refreshes it in place, keyed by
// (repo_id, sha). Commits are immutable upstream so a replay is a no-op.
func (r *CommitRepository) Upsert(commit *models.Commit) error {
	args, err := commitUpsertArgs(commit)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(commitUpsertQuery, args...)
	return err
}

// UpsertBatch upserts a page of commits inside one transaction to bound
// round trips when syncing hundreds of records.
func (r *CommitRepository) UpsertBatch(commits []*models.Commit) error {
	if len(commits) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(commitUpsertQuery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, commit := range commits {
		args, err := commitUpsertArgs(commit)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func commitUpsertArgs(commit *models.Commit) ([]interface{}, error) {
	authorUser, err := jsonColumn(commit.Author)
	if err != nil {
		return nil, err
	}
	committerUser, err := jsonColumn(commit.Committer)
	if err != nil {
		return nil, err
	}
	parents, err := jsonColumn(commit.Parents)
	if err != nil {
		return nil, err
	}

	return []interface{}{
		commit.ID, commit.RepoID, commit.SHA, commit.Message,
		commit.AuthorName, commit.AuthorEmail, commit.AuthorDate,
		commit.CommitterName, commit.CommitterEmail, commit.CommitterDate,
		authorUser, committerUser, parents, commit.URL, commit.HTMLURL,
		commit.OrgID, commit.FetchPage, commit.FetchPageSize, commit.FetchedAt,
		commit.IntegrationID,
	}, nil
}

// ListByRepo retrieves one page of commits for a repository ordered by
// author date descending, optionally bounded to a date window.
func (r *CommitRepository) ListByRepo(repoID int64, integrationID string, page, pageSize int, startDate, endDate *time.Time) ([]*models.Commit, error) {
	query := `SELECT ` + commitColumns + ` FROM commits WHERE repo_id = ? AND integration_id = ?`
	args := []interface{}{repoID, integrationID}

	if startDate != nil && endDate != nil {
		query += ` AND author_date >= ? AND author_date <= ?`
		args = append(args, startDate, endDate)
	}

	query += ` ORDER BY author_date DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commits []*models.Commit
	for rows.Next() {
		commit, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}

	return commits, rows.Err()
}

// CountByRepo counts commits for a repository with the same filters as ListByRepo
func (r *CommitRepository) CountByRepo(repoID int64, integrationID string, startDate, endDate *time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM commits WHERE repo_id = ? AND integration_id = ?`
	args := []interface{}{repoID, integrationID}

	if startDate != nil && endDate != nil {
		query += ` AND author_date >= ? AND author_date <= ?`
		args = append(args, startDate, endDate)
	}

	var count int
	err := r.db.QueryRow(query, args...).Scan(&count)
	return count, err
}

// GetBySHA retrieves a commit by (repo_id, sha)
func (r *CommitRepository) GetBySHA(repoID int64, sha string) (*models.Commit, error) {
	query := `SELECT ` + commitColumns + ` FROM commits WHERE repo_id = ? AND sha = ?`
	return r.scanOne(r.db.QueryRow(query, repoID, sha))
}

func (r *CommitRepository) scanOne(row rowScanner) (*models.Commit, error) {
	commit := &models.Commit{}
	var authorUser, committerUser, parents sql.NullString

	err := row.Scan(
		&commit.ID, &commit.RepoID, &commit.SHA, &commit.Message,
		&commit.AuthorName, &commit.AuthorEmail, &commit.AuthorDate,
		&commit.CommitterName, &commit.CommitterEmail, &commit.CommitterDate,
		&authorUser, &committerUser, &parents, &commit.URL, &commit.HTMLURL,
		&commit.OrgID, &commit.FetchPage, &commit.FetchPageSize, &commit.FetchedAt,
		&commit.IntegrationID, &commit.CreatedAt, &commit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := scanJSON(authorUser, &commit.Author); err != nil {
		return nil, err
	}
	if err := scanJSON(committerUser, &commit.Committer); err != nil {
		return nil, err
	}
	if err := scanJSON(parents, &commit.Parents); err != nil {
		return nil, err
	}

	return commit, nil
}
