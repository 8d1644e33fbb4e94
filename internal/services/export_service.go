package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/octoview/octoview/internal/models"
	"github.com/octoview/octoview/internal/repositories"

	"github.com/xuri/excelize/v2"
)

// ExportService renders a repository's cached commits, pull requests and
// issues into an Excel workbook, one sheet per collection.
type ExportService struct {
	commitRepo      *repositories.CommitRepository
	pullRequestRepo *repositories.PullRequestRepository
	issueRepo       *repositories.IssueRepository
}

func NewExportService(
	commitRepo *repositories.CommitRepository,
	pullRequestRepo *repositories.PullRequestRepository,
	issueRepo *repositories.IssueRepository,
) *ExportService {
	return &ExportService{
		commitRepo:      commitRepo,
		pullRequestRepo: pullRequestRepo,
		issueRepo:       issueRepo,
	}
}

const exportPageSize = 10000

// BuildWorkbook builds the export workbook for one repository.
func (s *ExportService) BuildWorkbook(integration *models.Integration, repo *models.Repository) (*excelize.File, error) {
	f := excelize.NewFile()

	commits, err := s.commitRepo.ListByRepo(repo.RepoID, integration.ID, 1, exportPageSize, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("reading commits: %w", err)
	}
	if err := s.writeCommitsSheet(f, commits); err != nil {
		return nil, err
	}

	pulls, err := s.pullRequestRepo.ListByRepo(repo.RepoID, integration.ID, 1, exportPageSize, nil)
	if err != nil {
		return nil, fmt.Errorf("reading pull requests: %w", err)
	}
	if err := s.writePullsSheet(f, pulls); err != nil {
		return nil, err
	}

	issues, err := s.issueRepo.ListByRepo(repo.RepoID, integration.ID, 1, exportPageSize, nil)
	if err != nil {
		return nil, fmt.Errorf("reading issues: %w", err)
	}
	if err := s.writeIssuesSheet(f, issues); err != nil {
		return nil, err
	}

	return f, nil
}

func (s *ExportService) writeCommitsSheet(f *excelize.File, commits []*models.Commit) error {
	const sheet = "Commits"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headers := []string{"SHA", "Message", "Author", "Author Email", "Author Date", "URL"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}

	for i, commit := range commits {
		email := ""
		if commit.AuthorEmail != nil {
			email = *commit.AuthorEmail
		}
		row := []interface{}{
			commit.SHA,
			firstLine(commit.Message),
			commit.AuthorName,
			email,
			formatTime(commit.AuthorDate),
			commit.HTMLURL,
		}
		if err := writeRowValues(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	return nil
}

func (s *ExportService) writePullsSheet(f *excelize.File, pulls []*models.PullRequest) error {
	const sheet = "Pull Requests"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Number", "Title", "State", "Author", "Created", "Closed", "Merged", "URL"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}

	for i, pr := range pulls {
		author := ""
		if pr.User != nil {
			author = pr.User.Login
		}
		row := []interface{}{
			pr.Number,
			pr.Title,
			pr.State,
			author,
			formatTime(pr.GithubCreatedAt),
			formatTime(pr.ClosedAt),
			formatTime(pr.MergedAt),
			pr.HTMLURL,
		}
		if err := writeRowValues(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	return nil
}

func (s *ExportService) writeIssuesSheet(f *excelize.File, issues []*models.Issue) error {
	const sheet = "Issues"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Number", "Title", "State", "Author", "Labels", "Comments", "Created", "Closed", "URL"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}

	for i, issue := range issues {
		author := ""
		if issue.User != nil {
			author = issue.User.Login
		}
		labels := make([]string, 0, len(issue.Labels))
		for _, label := range issue.Labels {
			labels = append(labels, label.Name)
		}
		row := []interface{}{
			issue.Number,
			issue.Title,
			issue.State,
			author,
			strings.Join(labels, ", "),
			issue.Comments,
			formatTime(issue.GithubCreatedAt),
			formatTime(issue.ClosedAt),
			issue.HTMLURL,
		}
		if err := writeRowValues(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return writeRowValues(f, sheet, row, cells)
}

func writeRowValues(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
