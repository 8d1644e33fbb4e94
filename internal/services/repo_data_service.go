package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/octoview/octoview/internal/models"
	"github.com/octoview/octoview/internal/repositories"

	"github.com/google/go-github/v57/github"
)

// Pagination is the envelope returned with page-at-a-time repository data
// so the UI can drive forward/back paging without re-fetching everything.
type Pagination struct {
	HasMore           bool `json:"hasMore"`
	CurrentPage       int  `json:"currentPage"`
	PageSize          int  `json:"pageSize"`
	RemainingRequests int  `json:"remainingRequests"`
	EmptyRepository   bool `json:"emptyRepository,omitempty"`
}

// RepoPage is one page of commits, pulls or issues plus its pagination.
type RepoPage struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// RepoDataService serves single-page repository data fetches, persisting
// each page as it passes through.
type RepoDataService struct {
	githubData      *GitHubDataService
	commitRepo      *repositories.CommitRepository
	pullRequestRepo *repositories.PullRequestRepository
	issueRepo       *repositories.IssueRepository
}

func NewRepoDataService(
	githubData *GitHubDataService,
	commitRepo *repositories.CommitRepository,
	pullRequestRepo *repositories.PullRequestRepository,
	issueRepo *repositories.IssueRepository,
) *RepoDataService {
	return &RepoDataService{
		githubData:      githubData,
		commitRepo:      commitRepo,
		pullRequestRepo: pullRequestRepo,
		issueRepo:       issueRepo,
	}
}

// FetchPage fetches exactly one upstream page of the requested data type
// for a repository, upserts it, and returns the page with its pagination
// envelope. An empty repository is a successful empty page, flagged, not an
// error.
func (s *RepoDataService) FetchPage(ctx context.Context, client *github.Client, integration *models.Integration, repo *models.Repository, orgID *string, dataType, owner, name string, page, pageSize int) (*RepoPage, error) {
	meta := fetchMeta{page: page, pageSize: pageSize, fetchedAt: time.Now()}

	switch dataType {
	case "commits":
		commits, result, err := s.githubData.ListCommitsPage(ctx, client, owner, name, page, pageSize)
		if err != nil {
			if errors.Is(err, ErrEmptyRepository) {
				return &RepoPage{
					Data:       []*models.Commit{},
					Pagination: Pagination{CurrentPage: page, PageSize: pageSize, EmptyRepository: true},
				}, nil
			}
			return nil, err
		}

		batch := make([]*models.Commit, 0, len(commits))
		for _, c := range commits {
			batch = append(batch, mapCommit(c, repo.RepoID, orgID, integration.ID, meta))
		}
		if err := s.commitRepo.UpsertBatch(batch); err != nil {
			return nil, err
		}
		return &RepoPage{Data: batch, Pagination: paginationFrom(result, page, pageSize)}, nil

	case "pulls":
		pulls, result, err := s.githubData.ListPullsPage(ctx, client, owner, name, page, pageSize)
		if err != nil {
			return nil, err
		}

		batch := make([]*models.PullRequest, 0, len(pulls))
		for _, pr := range pulls {
			batch = append(batch, mapPullRequest(pr, repo.RepoID, orgID, integration.ID, meta))
		}
		if err := s.pullRequestRepo.UpsertBatch(batch); err != nil {
			return nil, err
		}
		return &RepoPage{Data: batch, Pagination: paginationFrom(result, page, pageSize)}, nil

	case "issues":
		issues, result, err := s.githubData.ListIssuesPage(ctx, client, owner, name, page, pageSize)
		if err != nil {
			return nil, err
		}

		batch := make([]*models.Issue, 0, len(issues))
		for _, issue := range issues {
			if isPullRequestShaped(issue) {
				continue
			}
			batch = append(batch, mapIssue(issue, repo.RepoID, orgID, integration.ID, meta))
		}
		if err := s.issueRepo.UpsertBatch(batch); err != nil {
			return nil, err
		}
		return &RepoPage{Data: batch, Pagination: paginationFrom(result, page, pageSize)}, nil

	default:
		return nil, fmt.Errorf("invalid repository data type %q", dataType)
	}
}

func paginationFrom(result PageResult, page, pageSize int) Pagination {
	return Pagination{
		HasMore:           result.HasMore,
		CurrentPage:       page,
		PageSize:          pageSize,
		RemainingRequests: result.RemainingRequests,
	}
}
