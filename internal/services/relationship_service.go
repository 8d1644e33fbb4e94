package services

import (
	"time"

	"github.com/octoview/octoview/internal/models"
	"github.com/octoview/octoview/internal/repositories"
)

// RelationshipFilters narrow a relationships query. State applies to pull
// requests and issues; the date window applies to commit author dates.
type RelationshipFilters struct {
	State     *string
	StartDate *time.Time
	EndDate   *time.Time
}

type collection struct {
	Data       interface{} `json:"data"`
	TotalCount int         `json:"totalCount"`
}

type relationshipRepository struct {
	Name        string     `json:"name"`
	FullName    string     `json:"fullName"`
	Description *string    `json:"description"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

// Relationships is a repository's commits, pull requests and issues read
// from the store with independent pagination and per-collection totals.
type Relationships struct {
	Repository   relationshipRepository `json:"repository"`
	Commits      collection             `json:"commits"`
	PullRequests collection             `json:"pullRequests"`
	Issues       collection             `json:"issues"`
	Pagination   relationshipPages      `json:"pagination"`
}

type relationshipPages struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalPages  int `json:"totalPages"`
}

// RelationshipService composes store reads for the repository data grid.
type RelationshipService struct {
	commitRepo      *repositories.CommitRepository
	pullRequestRepo *repositories.PullRequestRepository
	issueRepo       *repositories.IssueRepository
}

func NewRelationshipService(
	commitRepo *repositories.CommitRepository,
	pullRequestRepo *repositories.PullRequestRepository,
	issueRepo *repositories.IssueRepository,
) *RelationshipService {
	return &RelationshipService{
		commitRepo:      commitRepo,
		pullRequestRepo: pullRequestRepo,
		issueRepo:       issueRepo,
	}
}

// Fetch reads one page of each sub-collection for the repository.
func (s *RelationshipService) Fetch(integration *models.Integration, repo *models.Repository, page, pageSize int, filters RelationshipFilters) (*Relationships, error) {
	commits, err := s.commitRepo.ListByRepo(repo.RepoID, integration.ID, page, pageSize, filters.StartDate, filters.EndDate)
	if err != nil {
		return nil, err
	}
	commitCount, err := s.commitRepo.CountByRepo(repo.RepoID, integration.ID, filters.StartDate, filters.EndDate)
	if err != nil {
		return nil, err
	}

	pulls, err := s.pullRequestRepo.ListByRepo(repo.RepoID, integration.ID, page, pageSize, filters.State)
	if err != nil {
		return nil, err
	}
	pullCount, err := s.pullRequestRepo.CountByRepo(repo.RepoID, integration.ID, filters.State)
	if err != nil {
		return nil, err
	}

	issues, err := s.issueRepo.ListByRepo(repo.RepoID, integration.ID, page, pageSize, filters.State)
	if err != nil {
		return nil, err
	}
	issueCount, err := s.issueRepo.CountByRepo(repo.RepoID, integration.ID, filters.State)
	if err != nil {
		return nil, err
	}

	maxCount := commitCount
	if pullCount > maxCount {
		maxCount = pullCount
	}
	if issueCount > maxCount {
		maxCount = issueCount
	}
	totalPages := (maxCount + pageSize - 1) / pageSize

	return &Relationships{
		Repository: relationshipRepository{
			Name:        repo.Name,
			FullName:    repo.FullName,
			Description: repo.Description,
			UpdatedAt:   repo.GithubUpdatedAt,
		},
		Commits:      collection{Data: commits, TotalCount: commitCount},
		PullRequests: collection{Data: pulls, TotalCount: pullCount},
		Issues:       collection{Data: issues, TotalCount: issueCount},
		Pagination: relationshipPages{
			CurrentPage: page,
			PageSize:    pageSize,
			TotalPages:  totalPages,
		},
	}, nil
}
