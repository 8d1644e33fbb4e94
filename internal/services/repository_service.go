package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/octoview/octoview/internal/models"
	"github.com/octoview/octoview/internal/repositories"

	"github.com/google/go-github/v57/github"
)

type RepositoryService struct {
	githubData *GitHubDataService
	repoRepo   *repositories.RepositoryRepository
}

func NewRepositoryService(githubData *GitHubDataService, repoRepo *repositories.RepositoryRepository) *RepositoryService {
	return &RepositoryService{
		githubData: githubData,
		repoRepo:   repoRepo,
	}
}

// FetchAndStoreOrg drains an organization's repositories, upserts each one
// tagged with the owning org, and returns the stored set.
func (s *RepositoryService) FetchAndStoreOrg(ctx context.Context, client *github.Client, org *models.Organization, integrationID string) ([]*models.Repository, bool, error) {
	return s.fetchAndStore(ctx, client, org.Login, &org.OrgID, integrationID)
}

// FetchAndStoreUser drains the account's personal-scope repositories.
func (s *RepositoryService) FetchAndStoreUser(ctx context.Context, client *github.Client, integrationID string) ([]*models.Repository, bool, error) {
	return s.fetchAndStore(ctx, client, "", nil, integrationID)
}

func (s *RepositoryService) fetchAndStore(ctx context.Context, client *github.Client, orgLogin string, orgID *string, integrationID string) ([]*models.Repository, bool, error) {
	var repos []*models.Repository

	rateLimited, err := s.githubData.EachRepoPage(ctx, client, orgLogin, func(page int, pageRepos []*github.Repository) error {
		for _, repo := range pageRepos {
			m := mapRepository(repo, orgID, integrationID)
			if err := s.repoRepo.Upsert(m); err != nil {
				return err
			}
			repos = append(repos, m)
		}
		return nil
	})
	if err != nil {
		return repos, rateLimited, err
	}

	return repos, rateLimited, nil
}

// ListStored retrieves the repositories already persisted for an integration.
func (s *RepositoryService) ListStored(integrationID string) ([]*models.Repository, error) {
	return s.repoRepo.GetByIntegrationID(integrationID)
}

// GetByFullName retrieves a stored repository by its "owner/name" slug,
// returning nil without error when absent.
func (s *RepositoryService) GetByFullName(fullName string) (*models.Repository, error) {
	repo, err := s.repoRepo.GetByFullName(fullName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return repo, err
}

// GetByRepoID retrieves a stored repository by upstream id, returning nil
// without error when absent.
func (s *RepositoryService) GetByRepoID(repoID int64) (*models.Repository, error) {
	repo, err := s.repoRepo.GetByRepoID(repoID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return repo, err
}
