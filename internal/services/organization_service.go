package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/octoview/octoview/internal/models"
	"github.com/octoview/octoview/internal/repositories"

	"github.com/google/go-github/v57/github"
)

type OrganizationService struct {
	githubData *GitHubDataService
	orgRepo    *repositories.OrganizationRepository
}

func NewOrganizationService(githubData *GitHubDataService, orgRepo *repositories.OrganizationRepository) *OrganizationService {
	return &OrganizationService{
		githubData: githubData,
		orgRepo:    orgRepo,
	}
}

// FetchAndStore drains the account's organizations from GitHub, upserts
// each one and returns the stored set. The second result reports an early
// rate-limit stop.
func (s *OrganizationService) FetchAndStore(ctx context.Context, client *github.Client, integrationID string) ([]*models.Organization, bool, error) {
	var orgs []*models.Organization

	rateLimited, err := s.githubData.EachOrgPage(ctx, client, func(page int, pageOrgs []*github.Organization) error {
		for _, org := range pageOrgs {
			m := mapOrganization(org, integrationID)
			if err := s.orgRepo.Upsert(m); err != nil {
				return err
			}
			orgs = append(orgs, m)
		}
		return nil
	})
	if err != nil {
		return orgs, rateLimited, err
	}

	return orgs, rateLimited, nil
}

// GetByOrgID retrieves a stored organization, returning nil without error
// when absent.
func (s *OrganizationService) GetByOrgID(orgID string) (*models.Organization, error) {
	org, err := s.orgRepo.GetByOrgID(orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return org, err
}

// Members fetches an organization's members live from GitHub.
func (s *OrganizationService) Members(ctx context.Context, client *github.Client, org *models.Organization) ([]*github.User, error) {
	return s.githubData.ListOrgMembers(ctx, client, org.Login)
}
