package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/octoview/octoview/internal/models"
	"github.com/octoview/octoview/internal/repositories"
	"github.com/octoview/octoview/pkg/config"
	"github.com/octoview/octoview/pkg/logger"

	"github.com/google/go-github/v57/github"
	"golang.org/x/sync/errgroup"
)

// SyncService pulls a consistent snapshot of an integration's organizations,
// repositories and per-repository commits, pull requests and issues into the
// store. Per-repository failures are collected, never fatal; a hard failure
// before the first GitHub call aborts with no writes.
type SyncService struct {
	githubData         *GitHubDataService
	integrationService *IntegrationService
	orgService         *OrganizationService
	repoService        *RepositoryService
	commitRepo         *repositories.CommitRepository
	pullRequestRepo    *repositories.PullRequestRepository
	issueRepo          *repositories.IssueRepository
	concurrency        int
}

func NewSyncService(
	githubData *GitHubDataService,
	integrationService *IntegrationService,
	orgService *OrganizationService,
	repoService *RepositoryService,
	commitRepo *repositories.CommitRepository,
	pullRequestRepo *repositories.PullRequestRepository,
	issueRepo *repositories.IssueRepository,
) *SyncService {
	concurrency := 4
	if config.AppConfig != nil && config.AppConfig.Sync.Concurrency > 0 {
		concurrency = config.AppConfig.Sync.Concurrency
	}
	return &SyncService{
		githubData:         githubData,
		integrationService: integrationService,
		orgService:         orgService,
		repoService:        repoService,
		commitRepo:         commitRepo,
		pullRequestRepo:    pullRequestRepo,
		issueRepo:          issueRepo,
		concurrency:        concurrency,
	}
}

type repoSyncTask struct {
	repo     *models.Repository
	orgID    *string
	orgLogin string
}

// SyncAll runs the full fan-out for one integration and reports aggregate
// counts plus the non-fatal error strings collected along the way.
func (s *SyncService) SyncAll(ctx context.Context, integration *models.Integration) (*models.SyncReport, error) {
	token, err := s.integrationService.DecryptedToken(integration)
	if err != nil {
		return nil, fmt.Errorf("decrypting access token: %w", err)
	}
	client := s.githubData.NewClient(token)

	report := &models.SyncReport{}

	// Organizations first; a failure here aborts the run.
	orgs, rateLimited, err := s.orgService.FetchAndStore(ctx, client, integration.ID)
	if err != nil {
		return nil, fmt.Errorf("syncing organizations: %w", err)
	}
	report.Organizations = len(orgs)
	report.RateLimited = report.RateLimited || rateLimited

	var tasks []repoSyncTask

	for _, org := range orgs {
		repos, limited, err := s.repoService.FetchAndStoreOrg(ctx, client, org, integration.ID)
		report.RateLimited = report.RateLimited || limited
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to fetch repositories for %s: %v", org.Login, err))
			continue
		}
		report.Repositories.Organizational += len(repos)
		for _, repo := range repos {
			orgID := org.OrgID
			tasks = append(tasks, repoSyncTask{repo: repo, orgID: &orgID, orgLogin: org.Login})
		}
	}

	personalRepos, limited, err := s.repoService.FetchAndStoreUser(ctx, client, integration.ID)
	report.RateLimited = report.RateLimited || limited
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Failed to fetch personal repositories: %v", err))
	}
	report.Repositories.Personal = len(personalRepos)
	for _, repo := range personalRepos {
		tasks = append(tasks, repoSyncTask{repo: repo})
	}

	// Per-repository fan-out with bounded parallelism. Results are keyed
	// independently so ordering across repositories does not matter.
	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, task := range tasks {
		g.Go(func() error {
			detail, limited := s.syncRepositoryData(gCtx, client, integration, task)

			mu.Lock()
			defer mu.Unlock()
			report.SyncedData.Details = append(report.SyncedData.Details, detail)
			report.SyncedData.Totals.Commits += detail.Commits
			report.SyncedData.Totals.Pulls += detail.Pulls
			report.SyncedData.Totals.Issues += detail.Issues
			report.Errors = append(report.Errors, detail.Errors...)
			report.RateLimited = report.RateLimited || limited
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	now := time.Now()
	if err := s.integrationService.MarkSynced(integration.GithubID, now); err != nil {
		logger.WithError(err).Warnf("failed to stamp last sync for integration %s", integration.GithubID)
	}

	logger.WithFields(map[string]interface{}{
		"organizations": report.Organizations,
		"repositories":  report.Repositories.Personal + report.Repositories.Organizational,
		"commits":       report.SyncedData.Totals.Commits,
		"pulls":         report.SyncedData.Totals.Pulls,
		"issues":        report.SyncedData.Totals.Issues,
		"errors":        len(report.Errors),
	}).Info("sync completed")

	return report, nil
}

// syncRepositoryData drains one repository's commits, pulls and issues.
// Failures are folded into the detail's error strings so sibling
// repositories keep syncing.
func (s *SyncService) syncRepositoryData(ctx context.Context, client *github.Client, integration *models.Integration, task repoSyncTask) (models.RepoSyncDetail, bool) {
	repo := task.repo
	detail := models.RepoSyncDetail{Org: task.orgLogin, Repo: repo.Name}
	owner := ""
	if repo.Owner != nil {
		owner = repo.Owner.Login
	}

	rateLimited := false
	fetchedAt := time.Now()

	limited, err := s.githubData.EachCommitPage(ctx, client, owner, repo.Name, func(page int, commits []*github.RepositoryCommit) error {
		batch := make([]*models.Commit, 0, len(commits))
		for _, c := range commits {
			batch = append(batch, mapCommit(c, repo.RepoID, task.orgID, integration.ID, fetchMeta{page: page, pageSize: defaultPageSize, fetchedAt: fetchedAt}))
		}
		if err := s.commitRepo.UpsertBatch(batch); err != nil {
			return err
		}
		detail.Commits += len(batch)
		return nil
	})
	rateLimited = rateLimited || limited
	if err != nil {
		if errors.Is(err, ErrEmptyRepository) {
			detail.Errors = append(detail.Errors, fmt.Sprintf("Repository %s is empty - no commits available", repo.Name))
		} else {
			detail.Errors = append(detail.Errors, fmt.Sprintf("Failed to fetch commits for %s: %v", repo.Name, err))
		}
	}

	limited, err = s.githubData.EachPullPage(ctx, client, owner, repo.Name, func(page int, pulls []*github.PullRequest) error {
		batch := make([]*models.PullRequest, 0, len(pulls))
		for _, pr := range pulls {
			batch = append(batch, mapPullRequest(pr, repo.RepoID, task.orgID, integration.ID, fetchMeta{page: page, pageSize: defaultPageSize, fetchedAt: fetchedAt}))
		}
		if err := s.pullRequestRepo.UpsertBatch(batch); err != nil {
			return err
		}
		detail.Pulls += len(batch)
		return nil
	})
	rateLimited = rateLimited || limited
	if err != nil {
		detail.Errors = append(detail.Errors, fmt.Sprintf("Failed to fetch pull requests for %s: %v", repo.Name, err))
	}

	limited, err = s.githubData.EachIssuePage(ctx, client, owner, repo.Name, func(page int, issues []*github.Issue) error {
		batch := make([]*models.Issue, 0, len(issues))
		for _, issue := range issues {
			// The issues endpoint also returns pull requests; keep
			// only true issues.
			if isPullRequestShaped(issue) {
				continue
			}
			batch = append(batch, mapIssue(issue, repo.RepoID, task.orgID, integration.ID, fetchMeta{page: page, pageSize: defaultPageSize, fetchedAt: fetchedAt}))
		}
		if err := s.issueRepo.UpsertBatch(batch); err != nil {
			return err
		}
		detail.Issues += len(batch)
		return nil
	})
	rateLimited = rateLimited || limited
	if err != nil {
		detail.Errors = append(detail.Errors, fmt.Sprintf("Failed to fetch issues for %s: %v", repo.Name, err))
	}

	return detail, rateLimited
}
