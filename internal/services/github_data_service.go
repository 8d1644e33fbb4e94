package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/octoview/octoview/pkg/config"
	"github.com/octoview/octoview/pkg/logger"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const defaultPageSize = 100

// ErrEmptyRepository is the distinguished outcome for GitHub's 409 response
// on commit listings against a repository with no commits. Callers treat it
// as an empty data set, not a hard failure.
var ErrEmptyRepository = errors.New("repository is empty")

// GitHubDataService is the thin client for GitHub's REST API. All upstream
// reads go through it: it paces successive page requests, inspects the
// remaining rate-limit quota, and maps the empty-repository conflict to a
// sentinel error. It is constructed once and injected, never ambient.
type GitHubDataService struct {
	limiter *rate.Limiter
	baseURL string // overridden in tests
}

func NewGitHubDataService() *GitHubDataService {
	delay := 100 * time.Millisecond
	if config.AppConfig != nil && config.AppConfig.Sync.PageDelayMs > 0 {
		delay = time.Duration(config.AppConfig.Sync.PageDelayMs) * time.Millisecond
	}
	return &GitHubDataService{
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// NewClient builds a GitHub client authenticated with the given token.
func (s *GitHubDataService) NewClient(token string) *github.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(context.Background(), ts))
	if s.baseURL != "" {
		base, err := url.Parse(s.baseURL)
		if err == nil {
			client.BaseURL = base
		}
	}
	return client
}

// checkPage inspects a page response, returning true when pagination must
// stop because the remaining rate-limit quota is exhausted. Responses
// without rate-limit headers leave Rate zeroed and say nothing about quota.
func (s *GitHubDataService) checkPage(resp *github.Response) bool {
	if resp != nil && resp.Rate.Limit > 0 && resp.Rate.Remaining <= 0 {
		logger.Warnf("GitHub API rate limit reached, returning partial results")
		return true
	}
	return false
}

// isEmptyRepository reports whether err is GitHub's 409 for a repository
// with no commits.
func isEmptyRepository(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == 409 {
		return strings.Contains(strings.ToLower(ghErr.Message), "empty")
	}
	return false
}

// EachOrgPage drains the authenticated account's organizations, invoking fn
// once per non-empty page. It returns whether pagination stopped early on
// rate limiting.
func (s *GitHubDataService) EachOrgPage(ctx context.Context, client *github.Client, fn func(page int, orgs []*github.Organization) error) (bool, error) {
	page := 1
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return false, err
		}

		orgs, resp, err := client.Organizations.List(ctx, "", &github.ListOptions{Page: page, PerPage: defaultPageSize})
		if err != nil {
			return false, fmt.Errorf("listing organizations page %d: %w", page, err)
		}
		if len(orgs) == 0 {
			return false, nil
		}
		if err := fn(page, orgs); err != nil {
			return false, err
		}
		if s.checkPage(resp) {
			return true, nil
		}
		page++
	}
}

// EachRepoPage drains repositories, organizational when org is non-empty and
// personal otherwise.
func (s *GitHubDataService) EachRepoPage(ctx context.Context, client *github.Client, org string, fn func(page int, repos []*github.Repository) error) (bool, error) {
	page := 1
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return false, err
		}

		var (
			repos []*github.Repository
			resp  *github.Response
			err   error
		)
		if org != "" {
			repos, resp, err = client.Repositories.ListByOrg(ctx, org, &github.RepositoryListByOrgOptions{
				ListOptions: github.ListOptions{Page: page, PerPage: defaultPageSize},
			})
		} else {
			repos, resp, err = client.Repositories.List(ctx, "", &github.RepositoryListOptions{
				ListOptions: github.ListOptions{Page: page, PerPage: defaultPageSize},
			})
		}
		if err != nil {
			return false, fmt.Errorf("listing repositories page %d: %w", page, err)
		}
		if len(repos) == 0 {
			return false, nil
		}
		if err := fn(page, repos); err != nil {
			return false, err
		}
		if s.checkPage(resp) {
			return true, nil
		}
		page++
	}
}

// EachCommitPage drains a repository's commits. A 409 empty-repository
// conflict surfaces as ErrEmptyRepository.
func (s *GitHubDataService) EachCommitPage(ctx context.Context, client *github.Client, owner, repo string, fn func(page int, commits []*github.RepositoryCommit) error) (bool, error) {
	page := 1
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return false, err
		}

		commits, resp, err := client.Repositories.ListCommits(ctx, owner, repo, &github.CommitsListOptions{
			ListOptions: github.ListOptions{Page: page, PerPage: defaultPageSize},
		})
		if err != nil {
			if isEmptyRepository(err) {
				return false, ErrEmptyRepository
			}
			return false, fmt.Errorf("listing commits page %d: %w", page, err)
		}
		if len(commits) == 0 {
			return false, nil
		}
		if err := fn(page, commits); err != nil {
			return false, err
		}
		if s.checkPage(resp) {
			return true, nil
		}
		page++
	}
}

// EachPullPage drains a repository's pull requests across all states.
func (s *GitHubDataService) EachPullPage(ctx context.Context, client *github.Client, owner, repo string, fn func(page int, pulls []*github.PullRequest) error) (bool, error) {
	page := 1
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return false, err
		}

		pulls, resp, err := client.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{
			State:       "all",
			ListOptions: github.ListOptions{Page: page, PerPage: defaultPageSize},
		})
		if err != nil {
			return false, fmt.Errorf("listing pull requests page %d: %w", page, err)
		}
		if len(pulls) == 0 {
			return false, nil
		}
		if err := fn(page, pulls); err != nil {
			return false, err
		}
		if s.checkPage(resp) {
			return true, nil
		}
		page++
	}
}

// EachIssuePage drains a repository's issues across all states, newest
// first. Pull-request-shaped records are NOT filtered here; callers decide.
func (s *GitHubDataService) EachIssuePage(ctx context.Context, client *github.Client, owner, repo string, fn func(page int, issues []*github.Issue) error) (bool, error) {
	page := 1
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return false, err
		}

		issues, resp, err := client.Issues.ListByRepo(ctx, owner, repo, &github.IssueListByRepoOptions{
			State:       "all",
			Sort:        "created",
			Direction:   "desc",
			ListOptions: github.ListOptions{Page: page, PerPage: defaultPageSize},
		})
		if err != nil {
			return false, fmt.Errorf("listing issues page %d: %w", page, err)
		}
		if len(issues) == 0 {
			return false, nil
		}
		if err := fn(page, issues); err != nil {
			return false, err
		}
		if s.checkPage(resp) {
			return true, nil
		}
		page++
	}
}

// PageResult carries the pagination envelope for single-page fetches driven
// by UI paging.
type PageResult struct {
	HasMore           bool
	RemainingRequests int
}

// ListCommitsPage fetches exactly one page of commits.
func (s *GitHubDataService) ListCommitsPage(ctx context.Context, client *github.Client, owner, repo string, page, pageSize int) ([]*github.RepositoryCommit, PageResult, error) {
	commits, resp, err := client.Repositories.ListCommits(ctx, owner, repo, &github.CommitsListOptions{
		ListOptions: github.ListOptions{Page: page, PerPage: pageSize},
	})
	if err != nil {
		if isEmptyRepository(err) {
			return nil, PageResult{}, ErrEmptyRepository
		}
		return nil, PageResult{}, err
	}
	return commits, pageResultFrom(resp), nil
}

// ListPullsPage fetches exactly one page of pull requests (state=all).
func (s *GitHubDataService) ListPullsPage(ctx context.Context, client *github.Client, owner, repo string, page, pageSize int) ([]*github.PullRequest, PageResult, error) {
	pulls, resp, err := client.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{
		State:       "all",
		ListOptions: github.ListOptions{Page: page, PerPage: pageSize},
	})
	if err != nil {
		return nil, PageResult{}, err
	}
	return pulls, pageResultFrom(resp), nil
}

// ListIssuesPage fetches exactly one page of issues (state=all).
func (s *GitHubDataService) ListIssuesPage(ctx context.Context, client *github.Client, owner, repo string, page, pageSize int) ([]*github.Issue, PageResult, error) {
	issues, resp, err := client.Issues.ListByRepo(ctx, owner, repo, &github.IssueListByRepoOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{Page: page, PerPage: pageSize},
	})
	if err != nil {
		return nil, PageResult{}, err
	}
	return issues, pageResultFrom(resp), nil
}

// ListOrgMembers drains an organization's members.
func (s *GitHubDataService) ListOrgMembers(ctx context.Context, client *github.Client, org string) ([]*github.User, error) {
	var all []*github.User
	page := 1
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return all, err
		}

		members, resp, err := client.Organizations.ListMembers(ctx, org, &github.ListMembersOptions{
			ListOptions: github.ListOptions{Page: page, PerPage: defaultPageSize},
		})
		if err != nil {
			return all, fmt.Errorf("listing members page %d: %w", page, err)
		}
		if len(members) == 0 {
			return all, nil
		}
		all = append(all, members...)
		if s.checkPage(resp) {
			return all, nil
		}
		page++
	}
}

// GetIssueWithComments fetches one issue and its comments live.
func (s *GitHubDataService) GetIssueWithComments(ctx context.Context, client *github.Client, owner, repo string, number int) (*github.Issue, []*github.IssueComment, error) {
	issue, _, err := client.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching issue #%d: %w", number, err)
	}

	comments, _, err := client.Issues.ListComments(ctx, owner, repo, number, &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: defaultPageSize},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("fetching comments for issue #%d: %w", number, err)
	}

	return issue, comments, nil
}

// GetCommitWithComments fetches one commit, including file diffs, and its
// comments live.
func (s *GitHubDataService) GetCommitWithComments(ctx context.Context, client *github.Client, owner, repo, sha string) (*github.RepositoryCommit, []*github.RepositoryComment, error) {
	commit, _, err := client.Repositories.GetCommit(ctx, owner, repo, sha, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching commit %s: %w", sha, err)
	}

	comments, _, err := client.Repositories.ListCommitComments(ctx, owner, repo, sha, &github.ListOptions{PerPage: defaultPageSize})
	if err != nil {
		return nil, nil, fmt.Errorf("fetching comments for commit %s: %w", sha, err)
	}

	return commit, comments, nil
}

func pageResultFrom(resp *github.Response) PageResult {
	result := PageResult{}
	if resp != nil {
		result.HasMore = resp.NextPage > 0
		result.RemainingRequests = resp.Rate.Remaining
	}
	return result
}
