package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/octoview/octoview/internal/models"
	"github.com/octoview/octoview/pkg/config"

	gogithub "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubService drives the OAuth authorization-code flow against GitHub.
type GitHubService struct {
	oauthConfig *oauth2.Config
}

// GitHubUser is the account profile captured after a successful exchange.
type GitHubUser struct {
	ID        string
	Login     string
	Name      string
	Email     string
	AvatarURL string
	Profile   *models.Profile
}

func NewGitHubService() *GitHubService {
	oauthConfig := &oauth2.Config{
		ClientID:     config.AppConfig.GitHub.ClientID,
		ClientSecret: config.AppConfig.GitHub.ClientSecret,
		RedirectURL:  config.AppConfig.GitHub.CallbackURL,
		Scopes: []string{
			"user:email", // Access to user's email addresses
			"read:user",  // Read access to user profile data
			"read:org",   // Read access to organization membership
			"repo",       // Full access to repositories (includes PRs, issues, etc.)
		},
		Endpoint: github.Endpoint,
	}

	return &GitHubService{
		oauthConfig: oauthConfig,
	}
}

// GetAuthURL returns the GitHub OAuth authorization URL bound to the given
// CSRF state.
func (s *GitHubService) GetAuthURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCodeForToken exchanges authorization code for access token
func (s *GitHubService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

// GetUserInfo retrieves the authenticated account's profile from GitHub,
// falling back to the primary address from the emails endpoint when the
// profile email is private.
func (s *GitHubService) GetUserInfo(ctx context.Context, token *oauth2.Token) (*GitHubUser, error) {
	client := gogithub.NewClient(s.oauthConfig.Client(ctx, token))

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	email := user.GetEmail()
	if email == "" {
		emails, _, err := client.Users.ListEmails(ctx, nil)
		if err == nil {
			for _, e := range emails {
				if e.GetPrimary() {
					email = e.GetEmail()
					break
				}
			}
		}
	}

	return &GitHubUser{
		ID:        strconv.FormatInt(user.GetID(), 10),
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		Email:     email,
		AvatarURL: user.GetAvatarURL(),
		Profile: &models.Profile{
			Name:        user.GetName(),
			Bio:         user.GetBio(),
			Location:    user.GetLocation(),
			Company:     user.GetCompany(),
			Blog:        user.GetBlog(),
			PublicRepos: user.GetPublicRepos(),
			Followers:   user.GetFollowers(),
			Following:   user.GetFollowing(),
		},
	}, nil
}
