package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/octoview/octoview/internal/middleware"
	"github.com/octoview/octoview/internal/services"
	"github.com/octoview/octoview/pkg/config"
	"github.com/octoview/octoview/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	integrationService *services.IntegrationService
	githubService      *services.GitHubService
}

func NewAuthHandler(integrationService *services.IntegrationService) *AuthHandler {
	return &AuthHandler{
		integrationService: integrationService,
		githubService:      services.NewGitHubService(),
	}
}

const oauthStateCookie = "oauth_state"

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// GitHubLogin initiates GitHub OAuth flow
func (h *AuthHandler) GitHubLogin(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start GitHub login"})
		return
	}

	// The callback checks this against the state GitHub echoes back
	c.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.githubService.GetAuthURL(state))
}

// GitHubCallback handles GitHub OAuth callback
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	expectedState, err := c.Cookie(oauthStateCookie)
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)
	if err != nil || expectedState == "" || c.Query("state") != expectedState {
		c.Redirect(http.StatusFound, config.AppConfig.Frontend.Origin+"/login?error=invalid_state")
		return
	}

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, config.AppConfig.Frontend.Origin+"/login?error=no_code")
		return
	}

	// Exchange code for token
	token, err := h.githubService.ExchangeCodeForToken(c.Request.Context(), code)
	if err != nil {
		logger.WithError(err).Errorf("token exchange failed")
		c.Redirect(http.StatusFound, config.AppConfig.Frontend.Origin+"/login?error=token_exchange_failed")
		return
	}

	// Get user info from GitHub
	githubUser, err := h.githubService.GetUserInfo(c.Request.Context(), token)
	if err != nil {
		logger.WithError(err).Errorf("profile fetch failed")
		c.Redirect(http.StatusFound, config.AppConfig.Frontend.Origin+"/login?error=user_info_failed")
		return
	}

	// Create or refresh the integration; tokens are encrypted before the
	// first persisted write.
	integration, err := h.integrationService.UpsertFromOAuth(githubUser, token)
	if err != nil {
		logger.WithError(err).Errorf("integration upsert failed")
		c.Redirect(http.StatusFound, config.AppConfig.Frontend.Origin+"/login?error=integration_failed")
		return
	}

	if err := middleware.SetSession(c, integration.GithubID, integration.Username, integration.AvatarURL); err != nil {
		c.Redirect(http.StatusFound, config.AppConfig.Frontend.Origin+"/login?error=session_creation_failed")
		return
	}

	c.Redirect(http.StatusFound, config.AppConfig.Frontend.Origin)
}

// Status reports whether the current session maps to a connected integration
func (h *AuthHandler) Status(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		c.JSON(http.StatusOK, gin.H{
			"isConnected":    false,
			"connectionDate": nil,
			"userData":       nil,
		})
		return
	}

	integration, err := h.integrationService.GetByGithubID(session.GithubID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get integration status"})
		return
	}
	if integration == nil {
		c.JSON(http.StatusOK, gin.H{
			"isConnected":    false,
			"connectionDate": nil,
			"userData":       nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isConnected":    true,
		"connectionDate": integration.ConnectedAt,
		"userData": gin.H{
			"id":        integration.GithubID,
			"username":  integration.Username,
			"email":     integration.Email,
			"avatarUrl": integration.AvatarURL,
			"profile":   integration.Profile,
		},
	})
}

// Disconnect removes the current integration and destroys the session
func (h *AuthHandler) Disconnect(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	integration, err := h.integrationService.GetByGithubID(session.GithubID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove integration"})
		return
	}
	if integration == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "GitHub integration not found"})
		return
	}

	if err := h.integrationService.Disconnect(session.GithubID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove integration"})
		return
	}

	middleware.ClearSession(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
