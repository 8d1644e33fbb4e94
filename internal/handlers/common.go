package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/octoview/octoview/internal/middleware"
	"github.com/octoview/octoview/internal/models"
	"github.com/octoview/octoview/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v57/github"
)

// repoPageRequest is the body accepted by the paged fetch endpoints.
type repoPageRequest struct {
	Owner    string `json:"owner" binding:"required"`
	Repo     string `json:"repo" binding:"required"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

func (r *repoPageRequest) normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 || r.PageSize > 100 {
		r.PageSize = 30
	}
}

// clientFor builds a GitHub client for the integration resolved by the
// auth middleware. The decrypted token never leaves this call chain.
func clientFor(c *gin.Context, integrationService *services.IntegrationService, dataService *services.GitHubDataService) (*github.Client, *models.Integration, bool) {
	integration := middleware.GetIntegration(c)
	if integration == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "GitHub integration not found"})
		return nil, nil, false
	}

	token, err := integrationService.DecryptedToken(integration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to access integration credentials"})
		return nil, nil, false
	}

	return dataService.NewClient(token), integration, true
}

// respondUpstreamError maps a GitHub API failure onto the HTTP surface,
// preserving the upstream status and message where available.
func respondUpstreamError(c *gin.Context, message string, err error) {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		status := ghErr.Response.StatusCode
		if status == http.StatusForbidden || status == http.StatusTooManyRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "GitHub API rate limit exceeded",
				"details": ghErr.Message,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   message,
			"details": ghErr.Message,
			"status":  status,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	return v
}
