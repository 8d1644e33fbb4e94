package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/octoview/octoview/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v57/github"
)

type DetailsHandler struct {
	integrationService *services.IntegrationService
	dataService        *services.GitHubDataService
}

func NewDetailsHandler(integrationService *services.IntegrationService, dataService *services.GitHubDataService) *DetailsHandler {
	return &DetailsHandler{
		integrationService: integrationService,
		dataService:        dataService,
	}
}

// IssueDetails returns a single issue with its comment thread
func (h *DetailsHandler) IssueDetails(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")
	number, err := strconv.Atoi(c.Param("issueNumber"))
	if err != nil || number < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "issueNumber must be a positive integer"})
		return
	}

	client, _, ok := clientFor(c, h.integrationService, h.dataService)
	if !ok {
		return
	}

	issue, comments, err := h.dataService.GetIssueWithComments(c.Request.Context(), client, owner, repo, number)
	if err != nil {
		if isUpstreamNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
			return
		}
		respondUpstreamError(c, "Failed to fetch issue details", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issue":    issue,
		"comments": comments,
	})
}

// CommitDetails returns a single commit with its file changes and comments
func (h *DetailsHandler) CommitDetails(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")
	sha := c.Param("sha")

	client, _, ok := clientFor(c, h.integrationService, h.dataService)
	if !ok {
		return
	}

	commit, comments, err := h.dataService.GetCommitWithComments(c.Request.Context(), client, owner, repo, sha)
	if err != nil {
		if isUpstreamNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commit not found"})
			return
		}
		respondUpstreamError(c, "Failed to fetch commit details", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"commit":   commit,
		"comments": comments,
	})
}

func isUpstreamNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
