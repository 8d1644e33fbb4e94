package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/octoview/octoview/internal/middleware"
	"github.com/octoview/octoview/internal/services"

	"github.com/gin-gonic/gin"
)

type RelationshipHandler struct {
	repositoryService   *services.RepositoryService
	relationshipService *services.RelationshipService
}

func NewRelationshipHandler(repositoryService *services.RepositoryService, relationshipService *services.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{
		repositoryService:   repositoryService,
		relationshipService: relationshipService,
	}
}

// Get returns a repository's stored commits, pull requests and issues in
// one response, each paged independently
func (h *RelationshipHandler) Get(c *gin.Context) {
	owner := c.Query("owner")
	repoName := c.Query("repo")
	if owner == "" || repoName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner and repo are required"})
		return
	}

	integration := middleware.GetIntegration(c)
	if integration == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "GitHub integration not found"})
		return
	}

	repo, err := h.repositoryService.GetByFullName(fmt.Sprintf("%s/%s", owner, repoName))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up repository"})
		return
	}
	if repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Repository not found, sync repositories first"})
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "pageSize", 30)
	if pageSize > 100 {
		pageSize = 100
	}

	filters := services.RelationshipFilters{}
	if state := c.Query("state"); state != "" {
		filters.State = &state
	}
	if raw := c.Query("startDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "startDate must be RFC 3339"})
			return
		}
		filters.StartDate = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must be RFC 3339"})
			return
		}
		filters.EndDate = &t
	}

	relationships, err := h.relationshipService.Fetch(integration, repo, page, pageSize, filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load repository relationships"})
		return
	}

	c.JSON(http.StatusOK, relationships)
}
