package handlers

import (
	"fmt"
	"net/http"

	"github.com/octoview/octoview/internal/middleware"
	"github.com/octoview/octoview/internal/services"

	"github.com/gin-gonic/gin"
)

type RepositoryHandler struct {
	integrationService  *services.IntegrationService
	organizationService *services.OrganizationService
	repositoryService   *services.RepositoryService
	repoDataService     *services.RepoDataService
	dataService         *services.GitHubDataService
}

func NewRepositoryHandler(
	integrationService *services.IntegrationService,
	organizationService *services.OrganizationService,
	repositoryService *services.RepositoryService,
	repoDataService *services.RepoDataService,
	dataService *services.GitHubDataService,
) *RepositoryHandler {
	return &RepositoryHandler{
		integrationService:  integrationService,
		organizationService: organizationService,
		repositoryService:   repositoryService,
		repoDataService:     repoDataService,
		dataService:         dataService,
	}
}

var validDataTypes = map[string]bool{
	"commits": true,
	"pulls":   true,
	"issues":  true,
}

// UserRepos fetches the user's personal repositories from GitHub and
// stores them
func (h *RepositoryHandler) UserRepos(c *gin.Context) {
	client, integration, ok := clientFor(c, h.integrationService, h.dataService)
	if !ok {
		return
	}

	repos, _, err := h.repositoryService.FetchAndStoreUser(c.Request.Context(), client, integration.ID)
	if err != nil {
		respondUpstreamError(c, "Failed to fetch repositories", err)
		return
	}

	c.JSON(http.StatusOK, repos)
}

// StoredRepos lists the repositories already persisted for the integration
func (h *RepositoryHandler) StoredRepos(c *gin.Context) {
	integration := middleware.GetIntegration(c)
	if integration == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "GitHub integration not found"})
		return
	}

	repos, err := h.repositoryService.ListStored(integration.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list repositories"})
		return
	}

	c.JSON(http.StatusOK, repos)
}

// OrgRepoData fetches one page of commits, pulls or issues for a repository
// belonging to an organization
func (h *RepositoryHandler) OrgRepoData(c *gin.Context) {
	orgID := c.Param("orgId")

	org, err := h.organizationService.GetByOrgID(orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up organization"})
		return
	}
	if org == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	h.fetchRepoPage(c, &org.OrgID)
}

// UserRepoData fetches one page of commits, pulls or issues for a personal
// repository
func (h *RepositoryHandler) UserRepoData(c *gin.Context) {
	h.fetchRepoPage(c, nil)
}

func (h *RepositoryHandler) fetchRepoPage(c *gin.Context, orgID *string) {
	dataType := c.Param("dataType")
	if !validDataTypes[dataType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data type, expected commits, pulls or issues"})
		return
	}

	var req repoPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner and repo are required", "details": err.Error()})
		return
	}
	req.normalize()

	repo, err := h.repositoryService.GetByFullName(fmt.Sprintf("%s/%s", req.Owner, req.Repo))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up repository"})
		return
	}
	if repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Repository not found, sync repositories first"})
		return
	}

	client, integration, ok := clientFor(c, h.integrationService, h.dataService)
	if !ok {
		return
	}

	page, err := h.repoDataService.FetchPage(c.Request.Context(), client, integration, repo, orgID, dataType, req.Owner, req.Repo, req.Page, req.PageSize)
	if err != nil {
		respondUpstreamError(c, fmt.Sprintf("Failed to fetch %s", dataType), err)
		return
	}

	c.JSON(http.StatusOK, page)
}
