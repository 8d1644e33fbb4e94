package handlers

import (
	"net/http"

	"github.com/octoview/octoview/internal/services"

	"github.com/gin-gonic/gin"
)

type OrganizationHandler struct {
	integrationService  *services.IntegrationService
	organizationService *services.OrganizationService
	repositoryService   *services.RepositoryService
	dataService         *services.GitHubDataService
}

func NewOrganizationHandler(integrationService *services.IntegrationService, organizationService *services.OrganizationService, repositoryService *services.RepositoryService, dataService *services.GitHubDataService) *OrganizationHandler {
	return &OrganizationHandler{
		integrationService:  integrationService,
		organizationService: organizationService,
		repositoryService:   repositoryService,
		dataService:         dataService,
	}
}

// List fetches the user's organizations from GitHub and stores them
func (h *OrganizationHandler) List(c *gin.Context) {
	client, integration, ok := clientFor(c, h.integrationService, h.dataService)
	if !ok {
		return
	}

	orgs, _, err := h.organizationService.FetchAndStore(c.Request.Context(), client, integration.ID)
	if err != nil {
		respondUpstreamError(c, "Failed to fetch organizations", err)
		return
	}

	c.JSON(http.StatusOK, orgs)
}

// Data returns members or repositories for a stored organization
func (h *OrganizationHandler) Data(c *gin.Context) {
	orgID := c.Param("orgId")
	dataType := c.Param("dataType")

	org, err := h.organizationService.GetByOrgID(orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up organization"})
		return
	}
	if org == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	client, integration, ok := clientFor(c, h.integrationService, h.dataService)
	if !ok {
		return
	}

	switch dataType {
	case "members":
		members, err := h.organizationService.Members(c.Request.Context(), client, org)
		if err != nil {
			respondUpstreamError(c, "Failed to fetch organization members", err)
			return
		}
		c.JSON(http.StatusOK, members)
	case "repos":
		repos, _, err := h.repositoryService.FetchAndStoreOrg(c.Request.Context(), client, org, integration.ID)
		if err != nil {
			respondUpstreamError(c, "Failed to fetch organization repositories", err)
			return
		}
		c.JSON(http.StatusOK, repos)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid organization data type, expected members or repos"})
	}
}
