package handlers

import (
	"fmt"
	"net/http"

	"github.com/octoview/octoview/internal/middleware"
	"github.com/octoview/octoview/internal/services"
	"github.com/octoview/octoview/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	repositoryService *services.RepositoryService
	exportService     *services.ExportService
}

func NewExportHandler(repositoryService *services.RepositoryService, exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{
		repositoryService: repositoryService,
		exportService:     exportService,
	}
}

// Export streams the stored repository data as an Excel workbook
func (h *ExportHandler) Export(c *gin.Context) {
	owner := c.Param("owner")
	repoName := c.Param("repo")

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

	workbook, err := h.exportService.BuildWorkbook(integration, repo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("%s-%s-export.xlsx", owner, repoName)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := workbook.Write(c.Writer); err != nil {
		logger.WithError(err).Errorf("export write failed for %s/%s", owner, repoName)
	}
}
