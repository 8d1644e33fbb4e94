package handlers

import (
	"net/http"

	"github.com/octoview/octoview/internal/middleware"
	"github.com/octoview/octoview/internal/services"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	syncService *services.SyncService
}

func NewSyncHandler(syncService *services.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// Sync runs a full resync of the integration's GitHub data and returns
// the aggregate report
func (h *SyncHandler) Sync(c *gin.Context) {
	integration := middleware.GetIntegration(c)
	if integration == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "GitHub integration not found"})
		return
	}

	report, err := h.syncService.SyncAll(c.Request.Context(), integration)
	if err != nil {
		respondUpstreamError(c, "Sync failed", err)
		return
	}

	c.JSON(http.StatusOK, report)
}
