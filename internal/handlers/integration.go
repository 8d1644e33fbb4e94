package handlers

import (
	"fmt"
	"net/http"

	"github.com/octoview/octoview/internal/middleware"

	"github.com/gin-gonic/gin"
)

type IntegrationHandler struct{}

func NewIntegrationHandler() *IntegrationHandler {
	return &IntegrationHandler{}
}

// List returns the connected integrations for the current session
func (h *IntegrationHandler) List(c *gin.Context) {
	integration := middleware.GetIntegration(c)
	if integration == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "GitHub integration not found"})
		return
	}

	c.JSON(http.StatusOK, []gin.H{
		{
			"id":     "github",
			"name":   fmt.Sprintf("GitHub (%s)", integration.Username),
			"type":   "github",
			"status": "connected",
		},
	})
}
