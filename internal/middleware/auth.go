package middleware

import (
	"net/http"

	"github.com/octoview/octoview/internal/models"
	"github.com/octoview/octoview/internal/services"

	"github.com/gin-gonic/gin"
)

const integrationKey = "integration"

// RequireIntegration resolves the current session to its Integration once
// per request and stores it in the context. It is the single place where
// identity is derived: 401 without a valid session, 404 when the session
// no longer maps to a stored Integration.
func RequireIntegration(integrationService *services.IntegrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := GetSession(c)
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		integration, err := integrationService.GetByGithubID(session.GithubID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve integration"})
			return
		}
		if integration == nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "GitHub integration not found"})
			return
		}

		c.Set(integrationKey, integration)
		c.Next()
	}
}

// GetIntegration retrieves the resolved Integration from the context
func GetIntegration(c *gin.Context) *models.Integration {
	value, exists := c.Get(integrationKey)
	if !exists {
		return nil
	}

	if integration, ok := value.(*models.Integration); ok {
		return integration
	}

	return nil
}
