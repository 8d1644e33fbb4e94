package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/octoview/octoview/internal/handlers"
	"github.com/octoview/octoview/internal/middleware"
	"github.com/octoview/octoview/internal/repositories"
	"github.com/octoview/octoview/internal/services"
	"github.com/octoview/octoview/internal/workers"
	"github.com/octoview/octoview/pkg/config"
	"github.com/octoview/octoview/pkg/crypto"
	"github.com/octoview/octoview/pkg/database"
	"github.com/octoview/octoview/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Init()

	if config.AppConfig.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	if err := database.Init(); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Token vault. A bad key is a deployment error, refuse to start.
	vault, err := crypto.NewVault(config.AppConfig.Encryption.Key, config.AppConfig.Encryption.IV)
	if err != nil {
		logger.Fatalf("Failed to initialize token vault: %v", err)
	}

	// Repositories
	integrationRepo := repositories.NewIntegrationRepository(database.DB)
	orgRepo := repositories.NewOrganizationRepository(database.DB)
	repoRepo := repositories.NewRepositoryRepository(database.DB)
	commitRepo := repositories.NewCommitRepository(database.DB)
	pullRequestRepo := repositories.NewPullRequestRepository(database.DB)
	issueRepo := repositories.NewIssueRepository(database.DB)

	// Services
	githubData := services.NewGitHubDataService()
	integrationService := services.NewIntegrationService(integrationRepo, vault)
	organizationService := services.NewOrganizationService(githubData, orgRepo)
	repositoryService := services.NewRepositoryService(githubData, repoRepo)
	repoDataService := services.NewRepoDataService(githubData, commitRepo, pullRequestRepo, issueRepo)
	relationshipService := services.NewRelationshipService(commitRepo, pullRequestRepo, issueRepo)
	exportService := services.NewExportService(commitRepo, pullRequestRepo, issueRepo)
	syncService := services.NewSyncService(githubData, integrationService, organizationService, repositoryService, commitRepo, pullRequestRepo, issueRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(integrationService)
	integrationHandler := handlers.NewIntegrationHandler()
	organizationHandler := handlers.NewOrganizationHandler(integrationService, organizationService, repositoryService, githubData)
	repositoryHandler := handlers.NewRepositoryHandler(integrationService, organizationService, repositoryService, repoDataService, githubData)
	relationshipHandler := handlers.NewRelationshipHandler(repositoryService, relationshipService)
	syncHandler := handlers.NewSyncHandler(syncService)
	detailsHandler := handlers.NewDetailsHandler(integrationService, githubData)
	exportHandler := handlers.NewExportHandler(repositoryService, exportService)
	healthHandler := handlers.NewHealthHandler()

	// Background refresh workers
	workerManager := workers.NewWorkerManager(integrationService, syncService)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SessionMiddleware())

	setupRoutes(router, integrationService, authHandler, integrationHandler, organizationHandler, repositoryHandler, relationshipHandler, syncHandler, detailsHandler, exportHandler, healthHandler)

	if err := workerManager.StartAll(); err != nil {
		logger.Fatalf("Failed to start workers: %v", err)
	}
	defer workerManager.StopAll()

	server := &http.Server{
		Addr:         ":" + config.AppConfig.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Infof("Server starting on :%s", config.AppConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}

	logger.Info("Server stopped")
}

func setupRoutes(
	router *gin.Engine,
	integrationService *services.IntegrationService,
	authHandler *handlers.AuthHandler,
	integrationHandler *handlers.IntegrationHandler,
	organizationHandler *handlers.OrganizationHandler,
	repositoryHandler *handlers.RepositoryHandler,
	relationshipHandler *handlers.RelationshipHandler,
	syncHandler *handlers.SyncHandler,
	detailsHandler *handlers.DetailsHandler,
	exportHandler *handlers.ExportHandler,
	healthHandler *handlers.HealthHandler,
) {
	router.GET("/health", healthHandler.Health)

	// OAuth endpoints work without an existing integration
	auth := router.Group("/auth")
	{
		auth.GET("/github", authHandler.GitHubLogin)
		auth.GET("/github/callback", authHandler.GitHubCallback)
		auth.GET("/status", authHandler.Status)
		auth.DELETE("/integration", authHandler.Disconnect)
	}

	// Everything below needs a session that resolves to an integration
	integrations := router.Group("/integrations")
	integrations.Use(middleware.RequireIntegration(integrationService))
	{
		integrations.GET("", integrationHandler.List)

		github := integrations.Group("/github")
		{
			github.GET("/organizations", organizationHandler.List)
			github.GET("/organizations/:orgId/:dataType", organizationHandler.Data)
			github.POST("/organizations/:orgId/repo/:dataType", repositoryHandler.OrgRepoData)

			github.GET("/user/repos", repositoryHandler.UserRepos)
			github.POST("/user/repo/:dataType", repositoryHandler.UserRepoData)

			github.GET("/repos", repositoryHandler.StoredRepos)
			github.GET("/repos/:owner/:repo/issues/:issueNumber/details", detailsHandler.IssueDetails)
			github.GET("/repos/:owner/:repo/commits/:sha/details", detailsHandler.CommitDetails)
			github.GET("/repos/:owner/:repo/export", exportHandler.Export)
		}

		integrations.GET("/repository/relationships", relationshipHandler.Get)
	}

	router.POST("/sync", middleware.RequireIntegration(integrationService), syncHandler.Sync)
}
