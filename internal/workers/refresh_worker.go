package workers

import (
	"context"
	"time"

	"github.com/octoview/octoview/internal/services"
	"github.com/octoview/octoview/pkg/config"
	"github.com/octoview/octoview/pkg/logger"

	"github.com/sirupsen/logrus"
)

const refreshPollInterval = 5 * time.Minute

// RefreshWorker periodically resyncs integrations whose data has gone
// stale. Only one worker picks up a given integration per poll because
// MarkSynced moves the cutoff forward before the next poll runs.
type RefreshWorker struct {
	*BaseWorker
	integrationService *services.IntegrationService
	syncService        *services.SyncService
}

// NewRefreshWorker creates a new refresh worker
func NewRefreshWorker(workerID string, integrationService *services.IntegrationService, syncService *services.SyncService) *RefreshWorker {
	return &RefreshWorker{
		BaseWorker:         NewBaseWorker(workerID),
		integrationService: integrationService,
		syncService:        syncService,
	}
}

// Start begins the refresh worker process
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.Running = true
	logger.Infof("Refresh worker %s started", w.WorkerID)

	ticker := time.NewTicker(refreshPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Infof("Refresh worker %s stopping due to context cancellation", w.WorkerID)
			return ctx.Err()
		case <-w.StopChan:
			logger.Infof("Refresh worker %s stopping", w.WorkerID)
			return nil
		case <-ticker.C:
			w.refreshStale(ctx)
		}
	}
}

func (w *RefreshWorker) refreshStale(ctx context.Context) {
	cutoff := time.Now().Add(-time.Duration(config.AppConfig.Sync.RefreshIntervalHours) * time.Hour)

	stale, err := w.integrationService.ListStale(cutoff)
	if err != nil {
		logger.WithError(err).Errorf("Refresh worker %s failed to list stale integrations", w.WorkerID)
		return
	}

	for _, integration := range stale {
		select {
		case <-ctx.Done():
			return
		case <-w.StopChan:
			return
		default:
		}

		logger.WithField("username", integration.Username).Infof("Refresh worker %s resyncing integration", w.WorkerID)

		report, err := w.syncService.SyncAll(ctx, integration)
		if err != nil {
			logger.WithError(err).Errorf("Refresh worker %s sync failed for %s", w.WorkerID, integration.Username)
			continue
		}

		logger.WithFields(logrus.Fields{
			"username":    integration.Username,
			"commits":     report.SyncedData.Totals.Commits,
			"pulls":       report.SyncedData.Totals.Pulls,
			"issues":      report.SyncedData.Totals.Issues,
			"errors":      len(report.Errors),
			"rateLimited": report.RateLimited,
		}).Infof("Refresh worker %s finished resync", w.WorkerID)
	}
}
