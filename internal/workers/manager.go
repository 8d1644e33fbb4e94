package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/octoview/octoview/internal/services"
	"github.com/octoview/octoview/pkg/config"
	"github.com/octoview/octoview/pkg/logger"
)

// WorkerManager manages the background worker pool
type WorkerManager struct {
	workers            []Worker
	integrationService *services.IntegrationService
	syncService        *services.SyncService
	wg                 sync.WaitGroup
	ctx                context.Context
	cancel             context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(integrationService *services.IntegrationService, syncService *services.SyncService) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		workers:            make([]Worker, 0),
		integrationService: integrationService,
		syncService:        syncService,
		ctx:                ctx,
		cancel:             cancel,
	}
}

// StartAll starts all workers based on configuration. A refresh interval
// of zero or less disables the background refresh entirely.
func (wm *WorkerManager) StartAll() error {
	if config.AppConfig.Sync.RefreshIntervalHours <= 0 {
		logger.Info("Background refresh disabled, no workers started")
		return nil
	}

	refreshWorkers := config.AppConfig.Sync.Workers
	if refreshWorkers < 1 {
		refreshWorkers = 1
	}

	for i := 0; i < refreshWorkers; i++ {
		worker := NewRefreshWorker(fmt.Sprintf("refresh-%d", i+1), wm.integrationService, wm.syncService)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	logger.Infof("Started %d workers", len(wm.workers))
	return nil
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	logger.Info("Stopping all workers...")

	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.WithError(err).Errorf("Error stopping worker %s", worker.GetWorkerID())
		}
	}

	wm.wg.Wait()

	logger.Info("All workers stopped")
	return nil
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Errorf("Worker %s stopped with error", worker.GetWorkerID())
		}
	}()
}
