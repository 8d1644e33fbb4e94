package workers

import (
	"testing"

	"github.com/octoview/octoview/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSyncConfig(t *testing.T, sync config.SyncConfig) {
	t.Helper()

	previous := config.AppConfig
	config.AppConfig = &config.Config{Sync: sync}
	t.Cleanup(func() { config.AppConfig = previous })
}

func TestStartAllDisabledWhenRefreshIntervalZero(t *testing.T) {
	withSyncConfig(t, config.SyncConfig{RefreshIntervalHours: 0, Workers: 3})

	wm := NewWorkerManager(nil, nil)
	require.NoError(t, wm.StartAll())

	assert.Empty(t, wm.workers, "a zero refresh interval must not start any workers")
	require.NoError(t, wm.StopAll())
}

func TestStartAllSpawnsConfiguredWorkerCount(t *testing.T) {
	withSyncConfig(t, config.SyncConfig{RefreshIntervalHours: 24, Workers: 2})

	wm := NewWorkerManager(nil, nil)
	require.NoError(t, wm.StartAll())

	assert.Len(t, wm.workers, 2)
	require.NoError(t, wm.StopAll())
}

func TestStartAllDefaultsToOneWorker(t *testing.T) {
	withSyncConfig(t, config.SyncConfig{RefreshIntervalHours: 24, Workers: 0})

	wm := NewWorkerManager(nil, nil)
	require.NoError(t, wm.StartAll())

	assert.Len(t, wm.workers, 1)
	require.NoError(t, wm.StopAll())
}
