package cli

import (
	"github.com/kmcewan/habits/internal/analytics"
	"github.com/kmcewan/habits/internal/backup"
	"github.com/kmcewan/habits/internal/engine"
	"github.com/kmcewan/habits/internal/logger"
	"github.com/kmcewan/habits/internal/storage"
)

type Context struct {
	Store      storage.Provider
	Engine     *engine.Service
	Aggregator *analytics.Aggregator
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}
