package logging

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/squadhub/squadhub-backend/internal/models"
)

const logRetention = 30 * 24 * time.Hour

// StartCleanup deletes system logs past retention once a day until done is
// closed.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := PurgeSystemLogs(db, time.Now().Add(-logRetention)); err != nil {
					slog.Error("log cleanup failed", "error", err)
				} else if n > 0 {
					slog.Info("log cleanup completed", "deleted", n)
				}
			case <-done:
				return
			}
		}
	}()
}

// PurgeSystemLogs removes log rows older than cutoff.
func PurgeSystemLogs(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}
