package app

import (
	"context"
	"fmt"
	"time"

	"github.com/onyria-app/core/internal/config"
	"github.com/onyria-app/core/internal/models"
	"github.com/onyria-app/core/internal/modules/storage/file"
	pkgcron "github.com/onyria-app/core/internal/pkg/cron"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, db *gorm.DB, runtimeCfg *config.AppConfig, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")
	mediaDir := runtimeCfg.MediaDir()

	sched.Register(pkgcron.Job{
		Name:        "cleanup_orphan_files",
		Description: "Supprime les fichiers média orphelins marqués depuis plus de 24 h",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			removed := file.CleanupOrphans(db, mediaDir, 24*time.Hour, cronLogger)
			cronLogger.Info(fmt.Sprintf("nettoyage des fichiers orphelins terminé, %d supprimés", removed))
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "cleanup_expired_sessions",
		Description: "Purge les sessions expirées ou révoquées depuis plus de 7 jours",
		Interval:    12 * time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().AddDate(0, 0, -7)
			result := db.Where("expires_at < ? OR revoked_at < ?", cutoff, cutoff).
				Delete(&models.UserSession{})
			if result.Error != nil {
				cronLogger.Warn("purge des sessions échouée", zap.Error(result.Error))
				return result.Error
			}
			cronLogger.Info(fmt.Sprintf("purge des sessions terminée, %d supprimées", result.RowsAffected))
			return nil
		},
	})
}
