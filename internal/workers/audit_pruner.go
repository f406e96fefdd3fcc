package workers

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/shopdesk-dev/shopdesk/internal/models"
	"github.com/shopdesk-dev/shopdesk/internal/tasks"
)

// HandlePruneAudit deletes login audit rows older than the configured
// retention window
func HandlePruneAudit(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	var config models.Config
	if err := db.WithContext(ctx).First(&config).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Debug().Msg("No config found - skipping audit prune")
			return nil
		}
		return err
	}

	retention := config.AuditRetentionDays
	if retention <= 0 {
		retention = 90
	}
	cutoff := time.Now().AddDate(0, 0, -retention)

	result := db.WithContext(ctx).
		Where("login_at < ?", cutoff).
		Delete(&models.LoginAudit{})
	if result.Error != nil {
		logger.Error().Err(result.Error).Msg("Failed to prune login audit")
		return result.Error
	}

	now := time.Now()
	updates := map[string]interface{}{
		"last_audit_prune_at": &now,
		"next_audit_prune_at": calculateNextPrune(config.AuditPruneSchedule, now),
	}
	if err := db.WithContext(ctx).Model(&config).Updates(updates).Error; err != nil {
		logger.Error().Err(err).Msg("Failed to record prune completion")
		return err
	}

	logger.Info().
		Int64("rows_deleted", result.RowsAffected).
		Time("cutoff", cutoff).
		Msg("Login audit pruned")
	return nil
}

// StartAuditPruneScheduler runs a periodic check (every minute) and
// enqueues a prune task when the configured cron schedule is due
func StartAuditPruneScheduler(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	// Run immediately on startup, then every minute
	checkAndEnqueuePrune(client, db, logger)

	for range ticker.C {
		checkAndEnqueuePrune(client, db, logger)
	}
}

func checkAndEnqueuePrune(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	// Load the singleton config
	var config models.Config
	err := db.First(&config).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Debug().Msg("No config found - skipping prune check")
			return
		}
		logger.Error().Err(err).Msg("Failed to query config for prune schedule")
		return
	}

	if config.AuditPruneSchedule == "" {
		logger.Debug().Msg("No audit prune schedule configured")
		return
	}

	if config.NextAuditPruneAt != nil && config.NextAuditPruneAt.After(time.Now()) {
		logger.Debug().
			Time("next_audit_prune_at", *config.NextAuditPruneAt).
			Msg("Audit prune not due yet")
		return
	}

	if _, err := client.Enqueue(tasks.NewPruneAuditTask(), asynq.Queue("low")); err != nil {
		logger.Error().Err(err).Msg("Failed to enqueue audit prune task")
		return
	}

	// Advance the schedule up front so the next tick does not enqueue a
	// duplicate while the prune is still running
	next := calculateNextPrune(config.AuditPruneSchedule, time.Now())
	if next != nil {
		if err := db.Model(&config).Update("next_audit_prune_at", next).Error; err != nil {
			logger.Error().Err(err).Msg("Failed to advance prune schedule")
		}
	}

	logger.Info().Str("schedule", config.AuditPruneSchedule).Msg("Audit prune enqueued")
}

// calculateNextPrune calculates the next prune time from a cron expression
func calculateNextPrune(cronExpr string, from time.Time) *time.Time {
	if cronExpr == "" {
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil
	}

	next := schedule.Next(from)
	return &next
}
