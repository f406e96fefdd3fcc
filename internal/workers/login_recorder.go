package workers

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/shopdesk-dev/shopdesk/internal/models"
	"github.com/shopdesk-dev/shopdesk/internal/tasks"
)

// HandleRecordLogin stamps the admin's last login and writes the audit
// row. The login flow itself never waits on this: a lost event costs an
// audit entry, not a session.
func HandleRecordLogin(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseRecordLoginPayload(t)
	if err != nil {
		return err
	}

	result := db.WithContext(ctx).Model(&models.AdminUser{}).
		Where("id = ?", payload.AdminID).
		Update("last_login_at", payload.LoginAt)
	if result.Error != nil {
		logger.Error().Err(result.Error).Str("admin_id", payload.AdminID).Msg("Failed to stamp last login")
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Admin deleted between login and task execution; nothing to record
		logger.Warn().Str("admin_id", payload.AdminID).Msg("Login recorded for unknown admin, skipping")
		return nil
	}

	audit := &models.LoginAudit{
		AdminID: payload.AdminID,
		Email:   payload.Email,
		LoginAt: payload.LoginAt,
	}
	if err := db.WithContext(ctx).Create(audit).Error; err != nil {
		logger.Error().Err(err).Str("admin_id", payload.AdminID).Msg("Failed to write login audit")
		return err
	}

	logger.Debug().
		Str("admin_id", payload.AdminID).
		Str("email", payload.Email).
		Msg("Login recorded")
	return nil
}
