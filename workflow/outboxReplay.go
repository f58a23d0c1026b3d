package workflow

import (
	"context"
	"time"

	"bitbucket.org/valisto/valisto_backend/models"
	"gorm.io/gorm"
)

// ReplayOutbox requeues FAILED and DEAD outbox rows for another publish
// attempt, clearing the attempt counter. TenantId narrows the replay to one
// tenant; empty replays everything.
func ReplayOutbox(ctx context.Context, db *gorm.DB, tenantId string) (int64, error) {
	q := db.WithContext(ctx).
		Model(&models.OutboxMessage{}).
		Where("publish_status IN ?", []string{
			models.OutboxPublishStatusFailed,
			models.OutboxPublishStatusDead,
		})
	if tenantId != "" {
		q = q.Where("tenant_id = ?", tenantId)
	}
	now := time.Now().UTC()
	res := q.Updates(map[string]interface{}{
		"publish_status":     models.OutboxPublishStatusPending,
		"publish_attempts":   0,
		"next_attempt_at":    &now,
		"locked_at":          nil,
		"locked_by":          nil,
		"last_publish_error": nil,
	})
	return res.RowsAffected, res.Error
}
