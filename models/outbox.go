package models

import (
	"context"
	"encoding/json"
	"time"

	"bitbucket.org/valisto/valisto_backend/config"
	"bitbucket.org/valisto/valisto_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)

// OutboxMessage is the transactional outbox record for inventory change
// events. Rows are written in the same transaction as the mutation and
// published after commit by the dispatcher.
type OutboxMessage struct {
	ID            int          `gorm:"primary_key;index:idx_outbox_dispatch,priority:3" json:"id"`
	TenantId      string       `gorm:"size:64;not null;index" json:"tenant_id"`
	EventDateTime time.Time    `gorm:"index;not null" json:"event_date_time"`
	ReferenceId   string       `gorm:"size:64" json:"reference_id"`
	ReferenceType string       `gorm:"size:20" json:"reference_type"`
	Action        OutboxAction `gorm:"type:enum('C','U','D')" json:"action"`
	OldObj        []byte       `gorm:"type:blob" json:"old_obj"`
	NewObj        []byte       `gorm:"type:blob" json:"new_obj"`
	// Publish metadata (publish happens after commit via dispatcher).
	PublishStatus    string     `gorm:"size:20;index;not null;default:'PENDING';index:idx_outbox_dispatch,priority:1" json:"publish_status"` // PENDING|PROCESSING|SENT|FAILED|DEAD
	PublishedAt      *time.Time `gorm:"index" json:"published_at"`
	PubSubMessageId  *string    `gorm:"size:255" json:"pubsub_message_id"`
	PublishAttempts  int        `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt    *time.Time `gorm:"index;index:idx_outbox_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt         *time.Time `gorm:"index" json:"locked_at"`
	LockedBy         *string    `gorm:"size:100" json:"locked_by"`
	LastPublishError *string    `gorm:"type:text" json:"last_publish_error"`
	CorrelationId    string     `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// SendToOutbox enqueues a change event inside the caller's transaction so the
// event is durable iff the mutation commits.
func SendToOutbox(tx *gorm.DB, tenantId string, refId string, refType string, action OutboxAction, oldObj interface{}, newObj interface{}) error {
	var (
		oldInByte []byte
		newInByte []byte
		err       error
	)
	if oldObj != nil {
		oldInByte, err = json.Marshal(oldObj)
		if err != nil {
			return err
		}
	}
	if newObj != nil {
		newInByte, err = json.Marshal(newObj)
		if err != nil {
			return err
		}
	}

	record := OutboxMessage{
		TenantId:      tenantId,
		EventDateTime: time.Now().UTC(),
		ReferenceId:   refId,
		ReferenceType: refType,
		Action:        action,
		OldObj:        oldInByte,
		NewObj:        newInByte,
		PublishStatus: OutboxPublishStatusPending,
		CorrelationId: correlationIdFromContextOrNew(tx.Statement.Context),
	}
	return tx.Create(&record).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

func ConvertToPubSubMessage(record OutboxMessage) config.PubSubMessage {
	return config.PubSubMessage{
		ID:            record.ID,
		TenantId:      record.TenantId,
		EventDateTime: record.EventDateTime,
		ReferenceId:   record.ReferenceId,
		ReferenceType: record.ReferenceType,
		Action:        string(record.Action),
		OldObj:        record.OldObj,
		NewObj:        record.NewObj,
		CorrelationId: record.CorrelationId,
	}
}
