package models

import "time"

const (
	SyncRunStatusQueued  = "queued"
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusFailed  = "failed"
)

const (
	SyncTriggeredManual = "manual"
	SyncTriggeredSystem = "system"
)

const (
	SyncSourceUserCreate    = "user_create"
	SyncSourceProductUpdate = "product_update"
	SyncSourceManual        = "manual"
)

// SyncRun is the bookkeeping row for one execution of a vehicle inventory
// sync (trigger-driven or on-demand).
type SyncRun struct {
	ID            uint       `gorm:"primary_key" json:"id"`
	TenantId      string     `gorm:"index;size:64;not null" json:"tenant_id"`
	Status        string     `gorm:"size:20;not null" json:"status"`
	TriggeredBy   string     `gorm:"size:20" json:"triggered_by"`
	Source        string     `gorm:"size:30" json:"source"`
	RecordsSynced int        `json:"records_synced"`
	ErrorCount    int        `json:"error_count"`
	StartedAt     *time.Time `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	DurationMs    int64      `json:"duration_ms"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type SyncError struct {
	ID         uint      `gorm:"primary_key" json:"id"`
	SyncRunId  uint      `gorm:"index;not null" json:"sync_run_id"`
	TenantId   string    `gorm:"index;size:64;not null" json:"tenant_id"`
	EntityType string    `gorm:"size:50" json:"entity_type"`
	EntityId   string    `gorm:"size:128" json:"entity_id"`
	Message    string    `gorm:"type:text" json:"message"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
