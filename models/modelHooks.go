package models

import (
	"fmt"

	"bitbucket.org/valisto/valisto_backend/config"
	"gorm.io/gorm"
)

// AfterCreate enqueues the user-created event. This is the Go analog of the
// on-create trigger: when a tenant's user account appears, the sync worker
// seeds the vehicle inventory snapshot from current deposit stock.
func (u *User) AfterCreate(tx *gorm.DB) (err error) {
	if !config.AutoSyncEnabled() {
		return nil
	}
	// Never carry the password hash on the wire.
	sanitized := *u
	sanitized.Password = ""
	return SendToOutbox(tx, u.TenantId, fmt.Sprint(u.ID), ReferenceTypeUser, OutboxActionCreate, nil, &sanitized)
}
