package models

import (
	"log"

	"bitbucket.org/valisto/valisto_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Tenant{}, &User{},
		&Producto{}, &VehicleInventory{},
		&SyncRun{}, &SyncError{},
		&OutboxMessage{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
