package config

import (
	"os"
	"strings"
)

// AutoSyncEnabled gates the trigger-driven vehicle inventory sync globally.
// The per-tenant plan gate still applies on top of this.
//
// Set via env:
// - VALISTO_AUTO_SYNC=false to disable (default enabled)
func AutoSyncEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("VALISTO_AUTO_SYNC")))
	if v == "" {
		return true
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// CreateSyncTopicOnPublish makes the publisher create the sync topic when it
// does not exist yet. Meant for dev/emulator environments.
//
// Set via env:
// - VALISTO_SYNC_CREATE_TOPIC=true
func CreateSyncTopicOnPublish() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("VALISTO_SYNC_CREATE_TOPIC")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// PubSubPushEnabled gates the /pubsub/inventory push endpoint.
//
// Set via env:
// - ENABLE_INVENTORY_PUBSUB_PUSH_ENDPOINT=false to disable (default enabled)
func PubSubPushEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("ENABLE_INVENTORY_PUBSUB_PUSH_ENDPOINT")))
	if v == "" {
		return true
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
