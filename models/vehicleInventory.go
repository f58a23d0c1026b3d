package models

import (
	"encoding/json"
	"time"
)

// VehicleInventory is the per-tenant snapshot mirroring deposit stock for
// field/delivery-vehicle use. One row per tenant; Inventario holds the
// productId -> stock mapping as a JSON object. The row is owned exclusively
// by the sync workers: nothing else writes it, and it is never deleted.
//
// The snapshot is a best-effort mirror as of the last successful sync. No
// transaction spans the deposit read and the snapshot write, so it can go
// stale; it self-heals on the next product update or manual sync.
type VehicleInventory struct {
	ID       int    `gorm:"primary_key" json:"id"`
	TenantId string `gorm:"uniqueIndex;size:64;not null" json:"tenant_id"`
	// Inventario maps product id to stock count.
	Inventario []byte    `gorm:"type:json" json:"inventario"`
	Fecha      time.Time `json:"fecha"`
	Plan       string    `gorm:"size:20" json:"plan"`
	// SincronizadoAutomaticamente marks writes performed by the sync workers.
	SincronizadoAutomaticamente bool `gorm:"not null;default:false" json:"sincronizado_automaticamente"`
	// SincronizadoManualmente additionally marks on-demand (callable) syncs.
	SincronizadoManualmente bool `gorm:"not null;default:false" json:"sincronizado_manualmente"`
	// InicializadoPor records the user whose creation seeded the snapshot.
	InicializadoPor string    `gorm:"size:100" json:"inicializado_por"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DecodeInventario parses the stored JSON mapping. Malformed or absent data
// decodes to an empty mapping; non-numeric stock values read as zero.
func DecodeInventario(raw []byte) map[string]float64 {
	if len(raw) == 0 {
		return map[string]float64{}
	}
	var loose map[string]interface{}
	if err := json.Unmarshal(raw, &loose); err != nil {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(loose))
	for k, v := range loose {
		if n, ok := v.(float64); ok {
			out[k] = n
		} else {
			out[k] = 0
		}
	}
	return out
}

func EncodeInventario(inv map[string]float64) []byte {
	if inv == nil {
		inv = map[string]float64{}
	}
	b, _ := json.Marshal(inv)
	return b
}
