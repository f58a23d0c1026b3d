package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/valisto/valisto_backend/config"
	"bitbucket.org/valisto/valisto_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Producto is a deposit (warehouse) stock record. Stock is the only field the
// vehicle inventory sync reads; everything else is regular catalog data.
type Producto struct {
	ID        string          `gorm:"primary_key;size:64" json:"id"`
	TenantId  string          `gorm:"index;size:64;not null" json:"tenant_id"`
	Name      string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Sku       string          `gorm:"size:100" json:"sku"`
	Stock     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"stock"`
	Price     decimal.Decimal `gorm:"type:decimal(20,4)" json:"price"`
	Unit      string          `gorm:"size:50" json:"unit"`
	IsActive  *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProducto struct {
	TenantId string          `json:"tenant_id" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Sku      string          `json:"sku"`
	Stock    decimal.Decimal `json:"stock"`
	Price    decimal.Decimal `json:"price"`
	Unit     string          `json:"unit"`
}

type UpdateProductoInput struct {
	Name  *string          `json:"name"`
	Sku   *string          `json:"sku"`
	Stock *decimal.Decimal `json:"stock"`
	Price *decimal.Decimal `json:"price"`
	Unit  *string          `json:"unit"`
}

func (p *Producto) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// StockCount is the numeric stock value mirrored into the vehicle snapshot.
// Unset stock reads as zero.
func (p *Producto) StockCount() float64 {
	f, _ := p.Stock.Float64()
	return f
}

func CreateProducto(ctx context.Context, input *NewProducto) (*Producto, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	producto := Producto{
		TenantId: input.TenantId,
		Name:     strings.TrimSpace(input.Name),
		Sku:      input.Sku,
		Stock:    input.Stock,
		Price:    input.Price,
		Unit:     input.Unit,
		IsActive: boolPtr(true),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&producto).Error; err != nil {
		return nil, err
	}
	return &producto, nil
}

func GetProducto(ctx context.Context, tenantId string, id string) (*Producto, error) {
	db := config.GetDB()
	var result Producto
	err := db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantId).Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &result, nil
}

func GetAllProductos(ctx context.Context, tenantId string) ([]Producto, error) {
	db := config.GetDB()
	var results []Producto
	if err := db.WithContext(ctx).Where("tenant_id = ?", tenantId).Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateProducto applies a partial update and enqueues the producto-updated
// outbox event in the same transaction, carrying both document images.
func UpdateProducto(ctx context.Context, tenantId string, id string, input *UpdateProductoInput) (*Producto, error) {
	db := config.GetDB()

	var updated Producto
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old Producto
		if err := tx.Where("id = ? AND tenant_id = ?", id, tenantId).Take(&old).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}

		updates := map[string]interface{}{}
		if input.Name != nil {
			updates["name"] = strings.TrimSpace(*input.Name)
		}
		if input.Sku != nil {
			updates["sku"] = *input.Sku
		}
		if input.Stock != nil {
			updates["stock"] = *input.Stock
		}
		if input.Price != nil {
			updates["price"] = *input.Price
		}
		if input.Unit != nil {
			updates["unit"] = *input.Unit
		}
		if len(updates) == 0 {
			updated = old
			return nil
		}

		if err := tx.Model(&Producto{}).Where("id = ? AND tenant_id = ?", id, tenantId).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ? AND tenant_id = ?", id, tenantId).Take(&updated).Error; err != nil {
			return err
		}

		return SendToOutbox(tx, tenantId, id, ReferenceTypeProducto, OutboxActionUpdate, &old, &updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
