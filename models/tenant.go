package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/valisto/valisto_backend/config"
	"bitbucket.org/valisto/valisto_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tenant struct {
	ID        string    `gorm:"primary_key;size:64" json:"id"`
	Name      string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Address   string    `gorm:"type:text" json:"address"`
	Plan      string    `gorm:"size:20" json:"plan"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTenant struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Plan    string `json:"plan"`
}

/*
caches:
	Tenant:$tenantId
*/

func (tenant *Tenant) StoreRedis() error {
	return config.SetRedisObject("Tenant:"+tenant.ID, tenant, 0)
}

func (tenant *Tenant) RemoveRedis() error {
	return config.RemoveRedisKey("Tenant:" + tenant.ID)
}

func (tenant *Tenant) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(tenant.ID) == "" {
		tenant.ID = uuid.NewString()
	}
	return nil
}

// GetTenantById resolves a tenant via the redis cache first, then the DB.
// Returns (nil, nil) when the tenant does not exist.
func GetTenantById(ctx context.Context, tenantId string) (*Tenant, error) {
	if strings.TrimSpace(tenantId) == "" {
		return nil, errors.New("tenant id is required")
	}

	var tenant Tenant
	exists, err := config.GetRedisObject("Tenant:"+tenantId, &tenant)
	if err != nil {
		return nil, err
	}
	if exists {
		return &tenant, nil
	}

	db := config.GetDB()
	if db == nil {
		return nil, errors.New("db is nil")
	}
	err = db.WithContext(ctx).Model(&Tenant{}).Where("id = ?", tenantId).Take(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	_ = tenant.StoreRedis()
	return &tenant, nil
}

func CreateTenant(ctx context.Context, input *NewTenant) (*Tenant, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email address")
	}

	plan := ParsePlan(input.Plan)
	tenant := Tenant{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.ToLower(input.Email),
		Phone:    input.Phone,
		Address:  input.Address,
		Plan:     plan.Label(),
		IsActive: boolPtr(true),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func boolPtr(b bool) *bool { return &b }
