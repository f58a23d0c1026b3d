package vehiclesync

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/valisto/valisto_backend/config"
	"bitbucket.org/valisto/valisto_backend/models"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotMeta carries the metadata columns written alongside the inventario
// mapping on a full snapshot replace.
type SnapshotMeta struct {
	Plan          string
	Auto          bool
	Manual        bool
	InitializedBy string
	At            time.Time
}

// Store is the data access surface the sync workers run against. Production
// uses GormStore; tests substitute an in-memory implementation so the worker
// logic runs without a database.
type Store interface {
	GetTenant(ctx context.Context, tenantId string) (*models.Tenant, error)
	FindUserByTenant(ctx context.Context, tenantId string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListProductos(ctx context.Context, tenantId string) ([]models.Producto, error)

	GetSnapshot(ctx context.Context, tenantId string) (*models.VehicleInventory, error)
	// ReplaceSnapshot overwrites the tenant's full inventario mapping and
	// metadata, creating the row when absent.
	ReplaceSnapshot(ctx context.Context, tenantId string, inventario map[string]float64, meta SnapshotMeta) error
	// MergeSnapshotEntry upserts a single productId entry, leaving every
	// other key in the mapping untouched.
	MergeSnapshotEntry(ctx context.Context, tenantId string, productId string, stock float64, meta SnapshotMeta) error

	CreateSyncRun(ctx context.Context, run *models.SyncRun) error
	FinishSyncRun(ctx context.Context, run *models.SyncRun) error
	RecordSyncError(ctx context.Context, syncErr *models.SyncError) error
	RecentSyncRuns(ctx context.Context, tenantId string, limit int) ([]models.SyncRun, error)
}

// StoreFactory yields the store for one request. Handlers take the factory
// rather than a store so each request binds its own context.
type StoreFactory func(ctx context.Context) Store

// GormStore backs Store with the shared MySQL connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DefaultStoreFactory returns GormStore over the global connection.
func DefaultStoreFactory(ctx context.Context) Store {
	return NewGormStore(config.GetDB())
}

func (s *GormStore) GetTenant(ctx context.Context, tenantId string) (*models.Tenant, error) {
	return models.GetTenantById(ctx, tenantId)
}

func (s *GormStore) FindUserByTenant(ctx context.Context, tenantId string) (*models.User, error) {
	var result models.User
	err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantId).Order("id ASC").Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (s *GormStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var result models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (s *GormStore) ListProductos(ctx context.Context, tenantId string) ([]models.Producto, error) {
	return models.GetAllProductos(ctx, tenantId)
}

func (s *GormStore) GetSnapshot(ctx context.Context, tenantId string) (*models.VehicleInventory, error) {
	var result models.VehicleInventory
	err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantId).Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (s *GormStore) ReplaceSnapshot(ctx context.Context, tenantId string, inventario map[string]float64, meta SnapshotMeta) error {
	row := models.VehicleInventory{
		TenantId:                    tenantId,
		Inventario:                  models.EncodeInventario(inventario),
		Fecha:                       meta.At,
		Plan:                        meta.Plan,
		SincronizadoAutomaticamente: meta.Auto,
		SincronizadoManualmente:     meta.Manual,
		InicializadoPor:             meta.InitializedBy,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"inventario", "fecha", "plan",
			"sincronizado_automaticamente", "sincronizado_manualmente",
			"inicializado_por", "updated_at",
		}),
	}).Create(&row).Error
}

// MergeSnapshotEntry writes one key of the JSON mapping in place with
// JSON_SET so concurrent merges on different products never clobber each
// other. An absent row is created holding only this entry.
func (s *GormStore) MergeSnapshotEntry(ctx context.Context, tenantId string, productId string, stock float64, meta SnapshotMeta) error {
	db := s.db.WithContext(ctx)

	res := db.Model(&models.VehicleInventory{}).
		Where("tenant_id = ?", tenantId).
		Updates(map[string]interface{}{
			"inventario": gorm.Expr(
				"JSON_SET(COALESCE(inventario, JSON_OBJECT()), ?, ?)",
				"$.\""+productId+"\"", stock,
			),
			"fecha":                        meta.At,
			"plan":                         meta.Plan,
			"sincronizado_automaticamente": meta.Auto,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	row := models.VehicleInventory{
		TenantId:                    tenantId,
		Inventario:                  models.EncodeInventario(map[string]float64{productId: stock}),
		Fecha:                       meta.At,
		Plan:                        meta.Plan,
		SincronizadoAutomaticamente: meta.Auto,
	}
	err := db.Create(&row).Error
	if isDuplicateKeyError(err) {
		// Lost the insert race; retry the in-place merge once.
		return s.MergeSnapshotEntry(ctx, tenantId, productId, stock, meta)
	}
	return err
}

// isDuplicateKeyError matches both the gorm sentinel (TranslateError) and a
// raw MySQL 1062, so the race branch works regardless of driver translation.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func (s *GormStore) CreateSyncRun(ctx context.Context, run *models.SyncRun) error {
	return s.db.WithContext(ctx).Create(run).Error
}

func (s *GormStore) FinishSyncRun(ctx context.Context, run *models.SyncRun) error {
	return s.db.WithContext(ctx).Save(run).Error
}

func (s *GormStore) RecordSyncError(ctx context.Context, syncErr *models.SyncError) error {
	return s.db.WithContext(ctx).Create(syncErr).Error
}

func (s *GormStore) RecentSyncRuns(ctx context.Context, tenantId string, limit int) ([]models.SyncRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var runs []models.SyncRun
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantId).
		Order("id DESC").Limit(limit).
		Find(&runs).Error
	return runs, err
}
