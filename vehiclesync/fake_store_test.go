package vehiclesync

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"bitbucket.org/valisto/valisto_backend/models"
	"bitbucket.org/valisto/valisto_backend/utils"
	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory Store used to exercise the sync workers without
// a database.
type fakeStore struct {
	mu sync.Mutex

	tenants   map[string]*models.Tenant
	users     []models.User
	productos []models.Producto
	snapshots map[string]*models.VehicleInventory
	runs      []models.SyncRun
	syncErrs  []models.SyncError

	// Per-method error injection.
	errGetTenant     error
	errListProductos error
	errReplace       error
	errMerge         error

	replaceCalls int
	mergeCalls   int

	// Tenant id observed in the write context, for scope assertions.
	ctxTenantIdOnWrite string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tenants:   map[string]*models.Tenant{},
		snapshots: map[string]*models.VehicleInventory{},
	}
}

func (f *fakeStore) addTenant(id, plan string) {
	f.tenants[id] = &models.Tenant{ID: id, Name: "tenant " + id, Plan: plan}
}

func (f *fakeStore) addUser(tenantId, username, plan string) {
	f.users = append(f.users, models.User{
		ID: len(f.users) + 1, TenantId: tenantId, Username: username, Plan: plan,
	})
}

func (f *fakeStore) addProducto(tenantId, id string, stock float64) {
	f.productos = append(f.productos, models.Producto{
		ID: id, TenantId: tenantId, Name: "producto " + id,
		Stock: decimal.NewFromFloat(stock),
	})
}

func (f *fakeStore) GetTenant(ctx context.Context, tenantId string) (*models.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errGetTenant != nil {
		return nil, f.errGetTenant
	}
	return f.tenants[tenantId], nil
}

func (f *fakeStore) FindUserByTenant(ctx context.Context, tenantId string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].TenantId == tenantId {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].Username == username {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListProductos(ctx context.Context, tenantId string) ([]models.Producto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errListProductos != nil {
		return nil, f.errListProductos
	}
	var out []models.Producto
	for _, p := range f.productos {
		if p.TenantId == tenantId {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) GetSnapshot(ctx context.Context, tenantId string) (*models.VehicleInventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.snapshots[tenantId]
	if !ok {
		return nil, nil
	}
	copied := *snap
	return &copied, nil
}

func (f *fakeStore) ReplaceSnapshot(ctx context.Context, tenantId string, inventario map[string]float64, meta SnapshotMeta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errReplace != nil {
		return f.errReplace
	}
	f.replaceCalls++
	f.ctxTenantIdOnWrite, _ = utils.GetTenantIdFromContext(ctx)
	f.snapshots[tenantId] = &models.VehicleInventory{
		TenantId:                    tenantId,
		Inventario:                  models.EncodeInventario(inventario),
		Fecha:                       meta.At,
		Plan:                        meta.Plan,
		SincronizadoAutomaticamente: meta.Auto,
		SincronizadoManualmente:     meta.Manual,
		InicializadoPor:             meta.InitializedBy,
	}
	return nil
}

func (f *fakeStore) MergeSnapshotEntry(ctx context.Context, tenantId string, productId string, stock float64, meta SnapshotMeta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errMerge != nil {
		return f.errMerge
	}
	f.mergeCalls++
	f.ctxTenantIdOnWrite, _ = utils.GetTenantIdFromContext(ctx)
	snap, ok := f.snapshots[tenantId]
	if !ok {
		snap = &models.VehicleInventory{TenantId: tenantId}
		f.snapshots[tenantId] = snap
	}
	inv := models.DecodeInventario(snap.Inventario)
	inv[productId] = stock
	snap.Inventario = models.EncodeInventario(inv)
	snap.Fecha = meta.At
	snap.Plan = meta.Plan
	snap.SincronizadoAutomaticamente = meta.Auto
	return nil
}

func (f *fakeStore) CreateSyncRun(ctx context.Context, run *models.SyncRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run.ID = uint(len(f.runs) + 1)
	f.runs = append(f.runs, *run)
	return nil
}

func (f *fakeStore) FinishSyncRun(ctx context.Context, run *models.SyncRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.runs {
		if f.runs[i].ID == run.ID {
			f.runs[i] = *run
			return nil
		}
	}
	f.runs = append(f.runs, *run)
	return nil
}

func (f *fakeStore) RecordSyncError(ctx context.Context, syncErr *models.SyncError) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	syncErr.ID = uint(len(f.syncErrs) + 1)
	f.syncErrs = append(f.syncErrs, *syncErr)
	return nil
}

func (f *fakeStore) RecentSyncRuns(ctx context.Context, tenantId string, limit int) ([]models.SyncRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SyncRun
	for i := len(f.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.runs[i].TenantId == tenantId {
			out = append(out, f.runs[i])
		}
	}
	return out, nil
}

func (f *fakeStore) inventario(tenantId string) map[string]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.snapshots[tenantId]
	if !ok {
		return nil
	}
	return models.DecodeInventario(snap.Inventario)
}

var fixedNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

var errTest = errors.New("boom")

func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
