package vehiclesync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/valisto/valisto_backend/config"
	"bitbucket.org/valisto/valisto_backend/models"
)

// Sentinel errors returned by SyncOnDemand. Handlers map them onto HTTP
// status codes; callers inside the service match them with errors.Is.
var (
	ErrTenantIdRequired = errors.New("tenantId is required")
	ErrNoUserForTenant  = errors.New("no user found for tenant")
	ErrPlanNotEligible  = errors.New("sync only available for individual plan")
)

const moduleName = "vehiclesync"

// SyncOnUserCreate seeds the tenant's vehicle inventory snapshot when its
// first user account is created. Plans other than individual are skipped
// silently, as is a tenant with an empty deposit: no snapshot row appears
// until there is something to mirror.
func SyncOnUserCreate(ctx context.Context, store Store, user *models.User) error {
	if user == nil || user.TenantId == "" {
		return nil
	}
	plan := effectivePlan(ctx, store, user.TenantId, user.Plan)
	if !plan.EligibleForAutoSync() {
		return nil
	}

	productos, err := store.ListProductos(ctx, user.TenantId)
	if err != nil {
		return fmt.Errorf("list productos for tenant %s: %w", user.TenantId, err)
	}
	if len(productos) == 0 {
		return nil
	}

	inventario := buildInventario(productos)
	meta := SnapshotMeta{
		Plan:          plan.Label(),
		Auto:          true,
		Manual:        false,
		InitializedBy: user.Username,
		At:            time.Now().UTC(),
	}
	if err := store.ReplaceSnapshot(ctx, user.TenantId, inventario, meta); err != nil {
		return fmt.Errorf("seed snapshot for tenant %s: %w", user.TenantId, err)
	}
	recordRun(ctx, store, user.TenantId, models.SyncSourceUserCreate, len(inventario), nil)
	return nil
}

// SyncOnProductUpdate mirrors one product's stock into the snapshot. Only
// the updated product's entry changes; concurrent updates to other products
// never interfere. A vanished tenant or an ineligible plan is a no-op.
func SyncOnProductUpdate(ctx context.Context, store Store, producto *models.Producto) error {
	if producto == nil || producto.TenantId == "" {
		return nil
	}
	tenant, err := store.GetTenant(ctx, producto.TenantId)
	if err != nil {
		return fmt.Errorf("get tenant %s: %w", producto.TenantId, err)
	}
	if tenant == nil {
		return nil
	}
	plan := models.ParsePlan(tenant.Plan)
	if !plan.EligibleForAutoSync() {
		return nil
	}

	meta := SnapshotMeta{
		Plan: plan.Label(),
		Auto: true,
		At:   time.Now().UTC(),
	}
	if err := store.MergeSnapshotEntry(ctx, producto.TenantId, producto.ID, producto.StockCount(), meta); err != nil {
		return fmt.Errorf("merge snapshot entry %s for tenant %s: %w", producto.ID, producto.TenantId, err)
	}
	recordRun(ctx, store, producto.TenantId, models.SyncSourceProductUpdate, 1, nil)
	return nil
}

// SyncOnDemand rebuilds the tenant's full snapshot from deposit stock. Unlike
// the trigger paths it reports problems to the caller: missing tenant id,
// tenant without users, and ineligible plan each map onto a sentinel error.
// An empty deposit succeeds with zero products and writes nothing.
func SyncOnDemand(ctx context.Context, store Store, tenantId string, requestedBy string) (*SyncResponse, error) {
	if tenantId == "" {
		return nil, ErrTenantIdRequired
	}
	user, err := store.FindUserByTenant(ctx, tenantId)
	if err != nil {
		return nil, fmt.Errorf("find user for tenant %s: %w", tenantId, err)
	}
	if user == nil {
		return nil, ErrNoUserForTenant
	}
	plan := effectivePlan(ctx, store, tenantId, user.Plan)
	if !plan.EligibleForAutoSync() {
		return nil, ErrPlanNotEligible
	}

	productos, err := store.ListProductos(ctx, tenantId)
	if err != nil {
		return nil, fmt.Errorf("list productos for tenant %s: %w", tenantId, err)
	}
	if len(productos) == 0 {
		return &SyncResponse{
			Success:                true,
			Message:                "No hay productos en el depósito",
			ProductosSincronizados: 0,
			Inventario:             map[string]float64{},
		}, nil
	}

	inventario := buildInventario(productos)
	initializedBy := requestedBy
	if initializedBy == "" {
		initializedBy = user.Username
	}
	meta := SnapshotMeta{
		Plan:          plan.Label(),
		Auto:          true,
		Manual:        true,
		InitializedBy: initializedBy,
		At:            time.Now().UTC(),
	}
	if err := store.ReplaceSnapshot(ctx, tenantId, inventario, meta); err != nil {
		recordRun(ctx, store, tenantId, models.SyncSourceManual, 0, err)
		return nil, fmt.Errorf("replace snapshot for tenant %s: %w", tenantId, err)
	}
	recordRun(ctx, store, tenantId, models.SyncSourceManual, len(inventario), nil)

	return &SyncResponse{
		Success:                true,
		Message:                fmt.Sprintf("Inventario sincronizado: %d productos", len(inventario)),
		ProductosSincronizados: len(inventario),
		Inventario:             inventario,
	}, nil
}

func buildInventario(productos []models.Producto) map[string]float64 {
	inventario := make(map[string]float64, len(productos))
	for _, p := range productos {
		inventario[p.ID] = p.StockCount()
	}
	return inventario
}

// effectivePlan prefers the tenant record's plan and falls back to the plan
// denormalized onto the user when the tenant row is unavailable. The create
// paths keep the two labels in sync, so this only diverges from the user's
// copy for rows mutated out-of-band; the tenant record wins there.
func effectivePlan(ctx context.Context, store Store, tenantId string, userPlan string) models.Plan {
	tenant, err := store.GetTenant(ctx, tenantId)
	if err != nil {
		config.LogError(config.GetLogger(), moduleName, "effectivePlan", "GetTenant", tenantId, err)
		return models.ParsePlan(userPlan)
	}
	if tenant == nil {
		return models.ParsePlan(userPlan)
	}
	return models.ParsePlan(tenant.Plan)
}

// recordRun writes sync bookkeeping best-effort; failures here must never
// fail the sync itself.
func recordRun(ctx context.Context, store Store, tenantId string, source string, records int, runErr error) {
	now := time.Now().UTC()
	triggeredBy := models.SyncTriggeredSystem
	if source == models.SyncSourceManual {
		triggeredBy = models.SyncTriggeredManual
	}
	run := models.SyncRun{
		TenantId:      tenantId,
		Status:        models.SyncRunStatusRunning,
		TriggeredBy:   triggeredBy,
		Source:        source,
		RecordsSynced: records,
		StartedAt:     &now,
	}
	if err := store.CreateSyncRun(ctx, &run); err != nil {
		config.LogError(config.GetLogger(), moduleName, "recordRun", "CreateSyncRun", tenantId, err)
		return
	}
	finished := time.Now().UTC()
	run.FinishedAt = &finished
	run.DurationMs = finished.Sub(now).Milliseconds()
	if runErr != nil {
		run.Status = models.SyncRunStatusFailed
		run.ErrorCount = 1
		syncErr := models.SyncError{
			SyncRunId:  run.ID,
			TenantId:   tenantId,
			EntityType: "vehicle_inventory",
			EntityId:   tenantId,
			Message:    runErr.Error(),
		}
		if err := store.RecordSyncError(ctx, &syncErr); err != nil {
			config.LogError(config.GetLogger(), moduleName, "recordRun", "RecordSyncError", tenantId, err)
		}
	} else {
		run.Status = models.SyncRunStatusSuccess
	}
	if err := store.FinishSyncRun(ctx, &run); err != nil {
		config.LogError(config.GetLogger(), moduleName, "recordRun", "FinishSyncRun", tenantId, err)
	}
}
