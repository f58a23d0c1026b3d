package vehiclesync

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/valisto/valisto_backend/models"
)

func TestSyncOnUserCreateSeedsFullSnapshot(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t1", "individual")
	store.addProducto("t1", "p1", 5)
	store.addProducto("t1", "p2", 0)

	user := &models.User{ID: 1, TenantId: "t1", Username: "laura", Plan: "individual"}
	if err := SyncOnUserCreate(context.Background(), store, user); err != nil {
		t.Fatalf("SyncOnUserCreate: %v", err)
	}

	inv := store.inventario("t1")
	if len(inv) != 2 || inv["p1"] != 5 || inv["p2"] != 0 {
		t.Fatalf("inventario = %v, want map[p1:5 p2:0]", inv)
	}
	snap, _ := store.GetSnapshot(context.Background(), "t1")
	if !snap.SincronizadoAutomaticamente || snap.SincronizadoManualmente {
		t.Fatalf("snapshot flags = auto:%v manual:%v, want auto only", snap.SincronizadoAutomaticamente, snap.SincronizadoManualmente)
	}
	if snap.InicializadoPor != "laura" {
		t.Fatalf("InicializadoPor = %q, want laura", snap.InicializadoPor)
	}
	if snap.Plan != "individual" {
		t.Fatalf("Plan = %q, want individual", snap.Plan)
	}
}

func TestSyncOnUserCreateSkipsNonIndividualPlan(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t2", "business")
	store.addProducto("t2", "p1", 3)

	user := &models.User{ID: 1, TenantId: "t2", Username: "ana", Plan: "business"}
	if err := SyncOnUserCreate(context.Background(), store, user); err != nil {
		t.Fatalf("SyncOnUserCreate: %v", err)
	}
	if store.replaceCalls != 0 || store.mergeCalls != 0 {
		t.Fatalf("writes = replace:%d merge:%d, want none", store.replaceCalls, store.mergeCalls)
	}
	if store.inventario("t2") != nil {
		t.Fatal("snapshot created for ineligible plan")
	}
}

func TestSyncOnUserCreateMissingPlanDefaultsEligible(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t1", "")
	store.addProducto("t1", "p1", 7)

	user := &models.User{ID: 1, TenantId: "t1", Username: "laura"}
	if err := SyncOnUserCreate(context.Background(), store, user); err != nil {
		t.Fatalf("SyncOnUserCreate: %v", err)
	}
	inv := store.inventario("t1")
	if inv["p1"] != 7 {
		t.Fatalf("inventario = %v, want p1:7", inv)
	}
	snap, _ := store.GetSnapshot(context.Background(), "t1")
	if snap.Plan != "individual" {
		t.Fatalf("Plan label = %q, want individual", snap.Plan)
	}
}

func TestSyncPlanGateTenantRecordWins(t *testing.T) {
	// When the two denormalized labels disagree (out-of-band mutation), the
	// tenant record is authoritative.
	store := newFakeStore()
	store.addTenant("t1", "business")
	store.addProducto("t1", "p1", 5)

	user := &models.User{ID: 1, TenantId: "t1", Username: "laura", Plan: "individual"}
	if err := SyncOnUserCreate(context.Background(), store, user); err != nil {
		t.Fatalf("SyncOnUserCreate: %v", err)
	}
	if store.replaceCalls != 0 {
		t.Fatal("tenant plan business must gate the sync even when the user copy says individual")
	}
}

func TestSyncOnUserCreateEmptyDepositWritesNothing(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t1", "individual")

	user := &models.User{ID: 1, TenantId: "t1", Username: "laura", Plan: "individual"}
	if err := SyncOnUserCreate(context.Background(), store, user); err != nil {
		t.Fatalf("SyncOnUserCreate: %v", err)
	}
	if store.replaceCalls != 0 {
		t.Fatalf("replaceCalls = %d, want 0", store.replaceCalls)
	}
	if store.inventario("t1") != nil {
		t.Fatal("snapshot row created for empty deposit")
	}
}

func TestSyncOnUserCreateIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t1", "individual")
	store.addProducto("t1", "p1", 5)

	user := &models.User{ID: 1, TenantId: "t1", Username: "laura", Plan: "individual"}
	for i := 0; i < 3; i++ {
		if err := SyncOnUserCreate(context.Background(), store, user); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	inv := store.inventario("t1")
	if len(inv) != 1 || inv["p1"] != 5 {
		t.Fatalf("inventario after repeats = %v, want map[p1:5]", inv)
	}
}

func TestSyncOnProductUpdateMergesSingleEntry(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t1", "individual")
	store.addProducto("t1", "p3", 8)
	// Existing snapshot with unrelated entries.
	if err := store.ReplaceSnapshot(context.Background(), "t1", map[string]float64{"p1": 5, "p2": 0, "p3": 5}, SnapshotMeta{At: fixedNow}); err != nil {
		t.Fatal(err)
	}
	store.replaceCalls = 0

	p := &models.Producto{ID: "p3", TenantId: "t1"}
	p.Stock = decimalFromFloat(8)
	if err := SyncOnProductUpdate(context.Background(), store, p); err != nil {
		t.Fatalf("SyncOnProductUpdate: %v", err)
	}

	inv := store.inventario("t1")
	want := map[string]float64{"p1": 5, "p2": 0, "p3": 8}
	for k, v := range want {
		if inv[k] != v {
			t.Fatalf("inventario[%s] = %v, want %v (full: %v)", k, inv[k], v, inv)
		}
	}
	if store.replaceCalls != 0 {
		t.Fatal("product update must merge a single key, not replace the snapshot")
	}
	if store.mergeCalls != 1 {
		t.Fatalf("mergeCalls = %d, want 1", store.mergeCalls)
	}
}

func TestSyncOnProductUpdateCreatesSnapshotWhenAbsent(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t1", "individual")

	p := &models.Producto{ID: "p1", TenantId: "t1"}
	p.Stock = decimalFromFloat(4)
	if err := SyncOnProductUpdate(context.Background(), store, p); err != nil {
		t.Fatalf("SyncOnProductUpdate: %v", err)
	}
	inv := store.inventario("t1")
	if len(inv) != 1 || inv["p1"] != 4 {
		t.Fatalf("inventario = %v, want map[p1:4]", inv)
	}
}

func TestSyncOnProductUpdateSkipsMissingTenant(t *testing.T) {
	store := newFakeStore()

	p := &models.Producto{ID: "p1", TenantId: "ghost"}
	if err := SyncOnProductUpdate(context.Background(), store, p); err != nil {
		t.Fatalf("SyncOnProductUpdate: %v", err)
	}
	if store.mergeCalls != 0 {
		t.Fatal("merge attempted for vanished tenant")
	}
}

func TestSyncOnProductUpdateSkipsIneligiblePlan(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t2", "enterprise")

	p := &models.Producto{ID: "p1", TenantId: "t2"}
	if err := SyncOnProductUpdate(context.Background(), store, p); err != nil {
		t.Fatalf("SyncOnProductUpdate: %v", err)
	}
	if store.mergeCalls != 0 {
		t.Fatal("merge attempted for ineligible plan")
	}
}

func TestSyncOnDemandFullResync(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t1", "individual")
	store.addUser("t1", "laura", "individual")
	store.addProducto("t1", "p1", 5)
	store.addProducto("t1", "p2", 0)
	// Stale snapshot with an entry for a deleted product.
	if err := store.ReplaceSnapshot(context.Background(), "t1", map[string]float64{"old": 99}, SnapshotMeta{At: fixedNow}); err != nil {
		t.Fatal(err)
	}

	resp, err := SyncOnDemand(context.Background(), store, "t1", "laura")
	if err != nil {
		t.Fatalf("SyncOnDemand: %v", err)
	}
	if !resp.Success {
		t.Fatal("Success = false, want true")
	}
	if resp.ProductosSincronizados != 2 {
		t.Fatalf("ProductosSincronizados = %d, want 2", resp.ProductosSincronizados)
	}
	if _, stale := resp.Inventario["old"]; stale {
		t.Fatal("stale entry survived full resync")
	}
	if resp.Inventario["p1"] != 5 || resp.Inventario["p2"] != 0 {
		t.Fatalf("Inventario = %v, want p1:5 p2:0", resp.Inventario)
	}
	snap, _ := store.GetSnapshot(context.Background(), "t1")
	if !snap.SincronizadoManualmente || !snap.SincronizadoAutomaticamente {
		t.Fatalf("snapshot flags = auto:%v manual:%v, want both", snap.SincronizadoAutomaticamente, snap.SincronizadoManualmente)
	}
}

func TestSyncOnDemandEmptyTenantId(t *testing.T) {
	store := newFakeStore()
	_, err := SyncOnDemand(context.Background(), store, "", "laura")
	if !errors.Is(err, ErrTenantIdRequired) {
		t.Fatalf("err = %v, want ErrTenantIdRequired", err)
	}
}

func TestSyncOnDemandNoUserForTenant(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t1", "individual")
	_, err := SyncOnDemand(context.Background(), store, "t1", "")
	if !errors.Is(err, ErrNoUserForTenant) {
		t.Fatalf("err = %v, want ErrNoUserForTenant", err)
	}
}

func TestSyncOnDemandIneligiblePlan(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t2", "business")
	store.addUser("t2", "ana", "business")
	_, err := SyncOnDemand(context.Background(), store, "t2", "ana")
	if !errors.Is(err, ErrPlanNotEligible) {
		t.Fatalf("err = %v, want ErrPlanNotEligible", err)
	}
	if store.replaceCalls != 0 {
		t.Fatal("snapshot written despite ineligible plan")
	}
}

func TestSyncOnDemandUnrecognizedPlanRejected(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t9", "premium")
	store.addUser("t9", "sam", "premium")
	store.addProducto("t9", "p1", 5)

	_, err := SyncOnDemand(context.Background(), store, "t9", "sam")
	if !errors.Is(err, ErrPlanNotEligible) {
		t.Fatalf("err = %v, want ErrPlanNotEligible for unrecognized plan", err)
	}
	if store.replaceCalls != 0 || store.mergeCalls != 0 {
		t.Fatalf("writes = replace:%d merge:%d, want none", store.replaceCalls, store.mergeCalls)
	}
}

func TestTriggersSkipUnrecognizedPlan(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t9", "premium")
	store.addProducto("t9", "p1", 5)

	user := &models.User{ID: 1, TenantId: "t9", Username: "sam", Plan: "premium"}
	if err := SyncOnUserCreate(context.Background(), store, user); err != nil {
		t.Fatalf("SyncOnUserCreate: %v", err)
	}
	p := &models.Producto{ID: "p1", TenantId: "t9", Stock: decimalFromFloat(5)}
	if err := SyncOnProductUpdate(context.Background(), store, p); err != nil {
		t.Fatalf("SyncOnProductUpdate: %v", err)
	}
	if store.replaceCalls != 0 || store.mergeCalls != 0 {
		t.Fatalf("writes = replace:%d merge:%d, want none", store.replaceCalls, store.mergeCalls)
	}
	if store.inventario("t9") != nil {
		t.Fatal("snapshot created for unrecognized plan")
	}
}

func TestSyncOnDemandEmptyDepositSucceedsWithoutWrite(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t1", "individual")
	store.addUser("t1", "laura", "individual")

	resp, err := SyncOnDemand(context.Background(), store, "t1", "laura")
	if err != nil {
		t.Fatalf("SyncOnDemand: %v", err)
	}
	if !resp.Success || resp.ProductosSincronizados != 0 {
		t.Fatalf("resp = %+v, want success with 0 products", resp)
	}
	if len(resp.Inventario) != 0 {
		t.Fatalf("Inventario = %v, want empty", resp.Inventario)
	}
	if store.replaceCalls != 0 {
		t.Fatal("snapshot written for empty deposit")
	}
}

func TestSyncOnDemandIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t1", "individual")
	store.addUser("t1", "laura", "individual")
	store.addProducto("t1", "p1", 5)

	first, err := SyncOnDemand(context.Background(), store, "t1", "laura")
	if err != nil {
		t.Fatal(err)
	}
	second, err := SyncOnDemand(context.Background(), store, "t1", "laura")
	if err != nil {
		t.Fatal(err)
	}
	if first.ProductosSincronizados != second.ProductosSincronizados {
		t.Fatalf("counts differ between runs: %d vs %d", first.ProductosSincronizados, second.ProductosSincronizados)
	}
	inv := store.inventario("t1")
	if len(inv) != 1 || inv["p1"] != 5 {
		t.Fatalf("inventario after repeats = %v, want map[p1:5]", inv)
	}
}

func TestSyncOnDemandPropagatesStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t1", "individual")
	store.addUser("t1", "laura", "individual")
	store.addProducto("t1", "p1", 5)
	store.errReplace = errors.New("disk on fire")

	_, err := SyncOnDemand(context.Background(), store, "t1", "laura")
	if err == nil {
		t.Fatal("expected error from failing store")
	}
	if errors.Is(err, ErrTenantIdRequired) || errors.Is(err, ErrNoUserForTenant) || errors.Is(err, ErrPlanNotEligible) {
		t.Fatalf("store failure mapped onto sentinel error: %v", err)
	}
}

func TestSyncRunBookkeeping(t *testing.T) {
	store := newFakeStore()
	store.addTenant("t1", "individual")
	store.addUser("t1", "laura", "individual")
	store.addProducto("t1", "p1", 5)

	if _, err := SyncOnDemand(context.Background(), store, "t1", "laura"); err != nil {
		t.Fatal(err)
	}
	runs, err := store.RecentSyncRuns(context.Background(), "t1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	run := runs[0]
	if run.Status != models.SyncRunStatusSuccess {
		t.Fatalf("Status = %q, want success", run.Status)
	}
	if run.Source != models.SyncSourceManual || run.TriggeredBy != models.SyncTriggeredManual {
		t.Fatalf("Source/TriggeredBy = %q/%q, want manual/manual", run.Source, run.TriggeredBy)
	}
	if run.RecordsSynced != 1 {
		t.Fatalf("RecordsSynced = %d, want 1", run.RecordsSynced)
	}
}
