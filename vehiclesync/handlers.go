package vehiclesync

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"bitbucket.org/valisto/valisto_backend/config"
	"bitbucket.org/valisto/valisto_backend/models"
	"bitbucket.org/valisto/valisto_backend/utils"
	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
)

// SyncHandler serves the on-demand full resync. The caller must be logged in
// and may only sync their own tenant unless they hold the admin role.
func SyncHandler(factory StoreFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		store := factory(ctx)

		var req SyncRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.TenantId == "" {
			req.TenantId = c.Query("tenantId")
		}

		caller, ok := authorize(c, store, req.TenantId)
		if !ok {
			return
		}
		ctx = c.Request.Context()

		// Serialize resyncs per tenant; a second concurrent request just
		// proceeds without the lock rather than failing.
		if locker := config.GetRedisLock(); locker != nil {
			lock, err := locker.Obtain(ctx, "VehicleSync:"+req.TenantId, 30*time.Second, nil)
			if err == nil {
				defer lock.Release(ctx)
			} else if !errors.Is(err, redislock.ErrNotObtained) {
				config.LogError(config.GetLogger(), moduleName, "SyncHandler", "ObtainLock", req.TenantId, err)
			}
		}

		resp, err := SyncOnDemand(ctx, store, req.TenantId, caller.Username)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, ErrTenantIdRequired):
				status = http.StatusBadRequest
			case errors.Is(err, ErrNoUserForTenant):
				status = http.StatusNotFound
			case errors.Is(err, ErrPlanNotEligible):
				status = http.StatusForbidden
			default:
				config.LogError(config.GetLogger(), moduleName, "SyncHandler", "SyncOnDemand", req.TenantId, err)
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// StatusHandler returns the tenant's current snapshot, or exists=false when
// no sync has run yet.
func StatusHandler(factory StoreFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		store := factory(ctx)

		tenantId := c.Query("tenantId")
		if _, ok := authorize(c, store, tenantId); !ok {
			return
		}
		ctx = c.Request.Context()

		snapshot, err := store.GetSnapshot(ctx, tenantId)
		if err != nil {
			config.LogError(config.GetLogger(), moduleName, "StatusHandler", "GetSnapshot", tenantId, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inventory status"})
			return
		}
		if snapshot == nil {
			c.JSON(http.StatusOK, StatusResponse{TenantId: tenantId, Exists: false})
			return
		}

		inventario := models.DecodeInventario(snapshot.Inventario)
		c.JSON(http.StatusOK, StatusResponse{
			TenantId:                    tenantId,
			Exists:                      true,
			Plan:                        snapshot.Plan,
			Fecha:                       snapshot.Fecha.UTC().Format(time.RFC3339),
			ProductCount:                len(inventario),
			Inventario:                  inventario,
			SincronizadoAutomaticamente: snapshot.SincronizadoAutomaticamente,
			SincronizadoManualmente:     snapshot.SincronizadoManualmente,
			InicializadoPor:             snapshot.InicializadoPor,
		})
	}
}

// HistoryHandler lists recent sync runs for a tenant, newest first.
func HistoryHandler(factory StoreFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		store := factory(ctx)

		tenantId := c.Query("tenantId")
		if _, ok := authorize(c, store, tenantId); !ok {
			return
		}
		ctx = c.Request.Context()

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		runs, err := store.RecentSyncRuns(ctx, tenantId, limit)
		if err != nil {
			config.LogError(config.GetLogger(), moduleName, "HistoryHandler", "RecentSyncRuns", tenantId, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sync history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tenantId": tenantId, "runs": runs})
	}
}

// authorize resolves the session user and checks tenant access. On failure
// it writes the error response and returns ok=false.
func authorize(c *gin.Context, store Store, tenantId string) (*models.User, bool) {
	ctx := c.Request.Context()

	if tenantId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrTenantIdRequired.Error()})
		return nil, false
	}

	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}
	caller, err := store.FindUserByUsername(ctx, username)
	if err != nil {
		config.LogError(config.GetLogger(), moduleName, "authorize", "FindUserByUsername", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve session user"})
		return nil, false
	}
	if caller == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}
	if caller.TenantId != tenantId && caller.Role != models.UserRoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed for this tenant"})
		return nil, false
	}

	// Scope the rest of the request to the authorized tenant so the tenant
	// guard applies to every query (admins may act on a foreign tenant).
	c.Request = c.Request.WithContext(utils.SetTenantIdInContext(ctx, tenantId))
	return caller, true
}
