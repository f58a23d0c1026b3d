package vehiclesync

import (
	"context"
	"encoding/json"
	"net/http"

	"bitbucket.org/valisto/valisto_backend/config"
	"bitbucket.org/valisto/valisto_backend/models"
	"bitbucket.org/valisto/valisto_backend/utils"
	"github.com/gin-gonic/gin"
)

// PushHandler consumes inventory change events delivered by the Pub/Sub push
// subscription. It always acknowledges: a failed sync is logged and dropped
// rather than retried, so a poison event can never wedge the subscription.
// The snapshot self-heals on the next event or manual sync.
func PushHandler(factory StoreFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var envelope PubSubPushEnvelope
		if err := c.ShouldBindJSON(&envelope); err != nil {
			config.LogError(config.GetLogger(), moduleName, "PushHandler", "BindEnvelope", nil, err)
			c.Status(http.StatusNoContent)
			return
		}

		var msg config.PubSubMessage
		if err := json.Unmarshal(envelope.Message.Data, &msg); err != nil {
			config.LogError(config.GetLogger(), moduleName, "PushHandler", "UnmarshalMessage", envelope.Message.MessageID, err)
			c.Status(http.StatusNoContent)
			return
		}
		if msg.CorrelationId != "" {
			ctx = utils.SetCorrelationIdInContext(ctx, msg.CorrelationId)
		}
		// Scope the worker to the event's tenant so the tenant guard applies
		// to every query it issues.
		if msg.TenantId != "" {
			ctx = utils.SetTenantIdInContext(ctx, msg.TenantId)
		}

		if err := Dispatch(ctx, factory(ctx), msg); err != nil {
			config.LogError(config.GetLogger(), moduleName, "PushHandler", "Dispatch", msg, err)
		}
		c.Status(http.StatusNoContent)
	}
}

// Dispatch routes one change event onto the matching sync worker. Events for
// other reference types or actions are ignored.
func Dispatch(ctx context.Context, store Store, msg config.PubSubMessage) error {
	switch {
	case msg.ReferenceType == models.ReferenceTypeUser && msg.Action == string(models.OutboxActionCreate):
		var user models.User
		if err := json.Unmarshal(msg.NewObj, &user); err != nil {
			return err
		}
		return SyncOnUserCreate(ctx, store, &user)

	case msg.ReferenceType == models.ReferenceTypeProducto && msg.Action == string(models.OutboxActionUpdate):
		var producto models.Producto
		if err := json.Unmarshal(msg.NewObj, &producto); err != nil {
			return err
		}
		return SyncOnProductUpdate(ctx, store, &producto)
	}
	return nil
}
