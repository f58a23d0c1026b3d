package middlewares

import (
	"context"
	"net/http"

	"bitbucket.org/valisto/valisto_backend/config"
	"bitbucket.org/valisto/valisto_backend/models"
	"bitbucket.org/valisto/valisto_backend/utils"
	"github.com/gin-gonic/gin"
)

func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		username, exists, err := config.GetRedisValue("Token:" + token)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := context.WithValue(c.Request.Context(), utils.ContextKeyToken, token)
		ctx = context.WithValue(ctx, utils.ContextKeyUsername, username)

		// Resolve the caller's tenant so the tenant guard scopes every query
		// on this request. Admins are flagged for scope bypass.
		var user models.User
		found, err := config.GetRedisObject("User:"+username, &user)
		if err == nil && !found {
			if db := config.GetDB(); db != nil {
				if dbErr := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Take(&user).Error; dbErr == nil {
					found = true
				}
			}
		}
		if found {
			ctx = utils.SetTenantIdInContext(ctx, user.TenantId)
			ctx = utils.SetUserIdInContext(ctx, user.ID)
			if user.Role == models.UserRoleAdmin {
				ctx = utils.SetIsAdminInContext(ctx, true)
			}
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
