package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toryoki/jobhub/internal/auth"
)

// RestrictTo allows the request through only when the authenticated
// caller holds one of the given roles. It must run after Protect.
func RestrictTo(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxUserRoleKey)
		if !auth.IsAllowed(role, roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"code": "forbidden", "message": "You do not have permission to perform this action."},
			})
			return
		}
		c.Next()
	}
}
