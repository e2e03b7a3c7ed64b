package middleware

import (
	"net/http"

	"vuka/internal/domain"

	"github.com/gin-gonic/gin"
)

// AdminRequired gates the manual verification surface to operator accounts.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil || claims.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "admin access required"})
			return
		}
		c.Next()
	}
}
