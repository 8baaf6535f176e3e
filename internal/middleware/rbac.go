package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

// RBAC enforces role-based access control for routes. "SELF" additionally
// admits a caller whose user ID equals the :student path parameter.
func RBAC(write ErrorWriter, allowed ...string) gin.HandlerFunc {
	allowSelf := false
	allowedRoles := make(map[models.UserRole]struct{})
	for _, a := range allowed {
		if a == "SELF" {
			allowSelf = true
			continue
		}
		allowedRoles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		s := CurrentSession(c)
		if s == nil {
			write(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[s.Role()]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if targetID := c.Param("student"); targetID != "" && targetID == s.UserID() {
				c.Next()
				return
			}
		}

		write(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(write ErrorWriter, roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(write, allowed...)
}
