package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/session"
	"github.com/noah-isme/school-portal-gateway/pkg/logger"
)

// ContextSessionKey is the gin context key storing the restored session.
const ContextSessionKey = "currentSession"

// ErrorWriter renders a guard failure. Computed routes use the response
// envelope, pass-through routes the flat backend-style message.
type ErrorWriter func(c *gin.Context, err error)

// Session protects routes by requiring a decodable session cookie.
func Session(manager *session.Manager, write ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := manager.Restore(c.Request)
		if err != nil {
			write(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, s)
		c.Request = c.Request.WithContext(session.WithContext(c.Request.Context(), s))
		logger.SetUser(c, s.UserID(), string(s.Role()))
		c.Next()
	}
}

// CurrentSession returns the session stored by Session, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	s, ok := value.(*session.Session)
	if !ok {
		return nil
	}
	return s
}
