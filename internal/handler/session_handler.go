package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/middleware"
	"github.com/noah-isme/school-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

// SessionHandler reports and ends the cookie session.
type SessionHandler struct {
	manager *session.Manager
}

// NewSessionHandler constructs a session handler.
func NewSessionHandler(manager *session.Manager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// Me godoc
// @Summary Current session
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /v1/session [get]
func (h *SessionHandler) Me(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, sess.Info(), middleware.ExtractMeta(c))
}

// Logout godoc
// @Summary End the session
// @Description Expires the session cookie. Works without a valid session.
// @Tags Session
// @Success 204
// @Router /v1/session/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	h.manager.Clear(c.Writer)
	response.NoContent(c)
}
