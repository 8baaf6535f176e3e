package handler

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/backend"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

type forwarder interface {
	Forward(ctx context.Context, token, method, path string, query url.Values, body io.Reader, contentType string) (*backend.Response, error)
}

// ProxyHandler relays requests to the backend unchanged, attaching the
// caller's bearer token.
type ProxyHandler struct {
	backend   forwarder
	apiPrefix string
	allowed   []string
}

// NewProxyHandler constructs a proxy handler. apiPrefix is trimmed from the
// request path to get the backend path; allowed bounds the generic route.
func NewProxyHandler(client forwarder, apiPrefix string, allowed []string) *ProxyHandler {
	prefixes := make([]string, 0, len(allowed))
	for _, p := range allowed {
		p = "/" + strings.Trim(p, "/")
		if p != "/" {
			prefixes = append(prefixes, p)
		}
	}
	return &ProxyHandler{backend: client, apiPrefix: strings.TrimRight(apiPrefix, "/"), allowed: prefixes}
}

// Pass forwards the request to the same path on the backend. fallback is the
// message sent when the backend fails without one.
func (h *ProxyHandler) Pass(fallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.forward(c, upstreamPath(c, h.apiPrefix), fallback)
	}
}

// Generic godoc
// @Summary Generic pass-through
// @Description Forwards to the backend path after /proxy when it starts with an allowed prefix.
// @Tags Proxy
// @Param path path string true "Backend path"
// @Router /proxy/{path} [get]
func (h *ProxyHandler) Generic(c *gin.Context) {
	raw := c.Param("path")
	if strings.Contains(raw, "..") {
		response.Message(c, appErrors.ErrNotFound)
		return
	}
	target := path.Clean("/" + raw)
	if !h.allows(target) {
		response.Message(c, appErrors.ErrNotFound)
		return
	}
	h.forward(c, (&url.URL{Path: target}).EscapedPath(), "Request failed")
}

func (h *ProxyHandler) allows(target string) bool {
	for _, prefix := range h.allowed {
		if target == prefix || strings.HasPrefix(target, prefix+"/") {
			return true
		}
	}
	return false
}

func (h *ProxyHandler) forward(c *gin.Context, target, fallback string) {
	sess := sessionFromContext(c)
	if sess == nil {
		response.Message(c, appErrors.ErrUnauthorized)
		return
	}

	raw, err := readBody(c)
	if err != nil {
		response.Message(c, err)
		return
	}
	var body io.Reader
	if len(raw) > 0 {
		body = bytes.NewReader(raw)
	}

	resp, err := h.backend.Forward(c.Request.Context(), sess.Token, c.Request.Method, target, c.Request.URL.Query(), body, c.ContentType())
	if err != nil {
		response.Message(c, appErrors.Clone(appErrors.FromError(err), fallback))
		return
	}
	relay(c, resp, fallback)
}

// relay writes a backend reply as is. A failure without a message of its own
// gets fallback so the browser always has something to show.
func relay(c *gin.Context, resp *backend.Response, fallback string) {
	if !resp.OK() && resp.Message() == "" {
		response.Message(c, resp.Err(fallback))
		return
	}
	response.Relay(c, resp.Status, resp.ContentType, resp.Body)
}

// upstreamPath is the escaped request path without the API prefix.
func upstreamPath(c *gin.Context, apiPrefix string) string {
	p := c.Request.URL.EscapedPath()
	if apiPrefix != "" {
		p = strings.TrimPrefix(p, apiPrefix)
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
