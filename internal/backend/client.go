// Package backend talks to the school backend that owns every persistent
// record. Calls carry the caller's bearer token; nothing is retried.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/pkg/config"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
	"github.com/noah-isme/school-portal-gateway/pkg/middleware/requestid"
)

const maxBodyBytes = 10 << 20

// Observer receives one sample per backend call.
type Observer interface {
	ObserveUpstream(route string, status int, duration time.Duration)
}

// Response is a raw backend reply relayed by pass-through routes.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Message extracts the backend's `message` field, if the body has one.
func (r *Response) Message() string {
	if r == nil || len(r.Body) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return ""
	}
	return body.Message
}

// Err converts a non-2xx response into an *errors.Error, or nil on success.
func (r *Response) Err(fallback string) error {
	if r.OK() {
		return nil
	}
	return appErrors.FromUpstream(r.Status, r.Message(), fallback)
}

// Client is an HTTP client for the school backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
	logger     *zap.Logger
}

// NewClient builds a client for cfg.BaseURL.
func NewClient(cfg config.BackendConfig, observer Observer, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		observer:   observer,
		logger:     logger,
	}
}

// Forward sends an arbitrary request and returns the raw reply. The error is
// non-nil only when no response was received.
func (c *Client) Forward(ctx context.Context, token, method, path string, query url.Values, body io.Reader, contentType string) (*Response, error) {
	return c.send(ctx, token, method, path, query, body, contentType, routeLabel(path))
}

func (c *Client) send(ctx context.Context, token, method, path string, query url.Values, body io.Reader, contentType, route string) (*Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build backend request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set(requestid.Header, reqID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(route, 0, duration)
		c.logger.Warn("backend request failed", zap.String("route", route), zap.String("method", method), zap.Duration("duration", duration), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.observe(route, resp.StatusCode, duration)
	if err != nil {
		c.logger.Warn("backend response unreadable", zap.String("route", route), zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("backend returned error", zap.String("route", route), zap.String("method", method), zap.Int("status", resp.StatusCode))
	} else {
		c.logger.Debug("backend request", zap.String("route", route), zap.String("method", method), zap.Int("status", resp.StatusCode), zap.Duration("duration", duration))
	}

	return &Response{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: raw}, nil
}

// doJSON sends in as JSON, fails on non-2xx with the backend message (or
// fallback) and decodes the reply into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, token, method, route, path string, in, out interface{}, fallback string) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode backend request")
		}
		body = bytes.NewReader(payload)
	}

	resp, err := c.send(ctx, token, method, path, nil, body, "application/json", route)
	if err != nil {
		return appErrors.Clone(appErrors.FromError(err), fallback)
	}
	if err := resp.Err(fallback); err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, fallback)
	}
	return nil
}

func (c *Client) observe(route string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream(route, status, duration)
	}
}

// Path joins escaped segments into an absolute backend path.
func Path(segments ...string) string {
	var b strings.Builder
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}
	return b.String()
}

// routeLabel keeps metric cardinality bounded by dropping identifiers:
// "/student/scores/score-list/s1/c1" becomes "student/scores/score-list".
func routeLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	label := strings.Join(parts, "/")
	if label == "" {
		return "root"
	}
	return label
}
