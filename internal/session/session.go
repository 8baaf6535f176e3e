// Package session restores the caller's identity from the HTTP-only cookie
// the backend issued at login. A Session is built once per request and passed
// down explicitly; nothing about the caller is kept in package state.
package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/pkg/config"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

// Session is the restored identity of one caller. Token is forwarded to the
// backend as a bearer credential and must never be logged.
type Session struct {
	Token  string
	Claims *models.SessionClaims
}

// UserID returns the subject of the session, or "" for a nil session.
func (s *Session) UserID() string {
	if s == nil || s.Claims == nil {
		return ""
	}
	return s.Claims.UserID
}

// Role returns the role claim, or "" for a nil session.
func (s *Session) Role() models.UserRole {
	if s == nil || s.Claims == nil {
		return ""
	}
	return s.Claims.Role
}

// Info is the public view of the session.
func (s *Session) Info() models.SessionInfo {
	if s == nil || s.Claims == nil {
		return models.SessionInfo{}
	}
	return models.SessionInfo{
		UserID:   s.Claims.UserID,
		Role:     s.Claims.Role,
		Email:    s.Claims.Email,
		SchoolID: s.Claims.SchoolID,
	}
}

// Manager reads and clears the session cookie.
type Manager struct {
	cfg    config.SessionConfig
	parser *jwt.Parser
	now    func() time.Time
}

// NewManager constructs a Manager. Without a JWT secret, claims are decoded
// but not verified; the backend still checks every token it receives.
func NewManager(cfg config.SessionConfig) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = "token"
	}
	return &Manager{
		cfg:    cfg,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
		now:    time.Now,
	}
}

// CookieName is the name of the cookie carrying the bearer token.
func (m *Manager) CookieName() string {
	return m.cfg.CookieName
}

// Restore builds the session for r. A missing cookie, an undecodable token or
// an expired token is ErrUnauthorized.
func (m *Manager) Restore(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return nil, appErrors.ErrUnauthorized
	}
	token := strings.TrimSpace(cookie.Value)

	claims, err := m.decode(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session")
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}
	claims.Role = models.UserRole(strings.ToUpper(string(claims.Role)))

	return &Session{Token: token, Claims: claims}, nil
}

func (m *Manager) decode(token string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	if m.cfg.JWTSecret != "" {
		parsed, err := m.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(m.cfg.JWTSecret), nil
		})
		if err != nil {
			return nil, err
		}
		if !parsed.Valid {
			return nil, fmt.Errorf("token not valid")
		}
		return claims, nil
	}

	if _, _, err := m.parser.ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	if claims.ExpiresAt != nil && !m.now().Before(claims.ExpiresAt.Time) {
		return nil, jwt.ErrTokenExpired
	}
	return claims, nil
}

// Clear expires the session cookie on w.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.cfg.CookieDomain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

type ctxKey struct{}

// WithContext stores s on ctx.
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored on ctx, or nil.
func FromContext(ctx context.Context) *Session {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
