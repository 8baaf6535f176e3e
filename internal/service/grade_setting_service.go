package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/internal/backend"
	"github.com/noah-isme/school-portal-gateway/internal/grading"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

const gradeSettingCachePrefix = "grade_setting:"

// advisedWeightTotal is the component weight sum above which a setting can no
// longer be read as a percentage. It is advice, not a rule.
const advisedWeightTotal = 100

type forwarder interface {
	Forward(ctx context.Context, token, method, path string, query url.Values, body io.Reader, contentType string) (*backend.Response, error)
}

type settingCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// cachedResponse is the stored form of a backend reply.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// SettingWrite is the outcome of a grading-setting write.
type SettingWrite struct {
	Response *backend.Response
	Warnings []string
}

// GradeSettingService relays grading-setting routes, serving reads through
// the cache and validating writes before they leave the gateway.
type GradeSettingService struct {
	backend   forwarder
	cache     settingCache
	ttl       time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeSettingService constructs a GradeSettingService. cache may be nil.
func NewGradeSettingService(client forwarder, cache settingCache, ttl time.Duration, validate *validator.Validate, logger *zap.Logger) *GradeSettingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeSettingService{backend: client, cache: cache, ttl: ttl, validator: validate, logger: logger}
}

// Get returns the backend reply for path, from cache when possible. Only 200
// replies are cached, and a cached reply is only served to sessions of the
// school that fetched it. The boolean reports a cache hit.
func (s *GradeSettingService) Get(ctx context.Context, sess *session.Session, path string, query url.Values) (*backend.Response, bool, error) {
	key := gradeSettingCachePrefix + cacheScope(sess) + ":" + path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}

	if s.cache != nil {
		var cached cachedResponse
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			return &backend.Response{Status: cached.Status, ContentType: cached.ContentType, Body: cached.Body}, true, nil
		}
	}

	resp, err := s.backend.Forward(ctx, sess.Token, http.MethodGet, path, query, nil, "")
	if err != nil {
		return nil, false, err
	}
	if resp.Status == http.StatusOK && s.cache != nil {
		_ = s.cache.Set(ctx, key, cachedResponse{Status: resp.Status, ContentType: resp.ContentType, Body: resp.Body}, s.ttl)
	}
	return resp, false, nil
}

// cacheScope partitions cached settings by the session's school, or by user
// when the session carries no school.
func cacheScope(sess *session.Session) string {
	if sess == nil || sess.Claims == nil {
		return "anonymous"
	}
	if sess.Claims.SchoolID != "" {
		return "school:" + sess.Claims.SchoolID
	}
	return "user:" + sess.Claims.UserID
}

// Write validates a grading setting and forwards it with method (POST or
// PUT). A successful write drops every cached setting.
func (s *GradeSettingService) Write(ctx context.Context, sess *session.Session, method, path string, body []byte) (*SettingWrite, error) {
	setting, err := s.decode(body)
	if err != nil {
		return nil, err
	}
	warnings := weightWarnings(setting)
	if len(warnings) > 0 {
		s.logger.Warn("grading setting exceeds advised weight total",
			zap.String("path", path),
			zap.String("user_id", sess.UserID()),
			zap.Float64("weight_total", grading.TotalPossible(setting.Components)),
		)
	}

	resp, err := s.backend.Forward(ctx, sess.Token, method, path, nil, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	if resp.OK() && s.cache != nil {
		if err := s.cache.Invalidate(ctx, gradeSettingCachePrefix+"*"); err != nil {
			s.logger.Warn("grading setting cache not invalidated", zap.Error(err))
		}
	}
	return &SettingWrite{Response: resp, Warnings: warnings}, nil
}

func (s *GradeSettingService) decode(body []byte) (*models.GradingSetting, error) {
	var setting models.GradingSetting
	if err := json.Unmarshal(body, &setting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grading setting payload")
	}
	if err := s.validator.Struct(setting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "components must be a non-empty list of named components with positive weights")
	}
	seen := make(map[grading.ComponentKey]string, len(setting.Components))
	for _, component := range setting.Components {
		key := grading.NormalizeKey(component.Name)
		if prev, dup := seen[key]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("components %q and %q refer to the same score column", prev, component.Name))
		}
		seen[key] = component.Name
	}
	return &setting, nil
}

func weightWarnings(setting *models.GradingSetting) []string {
	total := grading.TotalPossible(setting.Components)
	if total <= advisedWeightTotal {
		return nil
	}
	return []string{fmt.Sprintf("component weights add up to %g, more than %d", total, advisedWeightTotal)}
}
