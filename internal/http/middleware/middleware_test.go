package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
	"github.com/ignatzorin/lostfound-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticChecker struct {
	active bool
	err    error
}

func (s staticChecker) IsActive(context.Context, uuid.UUID) (bool, error) {
	return s.active, s.err
}

type staticMaintenance struct {
	mode *entity.MaintenanceMode
	err  error
}

func (s staticMaintenance) Execute(context.Context) (*entity.MaintenanceMode, error) {
	return s.mode, s.err
}

func newTokens() *service.TokenManager {
	return service.NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
}

func bearer(t *testing.T, tokens *service.TokenManager, role string) (string, uuid.UUID) {
	t.Helper()
	user := &models.User{ID: uuid.New(), Role: role}
	pair, _, err := tokens.GeneratePair(user)
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken, user.ID
}

func perform(r http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := newTokens()

	build := func(checker AccountChecker) *gin.Engine {
		r := gin.New()
		r.GET("/p", AuthMiddleware(tokens, checker), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"user": c.MustGet(ContextUserIDKey), "role": c.GetString(ContextRoleKey)})
		})
		return r
	}

	auth, userID := bearer(t, tokens, models.RolePartner)

	w := perform(build(staticChecker{active: true}), http.MethodGet, "/p", auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), `"role":"partner"`)

	assert.Equal(t, http.StatusUnauthorized, perform(build(nil), http.MethodGet, "/p", "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(build(nil), http.MethodGet, "/p", "Bearer junk").Code)

	refresh, _, err := tokens.GeneratePair(&models.User{ID: uuid.New(), Role: models.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, perform(build(nil), http.MethodGet, "/p", "Bearer "+refresh.RefreshToken).Code,
		"refresh токен не годится как access")

	assert.Equal(t, http.StatusForbidden, perform(build(staticChecker{active: false}), http.MethodGet, "/p", auth).Code)
	assert.Equal(t, http.StatusInternalServerError, perform(build(staticChecker{err: errors.New("db")}), http.MethodGet, "/p", auth).Code)
}

func TestOptionalAuth(t *testing.T) {
	tokens := newTokens()
	r := gin.New()
	r.GET("/p", OptionalAuth(tokens), func(c *gin.Context) {
		_, ok := c.Get(ContextUserIDKey)
		c.String(http.StatusOK, fmt.Sprint(ok))
	})

	auth, _ := bearer(t, tokens, models.RoleUser)
	assert.Equal(t, "true", perform(r, http.MethodGet, "/p", auth).Body.String())
	assert.Equal(t, "false", perform(r, http.MethodGet, "/p", "").Body.String())
	assert.Equal(t, "false", perform(r, http.MethodGet, "/p", "Bearer junk").Body.String())
}

func TestRequireRole(t *testing.T) {
	tokens := newTokens()
	r := gin.New()
	r.GET("/admin", AuthMiddleware(tokens, nil), RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	adminAuth, _ := bearer(t, tokens, models.RoleAdmin)
	userAuth, _ := bearer(t, tokens, models.RoleUser)

	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/admin", adminAuth).Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/admin", userAuth).Code)
}

func TestMaintenanceMiddleware(t *testing.T) {
	tokens := newTokens()
	enabled := &entity.MaintenanceMode{IsEnabled: true, Message: "Обновляемся"}

	build := func(reader MaintenanceReader) *gin.Engine {
		r := gin.New()
		r.Use(MaintenanceMiddleware(reader, tokens))
		ok := func(c *gin.Context) { c.Status(http.StatusOK) }
		r.GET("/health", ok)
		r.GET("/api/items", ok)
		r.GET("/api/maintenance", ok)
		r.POST("/api/auth/login", ok)
		r.POST("/api/auth/refresh", ok)
		return r
	}

	r := build(staticMaintenance{mode: enabled})

	w := perform(r, http.MethodGet, "/api/items", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	assert.Equal(t, "Обновляемся", body.Error.Message)

	userAuth, _ := bearer(t, tokens, models.RoleUser)
	adminAuth, _ := bearer(t, tokens, models.RoleAdmin)
	assert.Equal(t, http.StatusServiceUnavailable, perform(r, http.MethodGet, "/api/items", userAuth).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api/items", adminAuth).Code)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api/maintenance", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/api/auth/login", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/api/auth/refresh", "").Code)

	off := build(staticMaintenance{mode: &entity.MaintenanceMode{}})
	assert.Equal(t, http.StatusOK, perform(off, http.MethodGet, "/api/items", "").Code)

	broken := build(staticMaintenance{err: errors.New("db down")})
	assert.Equal(t, http.StatusOK, perform(broken, http.MethodGet, "/api/items", "").Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/p", RateLimit("test", 2, time.Minute, KeyByIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/p", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/p", "").Code)
	w := perform(r, http.MethodGet, "/p", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimit_KeyByUser(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	current := alice
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserIDKey, current)
		c.Next()
	})
	r.GET("/p", RateLimit("test-user", 1, time.Minute, KeyByUserOrIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/p", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/p", "").Code)

	current = bob
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/p", "").Code)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"credentials", fmt.Errorf("auth service: %w", service.ErrInvalidCredentials), http.StatusUnauthorized, "неверный email или пароль"},
		{"invalid input detail", fmt.Errorf("auth service: %w: %v", service.ErrInvalidInput, "пароль короткий"), http.StatusBadRequest, "некорректные данные: пароль короткий"},
		{"blocked", fmt.Errorf("auth service: %w", service.ErrAccountBlocked), http.StatusForbidden, "аккаунт заблокирован"},
		{"conflict", fmt.Errorf("auth service: %w", service.ErrEmailRegistered), http.StatusConflict, "email уже зарегистрирован"},
		{"otp attempts", fmt.Errorf("auth service: %w", service.ErrOTPAttemptsExceeded), http.StatusTooManyRequests, service.ErrOTPAttemptsExceeded.Error()},
		{"not found", repository.ErrSessionNotFound, http.StatusNotFound, repository.ErrSessionNotFound.Error()},
		{"app error", apperror.ErrClaimNotFound, http.StatusNotFound, "заявка не найдена"},
		{"masked app error", apperror.Wrap(errors.New("pq: broken"), apperror.ErrCodeDatabaseError, "db"), http.StatusInternalServerError, internalErrorMessage},
		{"unknown", errors.New("sql: connection refused"), http.StatusInternalServerError, internalErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := ErrorStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: password authentication failed"))
	})

	w := perform(r, http.MethodGet, "/fail", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq")
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(NewOriginPolicy([]string{"https://lostfound.example/", " http://localhost:5173 "})))
	r.GET("/api/items", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/items", nil)
	req.Header.Set("Origin", "https://lostfound.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://lostfound.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	assert.True(t, NewOriginPolicy([]string{"http://localhost:5173"}).Allowed("http://localhost:5173/"))
	assert.False(t, NewOriginPolicy(nil).Allowed(""))
}
