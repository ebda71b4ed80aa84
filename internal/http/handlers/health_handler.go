package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthChecker проверяет внешнюю зависимость (объектное хранилище, брокер).
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthCheckFunc позволяет передать функцию как HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// ConnectionCounter сообщает число открытых websocket соединений.
type ConnectionCounter interface {
	ConnectionCount() int
}

// HealthHandler предоставляет endpoint для проверки здоровья сервиса.
type HealthHandler struct {
	db     *sqlx.DB
	deps   map[string]HealthChecker
	hub    ConnectionCounter
	pingDB func(ctx context.Context) error
}

// NewHealthHandler создаёт новый health handler. Проверки из deps влияют
// только на поле checks, статус 503 означает недоступную базу.
func NewHealthHandler(db *sqlx.DB, hub ConnectionCounter, deps map[string]HealthChecker) *HealthHandler {
	h := &HealthHandler{db: db, deps: deps, hub: hub}
	if db != nil {
		h.pingDB = db.PingContext
	}
	return h
}

// HealthResponse представляет ответ health check.
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Checks      map[string]string `json:"checks"`
	Connections int               `json:"ws_connections"`
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.pingDB == nil {
		checks["database"] = "unhealthy: not configured"
		status = "unhealthy"
	} else if err := h.pingDB(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	if h.db != nil {
		stats := h.db.Stats()
		if stats.MaxOpenConnections > 0 && stats.OpenConnections >= stats.MaxOpenConnections {
			checks["connection_pool"] = "warning: pool exhausted"
		} else {
			checks["connection_pool"] = "healthy"
		}
	}

	for name, dep := range h.deps {
		if err := dep.HealthCheck(ctx); err != nil {
			checks[name] = "degraded: " + err.Error()
			if status == "healthy" {
				status = "degraded"
			}
			continue
		}
		checks[name] = "healthy"
	}

	resp := HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	}
	if h.hub != nil {
		resp.Connections = h.hub.ConnectionCount()
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, resp)
}
