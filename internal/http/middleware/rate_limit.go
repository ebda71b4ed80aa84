package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ignatzorin/lostfound-backend/internal/logger"
)

// RateKeyFunc выбирает, чей счётчик увеличивает запрос.
type RateKeyFunc func(c *gin.Context) string

// KeyByIP считает запросы по адресу клиента.
func KeyByIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// KeyByUserOrIP считает вошедших пользователей по идентификатору, остальных по адресу.
// Должен стоять после AuthMiddleware или OptionalAuth.
func KeyByUserOrIP(c *gin.Context) string {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(uuid.UUID); ok && id != uuid.Nil {
			return "user:" + id.String()
		}
	}
	return KeyByIP(c)
}

// RateLimit ограничивает число запросов за period. Каждый вызов заводит отдельное
// хранилище, поэтому разные группы маршрутов не делят счётчики.
func RateLimit(name string, limit int64, period time.Duration, key RateKeyFunc) gin.HandlerFunc {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = time.Minute
	}
	if key == nil {
		key = KeyByIP
	}

	instance := limiter.New(memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "lostfound:" + name,
		CleanUpInterval: period,
	}), limiter.Rate{Period: period, Limit: limit})

	return func(c *gin.Context) {
		k := key(c)
		res, err := instance.Get(c.Request.Context(), k)
		if err != nil {
			logger.Log.WithError(err).WithField("limiter", name).Error("rate limit: ошибка хранилища счётчиков")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.Reset, 10))

		if res.Reached {
			logger.Log.WithFields(logrus.Fields{"limiter": name, "key": k}).Debug("rate limit: лимит исчерпан")
			c.Header("Retry-After", strconv.FormatInt(max(res.Reset-time.Now().Unix(), 1), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "слишком много запросов, попробуйте позже",
			})
			return
		}

		c.Next()
	}
}
