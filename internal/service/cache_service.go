package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const cacheCleanupInterval = time.Minute

// CacheService кеш в памяти процесса с TTL. Реализует repository.Cache.
// Кеш не разделяется между репликами, поэтому в нём лежат только значения,
// которые допустимо видеть устаревшими в пределах TTL.
type CacheService struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	// gen растёт при каждой инвалидации; загрузка, начатая до неё, не сохраняется
	gen   uint64
	loads singleflight.Group
	now   func() time.Time
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// NewCacheService создаёт кеш. Фоновая очистка живёт, пока не отменён ctx.
func NewCacheService(ctx context.Context) *CacheService {
	cs := &CacheService{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
	go cs.cleanup(ctx, cacheCleanupInterval)
	return cs
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	e, ok := cs.entries[key]
	if !ok || !cs.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (cs *CacheService) Set(key string, value interface{}, ttl time.Duration) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.entries[key] = cacheEntry{value: value, expiresAt: cs.now().Add(ttl)}
}

func (cs *CacheService) Delete(key string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.entries, key)
	cs.gen++
}

// InvalidateByPrefix удаляет все ключи с префиксом.
func (cs *CacheService) InvalidateByPrefix(prefix string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for key := range cs.entries {
		if strings.HasPrefix(key, prefix) {
			delete(cs.entries, key)
		}
	}
	cs.gen++
}

// InvalidateUserCache сбрасывает всё, что закешировано про пользователя.
func (cs *CacheService) InvalidateUserCache(userID uuid.UUID) {
	cs.InvalidateByPrefix("user:" + userID.String() + ":")
}

// GetOrSet возвращает значение из кеша или вычисляет его через load.
// Параллельные промахи по одному ключу выполняют load один раз. Ошибки не кешируются.
func (cs *CacheService) GetOrSet(key string, ttl time.Duration, load func() (interface{}, error)) (interface{}, error) {
	if v, ok := cs.Get(key); ok {
		return v, nil
	}

	v, err, _ := cs.loads.Do(key, func() (interface{}, error) {
		cs.mu.RLock()
		gen := cs.gen
		cs.mu.RUnlock()

		v, err := load()
		if err != nil {
			return nil, err
		}

		cs.mu.Lock()
		if cs.gen == gen {
			cs.entries[key] = cacheEntry{value: v, expiresAt: cs.now().Add(ttl)}
		}
		cs.mu.Unlock()
		return v, nil
	})
	return v, err
}

func (cs *CacheService) evictExpired() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	now := cs.now()
	for key, e := range cs.entries {
		if !now.Before(e.expiresAt) {
			delete(cs.entries, key)
		}
	}
}

func (cs *CacheService) cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cs.evictExpired()
		}
	}
}

// UserStatusCacheKey ключ статуса учётной записи.
func UserStatusCacheKey(userID uuid.UUID) string {
	return "user:" + userID.String() + ":status"
}
