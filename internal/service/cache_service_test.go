package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
)

func TestCacheService_TTLAndInvalidation(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache := NewCacheService(ctx)

	now := time.Now()
	cache.now = func() time.Time { return now }

	userID := uuid.New()
	cache.Set(UserStatusCacheKey(userID), "active", time.Minute)
	cache.Set("admin:stats", 1, time.Minute)

	v, ok := cache.Get(UserStatusCacheKey(userID))
	require.True(t, ok)
	assert.Equal(t, "active", v)

	cache.InvalidateUserCache(userID)
	_, ok = cache.Get(UserStatusCacheKey(userID))
	assert.False(t, ok)
	_, ok = cache.Get("admin:stats")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get("admin:stats")
	assert.False(t, ok)

	cache.evictExpired()
	assert.Empty(t, cache.entries)
	cancel()
}

func TestCacheService_GetOrSet(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache := NewCacheService(ctx)

	calls := 0
	load := func() (interface{}, error) {
		calls++
		return calls, nil
	}

	v, err := cache.GetOrSet("k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	v, err = cache.GetOrSet("k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = cache.GetOrSet("bad", time.Minute, func() (interface{}, error) { return nil, errors.New("boom") })
	assert.Error(t, err)
	_, ok := cache.Get("bad")
	assert.False(t, ok, "ошибки не кешируются")
	cancel()
}

func TestCacheService_GetOrSetDedupes(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache := NewCacheService(ctx)

	release := make(chan struct{})
	var calls atomic.Int32
	load := func() (interface{}, error) {
		calls.Add(1)
		<-release
		return "active", nil
	}

	var started, done sync.WaitGroup
	for i := 0; i < 5; i++ {
		started.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			started.Done()
			v, err := cache.GetOrSet("user:x:status", time.Minute, load)
			assert.NoError(t, err)
			assert.Equal(t, "active", v)
		}()
	}
	started.Wait()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()

	assert.EqualValues(t, 1, calls.Load())
	v, ok := cache.Get("user:x:status")
	require.True(t, ok)
	assert.Equal(t, "active", v)
	cancel()
}

func TestCacheService_InvalidationDuringLoad(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache := NewCacheService(ctx)
	userID := uuid.New()

	v, err := cache.GetOrSet(UserStatusCacheKey(userID), time.Minute, func() (interface{}, error) {
		// администратор меняет статус, пока идёт чтение из базы
		cache.InvalidateUserCache(userID)
		return "active", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "active", v)

	_, ok := cache.Get(UserStatusCacheKey(userID))
	assert.False(t, ok, "значение, прочитанное до инвалидации, не сохраняется")
	cancel()
}

type lookupStub struct {
	users map[uuid.UUID]*models.User
	calls int
}

func (s *lookupStub) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.calls++
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func TestAccountGuard(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache := NewCacheService(ctx)

	active := &models.User{ID: uuid.New(), Status: models.UserStatusActive}
	banned := &models.User{ID: uuid.New(), Status: models.UserStatusBanned}
	users := &lookupStub{users: map[uuid.UUID]*models.User{active.ID: active, banned.ID: banned}}
	guard := NewAccountGuard(users, cache)

	ok, err := guard.IsActive(ctx, active.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = guard.IsActive(ctx, active.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, users.calls, "повторная проверка берётся из кеша")

	ok, err = guard.IsActive(ctx, banned.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = guard.IsActive(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	// блокировка применяется сразу после сброса кеша
	active.Status = models.UserStatusSuspended
	cache.InvalidateUserCache(active.ID)
	ok, err = guard.IsActive(ctx, active.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	cancel()
}
