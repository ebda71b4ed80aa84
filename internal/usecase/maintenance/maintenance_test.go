package maintenance_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/service"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/maintenance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memMaintenanceRepository struct {
	mode  entity.MaintenanceMode
	reads int
}

func (r *memMaintenanceRepository) Get(ctx context.Context) (*entity.MaintenanceMode, error) {
	r.reads++
	m := r.mode
	return &m, nil
}

func (r *memMaintenanceRepository) Save(ctx context.Context, mode *entity.MaintenanceMode) error {
	r.mode = *mode
	return nil
}

type mapCache struct {
	values map[string]any
}

func newMapCache() *mapCache { return &mapCache{values: map[string]any{}} }

func (c *mapCache) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *mapCache) Set(key string, value any, ttl time.Duration) { c.values[key] = value }
func (c *mapCache) Delete(key string)                            { delete(c.values, key) }

func (c *mapCache) GetOrSet(key string, ttl time.Duration, load func() (any, error)) (any, error) {
	if v, ok := c.values[key]; ok {
		return v, nil
	}
	v, err := load()
	if err == nil {
		c.values[key] = v
	}
	return v, err
}

// gatedMaintenanceRepository останавливает чтение, пока тест не откроет release.
type gatedMaintenanceRepository struct {
	mu      sync.Mutex
	mode    entity.MaintenanceMode
	gate    bool
	entered chan struct{}
	release chan struct{}
}

func (r *gatedMaintenanceRepository) Get(ctx context.Context) (*entity.MaintenanceMode, error) {
	r.mu.Lock()
	m := r.mode
	gate := r.gate
	r.gate = false
	r.mu.Unlock()

	if gate {
		close(r.entered)
		<-r.release
	}
	return &m, nil
}

func (r *gatedMaintenanceRepository) Save(ctx context.Context, mode *entity.MaintenanceMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = *mode
	return nil
}

func TestMaintenance_GetIsCachedAndSetInvalidates(t *testing.T) {
	repo := &memMaintenanceRepository{}
	cache := newMapCache()
	get := maintenance.NewGetMaintenanceUseCase(repo, cache, time.Minute)
	set := maintenance.NewSetMaintenanceUseCase(repo, cache)
	ctx := context.Background()

	mode, err := get.Execute(ctx)
	require.NoError(t, err)
	assert.False(t, mode.IsEnabled)

	_, err = get.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.reads)

	admin := uuid.New()
	updated, err := set.Execute(ctx, true, "", &admin)
	require.NoError(t, err)
	assert.True(t, updated.IsEnabled)
	assert.Equal(t, entity.DefaultMaintenanceMessage, updated.Message)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, admin, *updated.UpdatedBy)

	mode, err = get.Execute(ctx)
	require.NoError(t, err)
	assert.True(t, mode.IsEnabled)
}

func TestMaintenance_CachedValueIsCopied(t *testing.T) {
	repo := &memMaintenanceRepository{}
	get := maintenance.NewGetMaintenanceUseCase(repo, newMapCache(), time.Minute)

	first, err := get.Execute(context.Background())
	require.NoError(t, err)
	first.IsEnabled = true

	second, err := get.Execute(context.Background())
	require.NoError(t, err)
	assert.False(t, second.IsEnabled)
}

func TestMaintenance_WithoutCache(t *testing.T) {
	repo := &memMaintenanceRepository{}
	get := maintenance.NewGetMaintenanceUseCase(repo, nil, 0)

	_, _ = get.Execute(context.Background())
	_, _ = get.Execute(context.Background())
	assert.Equal(t, 2, repo.reads)
}

func TestMaintenance_SetRejectsLongMessage(t *testing.T) {
	repo := &memMaintenanceRepository{}
	set := maintenance.NewSetMaintenanceUseCase(repo, newMapCache())

	long := make([]rune, 501)
	for i := range long {
		long[i] = 'я'
	}
	_, err := set.Execute(context.Background(), true, string(long), nil)
	assert.True(t, apperror.IsValidation(err))
	assert.False(t, repo.mode.IsEnabled)
}

func TestMaintenance_ReadOverlappingToggleIsNotCached(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &gatedMaintenanceRepository{
		mode:    entity.MaintenanceMode{IsEnabled: true, Message: entity.DefaultMaintenanceMessage},
		gate:    true,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	cache := service.NewCacheService(ctx)
	get := maintenance.NewGetMaintenanceUseCase(repo, cache, time.Minute)
	set := maintenance.NewSetMaintenanceUseCase(repo, cache)

	stale := make(chan *entity.MaintenanceMode, 1)
	go func() {
		mode, err := get.Execute(ctx)
		assert.NoError(t, err)
		stale <- mode
	}()

	<-repo.entered
	_, err := set.Execute(ctx, false, "", nil)
	require.NoError(t, err)
	close(repo.release)

	// чтение, начатое до переключения, видит старое значение
	assert.True(t, (<-stale).IsEnabled)

	mode, err := get.Execute(ctx)
	require.NoError(t, err)
	assert.False(t, mode.IsEnabled, "после выключения в кеше осталось старое значение")
}
