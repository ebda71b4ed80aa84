package admin

import (
	"context"
	"time"

	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"golang.org/x/sync/errgroup"
)

const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = 30 * time.Second
)

// Stats сводка для панели администратора.
type Stats struct {
	UsersByRole     map[valueobject.Role]int        `json:"users_by_role"`
	ItemsByStatus   map[valueobject.ItemStatus]int  `json:"items_by_status"`
	ItemsByType     map[valueobject.ItemType]int    `json:"items_by_type"`
	ClaimsByStatus  map[valueobject.ClaimStatus]int `json:"claims_by_status"`
	FeedbackCount   int                             `json:"feedback_count"`
	FeedbackAverage float64                         `json:"feedback_average"`
	GeneratedAt     time.Time                       `json:"generated_at"`
}

type StatsUseCase struct {
	users        repository.UserDirectory
	itemRepo     repository.ItemRepository
	claimRepo    repository.ClaimRepository
	feedbackRepo repository.FeedbackRepository
	cache        repository.Cache
}

func NewStatsUseCase(
	users repository.UserDirectory,
	itemRepo repository.ItemRepository,
	claimRepo repository.ClaimRepository,
	feedbackRepo repository.FeedbackRepository,
	cache repository.Cache,
) *StatsUseCase {
	return &StatsUseCase{
		users:        users,
		itemRepo:     itemRepo,
		claimRepo:    claimRepo,
		feedbackRepo: feedbackRepo,
		cache:        cache,
	}
}

// Execute считает все счётчики параллельно; первая ошибка отменяет остальные запросы.
func (uc *StatsUseCase) Execute(ctx context.Context) (*Stats, error) {
	if uc.cache != nil {
		if v, ok := uc.cache.Get(statsCacheKey); ok {
			if stats, ok := v.(*Stats); ok {
				return stats, nil
			}
		}
	}

	stats := &Stats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		stats.UsersByRole, err = uc.users.CountByRole(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.ItemsByStatus, err = uc.itemRepo.CountByStatus(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		stats.ItemsByType, err = uc.itemRepo.CountByType(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.ClaimsByStatus, err = uc.claimRepo.CountByStatus(gctx, nil)
		return err
	})
	g.Go(func() error {
		summary, err := uc.feedbackRepo.Summary(gctx)
		if err != nil {
			return err
		}
		stats.FeedbackCount = summary.Count
		stats.FeedbackAverage = summary.Average
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	stats.GeneratedAt = time.Now()

	if uc.cache != nil {
		uc.cache.Set(statsCacheKey, stats, statsCacheTTL)
	}
	return stats, nil
}
