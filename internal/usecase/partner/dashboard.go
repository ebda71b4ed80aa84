package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"golang.org/x/sync/errgroup"
)

// Dashboard счётчики по вещам и заявкам одной организации.
type Dashboard struct {
	ItemsByStatus  map[valueobject.ItemStatus]int  `json:"items_by_status"`
	ClaimsByStatus map[valueobject.ClaimStatus]int `json:"claims_by_status"`
	PendingClaims  int                             `json:"pending_claims"`
}

type DashboardUseCase struct {
	itemRepo  repository.ItemRepository
	claimRepo repository.ClaimRepository
}

func NewDashboardUseCase(itemRepo repository.ItemRepository, claimRepo repository.ClaimRepository) *DashboardUseCase {
	return &DashboardUseCase{itemRepo: itemRepo, claimRepo: claimRepo}
}

func (uc *DashboardUseCase) Execute(ctx context.Context, partnerID uuid.UUID) (*Dashboard, error) {
	d := &Dashboard{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		d.ItemsByStatus, err = uc.itemRepo.CountByStatus(gctx, &partnerID)
		return err
	})
	g.Go(func() error {
		var err error
		d.ClaimsByStatus, err = uc.claimRepo.CountByStatus(gctx, &partnerID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// ожидают действия организации: новые заявки и подтверждённые, но не закрытые
	d.PendingClaims = d.ClaimsByStatus[valueobject.ClaimStatusOpen] + d.ClaimsByStatus[valueobject.ClaimStatusAccepted]
	return d, nil
}
