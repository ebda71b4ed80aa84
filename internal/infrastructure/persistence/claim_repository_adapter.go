package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/repository/common"
	"github.com/jmoiron/sqlx"
)

const claimColumns = `id, item_id, item_owner_id, claimant_user_id, full_name, email, phone_number, proof,
	proof_image_url, status, chat_id, version, submitted_at, updated_at`

type ClaimRepositoryAdapter struct {
	db *sqlx.DB
}

func NewClaimRepositoryAdapter(db *sqlx.DB) *ClaimRepositoryAdapter {
	return &ClaimRepositoryAdapter{db: db}
}

func (r *ClaimRepositoryAdapter) Submit(ctx context.Context, itemID, claimantID uuid.UUID, build repository.ClaimBuilder) (*entity.Claim, error) {
	var claim *entity.Claim
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		item, err := lockItem(ctx, tx, itemID)
		if err != nil {
			return err
		}

		var active int
		activeQuery := `SELECT COUNT(*) FROM claims
			WHERE item_id = $1 AND claimant_user_id = $2 AND status IN ('open', 'accepted', 'resolving')`
		if err := tx.GetContext(ctx, &active, activeQuery, itemID, claimantID); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить активные заявки")
		}

		claim, err = build(item, active > 0)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO claims (id, item_id, item_owner_id, claimant_user_id, full_name, email, phone_number, proof,
			                    proof_image_url, status, chat_id, version, submitted_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`
		_, err = tx.ExecContext(ctx, query,
			claim.ID,
			claim.ItemID,
			claim.ItemOwnerID,
			claim.ClaimantUserID,
			claim.FullName,
			claim.Email,
			claim.PhoneNumber,
			claim.Proof,
			claim.ProofImageURL,
			string(claim.Status),
			claim.ChatID,
			claim.Version,
			claim.SubmittedAt,
			claim.UpdatedAt,
		)
		if err != nil {
			if common.IsUniqueViolation(err) {
				return apperror.Wrap(err, apperror.ErrCodeConflict, "у вас уже есть активная заявка на эту вещь")
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать заявку")
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "не удалось создать заявку")
	}
	return claim, nil
}

func (r *ClaimRepositoryAdapter) UpdateStatus(ctx context.Context, claim *entity.Claim, expectedVersion int) error {
	return updateClaimStatus(ctx, r.db, claim, expectedVersion)
}

func (r *ClaimRepositoryAdapter) Close(ctx context.Context, claimID uuid.UUID, closer repository.ClaimCloser) (*repository.ClaimClosure, error) {
	var closure *repository.ClaimClosure
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var itemID uuid.UUID
		if err := tx.GetContext(ctx, &itemID, `SELECT item_id FROM claims WHERE id = $1`, claimID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrClaimNotFound
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявку")
		}

		// порядок блокировок: сначала вещь, потом её заявки, как в Submit
		item, err := lockItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		itemStatus := item.Status

		var rows []claimRow
		query := `SELECT ` + claimColumns + ` FROM claims WHERE item_id = $1 ORDER BY submitted_at FOR UPDATE`
		if err := tx.SelectContext(ctx, &rows, query, itemID); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось заблокировать заявки")
		}

		var target *entity.Claim
		siblings := make([]*entity.Claim, 0, len(rows))
		before := make(map[uuid.UUID]claimSnapshot, len(rows))
		for i := range rows {
			c := rows[i].toEntity()
			before[c.ID] = claimSnapshot{status: c.Status, version: c.Version}
			if c.ID == claimID {
				target = c
				continue
			}
			siblings = append(siblings, c)
		}
		if target == nil {
			return apperror.ErrClaimNotFound
		}

		if err := closer(item, target, siblings); err != nil {
			return err
		}

		for _, c := range append([]*entity.Claim{target}, siblings...) {
			prev := before[c.ID]
			if prev.status == c.Status {
				continue
			}
			if err := updateClaimStatus(ctx, tx, c, prev.version); err != nil {
				return err
			}
		}

		if item.Status != itemStatus {
			itemQuery := `UPDATE items SET status = $2, resolved_at = $3, updated_at = $4 WHERE id = $1`
			if _, err := tx.ExecContext(ctx, itemQuery, item.ID, string(item.Status), item.ResolvedAt, item.UpdatedAt); err != nil {
				return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось закрыть объявление")
			}
		}

		closure = &repository.ClaimClosure{Item: item, Claim: target, Siblings: siblings}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "не удалось закрыть заявку")
	}
	return closure, nil
}

func (r *ClaimRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Claim, error) {
	var row claimRow
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrClaimNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявку")
	}
	return row.toEntity(), nil
}

func (r *ClaimRepositoryAdapter) List(ctx context.Context, filter repository.ClaimFilter) ([]*entity.Claim, int, error) {
	baseQuery := `FROM claims WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.ItemID != nil {
		baseQuery += fmt.Sprintf(" AND item_id = $%d", argNum)
		args = append(args, *filter.ItemID)
		argNum++
	}

	if filter.ClaimantID != nil {
		baseQuery += fmt.Sprintf(" AND claimant_user_id = $%d", argNum)
		args = append(args, *filter.ClaimantID)
		argNum++
	}

	if filter.OwnerID != nil {
		baseQuery += fmt.Sprintf(" AND item_owner_id = $%d", argNum)
		args = append(args, *filter.OwnerID)
		argNum++
	}

	if filter.Status != "" {
		baseQuery += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filter.Status)
		argNum++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать заявки")
	}

	selectQuery := fmt.Sprintf(`SELECT %s %s ORDER BY submitted_at DESC, id LIMIT $%d OFFSET $%d`,
		claimColumns, baseQuery, argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var rows []claimRow
	if err := r.db.SelectContext(ctx, &rows, selectQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить заявки")
	}

	result := make([]*entity.Claim, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, total, nil
}

func (r *ClaimRepositoryAdapter) CountByStatus(ctx context.Context, ownerID *uuid.UUID) (map[valueobject.ClaimStatus]int, error) {
	var rows []countRow
	query := `SELECT status AS key, COUNT(*) AS count FROM claims WHERE ($1::uuid IS NULL OR item_owner_id = $1) GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать заявки")
	}
	result := make(map[valueobject.ClaimStatus]int, len(rows))
	for _, row := range rows {
		result[valueobject.ClaimStatus(row.Key)] = row.Count
	}
	return result, nil
}

type claimSnapshot struct {
	status  valueobject.ClaimStatus
	version int
}

// updateClaimStatus условное обновление по версии. Проигравший гонку получает ErrStaleClaim.
func updateClaimStatus(ctx context.Context, exec sqlx.ExecerContext, claim *entity.Claim, expectedVersion int) error {
	query := `
		UPDATE claims
		SET status = $2, chat_id = $3, version = version + 1, updated_at = $4
		WHERE id = $1 AND version = $5
	`
	result, err := exec.ExecContext(ctx, query, claim.ID, string(claim.Status), claim.ChatID, claim.UpdatedAt, expectedVersion)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить заявку")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат обновления")
	}
	if rows == 0 {
		return apperror.ErrStaleClaim
	}

	claim.Version = expectedVersion + 1
	return nil
}

func lockItem(ctx context.Context, tx *sqlx.Tx, itemID uuid.UUID) (*entity.Item, error) {
	var row itemRow
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &row, query, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrItemNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось заблокировать объявление")
	}
	return row.toEntity(), nil
}

// asAppError оставляет доменные ошибки как есть, а ошибки транзакции заворачивает.
func asAppError(err error, message string) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Wrap(err, apperror.ErrCodeDatabaseError, message)
}

type claimRow struct {
	ID             uuid.UUID  `db:"id"`
	ItemID         uuid.UUID  `db:"item_id"`
	ItemOwnerID    uuid.UUID  `db:"item_owner_id"`
	ClaimantUserID uuid.UUID  `db:"claimant_user_id"`
	FullName       string     `db:"full_name"`
	Email          string     `db:"email"`
	PhoneNumber    *string    `db:"phone_number"`
	Proof          string     `db:"proof"`
	ProofImageURL  *string    `db:"proof_image_url"`
	Status         string     `db:"status"`
	ChatID         *uuid.UUID `db:"chat_id"`
	Version        int        `db:"version"`
	SubmittedAt    time.Time  `db:"submitted_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func (c *claimRow) toEntity() *entity.Claim {
	return &entity.Claim{
		ID:             c.ID,
		ItemID:         c.ItemID,
		ItemOwnerID:    c.ItemOwnerID,
		ClaimantUserID: c.ClaimantUserID,
		FullName:       c.FullName,
		Email:          c.Email,
		PhoneNumber:    c.PhoneNumber,
		Proof:          c.Proof,
		ProofImageURL:  c.ProofImageURL,
		Status:         valueobject.ClaimStatus(c.Status),
		ChatID:         c.ChatID,
		Version:        c.Version,
		SubmittedAt:    c.SubmittedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
