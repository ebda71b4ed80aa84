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

const itemColumns = `id, type, name, category, description, distinguishing_marks, location, date, image_url,
	contact, owner_id, status, created_at, updated_at, resolved_at`

type ItemRepositoryAdapter struct {
	db *sqlx.DB
}

func NewItemRepositoryAdapter(db *sqlx.DB) *ItemRepositoryAdapter {
	return &ItemRepositoryAdapter{db: db}
}

func (r *ItemRepositoryAdapter) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (id, type, name, category, description, distinguishing_marks, location, date, image_url,
		                   contact, owner_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		string(item.Type),
		item.Name,
		item.Category,
		item.Description,
		item.DistinguishingMarks,
		item.Location,
		item.Date,
		item.ImageURL,
		item.Contact,
		item.OwnerID,
		string(item.Status),
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать объявление")
	}
	return nil
}

func (r *ItemRepositoryAdapter) Update(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items
		SET name = $2, category = $3, description = $4, distinguishing_marks = $5, location = $6,
		    date = $7, image_url = $8, contact = $9, updated_at = $10
		WHERE id = $1 AND status = 'open'
	`
	result, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.Category,
		item.Description,
		item.DistinguishingMarks,
		item.Location,
		item.Date,
		item.ImageURL,
		item.Contact,
		item.UpdatedAt,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить объявление")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат обновления")
	}
	if rows == 0 {
		// вещь успели закрыть между чтением и записью
		return apperror.ErrItemResolved
	}
	return nil
}

func (r *ItemRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить объявление")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось проверить результат удаления")
	}
	if rows == 0 {
		return apperror.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	var row itemRow
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrItemNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить объявление")
	}
	return row.toEntity(), nil
}

func (r *ItemRepositoryAdapter) List(ctx context.Context, filter repository.ItemFilter) ([]*entity.Item, int, error) {
	baseQuery := `FROM items WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if filter.Type != "" {
		baseQuery += fmt.Sprintf(" AND type = $%d", argNum)
		args = append(args, filter.Type)
		argNum++
	}

	if filter.Status != "" {
		baseQuery += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filter.Status)
		argNum++
	}

	if filter.Category != "" {
		baseQuery += fmt.Sprintf(" AND LOWER(category) = LOWER($%d)", argNum)
		args = append(args, filter.Category)
		argNum++
	}

	if filter.Location != "" {
		baseQuery += fmt.Sprintf(" AND location ILIKE $%d", argNum)
		args = append(args, common.ContainsPattern(filter.Location))
		argNum++
	}

	if filter.Search != "" {
		baseQuery += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", argNum, argNum)
		args = append(args, common.ContainsPattern(filter.Search))
		argNum++
	}

	if filter.OwnerID != nil {
		baseQuery += fmt.Sprintf(" AND owner_id = $%d", argNum)
		args = append(args, *filter.OwnerID)
		argNum++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать объявления")
	}

	// сортировка только по белому списку колонок
	sortBy := "created_at"
	if filter.SortBy == "date" {
		sortBy = "date"
	}
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`SELECT %s %s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		itemColumns, baseQuery, sortBy, sortOrder, argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var rows []itemRow
	if err := r.db.SelectContext(ctx, &rows, selectQuery, args...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить объявления")
	}

	return itemsFromRows(rows), total, nil
}

func (r *ItemRepositoryAdapter) FindMatchCandidates(ctx context.Context, category string, excludeOwnerID *uuid.UUID, limit int) ([]*entity.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE type = 'found' AND status = 'open'
		  AND ($2::uuid IS NULL OR owner_id <> $2)
		ORDER BY (LOWER(category) = LOWER($1)) DESC, created_at DESC
		LIMIT $3
	`
	var rows []itemRow
	if err := r.db.SelectContext(ctx, &rows, query, category, excludeOwnerID, limit); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить кандидатов для сопоставления")
	}
	return itemsFromRows(rows), nil
}

func (r *ItemRepositoryAdapter) CountByStatus(ctx context.Context, ownerID *uuid.UUID) (map[valueobject.ItemStatus]int, error) {
	var rows []countRow
	query := `SELECT status AS key, COUNT(*) AS count FROM items WHERE ($1::uuid IS NULL OR owner_id = $1) GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать объявления")
	}
	result := make(map[valueobject.ItemStatus]int, len(rows))
	for _, row := range rows {
		result[valueobject.ItemStatus(row.Key)] = row.Count
	}
	return result, nil
}

func (r *ItemRepositoryAdapter) CountByType(ctx context.Context) (map[valueobject.ItemType]int, error) {
	var rows []countRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT type AS key, COUNT(*) AS count FROM items GROUP BY type`); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать объявления")
	}
	result := make(map[valueobject.ItemType]int, len(rows))
	for _, row := range rows {
		result[valueobject.ItemType(row.Key)] = row.Count
	}
	return result, nil
}

type countRow struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}

type itemRow struct {
	ID                  uuid.UUID  `db:"id"`
	Type                string     `db:"type"`
	Name                string     `db:"name"`
	Category            string     `db:"category"`
	Description         string     `db:"description"`
	DistinguishingMarks *string    `db:"distinguishing_marks"`
	Location            string     `db:"location"`
	Date                time.Time  `db:"date"`
	ImageURL            *string    `db:"image_url"`
	Contact             string     `db:"contact"`
	OwnerID             uuid.UUID  `db:"owner_id"`
	Status              string     `db:"status"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
	ResolvedAt          *time.Time `db:"resolved_at"`
}

func (i *itemRow) toEntity() *entity.Item {
	return &entity.Item{
		ID:                  i.ID,
		Type:                valueobject.ItemType(i.Type),
		Name:                i.Name,
		Category:            i.Category,
		Description:         i.Description,
		DistinguishingMarks: i.DistinguishingMarks,
		Location:            i.Location,
		Date:                i.Date,
		ImageURL:            i.ImageURL,
		Contact:             i.Contact,
		OwnerID:             i.OwnerID,
		Status:              valueobject.ItemStatus(i.Status),
		CreatedAt:           i.CreatedAt,
		UpdatedAt:           i.UpdatedAt,
		ResolvedAt:          i.ResolvedAt,
	}
}

func itemsFromRows(rows []itemRow) []*entity.Item {
	result := make([]*entity.Item, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}
