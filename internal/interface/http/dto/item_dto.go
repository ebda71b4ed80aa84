package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
)

type ItemRequest struct {
	Type                string  `json:"type"`
	Name                string  `json:"name" binding:"required"`
	Category            string  `json:"category" binding:"required"`
	Description         string  `json:"description" binding:"required"`
	DistinguishingMarks *string `json:"distinguishing_marks"`
	Location            string  `json:"location" binding:"required"`
	Date                string  `json:"date" binding:"required"`
	ImageURL            *string `json:"image_url"`
	Contact             string  `json:"contact" binding:"required"`
}

type ItemResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Type                string     `json:"type"`
	Name                string     `json:"name"`
	Category            string     `json:"category"`
	Description         string     `json:"description"`
	DistinguishingMarks *string    `json:"distinguishing_marks"`
	Location            string     `json:"location"`
	Date                string     `json:"date"`
	ImageURL            *string    `json:"image_url"`
	Contact             string     `json:"contact"`
	OwnerID             uuid.UUID  `json:"owner_id"`
	Status              string     `json:"status"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	ResolvedAt          *time.Time `json:"resolved_at"`
}

const dateLayout = "2006-01-02"

func ToItemResponse(item *entity.Item) ItemResponse {
	return ItemResponse{
		ID:                  item.ID,
		Type:                string(item.Type),
		Name:                item.Name,
		Category:            item.Category,
		Description:         item.Description,
		DistinguishingMarks: item.DistinguishingMarks,
		Location:            item.Location,
		Date:                item.Date.Format(dateLayout),
		ImageURL:            item.ImageURL,
		Contact:             item.Contact,
		OwnerID:             item.OwnerID,
		Status:              string(item.Status),
		CreatedAt:           item.CreatedAt,
		UpdatedAt:           item.UpdatedAt,
		ResolvedAt:          item.ResolvedAt,
	}
}

func ToItemResponses(items []*entity.Item) []ItemResponse {
	result := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, ToItemResponse(item))
	}
	return result
}

// ParseItemDate принимает дату в формате YYYY-MM-DD или RFC 3339.
func ParseItemDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
