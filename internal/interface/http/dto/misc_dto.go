package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
)

type SearchMatchesRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description" binding:"required"`
	Location    string `json:"location"`
}

type SubmitFeedbackRequest struct {
	ClaimID *string `json:"claim_id"`
	Rating  int     `json:"rating" binding:"required"`
	Comment string  `json:"comment"`
}

type FeedbackResponse struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	ClaimID   *uuid.UUID `json:"claim_id"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
}

func ToFeedbackResponse(f *entity.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        f.ID,
		UserID:    f.UserID,
		ClaimID:   f.ClaimID,
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	}
}

func ToFeedbackResponses(items []*entity.Feedback) []FeedbackResponse {
	result := make([]FeedbackResponse, 0, len(items))
	for _, f := range items {
		result = append(result, ToFeedbackResponse(f))
	}
	return result
}

type SetMaintenanceRequest struct {
	IsEnabled *bool  `json:"is_enabled" binding:"required"`
	Message   string `json:"message"`
}

type MaintenanceResponse struct {
	IsEnabled bool      `json:"is_enabled"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToMaintenanceResponse(m *entity.MaintenanceMode) MaintenanceResponse {
	return MaintenanceResponse{
		IsEnabled: m.IsEnabled,
		Message:   m.Message,
		UpdatedAt: m.UpdatedAt,
	}
}

type UploadImageResponse struct {
	URL string `json:"url"`
}
