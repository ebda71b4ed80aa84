package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
)

type SubmitClaimRequest struct {
	FullName      string  `json:"full_name" binding:"required"`
	Email         string  `json:"email" binding:"required"`
	PhoneNumber   *string `json:"phone_number"`
	Proof         string  `json:"proof" binding:"required"`
	ProofImageURL *string `json:"proof_image_url"`
}

type ClaimResponse struct {
	ID             uuid.UUID  `json:"id"`
	ItemID         uuid.UUID  `json:"item_id"`
	ItemOwnerID    uuid.UUID  `json:"item_owner_id"`
	ClaimantUserID uuid.UUID  `json:"claimant_user_id"`
	FullName       string     `json:"full_name"`
	Email          string     `json:"email"`
	PhoneNumber    *string    `json:"phone_number"`
	Proof          string     `json:"proof"`
	ProofImageURL  *string    `json:"proof_image_url"`
	Status         string     `json:"status"`
	ChatID         *uuid.UUID `json:"chat_id"`
	ChatWritable   bool       `json:"chat_writable"`
	Version        int        `json:"version"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func ToClaimResponse(claim *entity.Claim) ClaimResponse {
	return ClaimResponse{
		ID:             claim.ID,
		ItemID:         claim.ItemID,
		ItemOwnerID:    claim.ItemOwnerID,
		ClaimantUserID: claim.ClaimantUserID,
		FullName:       claim.FullName,
		Email:          claim.Email,
		PhoneNumber:    claim.PhoneNumber,
		Proof:          claim.Proof,
		ProofImageURL:  claim.ProofImageURL,
		Status:         string(claim.Status),
		ChatID:         claim.ChatID,
		ChatWritable:   claim.Status.ChatWritable(),
		Version:        claim.Version,
		SubmittedAt:    claim.SubmittedAt,
		UpdatedAt:      claim.UpdatedAt,
	}
}

func ToClaimResponses(claims []*entity.Claim) []ClaimResponse {
	result := make([]ClaimResponse, 0, len(claims))
	for _, claim := range claims {
		result = append(result, ToClaimResponse(claim))
	}
	return result
}
