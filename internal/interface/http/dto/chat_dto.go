package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
)

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatResponse struct {
	ClaimID  uuid.UUID         `json:"claim_id"`
	Status   string            `json:"status"`
	Writable bool              `json:"writable"`
	Messages []MessageResponse `json:"messages"`
}

func ToMessageResponse(msg *entity.Message) MessageResponse {
	return MessageResponse{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		SenderID:  msg.SenderID,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
	}
}

func ToChatResponse(claim *entity.Claim, messages []*entity.Message) ChatResponse {
	resp := ChatResponse{
		ClaimID:  claim.ID,
		Status:   string(claim.Status),
		Writable: claim.Status.ChatWritable(),
		Messages: make([]MessageResponse, 0, len(messages)),
	}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, ToMessageResponse(msg))
	}
	return resp
}
