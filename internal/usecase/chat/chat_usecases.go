package chat

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/dispatch"
)

const (
	DefaultMessagesLimit = 200
	MaxMessagesLimit     = 500
)

type SendMessageUseCase struct {
	claimRepo   repository.ClaimRepository
	messageRepo repository.MessageRepository
	dispatcher  *dispatch.Dispatcher
}

func NewSendMessageUseCase(claimRepo repository.ClaimRepository, messageRepo repository.MessageRepository, dispatcher *dispatch.Dispatcher) *SendMessageUseCase {
	return &SendMessageUseCase{claimRepo: claimRepo, messageRepo: messageRepo, dispatcher: dispatcher}
}

// Execute добавляет сообщение в чат заявки. Окончательная проверка статуса
// выполняется в момент вставки, поэтому устаревшее состояние у клиента не поможет.
func (uc *SendMessageUseCase) Execute(ctx context.Context, claimID, senderID uuid.UUID, text string) (*entity.Message, error) {
	claim, err := uc.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !claim.IsParticipant(senderID) {
		return nil, apperror.ErrForbidden
	}
	if !claim.CanChat() || claim.ChatID == nil {
		return nil, apperror.ErrChatLocked
	}

	msg, err := entity.NewMessage(*claim.ChatID, senderID, text)
	if err != nil {
		return nil, err
	}

	if err := uc.messageRepo.CreateIfChatOpen(ctx, msg); err != nil {
		return nil, err
	}

	uc.dispatcher.Notify(claim.Counterparty(senderID), dispatch.WSMessageNew, dispatch.MessageEvent{
		ID:        msg.ID,
		ClaimID:   claim.ID,
		ChatID:    msg.ChatID,
		SenderID:  msg.SenderID,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
	})
	return msg, nil
}

type ListMessagesUseCase struct {
	claimRepo   repository.ClaimRepository
	messageRepo repository.MessageRepository
}

func NewListMessagesUseCase(claimRepo repository.ClaimRepository, messageRepo repository.MessageRepository) *ListMessagesUseCase {
	return &ListMessagesUseCase{claimRepo: claimRepo, messageRepo: messageRepo}
}

// Execute возвращает сообщения по возрастанию времени. Чат, который ещё не открыт, пуст.
func (uc *ListMessagesUseCase) Execute(ctx context.Context, claimID, userID uuid.UUID, isAdmin bool, limit, offset int) ([]*entity.Message, *entity.Claim, error) {
	claim, err := uc.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		return nil, nil, err
	}

	if !claim.IsParticipant(userID) && !isAdmin {
		return nil, nil, apperror.ErrForbidden
	}

	if claim.ChatID == nil {
		return []*entity.Message{}, claim, nil
	}

	if limit <= 0 {
		limit = DefaultMessagesLimit
	}
	if limit > MaxMessagesLimit {
		limit = MaxMessagesLimit
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := uc.messageRepo.FindByChatID(ctx, *claim.ChatID, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	return messages, claim, nil
}
