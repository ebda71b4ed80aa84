package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-backend/internal/interface/http/dto"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/response"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/chat"
)

type ChatHandler struct {
	sendMessageUC  *chat.SendMessageUseCase
	listMessagesUC *chat.ListMessagesUseCase
}

func NewChatHandler(sendMessageUC *chat.SendMessageUseCase, listMessagesUC *chat.ListMessagesUseCase) *ChatHandler {
	return &ChatHandler{
		sendMessageUC:  sendMessageUC,
		listMessagesUC: listMessagesUC,
	}
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	claimID, ok := parseIDParam(c)
	if !ok {
		response.BadRequest(c, "некорректный ID заявки")
		return
	}

	limit := parseIntQuery(c, "limit", chat.DefaultMessagesLimit)
	offset := parseIntQuery(c, "offset", 0)

	messages, claim, err := h.listMessagesUC.Execute(c.Request.Context(), claimID, userID, isAdmin(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToChatResponse(claim, messages))
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	claimID, ok := parseIDParam(c)
	if !ok {
		response.BadRequest(c, "некорректный ID заявки")
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	msg, err := h.sendMessageUC.Execute(c.Request.Context(), claimID, userID, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToMessageResponse(msg))
}
