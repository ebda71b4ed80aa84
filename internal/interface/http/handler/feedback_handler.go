package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/interface/http/dto"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/response"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/feedback"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/item"
)

type FeedbackHandler struct {
	submitUC *feedback.SubmitFeedbackUseCase
	listUC   *feedback.ListFeedbackUseCase
}

func NewFeedbackHandler(submitUC *feedback.SubmitFeedbackUseCase, listUC *feedback.ListFeedbackUseCase) *FeedbackHandler {
	return &FeedbackHandler{submitUC: submitUC, listUC: listUC}
}

func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	var req dto.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	var claimID *uuid.UUID
	if req.ClaimID != nil && *req.ClaimID != "" {
		parsed, err := uuid.Parse(*req.ClaimID)
		if err != nil {
			response.BadRequest(c, "некорректный ID заявки")
			return
		}
		claimID = &parsed
	}

	created, err := h.submitUC.Execute(c.Request.Context(), userID, claimID, req.Rating, req.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToFeedbackResponse(created))
}

func (h *FeedbackHandler) AdminListFeedback(c *gin.Context) {
	limit, offset := item.NormalizePage(parseIntQuery(c, "limit", item.DefaultPageSize), parseIntQuery(c, "offset", 0))

	list, total, err := h.listUC.Execute(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToFeedbackResponses(list), total, limit, offset)
}
