package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-backend/internal/interface/http/dto"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/response"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/match"
)

type MatchHandler struct {
	suggestUC *match.SuggestMatchesUseCase
	searchUC  *match.SearchMatchesUseCase
}

func NewMatchHandler(suggestUC *match.SuggestMatchesUseCase, searchUC *match.SearchMatchesUseCase) *MatchHandler {
	return &MatchHandler{suggestUC: suggestUC, searchUC: searchUC}
}

// SuggestForItem подбирает найденные вещи к потерянной вещи владельца.
func (h *MatchHandler) SuggestForItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	itemID, ok := parseIDParam(c)
	if !ok {
		response.BadRequest(c, "некорректный ID объявления")
		return
	}

	matches, err := h.suggestUC.Execute(c.Request.Context(), itemID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToItemResponses(matches))
}

// Search доступен и анонимно; собственные находки авторизованного пользователя исключаются.
func (h *MatchHandler) Search(c *gin.Context) {
	var req dto.SearchMatchesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "описание вещи обязательно")
		return
	}

	matches, err := h.searchUC.Execute(c.Request.Context(), optionalUserID(c), match.SearchInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToItemResponses(matches))
}
