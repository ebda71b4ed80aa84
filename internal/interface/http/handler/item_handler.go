package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/dto"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/response"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/item"
)

type ItemHandler struct {
	createItemUC *item.CreateItemUseCase
	updateItemUC *item.UpdateItemUseCase
	getItemUC    *item.GetItemUseCase
	listItemsUC  *item.ListItemsUseCase
	deleteItemUC *item.DeleteItemUseCase
}

func NewItemHandler(
	createItemUC *item.CreateItemUseCase,
	updateItemUC *item.UpdateItemUseCase,
	getItemUC *item.GetItemUseCase,
	listItemsUC *item.ListItemsUseCase,
	deleteItemUC *item.DeleteItemUseCase,
) *ItemHandler {
	return &ItemHandler{
		createItemUC: createItemUC,
		updateItemUC: updateItemUC,
		getItemUC:    getItemUC,
		listItemsUC:  listItemsUC,
		deleteItemUC: deleteItemUC,
	}
}

func (h *ItemHandler) CreateItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	input, ok := bindItemInput(c)
	if !ok {
		return
	}

	created, err := h.createItemUC.Execute(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToItemResponse(created))
}

func (h *ItemHandler) UpdateItem(c *gin.Context) {
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

	input, ok := bindItemInput(c)
	if !ok {
		return
	}

	updated, err := h.updateItemUC.Execute(c.Request.Context(), itemID, userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToItemResponse(updated))
}

func (h *ItemHandler) GetItem(c *gin.Context) {
	itemID, ok := parseIDParam(c)
	if !ok {
		response.BadRequest(c, "некорректный ID объявления")
		return
	}

	found, err := h.getItemUC.Execute(c.Request.Context(), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToItemResponse(found))
}

// ListItems публичный каталог: по умолчанию только открытые объявления.
func (h *ItemHandler) ListItems(c *gin.Context) {
	filter := itemFilterFromQuery(c)
	if filter.Status == "" {
		filter.Status = "open"
	}
	if ownerParam := c.Query("owner_id"); ownerParam != "" {
		ownerID, err := uuid.Parse(ownerParam)
		if err != nil {
			response.BadRequest(c, "некорректный owner_id")
			return
		}
		filter.OwnerID = &ownerID
	}

	h.list(c, filter)
}

// ListMyItems объявления текущего пользователя в любом статусе.
func (h *ItemHandler) ListMyItems(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	filter := itemFilterFromQuery(c)
	filter.OwnerID = &userID
	h.list(c, filter)
}

// AdminListItems объявления в любом статусе для модерации.
func (h *ItemHandler) AdminListItems(c *gin.Context) {
	filter := itemFilterFromQuery(c)
	if ownerParam := c.Query("owner_id"); ownerParam != "" {
		ownerID, err := uuid.Parse(ownerParam)
		if err != nil {
			response.BadRequest(c, "некорректный owner_id")
			return
		}
		filter.OwnerID = &ownerID
	}
	h.list(c, filter)
}

func (h *ItemHandler) AdminDeleteItem(c *gin.Context) {
	itemID, ok := parseIDParam(c)
	if !ok {
		response.BadRequest(c, "некорректный ID объявления")
		return
	}

	if err := h.deleteItemUC.Execute(c.Request.Context(), itemID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

func (h *ItemHandler) list(c *gin.Context, filter repository.ItemFilter) {
	items, total, err := h.listItemsUC.Execute(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, offset := item.NormalizePage(filter.Limit, filter.Offset)
	response.Paginated(c, dto.ToItemResponses(items), total, limit, offset)
}

func itemFilterFromQuery(c *gin.Context) repository.ItemFilter {
	return repository.ItemFilter{
		Type:      c.Query("type"),
		Status:    c.Query("status"),
		Category:  c.Query("category"),
		Location:  c.Query("location"),
		Search:    c.Query("q"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Limit:     parseIntQuery(c, "limit", item.DefaultPageSize),
		Offset:    parseIntQuery(c, "offset", 0),
	}
}

func bindItemInput(c *gin.Context) (item.ItemInput, bool) {
	var req dto.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return item.ItemInput{}, false
	}

	date, err := dto.ParseItemDate(req.Date)
	if err != nil {
		response.BadRequest(c, "некорректный формат даты, ожидается YYYY-MM-DD")
		return item.ItemInput{}, false
	}

	return item.ItemInput{
		Type:                req.Type,
		Name:                req.Name,
		Category:            req.Category,
		Description:         req.Description,
		DistinguishingMarks: req.DistinguishingMarks,
		Location:            req.Location,
		Date:                date,
		ImageURL:            req.ImageURL,
		Contact:             req.Contact,
	}, true
}
