package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/dto"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/response"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/claim"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/item"
)

type ClaimHandler struct {
	submitClaimUC    *claim.SubmitClaimUseCase
	acceptClaimUC    *claim.AcceptClaimUseCase
	rejectClaimUC    *claim.RejectClaimUseCase
	resolveClaimUC   *claim.ResolveClaimUseCase
	confirmClaimUC   *claim.ConfirmClaimUseCase
	getClaimUC       *claim.GetClaimUseCase
	listItemClaimsUC *claim.ListItemClaimsUseCase
	listClaimsUC     *claim.ListClaimsUseCase
}

func NewClaimHandler(
	submitClaimUC *claim.SubmitClaimUseCase,
	acceptClaimUC *claim.AcceptClaimUseCase,
	rejectClaimUC *claim.RejectClaimUseCase,
	resolveClaimUC *claim.ResolveClaimUseCase,
	confirmClaimUC *claim.ConfirmClaimUseCase,
	getClaimUC *claim.GetClaimUseCase,
	listItemClaimsUC *claim.ListItemClaimsUseCase,
	listClaimsUC *claim.ListClaimsUseCase,
) *ClaimHandler {
	return &ClaimHandler{
		submitClaimUC:    submitClaimUC,
		acceptClaimUC:    acceptClaimUC,
		rejectClaimUC:    rejectClaimUC,
		resolveClaimUC:   resolveClaimUC,
		confirmClaimUC:   confirmClaimUC,
		getClaimUC:       getClaimUC,
		listItemClaimsUC: listItemClaimsUC,
		listClaimsUC:     listClaimsUC,
	}
}

func (h *ClaimHandler) SubmitClaim(c *gin.Context) {
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

	var req dto.SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	created, err := h.submitClaimUC.Execute(c.Request.Context(), claim.SubmitClaimInput{
		ItemID:        itemID,
		ClaimantID:    userID,
		FullName:      req.FullName,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		Proof:         req.Proof,
		ProofImageURL: req.ProofImageURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToClaimResponse(created))
}

func (h *ClaimHandler) AcceptClaim(c *gin.Context) {
	h.transition(c, h.acceptClaimUC.Execute)
}

func (h *ClaimHandler) RejectClaim(c *gin.Context) {
	admin := isAdmin(c)
	h.transition(c, func(ctx context.Context, claimID, userID uuid.UUID) (*entity.Claim, error) {
		return h.rejectClaimUC.Execute(ctx, claimID, userID, admin)
	})
}

func (h *ClaimHandler) ResolveClaim(c *gin.Context) {
	h.transition(c, h.resolveClaimUC.Execute)
}

func (h *ClaimHandler) ConfirmClaim(c *gin.Context) {
	h.transition(c, h.confirmClaimUC.Execute)
}

func (h *ClaimHandler) GetClaim(c *gin.Context) {
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

	found, err := h.getClaimUC.Execute(c.Request.Context(), claimID, userID, isAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToClaimResponse(found))
}

func (h *ClaimHandler) ListItemClaims(c *gin.Context) {
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

	limit, offset := item.NormalizePage(parseIntQuery(c, "limit", item.DefaultPageSize), parseIntQuery(c, "offset", 0))
	claims, total, err := h.listItemClaimsUC.Execute(c.Request.Context(), itemID, userID, isAdmin(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToClaimResponses(claims), total, limit, offset)
}

// ListMyClaims заявки, поданные текущим пользователем.
func (h *ClaimHandler) ListMyClaims(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	filter := claimFilterFromQuery(c)
	filter.ClaimantID = &userID
	h.list(c, filter)
}

// ListReceivedClaims заявки на вещи текущего пользователя. Партнёрский
// портал использует тот же обработчик.
func (h *ClaimHandler) ListReceivedClaims(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	filter := claimFilterFromQuery(c)
	filter.OwnerID = &userID
	h.list(c, filter)
}

func (h *ClaimHandler) AdminListClaims(c *gin.Context) {
	h.list(c, claimFilterFromQuery(c))
}

func (h *ClaimHandler) list(c *gin.Context, filter repository.ClaimFilter) {
	claims, total, err := h.listClaimsUC.Execute(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, offset := item.NormalizePage(filter.Limit, filter.Offset)
	response.Paginated(c, dto.ToClaimResponses(claims), total, limit, offset)
}

func (h *ClaimHandler) transition(c *gin.Context, run func(ctx context.Context, claimID, userID uuid.UUID) (*entity.Claim, error)) {
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

	updated, err := run(c.Request.Context(), claimID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToClaimResponse(updated))
}

func claimFilterFromQuery(c *gin.Context) repository.ClaimFilter {
	return repository.ClaimFilter{
		Status: c.Query("status"),
		Limit:  parseIntQuery(c, "limit", item.DefaultPageSize),
		Offset: parseIntQuery(c, "offset", 0),
	}
}
