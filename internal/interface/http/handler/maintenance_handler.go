package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-backend/internal/interface/http/dto"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/response"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/maintenance"
)

type MaintenanceHandler struct {
	getUC *maintenance.GetMaintenanceUseCase
	setUC *maintenance.SetMaintenanceUseCase
}

func NewMaintenanceHandler(getUC *maintenance.GetMaintenanceUseCase, setUC *maintenance.SetMaintenanceUseCase) *MaintenanceHandler {
	return &MaintenanceHandler{getUC: getUC, setUC: setUC}
}

// GetMaintenance публичный: фронтенд показывает баннер до входа.
func (h *MaintenanceHandler) GetMaintenance(c *gin.Context) {
	mode, err := h.getUC.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToMaintenanceResponse(mode))
}

func (h *MaintenanceHandler) SetMaintenance(c *gin.Context) {
	var req dto.SetMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "поле is_enabled обязательно")
		return
	}

	mode, err := h.setUC.Execute(c.Request.Context(), *req.IsEnabled, req.Message, optionalUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToMaintenanceResponse(mode))
}
