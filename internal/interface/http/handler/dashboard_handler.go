package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-backend/internal/interface/http/response"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/admin"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/partner"
)

// DashboardHandler сводки для панели администратора и портала партнёра.
type DashboardHandler struct {
	statsUC     *admin.StatsUseCase
	dashboardUC *partner.DashboardUseCase
}

func NewDashboardHandler(statsUC *admin.StatsUseCase, dashboardUC *partner.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{statsUC: statsUC, dashboardUC: dashboardUC}
}

func (h *DashboardHandler) AdminStats(c *gin.Context) {
	stats, err := h.statsUC.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

func (h *DashboardHandler) PartnerDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	dashboard, err := h.dashboardUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dashboard)
}
