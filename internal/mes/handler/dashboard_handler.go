package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Daily GET /dashboard/daily?date=YYYY-MM-DD
func (h *DashboardHandler) Daily(c *gin.Context) {
	report, err := h.svc.Daily(c.Query("date"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, report)
}
