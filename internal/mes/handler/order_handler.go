package handler

import (
	"strconv"

	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	svc *service.TrackingService
}

func NewOrderHandler(svc *service.TrackingService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// List GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	params := repository.OrderListParams{
		Status:        c.Query("status"),
		Keyword:       c.Query("keyword"),
		IncludeHidden: c.Query("include_hidden") == "true",
	}
	orders, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": orders, "total": len(orders)})
}

// Completions GET /orders/completions
func (h *OrderHandler) Completions(c *gin.Context) {
	orders, err := h.svc.Completions(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": orders, "total": len(orders)})
}

// Get GET /orders/:id
// 附带实时累计时长，供运行中订单的倒计时显示
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"order": o, "current_elapsed_sec": h.svc.CurrentElapsed(o)})
}

// Create POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	o, err := h.svc.CreateOrder(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, o)
}

// Start POST /orders/:id/start
func (h *OrderHandler) Start(c *gin.Context) {
	o, err := h.svc.Start(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// Pause POST /orders/:id/pause
func (h *OrderHandler) Pause(c *gin.Context) {
	o, err := h.svc.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// Resume POST /orders/:id/resume
func (h *OrderHandler) Resume(c *gin.Context) {
	o, err := h.svc.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// Stop POST /orders/:id/stop
func (h *OrderHandler) Stop(c *gin.Context) {
	var req service.StopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	o, err := h.svc.Stop(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// AdvanceOrderPhase POST /orders/:id/phase
func (h *OrderHandler) AdvanceOrderPhase(c *gin.Context) {
	var req service.PhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	o, err := h.svc.AdvanceOrderPhase(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// AdvanceBatchPhase POST /orders/:id/batches/:batchId/phase
func (h *OrderHandler) AdvanceBatchPhase(c *gin.Context) {
	var req service.PhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	b, err := h.svc.AdvanceBatchPhase(c.Request.Context(), c.Param("id"), c.Param("batchId"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, b)
}

// ForceComplete POST /orders/:id/force-complete
func (h *OrderHandler) ForceComplete(c *gin.Context) {
	var req service.ForceCompleteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}
	o, err := h.svc.ForceComplete(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// Reset POST /orders/:id/reset
func (h *OrderHandler) Reset(c *gin.Context) {
	o, err := h.svc.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, o)
}

// Hide POST /orders/:id/hide
func (h *OrderHandler) Hide(c *gin.Context) {
	if err := h.svc.SetHidden(c.Request.Context(), c.Param("id"), true); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// Restore POST /orders/:id/restore
func (h *OrderHandler) Restore(c *gin.Context) {
	if err := h.svc.SetHidden(c.Request.Context(), c.Param("id"), false); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// Activity GET /orders/:id/activity
func (h *OrderHandler) Activity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	logs, err := h.svc.Activity(c.Param("id"), limit)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": logs, "total": len(logs)})
}
