package handler

import (
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OperatorHandler struct {
	repo *repository.OperatorRepository
}

func NewOperatorHandler(repo *repository.OperatorRepository) *OperatorHandler {
	return &OperatorHandler{repo: repo}
}

// List GET /operators
func (h *OperatorHandler) List(c *gin.Context) {
	ops, err := h.repo.List(c.Query("active") == "true")
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": ops, "total": len(ops)})
}

// Create POST /operators
func (h *OperatorHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	op := &entity.Operator{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := h.repo.Create(op); err != nil {
		InternalError(c, "创建操作员失败: "+err.Error())
		return
	}
	Created(c, op)
}

// Update PUT /operators/:id
// 启用/停用操作员，停用后其报工会被拒绝
func (h *OperatorHandler) Update(c *gin.Context) {
	var req struct {
		Active *bool  `json:"active"`
		Name   string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	op, err := h.repo.GetByID(c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	if req.Active != nil {
		op.Active = *req.Active
	}
	if req.Name != "" {
		op.Name = req.Name
	}
	if err := h.repo.Update(op); err != nil {
		InternalError(c, "更新操作员失败: "+err.Error())
		return
	}
	Success(c, op)
}
