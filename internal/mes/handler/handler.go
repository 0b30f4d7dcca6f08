package handler

import (
	"errors"
	"net/http"

	"github.com/bitfantasy/nimo-mes/internal/mes/engine"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Order     *OrderHandler
	Import    *ImportHandler
	Report    *ReportHandler
	Dashboard *DashboardHandler
	Operator  *OperatorHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, repos *repository.Repositories) *Handlers {
	return &Handlers{
		Order:     NewOrderHandler(svc.Tracking),
		Import:    NewImportHandler(svc.Import),
		Report:    NewReportHandler(svc.Report),
		Dashboard: NewDashboardHandler(svc.Dashboard),
		Operator:  NewOperatorHandler(repos.Operator),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

// BadRequest 参数或校验错误
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Code: 40000, Message: message})
}

// NotFound 资源不存在
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{Code: 40400, Message: message})
}

// InternalError 服务端错误
func InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{Code: 50000, Message: message})
}

// Fail 按错误类型映射响应
// 校验错误一律400（动作被拒绝且无任何变更）；持久化错误500（本地已乐观生效，
// 操作员可重试）；未知实体404
func Fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "记录不存在")
	case errors.Is(err, engine.ErrInvalidStep),
		errors.Is(err, engine.ErrInvalidQuantity),
		errors.Is(err, engine.ErrMissingOperator),
		errors.Is(err, engine.ErrUnknownOperator),
		errors.Is(err, engine.ErrUnknownPhase),
		errors.Is(err, engine.ErrPackingIncomplete),
		errors.Is(err, engine.ErrIllegalTransition):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrPersistence):
		InternalError(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}
