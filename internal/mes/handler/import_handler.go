package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type ImportHandler struct {
	svc *service.ImportService
}

func NewImportHandler(svc *service.ImportService) *ImportHandler {
	return &ImportHandler{svc: svc}
}

// Import POST /orders/import
// multipart上传xlsx或csv
func (h *ImportHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "缺少上传文件")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		BadRequest(c, "无法读取上传文件: "+err.Error())
		return
	}
	defer file.Close()

	summary, err := h.svc.ImportOrders(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, summary)
}
