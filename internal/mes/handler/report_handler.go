package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Production GET /reports/production.xlsx
// ?archive=true 时先归档到对象存储，响应附带对象键
func (h *ReportHandler) Production(c *gin.Context) {
	f, err := h.svc.BuildReport(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	defer f.Close()

	if c.Query("archive") == "true" {
		key, err := h.svc.Archive(c.Request.Context(), f)
		if err != nil {
			InternalError(c, err.Error())
			return
		}
		c.Header("X-Archive-Key", key)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\"production_report.xlsx\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write report: "+err.Error())
	}
}
