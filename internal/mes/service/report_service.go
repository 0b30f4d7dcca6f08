package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/engine"
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/minio/minio-go/v7"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ReportService 生产报表导出
// 只读消费订单/批次实体，渲染xlsx报表，可选归档到对象存储
type ReportService struct {
	orderRepo *repository.OrderRepository
	minio     *minio.Client
	bucket    string
	logger    *zap.Logger
}

func NewReportService(orderRepo *repository.OrderRepository, minioClient *minio.Client, bucket string, logger *zap.Logger) *ReportService {
	return &ReportService{orderRepo: orderRepo, minio: minioClient, bucket: bucket, logger: logger}
}

var reportHeaders = []string{
	"订单号", "产品编码", "客户", "需求数量", "完成数量", "剩余数量",
	"状态", "工序进度", "工序耗时", "批次", "批次数量", "批次阶段", "打包数量", "箱数", "备注",
}

// BuildReport 渲染生产报表
// 每个订单一行，其后每个批次（含遗留订单的合成批次）各一行
func (s *ReportService) BuildReport(ctx context.Context) (*excelize.File, error) {
	orders, err := s.orderRepo.List(repository.OrderListParams{IncludeHidden: true})
	if err != nil {
		return nil, fmt.Errorf("读取订单失败: %w", err)
	}

	f := excelize.NewFile()
	sheet := "生产报表"
	f.SetSheetName("Sheet1", sheet)

	for i, h := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for i := range orders {
		o := &orders[i]
		remaining := o.RequestedQty - o.FullyDoneQty
		if remaining < 0 {
			remaining = 0
		}
		setRow(f, sheet, row, []interface{}{
			o.OrderNo, o.ProductCode, o.Customer,
			o.RequestedQty, o.FullyDoneQty, remaining,
			o.Status, formatSteps(o.StepProgress, "件"), formatSteps(o.StepTime, "秒"),
		})
		row++

		for _, b := range engine.BatchesOf(o) {
			label := b.ID
			if b.Virtual {
				label = "整单（合成）"
			}
			setRow(f, sheet, row, []interface{}{
				o.OrderNo, o.ProductCode, "", "", "", "", "", "", "",
				label, b.Qty, b.Status, b.PackedQty, b.Boxes, b.Notes,
			})
			row++
		}
	}
	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}

// formatSteps 工序台账的紧凑展示，如 "1:6件 2:4件"
func formatSteps(m entity.StepMap, unit string) string {
	if len(m) == 0 {
		return ""
	}
	steps := make([]int, 0, len(m))
	for step := range m {
		steps = append(steps, step)
	}
	sort.Ints(steps)
	parts := make([]string, 0, len(steps))
	for _, step := range steps {
		parts = append(parts, fmt.Sprintf("%d:%d%s", step, m[step], unit))
	}
	return strings.Join(parts, " ")
}

// Archive 报表归档到对象存储，返回对象键
func (s *ReportService) Archive(ctx context.Context, f *excelize.File) (string, error) {
	if s.minio == nil {
		return "", fmt.Errorf("对象存储未启用")
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", fmt.Errorf("报表序列化失败: %w", err)
	}
	key := fmt.Sprintf("reports/production-%s.xlsx", time.Now().Format("20060102-150405"))
	_, err = s.minio.PutObject(ctx, s.bucket, key, buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	})
	if err != nil {
		return "", fmt.Errorf("报表归档失败: %w", err)
	}
	s.logger.Info("报表已归档", zap.String("bucket", s.bucket), zap.String("key", key))
	return key, nil
}
