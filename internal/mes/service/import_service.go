package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/bitfantasy/nimo-mes/internal/mes/cache"
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ImportService 订单表格导入
// 接受xlsx/csv，表头按同义词宽松匹配（大小写、变音符不敏感），
// 每行归一化为订单记录后按复合键幂等落库
type ImportService struct {
	orderRepo *repository.OrderRepository
	logRepo   *repository.ActivityLogRepository
	cache     *cache.OrderCache
	logger    *zap.Logger
}

func NewImportService(orderRepo *repository.OrderRepository, logRepo *repository.ActivityLogRepository,
	orderCache *cache.OrderCache, logger *zap.Logger) *ImportService {
	return &ImportService{orderRepo: orderRepo, logRepo: logRepo, cache: orderCache, logger: logger}
}

// 表头同义词，键为归一化后的表头
var headerAliases = map[string]string{
	"orderno":     "order_no",
	"ordernumber": "order_no",
	"order":       "order_no",
	"po":          "order_no",
	"订单号":         "order_no",
	"订单编号":        "order_no",
	"单号":          "order_no",

	"productcode": "product_code",
	"product":     "product_code",
	"itemcode":    "product_code",
	"sku":         "product_code",
	"产品编码":        "product_code",
	"产品编号":        "product_code",
	"型号":          "product_code",

	"customer": "customer",
	"client":   "customer",
	"buyer":    "customer",
	"客户":       "customer",
	"客户名称":     "customer",

	"qty":          "requested_qty",
	"quantity":     "requested_qty",
	"requestedqty": "requested_qty",
	"orderqty":     "requested_qty",
	"pieces":       "requested_qty",
	"数量":           "requested_qty",
	"订单数量":         "requested_qty",

	"steps":     "step_count",
	"stepcount": "step_count",
	"stages":    "step_count",
	"工序数":       "step_count",
	"工序数量":      "step_count",
}

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeHeader 表头归一化：去变音符、小写、去空白和连接符
func NormalizeHeader(h string) string {
	folded, _, err := transform.String(foldDiacritics, h)
	if err != nil {
		folded = h
	}
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(folded)) {
		switch r {
		case ' ', '\t', '_', '-', '.', ':':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// OrderRecord 导入的归一化订单记录
type OrderRecord struct {
	OrderNo      string
	ProductCode  string
	Customer     string
	RequestedQty int64
	StepCount    int
}

// ImportSummary 导入结果汇总
type ImportSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ParseRecords 将表格行归一化为订单记录
// 第一行是表头；缺少订单号或产品编码的行被跳过
func ParseRecords(rows [][]string) ([]OrderRecord, int) {
	if len(rows) == 0 {
		return nil, 0
	}

	columns := map[int]string{}
	for i, h := range rows[0] {
		if field, ok := headerAliases[NormalizeHeader(h)]; ok {
			columns[i] = field
		}
	}

	var records []OrderRecord
	skipped := 0
	for _, row := range rows[1:] {
		var rec OrderRecord
		for i, cell := range row {
			field, ok := columns[i]
			if !ok {
				continue
			}
			value := strings.TrimSpace(cell)
			switch field {
			case "order_no":
				rec.OrderNo = value
			case "product_code":
				rec.ProductCode = value
			case "customer":
				rec.Customer = value
			case "requested_qty":
				if n, err := strconv.ParseInt(value, 10, 64); err == nil && n >= 0 {
					rec.RequestedQty = n
				}
			case "step_count":
				if n, err := strconv.Atoi(value); err == nil && n >= 0 {
					rec.StepCount = n
				}
			}
		}
		if rec.OrderNo == "" || rec.ProductCode == "" {
			if !emptyRow(row) {
				skipped++
			}
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportOrders 解析并落库
// 新订单所有计数器归零；已存在的订单只更新需求数量、工序数与客户，
// 生产进度不受重复导入影响
func (s *ImportService) ImportOrders(ctx context.Context, filename string, r io.Reader) (*ImportSummary, error) {
	rows, err := readRows(filename, r)
	if err != nil {
		return nil, fmt.Errorf("无法解析导入文件: %w", err)
	}
	records, skipped := ParseRecords(rows)

	summary := &ImportSummary{Skipped: skipped}
	for _, rec := range records {
		id := entity.NewOrderID(rec.OrderNo, rec.ProductCode)
		_, err := s.orderRepo.GetByID(id)
		switch {
		case err == nil:
			patch := map[string]interface{}{
				"requested_qty": rec.RequestedQty,
				"step_count":    rec.StepCount,
				"customer":      rec.Customer,
			}
			if err := s.orderRepo.Patch(id, patch); err != nil {
				return summary, fmt.Errorf("%w: %v", ErrPersistence, err)
			}
			summary.Updated++
		case err == repository.ErrNotFound:
			o := &entity.Order{
				ID:           id,
				OrderNo:      rec.OrderNo,
				ProductCode:  rec.ProductCode,
				Customer:     rec.Customer,
				RequestedQty: rec.RequestedQty,
				StepCount:    rec.StepCount,
				StepProgress: entity.StepMap{},
				StepTime:     entity.StepMap{},
				Status:       entity.OrderStatusNotStarted,
			}
			if err := s.orderRepo.Create(o); err != nil {
				return summary, fmt.Errorf("%w: %v", ErrPersistence, err)
			}
			summary.Created++
		default:
			return summary, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	log := &entity.ActivityLog{
		ID:         uuid.New().String(),
		EntityType: "order",
		EntityID:   "import",
		Action:     entity.ActionImport,
		Content:    fmt.Sprintf("导入 %s: 新建%d 更新%d 跳过%d", filename, summary.Created, summary.Updated, summary.Skipped),
	}
	if err := s.logRepo.Create(log); err != nil {
		s.logger.Warn("导入日志写入失败", zap.Error(err))
	}
	s.cache.Invalidate(ctx)

	s.logger.Info("订单导入完成",
		zap.String("file", filename),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

func readRows(filename string, r io.Reader) ([][]string, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		return reader.ReadAll()
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("工作簿为空")
	}
	return f.GetRows(sheets[0])
}
