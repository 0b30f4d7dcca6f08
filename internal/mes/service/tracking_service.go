package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/cache"
	"github.com/bitfantasy/nimo-mes/internal/mes/engine"
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/notify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPersistence 文档存储写入失败
// 本地状态已乐观生效后才会出现，不自动回滚，下次完整读取以存储为准
var ErrPersistence = errors.New("persistence failed")

// TrackingService 订单跟踪引擎编排
// 接收操作员动作，读取当前订单文档，调用纯引擎计算下一状态，
// 以单次合并写回存储，随后追加审计日志、失效缓存、推送事件
type TrackingService struct {
	repos     *repository.Repositories
	cache     *cache.OrderCache
	webhook   *notify.WebhookNotifier
	publisher *notify.Publisher
	retention time.Duration
	logger    *zap.Logger
}

func NewTrackingService(repos *repository.Repositories, orderCache *cache.OrderCache,
	webhook *notify.WebhookNotifier, publisher *notify.Publisher,
	retention time.Duration, logger *zap.Logger) *TrackingService {
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	return &TrackingService{
		repos:     repos,
		cache:     orderCache,
		webhook:   webhook,
		publisher: publisher,
		retention: retention,
		logger:    logger,
	}
}

type CreateOrderRequest struct {
	OrderNo      string `json:"order_no" binding:"required"`
	ProductCode  string `json:"product_code" binding:"required"`
	Customer     string `json:"customer"`
	RequestedQty int64  `json:"requested_qty" binding:"gte=0"`
	StepCount    int    `json:"step_count" binding:"gte=0"`
}

// CreateOrder 手工录入订单，所有计数器归零
func (s *TrackingService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*entity.Order, error) {
	id := entity.NewOrderID(req.OrderNo, req.ProductCode)
	if existing, err := s.repos.Order.GetByID(id); err == nil && existing != nil {
		return nil, fmt.Errorf("订单已存在: %s / %s", req.OrderNo, req.ProductCode)
	}
	o := &entity.Order{
		ID:           id,
		OrderNo:      strings.TrimSpace(req.OrderNo),
		ProductCode:  strings.TrimSpace(req.ProductCode),
		Customer:     strings.TrimSpace(req.Customer),
		RequestedQty: req.RequestedQty,
		StepCount:    req.StepCount,
		StepProgress: entity.StepMap{},
		StepTime:     entity.StepMap{},
		Status:       entity.OrderStatusNotStarted,
	}
	if err := s.repos.Order.Create(o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.cache.Invalidate(ctx)
	return o, nil
}

// Get 读取订单，批次为空的遗留订单附带合成批次视图
func (s *TrackingService) Get(ctx context.Context, id string) (*entity.Order, error) {
	o, err := s.repos.Order.GetByID(id)
	if err != nil {
		return nil, err
	}
	o.Batches = engine.BatchesOf(o)
	return o, nil
}

// CurrentElapsed 实时累计时长（秒），只读，不改变任何存储状态
func (s *TrackingService) CurrentElapsed(o *entity.Order) int64 {
	return engine.TimerOf(o).CurrentElapsed(time.Now())
}

// List 订单列表，默认视图走redis读穿缓存
func (s *TrackingService) List(ctx context.Context, params repository.OrderListParams) ([]entity.Order, error) {
	defaultView := params.Status == "" && params.Keyword == "" && !params.IncludeHidden
	if defaultView {
		if orders, ok := s.cache.GetActive(ctx); ok {
			return orders, nil
		}
	}
	orders, err := s.repos.Order.List(params)
	if err != nil {
		return nil, err
	}
	if defaultView {
		s.cache.SetActive(ctx, orders)
	}
	return orders, nil
}

// Completions 进行中完成视图
// 有完成数量的订单及其批次（含合成批次）；在 ready_for_delivery
// 停留超过留存时长的批次被过滤，批次全部过期的订单整体不展示
func (s *TrackingService) Completions(ctx context.Context) ([]entity.Order, error) {
	orders, err := s.repos.Order.List(repository.OrderListParams{})
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]entity.Order, 0, len(orders))
	for _, o := range orders {
		if o.FullyDoneQty <= 0 {
			continue
		}
		batches := engine.BatchesOf(&o)
		visible := make([]entity.Batch, 0, len(batches))
		for _, b := range batches {
			if engine.IsStaleReady(b.Status, b.StatusChangedAt, now, s.retention) {
				continue
			}
			visible = append(visible, b)
		}
		if len(visible) == 0 {
			continue
		}
		o.Batches = visible
		out = append(out, o)
	}
	return out, nil
}

// Start 开始计时
func (s *TrackingService) Start(ctx context.Context, id string) (*entity.Order, error) {
	return s.timerOp(ctx, id, engine.Start)
}

// Pause 暂停计时
func (s *TrackingService) Pause(ctx context.Context, id string) (*entity.Order, error) {
	return s.timerOp(ctx, id, engine.Pause)
}

// Resume 继续计时
func (s *TrackingService) Resume(ctx context.Context, id string) (*entity.Order, error) {
	return s.timerOp(ctx, id, engine.Resume)
}

func (s *TrackingService) timerOp(ctx context.Context, id string,
	op func(*entity.Order, time.Time) (engine.Patch, error)) (*entity.Order, error) {
	o, err := s.repos.Order.GetByID(id)
	if err != nil {
		return nil, err
	}
	patch, err := op(o, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repos.Order.Patch(id, patch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.cache.Invalidate(ctx)
	return o, nil
}

// StopRequest 报工请求
// 校验交给引擎完成，保证错误类型统一且校验失败时无任何变更
type StopRequest struct {
	Step     int    `json:"step"`
	Pieces   int64  `json:"pieces"`
	Operator string `json:"operator"`
	Notes    string `json:"notes"`
}

// Stop 报工
// 校验全部通过后才落任何变更；订单补丁为单次合并写，
// 批次、审计日志随后各自写入
func (s *TrackingService) Stop(ctx context.Context, id string, req StopRequest) (*entity.Order, error) {
	o, err := s.repos.Order.GetByID(id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Operator)
	if name == "" {
		return nil, engine.ErrMissingOperator
	}
	op, err := s.repos.Operator.GetByName(name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, engine.ErrUnknownOperator
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !op.Active {
		return nil, engine.ErrUnknownOperator
	}

	result, err := engine.Stop(o, engine.StopInput{
		Step:     req.Step,
		Pieces:   req.Pieces,
		Operator: name,
		Notes:    req.Notes,
	}, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.repos.Order.Patch(id, result.Patch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if result.NewBatch != nil {
		if err := s.repos.Batch.Create(result.NewBatch); err != nil {
			s.logger.Error("批次创建失败", zap.String("order_id", id), zap.Error(err))
		} else {
			o.Batches = append(o.Batches, *result.NewBatch)
		}
	}

	// 操作员活动流水无条件追加
	s.appendLog(&entity.ActivityLog{
		EntityType:  "order",
		EntityID:    id,
		Action:      entity.ActionStop,
		ToStatus:    o.Status,
		Operator:    name,
		Step:        req.Step,
		Pieces:      req.Pieces,
		DurationSec: result.DurationSec,
	})
	if strings.TrimSpace(req.Notes) != "" {
		s.appendLog(&entity.ActivityLog{
			EntityType: "order",
			EntityID:   id,
			Action:     entity.ActionNote,
			Operator:   name,
			Content:    req.Notes,
		})
	}

	s.cache.Invalidate(ctx)

	ev := s.orderEvent("stopped", o)
	ev.Operator = name
	if result.Completed {
		ev.Event = "completed"
		s.webhook.Send(ctx, ev)
	}
	s.publisher.Publish(ctx, ev)

	s.logger.Info("报工完成",
		zap.String("order_id", id),
		zap.Int("step", req.Step),
		zap.Int64("pieces", req.Pieces),
		zap.Int64("duration_sec", result.DurationSec),
		zap.Int64("fully_done", o.FullyDoneQty),
		zap.Bool("completed", result.Completed))

	return o, nil
}

type PhaseRequest struct {
	Phase     string `json:"phase" binding:"required"`
	PackedQty int64  `json:"packed_qty"`
	Boxes     int    `json:"boxes"`
	Size      string `json:"size"`
	Weight    string `json:"weight"`
	Notes     string `json:"notes"`
}

func (r PhaseRequest) meta() engine.PackingMeta {
	return engine.PackingMeta{
		PackedQty: r.PackedQty,
		Boxes:     r.Boxes,
		Size:      r.Size,
		Weight:    r.Weight,
		Notes:     r.Notes,
	}
}

// AdvanceOrderPhase 整单阶段推进（完成后的订单或遗留的无批次订单）
// 计时进行中（running/paused）不允许推进：阶段补丁不触碰计时字段，
// 先报工或保持暂停排队，保证 timer_started_at 非空当且仅当 running
func (s *TrackingService) AdvanceOrderPhase(ctx context.Context, id string, req PhaseRequest) (*entity.Order, error) {
	if req.Phase == entity.BatchStatusPartial {
		return nil, engine.ErrUnknownPhase
	}
	o, err := s.repos.Order.GetByID(id)
	if err != nil {
		return nil, err
	}
	if o.Status == entity.OrderStatusRunning || o.Status == entity.OrderStatusPaused {
		return nil, engine.ErrIllegalTransition
	}
	cur := engine.PhaseState{
		Status: o.Status,
		Meta: engine.PackingMeta{
			PackedQty: o.PackedQty, Boxes: o.Boxes, Size: o.Size,
			Weight: o.Weight, Notes: o.PackingNotes,
		},
	}
	next, err := engine.AdvancePhase(cur, req.Phase, req.meta(), time.Now())
	if err != nil {
		return nil, err
	}

	from := o.Status
	o.Status = next.Status
	o.PackedQty = next.Meta.PackedQty
	o.Boxes = next.Meta.Boxes
	o.Size = next.Meta.Size
	o.Weight = next.Meta.Weight
	o.PackingNotes = next.Meta.Notes
	o.StatusChangedAt = &next.ChangedAt

	patch := engine.Patch{
		"status":            next.Status,
		"packed_qty":        next.Meta.PackedQty,
		"boxes":             next.Meta.Boxes,
		"size":              next.Meta.Size,
		"weight":            next.Meta.Weight,
		"packing_notes":     next.Meta.Notes,
		"status_changed_at": next.ChangedAt,
	}
	if err := s.repos.Order.Patch(id, patch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.appendLog(&entity.ActivityLog{
		EntityType: "order",
		EntityID:   id,
		Action:     entity.ActionPhaseChange,
		FromStatus: from,
		ToStatus:   next.Status,
	})
	s.cache.Invalidate(ctx)

	ev := s.orderEvent("phase_changed", o)
	s.webhook.Send(ctx, ev)
	s.publisher.Publish(ctx, ev)
	return o, nil
}

// AdvanceBatchPhase 批次阶段推进
// batchID 为 "virtual" 时针对遗留订单的合成批次：推进动作即首次真实写入，
// 合成批次在此刻物化为持久批次
func (s *TrackingService) AdvanceBatchPhase(ctx context.Context, orderID, batchID string, req PhaseRequest) (*entity.Batch, error) {
	now := time.Now()
	if batchID == engine.VirtualBatchID {
		return s.materializeVirtualBatch(ctx, orderID, req, now)
	}

	b, err := s.repos.Batch.GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if b.OrderID != orderID {
		return nil, repository.ErrNotFound
	}
	cur := engine.PhaseState{
		Status: b.Status,
		Meta: engine.PackingMeta{
			PackedQty: b.PackedQty, Boxes: b.Boxes, Size: b.Size,
			Weight: b.Weight, Notes: b.Notes,
		},
	}
	next, err := engine.AdvancePhase(cur, req.Phase, req.meta(), now)
	if err != nil {
		return nil, err
	}

	from := b.Status
	b.Status = next.Status
	b.PackedQty = next.Meta.PackedQty
	b.Boxes = next.Meta.Boxes
	b.Size = next.Meta.Size
	b.Weight = next.Meta.Weight
	b.Notes = next.Meta.Notes
	b.StatusChangedAt = next.ChangedAt

	patch := map[string]interface{}{
		"status":            next.Status,
		"packed_qty":        next.Meta.PackedQty,
		"boxes":             next.Meta.Boxes,
		"size":              next.Meta.Size,
		"weight":            next.Meta.Weight,
		"notes":             next.Meta.Notes,
		"status_changed_at": next.ChangedAt,
	}
	if err := s.repos.Batch.Patch(batchID, patch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.appendLog(&entity.ActivityLog{
		EntityType: "batch",
		EntityID:   batchID,
		Action:     entity.ActionPhaseChange,
		FromStatus: from,
		ToStatus:   next.Status,
		Metadata:   entity.JSONB{"order_id": orderID, "qty": b.Qty},
	})
	s.cache.Invalidate(ctx)

	if o, err := s.repos.Order.GetByID(orderID); err == nil {
		ev := s.orderEvent("phase_changed", o)
		ev.BatchID = batchID
		s.webhook.Send(ctx, ev)
		s.publisher.Publish(ctx, ev)
	}
	return b, nil
}

func (s *TrackingService) materializeVirtualBatch(ctx context.Context, orderID string, req PhaseRequest, now time.Time) (*entity.Batch, error) {
	o, err := s.repos.Order.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	vb := engine.VirtualBatch(o)
	if vb == nil {
		return nil, repository.ErrNotFound
	}
	cur := engine.PhaseState{Status: vb.Status, Meta: engine.PackingMeta{
		PackedQty: vb.PackedQty, Boxes: vb.Boxes, Size: vb.Size,
		Weight: vb.Weight, Notes: vb.Notes,
	}}
	next, err := engine.AdvancePhase(cur, req.Phase, req.meta(), now)
	if err != nil {
		return nil, err
	}

	b := &entity.Batch{
		ID:              uuid.New().String(),
		OrderID:         orderID,
		Qty:             vb.Qty,
		Status:          next.Status,
		PackedQty:       next.Meta.PackedQty,
		Boxes:           next.Meta.Boxes,
		Size:            next.Meta.Size,
		Weight:          next.Meta.Weight,
		Notes:           next.Meta.Notes,
		CreatedAt:       now,
		StatusChangedAt: next.ChangedAt,
	}
	if err := s.repos.Batch.Create(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.appendLog(&entity.ActivityLog{
		EntityType: "batch",
		EntityID:   b.ID,
		Action:     entity.ActionPhaseChange,
		FromStatus: vb.Status,
		ToStatus:   next.Status,
		Metadata:   entity.JSONB{"order_id": orderID, "qty": b.Qty, "materialized": true},
	})
	s.cache.Invalidate(ctx)
	return b, nil
}

type ForceCompleteRequest struct {
	Qty *int64 `json:"qty"`
}

// ForceComplete 管理员强制完成，总是成功
func (s *TrackingService) ForceComplete(ctx context.Context, id string, req ForceCompleteRequest) (*entity.Order, error) {
	o, err := s.repos.Order.GetByID(id)
	if err != nil {
		return nil, err
	}
	patch := engine.ForceComplete(o, req.Qty, time.Now())
	if err := s.repos.Order.Patch(id, patch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.appendLog(&entity.ActivityLog{
		EntityType: "order",
		EntityID:   id,
		Action:     entity.ActionForceComplete,
		ToStatus:   entity.OrderStatusDone,
		Content:    fmt.Sprintf("管理员强制完成，完成数量 %d", o.FullyDoneQty),
	})
	s.cache.Invalidate(ctx)

	ev := s.orderEvent("force_completed", o)
	s.webhook.Send(ctx, ev)
	s.publisher.Publish(ctx, ev)
	return o, nil
}

// Reset 管理员清零重置，批次一并删除，不可逆
func (s *TrackingService) Reset(ctx context.Context, id string) (*entity.Order, error) {
	o, err := s.repos.Order.GetByID(id)
	if err != nil {
		return nil, err
	}
	patch := engine.Reset(o, time.Now())
	if err := s.repos.Order.Patch(id, patch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := s.repos.Batch.DeleteByOrder(id); err != nil {
		s.logger.Error("重置时删除批次失败", zap.String("order_id", id), zap.Error(err))
	}
	s.appendLog(&entity.ActivityLog{
		EntityType: "order",
		EntityID:   id,
		Action:     entity.ActionReset,
		ToStatus:   entity.OrderStatusNotStarted,
		Content:    "管理员清零重置",
	})
	s.cache.Invalidate(ctx)
	s.publisher.Publish(ctx, s.orderEvent("reset", o))
	return o, nil
}

// SetHidden 软隐藏/恢复
func (s *TrackingService) SetHidden(ctx context.Context, id string, hidden bool) error {
	if _, err := s.repos.Order.GetByID(id); err != nil {
		return err
	}
	if err := s.repos.Order.SetHidden(id, hidden); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.cache.Invalidate(ctx)
	return nil
}

// Activity 订单活动流水
func (s *TrackingService) Activity(id string, limit int) ([]entity.ActivityLog, error) {
	return s.repos.ActivityLog.ListByEntity("order", id, limit)
}

func (s *TrackingService) appendLog(log *entity.ActivityLog) {
	log.ID = uuid.New().String()
	if err := s.repos.ActivityLog.Create(log); err != nil {
		s.logger.Error("活动日志写入失败",
			zap.String("entity_id", log.EntityID),
			zap.String("action", log.Action),
			zap.Error(err))
	}
}

func (s *TrackingService) orderEvent(event string, o *entity.Order) notify.OrderEvent {
	return notify.OrderEvent{
		Event:        event,
		OrderID:      o.ID,
		OrderNo:      o.OrderNo,
		ProductCode:  o.ProductCode,
		Status:       o.Status,
		FullyDoneQty: o.FullyDoneQty,
		RequestedQty: o.RequestedQty,
		At:           time.Now().Unix(),
	}
}
