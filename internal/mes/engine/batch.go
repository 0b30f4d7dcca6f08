package engine

import (
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/google/uuid"
)

// NewBatch 按完成数量增量创建批次
// 仅在报工使 fully_done_qty 增长时调用，qty 即本次增量
func NewBatch(orderID string, qty int64, now time.Time) *entity.Batch {
	return &entity.Batch{
		ID:              uuid.New().String(),
		OrderID:         orderID,
		Qty:             qty,
		Status:          entity.BatchStatusPartial,
		CreatedAt:       now,
		StatusChangedAt: now,
	}
}

// VirtualBatchID 合成批次的固定标识，路由中用它指代整单批次
const VirtualBatchID = "virtual"

// VirtualBatch 遗留兼容：fully_done_qty>0 但批次列表为空的旧数据，
// 合成恰好一个整单批次用于展示与阶段推进，本函数为纯派生，不持久化。
// 批次状态沿用订单当前所处阶段，订单尚未进入阶段跟踪时为 partial。
func VirtualBatch(o *entity.Order) *entity.Batch {
	if len(o.Batches) > 0 || o.FullyDoneQty <= 0 {
		return nil
	}
	status := entity.BatchStatusPartial
	switch o.Status {
	case entity.OrderStatusDrying, entity.OrderStatusPacking, entity.OrderStatusReady:
		status = o.Status
	}
	changed := o.UpdatedAt
	if o.StatusChangedAt != nil {
		changed = *o.StatusChangedAt
	}
	return &entity.Batch{
		ID:        VirtualBatchID,
		OrderID:   o.ID,
		Qty:       o.FullyDoneQty,
		Status:    status,
		PackedQty: o.PackedQty,
		Boxes:     o.Boxes,
		Size:      o.Size,
		Weight:    o.Weight,
		Notes:     o.PackingNotes,
		Virtual:   true,
		CreatedAt: o.CreatedAt,

		StatusChangedAt: changed,
	}
}

// BatchesOf 订单的批次视图：真实批次，或遗留订单的单个合成批次
func BatchesOf(o *entity.Order) []entity.Batch {
	if len(o.Batches) > 0 {
		return o.Batches
	}
	if vb := VirtualBatch(o); vb != nil {
		return []entity.Batch{*vb}
	}
	return nil
}
