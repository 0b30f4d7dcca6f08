package engine

import (
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// ForceComplete 管理员强制完成
// 绕过完成数量派生与批次创建，不生成批次。qtyOverride 为空时取 requested_qty
// （requested_qty=0 的订单强制完成后 fully_done_qty 仍为0）。
// 不校验 fully_done_qty <= requested_qty，保留数据修正的口子。
func ForceComplete(o *entity.Order, qtyOverride *int64, now time.Time) Patch {
	qty := o.RequestedQty
	if qtyOverride != nil {
		qty = *qtyOverride
	}
	changed := now
	o.FullyDoneQty = qty
	o.Status = entity.OrderStatusDone
	o.ForcedCompleted = true
	o.ElapsedSec = 0
	o.TimerStartedAt = nil
	o.StatusChangedAt = &changed
	return Patch{
		"fully_done_qty":    qty,
		"status":            entity.OrderStatusDone,
		"forced_completed":  true,
		"elapsed_sec":       int64(0),
		"timer_started_at":  nil,
		"status_changed_at": changed,
	}
}

// Reset 管理员清零重置，不可逆
// 计时、分步台账、完成数量、打包信息、最近报工全部归零，批次由调用方删除
func Reset(o *entity.Order, now time.Time) Patch {
	changed := now
	o.ElapsedSec = 0
	o.TimerStartedAt = nil
	o.StepProgress = entity.StepMap{}
	o.StepTime = entity.StepMap{}
	o.FullyDoneQty = 0
	o.Status = entity.OrderStatusNotStarted
	o.ForcedCompleted = false
	o.LastStop = nil
	o.PackedQty = 0
	o.Boxes = 0
	o.Size = ""
	o.Weight = ""
	o.PackingNotes = ""
	o.StatusChangedAt = &changed
	o.Batches = nil
	return Patch{
		"elapsed_sec":       int64(0),
		"timer_started_at":  nil,
		"step_progress":     entity.StepMap{},
		"step_time":         entity.StepMap{},
		"fully_done_qty":    int64(0),
		"status":            entity.OrderStatusNotStarted,
		"forced_completed":  false,
		"last_stop":         nil,
		"packed_qty":        int64(0),
		"boxes":             0,
		"size":              "",
		"weight":            "",
		"packing_notes":     "",
		"status_changed_at": changed,
	}
}
