package engine

import (
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// PackingMeta 打包信息
type PackingMeta struct {
	PackedQty int64  `json:"packed_qty"`
	Boxes     int    `json:"boxes"`
	Size      string `json:"size"`
	Weight    string `json:"weight"`
	Notes     string `json:"notes"`
}

// PhaseState 后生产阶段状态机的状态：阶段 + 打包信息 + 变更时间
type PhaseState struct {
	Status    string
	Meta      PackingMeta
	ChangedAt time.Time
}

// 阶段之间不做顺序约束：返工是正常操作，任意阶段可迁移到任意阶段。
// 唯一的守卫是进入 ready_for_delivery 必须已录入打包数量。
var knownPhases = map[string]bool{
	entity.BatchStatusPartial: true,
	entity.BatchStatusDrying:  true,
	entity.BatchStatusPacking: true,
	entity.BatchStatusReady:   true,
	entity.BatchStatusDone:    true,
}

// ready_for_delivery 之前的阶段；退回这些阶段意味着返工，打包记录作废
var beforeReady = map[string]bool{
	entity.BatchStatusPartial: true,
	entity.BatchStatusDrying:  true,
	entity.BatchStatusPacking: true,
}

// AdvancePhase 阶段推进，纯函数 (state, target, meta) -> state
// 进入 ready_for_delivery：要求 meta.PackedQty>0，打包信息随迁移写入；
// 从 ready_for_delivery 退回较早阶段：打包信息全部清空；
// 推进到 done 打包记录保留（已发货批次的打包信息供报表使用）。
// 每次迁移都刷新 ChangedAt。
func AdvancePhase(cur PhaseState, target string, meta PackingMeta, now time.Time) (PhaseState, error) {
	if !knownPhases[target] {
		return cur, ErrUnknownPhase
	}
	next := PhaseState{Status: target, ChangedAt: now}
	switch {
	case target == entity.BatchStatusReady:
		if meta.PackedQty <= 0 {
			return cur, ErrPackingIncomplete
		}
		next.Meta = meta
	case cur.Status == entity.BatchStatusReady && beforeReady[target]:
		next.Meta = PackingMeta{}
	default:
		next.Meta = cur.Meta
	}
	return next, nil
}

// IsStaleReady 留存策略：在 ready_for_delivery 停留超过 retention 的条目
// 从"进行中完成"视图中过滤掉，纯展示策略，不改变任何状态。
func IsStaleReady(status string, changedAt, now time.Time, retention time.Duration) bool {
	return status == entity.BatchStatusReady && now.Sub(changedAt) > retention
}
