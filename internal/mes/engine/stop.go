package engine

import (
	"strings"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// StopInput 报工输入
type StopInput struct {
	Step     int
	Pieces   int64
	Operator string
	Notes    string
}

// StopResult 报工结果：列补丁 + 可能新建的批次 + 审计数据
type StopResult struct {
	Patch       Patch
	NewBatch    *entity.Batch // delta>0 时恰好创建一个
	DurationSec int64         // 本次报工归属的工作时长
	Completed   bool          // 整单是否在本次报工后完成
	Audit       entity.StopAudit
}

// Stop 报工事件 —— 核心状态迁移
// 操作员在某工序完成若干件时调用。全部校验在任何变更之前完成，
// 校验失败时订单文档保持原样。流程：
//  1. 结算当前运行段 + 已暂存的 elapsed_sec，作为本次报工时长
//  2. 台账记账，重新派生 fully_done_qty
//  3. 完成数量的正增量生成一个新批次
//  4. 计时器清零；整单完成则置 done，否则回到 not_started 排队下一件
func Stop(o *entity.Order, in StopInput, now time.Time) (*StopResult, error) {
	if strings.TrimSpace(in.Operator) == "" {
		return nil, ErrMissingOperator
	}

	ledger := LedgerOf(o)
	if !ledger.ValidStep(in.Step) {
		return nil, ErrInvalidStep
	}
	if in.Pieces <= 0 {
		return nil, ErrInvalidQuantity
	}

	spent := TimerOf(o).CurrentElapsed(now)
	if err := ledger.RecordStep(in.Step, in.Pieces, spent); err != nil {
		return nil, err
	}

	previous := o.FullyDoneQty
	fullyDone := ledger.FullyDone(previous)
	delta := fullyDone - previous // FullyDone 单调不减，delta >= 0

	var batch *entity.Batch
	if delta > 0 {
		batch = NewBatch(o.ID, delta, now)
	}

	completed := IsOrderComplete(fullyDone, o.RequestedQty)
	status := entity.OrderStatusNotStarted
	if completed {
		status = entity.OrderStatusDone
	}

	audit := entity.StopAudit{
		Operator:    in.Operator,
		Step:        in.Step,
		Pieces:      in.Pieces,
		DurationSec: spent,
		Notes:       in.Notes,
		At:          now,
	}

	o.StepProgress = ledger.Progress
	o.StepTime = ledger.Time
	o.FullyDoneQty = fullyDone
	o.ElapsedSec = 0
	o.TimerStartedAt = nil
	o.Status = status
	o.LastStop = &audit

	return &StopResult{
		Patch: Patch{
			"step_progress":    o.StepProgress,
			"step_time":        o.StepTime,
			"fully_done_qty":   fullyDone,
			"status":           status,
			"elapsed_sec":      int64(0),
			"timer_started_at": nil,
			"last_stop":        &audit,
		},
		NewBatch:    batch,
		DurationSec: spent,
		Completed:   completed,
		Audit:       audit,
	}, nil
}
