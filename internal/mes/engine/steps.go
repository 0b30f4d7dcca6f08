package engine

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// LegacyMaxStep 未声明工序数的遗留订单接受的最大工序号
const LegacyMaxStep = 10

// StepLedger 分步生产台账
// 按工序累计完成件数与耗时，并由此派生"全工序完成"数量
type StepLedger struct {
	StepCount int
	Progress  entity.StepMap
	Time      entity.StepMap
}

// LedgerOf 从订单文档复制台账，校验未通过前不触碰订单本体
func LedgerOf(o *entity.Order) *StepLedger {
	return &StepLedger{
		StepCount: o.StepCount,
		Progress:  o.StepProgress.Clone(),
		Time:      o.StepTime.Clone(),
	}
}

// ValidStep 工序号是否在允许区间内
// step_count>0 时为 1..step_count，否则为遗留无界模式 1..LegacyMaxStep
func (l *StepLedger) ValidStep(step int) bool {
	if step < 1 {
		return false
	}
	if l.StepCount > 0 {
		return step <= l.StepCount
	}
	return step <= LegacyMaxStep
}

// RecordStep 记录一次报工：工序累计件数与累计耗时各自增加
func (l *StepLedger) RecordStep(step int, pieces, seconds int64) error {
	if !l.ValidStep(step) {
		return ErrInvalidStep
	}
	if pieces <= 0 {
		return ErrInvalidQuantity
	}
	if l.Progress == nil {
		l.Progress = entity.StepMap{}
	}
	if l.Time == nil {
		l.Time = entity.StepMap{}
	}
	l.Progress[step] += pieces
	if seconds > 0 {
		l.Time[step] += seconds
	}
	return nil
}

// FullyDone 派生全工序完成数量
// 一件产品只有走完全部声明工序才算完成，取各工序累计值的最小值；
// 对 previous 取最大值保证派生值单调不减，后续报工不会使其回退。
// step_count<=0 时恒为0，此类订单只能由管理员强制完成。
func (l *StepLedger) FullyDone(previous int64) int64 {
	if l.StepCount <= 0 {
		return 0
	}
	min := l.Progress.Get(1)
	for step := 2; step <= l.StepCount; step++ {
		if v := l.Progress.Get(step); v < min {
			min = v
		}
	}
	if min < previous {
		return previous
	}
	return min
}

// IsOrderComplete 订单是否整单完成
// requested=0 的订单永不自动完成，只能强制完成
func IsOrderComplete(fullyDone, requested int64) bool {
	return requested > 0 && fullyDone >= requested
}
