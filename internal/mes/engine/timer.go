package engine

import (
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// Patch 引擎产出的列级补丁，持久化层按字段合并写入
type Patch map[string]interface{}

// TimerAccount 订单工作计时
// 跨多轮 开始/暂停/继续 累积实际工作时长，秒级取整
type TimerAccount struct {
	ElapsedSec int64
	StartedAt  *time.Time
}

// TimerOf 从订单文档读取计时状态
func TimerOf(o *entity.Order) TimerAccount {
	return TimerAccount{ElapsedSec: o.ElapsedSec, StartedAt: o.TimerStartedAt}
}

// CurrentElapsed 当前累计时长（秒），只读，用于实时显示
func (t TimerAccount) CurrentElapsed(now time.Time) int64 {
	if t.StartedAt == nil {
		return t.ElapsedSec
	}
	return t.ElapsedSec + roundSeconds(now.Sub(*t.StartedAt))
}

// roundSeconds 时长取整为秒，时钟回拨时钳位为0
func roundSeconds(d time.Duration) int64 {
	sec := int64(d.Round(time.Second) / time.Second)
	if sec < 0 {
		return 0
	}
	return sec
}

// Start 开始计时
// 仅允许 not_started 状态；非法状态下的调用由这里统一拦截，计时字段本身不做防御
func Start(o *entity.Order, now time.Time) (Patch, error) {
	if o.Status != entity.OrderStatusNotStarted {
		return nil, ErrIllegalTransition
	}
	started := now
	o.Status = entity.OrderStatusRunning
	o.TimerStartedAt = &started
	return Patch{
		"status":           o.Status,
		"timer_started_at": started,
	}, nil
}

// Pause 暂停计时，将运行段时长落入 elapsed_sec
func Pause(o *entity.Order, now time.Time) (Patch, error) {
	if o.Status != entity.OrderStatusRunning || o.TimerStartedAt == nil {
		return nil, ErrIllegalTransition
	}
	o.ElapsedSec += roundSeconds(now.Sub(*o.TimerStartedAt))
	o.TimerStartedAt = nil
	o.Status = entity.OrderStatusPaused
	return Patch{
		"status":           o.Status,
		"elapsed_sec":      o.ElapsedSec,
		"timer_started_at": nil,
	}, nil
}

// Resume 继续计时，elapsed_sec 保持不变
func Resume(o *entity.Order, now time.Time) (Patch, error) {
	if o.Status != entity.OrderStatusPaused {
		return nil, ErrIllegalTransition
	}
	started := now
	o.Status = entity.OrderStatusRunning
	o.TimerStartedAt = &started
	return Patch{
		"status":           o.Status,
		"timer_started_at": started,
	}, nil
}
