package entity

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// 订单状态
const (
	OrderStatusNotStarted = "not_started"
	OrderStatusRunning    = "running"
	OrderStatusPaused     = "paused"
	OrderStatusDone       = "done"
	OrderStatusDrying     = "drying"
	OrderStatusPacking    = "packing"
	OrderStatusReady      = "ready_for_delivery"
)

// NewOrderID 订单标识归一化
// 以 (订单号, 产品编码) 复合键派生抗碰撞的单一ID，同一行重复导入得到同一ID
func NewOrderID(orderNo, productCode string) string {
	key := strings.TrimSpace(orderNo) + "|" + strings.TrimSpace(productCode)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

// Order 生产订单
// 跟踪引擎唯一的共享可变文档：计时字段、分步台账、派生完成数量、阶段状态
type Order struct {
	ID           string `json:"id" gorm:"primaryKey;size:64"`
	OrderNo      string `json:"order_no" gorm:"size:64;not null;index:idx_orders_no_product"`
	ProductCode  string `json:"product_code" gorm:"size:64;not null;index:idx_orders_no_product"`
	Customer     string `json:"customer" gorm:"size:128"`
	RequestedQty int64  `json:"requested_qty" gorm:"not null;default:0"`
	StepCount    int    `json:"step_count" gorm:"not null;default:0"` // 0表示不跟踪工序（遗留模式）

	StepProgress StepMap `json:"step_progress" gorm:"type:jsonb"` // 工序 -> 累计完成件数
	StepTime     StepMap `json:"step_time" gorm:"type:jsonb"`     // 工序 -> 累计耗时（秒）
	FullyDoneQty int64   `json:"fully_done_qty" gorm:"not null;default:0"` // 派生值，UI不可直接写

	Status         string     `json:"status" gorm:"size:20;not null;default:not_started"`
	ElapsedSec     int64      `json:"elapsed_sec" gorm:"not null;default:0"`
	TimerStartedAt *time.Time `json:"timer_started_at"` // 非空当且仅当 status == running

	LastStop *StopAudit `json:"last_stop" gorm:"type:jsonb"` // 最近一次报工审计

	// 订单级打包信息（无批次的遗留订单整单推进阶段时使用）
	PackedQty    int64  `json:"packed_qty" gorm:"not null;default:0"`
	Boxes        int    `json:"boxes" gorm:"not null;default:0"`
	Size         string `json:"size" gorm:"size:64"`
	Weight       string `json:"weight" gorm:"size:64"`
	PackingNotes string `json:"packing_notes" gorm:"type:text"`

	StatusChangedAt *time.Time `json:"status_changed_at"`

	Hidden          bool `json:"hidden" gorm:"not null;default:false"`
	ForcedCompleted bool `json:"forced_completed" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Batches []Batch `json:"batches,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "mes_orders"
}

// StopAudit 最近报工审计信息
type StopAudit struct {
	Operator    string    `json:"operator"`
	Step        int       `json:"step"`
	Pieces      int64     `json:"pieces"`
	DurationSec int64     `json:"duration_sec"`
	Notes       string    `json:"notes,omitempty"`
	At          time.Time `json:"at"`
}

func (a *StopAudit) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *StopAudit) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan StopAudit: %v", value)
	}
	return json.Unmarshal(bytes, a)
}

// StepMap 工序台账JSONB类型，键为工序序号（1..step_count），缺键视为0
type StepMap map[int]int64

func (m StepMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(StepMap{})
	}
	return json.Marshal(m)
}

func (m *StepMap) Scan(value interface{}) error {
	if value == nil {
		*m = StepMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan StepMap: %v", value)
	}
	return json.Unmarshal(bytes, m)
}

// Get 读取某工序的累计值，缺键返回0
func (m StepMap) Get(step int) int64 {
	if m == nil {
		return 0
	}
	return m[step]
}

// Clone 复制台账，引擎在校验通过前不触碰订单本体
func (m StepMap) Clone() StepMap {
	out := make(StepMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
