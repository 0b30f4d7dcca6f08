package entity

import "time"

// 批次阶段状态
const (
	BatchStatusPartial = "partial"
	BatchStatusDrying  = "drying"
	BatchStatusPacking = "packing"
	BatchStatusReady   = "ready_for_delivery"
	BatchStatusDone    = "done"
)

// Batch 可发货批次
// 报工使完成数量增长时按增量创建，之后独立推进阶段，不合并、不拆分、不删除
type Batch struct {
	ID      string `json:"id" gorm:"primaryKey;size:36"`
	OrderID string `json:"order_id" gorm:"size:64;not null;index"`
	Qty     int64  `json:"qty" gorm:"not null"`
	Status  string `json:"status" gorm:"size:20;not null;default:partial"`

	// 打包信息，进入 ready_for_delivery 时填写，退回较早阶段时清空
	PackedQty int64  `json:"packed_qty" gorm:"not null;default:0"`
	Boxes     int    `json:"boxes" gorm:"not null;default:0"`
	Size      string `json:"size" gorm:"size:64"`
	Weight    string `json:"weight" gorm:"size:64"`
	Notes     string `json:"notes" gorm:"type:text"`

	Virtual bool `json:"virtual,omitempty" gorm:"-"` // 遗留订单的合成批次，未持久化

	CreatedAt       time.Time `json:"created_at"`
	StatusChangedAt time.Time `json:"status_changed_at"`
}

func (Batch) TableName() string {
	return "mes_batches"
}
