package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// 活动日志动作
const (
	ActionStop          = "stop"
	ActionPhaseChange   = "phase_change"
	ActionForceComplete = "force_complete"
	ActionReset         = "reset"
	ActionImport        = "import"
	ActionNote          = "note"
)

// JSONB JSONB类型
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// ActivityLog 生产活动日志
// 报工、阶段变更、管理操作的审计流水，日报聚合的数据来源
type ActivityLog struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	EntityType string `json:"entity_type" gorm:"size:20;not null;index:idx_mes_activity_entity"` // order/batch
	EntityID   string `json:"entity_id" gorm:"size:64;not null;index:idx_mes_activity_entity"`

	Action     string `json:"action" gorm:"size:30;not null"`
	FromStatus string `json:"from_status" gorm:"size:20"`
	ToStatus   string `json:"to_status" gorm:"size:20"`

	Operator    string `json:"operator" gorm:"size:100;index"`
	Step        int    `json:"step" gorm:"not null;default:0"`
	Pieces      int64  `json:"pieces" gorm:"not null;default:0"`
	DurationSec int64  `json:"duration_sec" gorm:"not null;default:0"`

	Content  string `json:"content" gorm:"type:text"`
	Metadata JSONB  `json:"metadata" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (ActivityLog) TableName() string {
	return "mes_activity_logs"
}
