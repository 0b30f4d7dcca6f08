package repository

import (
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(log *entity.ActivityLog) error {
	return r.db.Create(log).Error
}

func (r *ActivityLogRepository) ListByEntity(entityType, entityID string, limit int) ([]entity.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []entity.ActivityLog
	err := r.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// OperatorDaily 操作员日报聚合行
type OperatorDaily struct {
	Operator    string `json:"operator"`
	Stops       int64  `json:"stops"`
	Pieces      int64  `json:"pieces"`
	DurationSec int64  `json:"duration_sec"`
}

// DailySummary 按操作员聚合某天的报工：次数、件数、时长
func (r *ActivityLogRepository) DailySummary(day time.Time) ([]OperatorDaily, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var rows []OperatorDaily
	err := r.db.Raw(`
		SELECT operator,
		       COUNT(*) AS stops,
		       COALESCE(SUM(pieces), 0) AS pieces,
		       COALESCE(SUM(duration_sec), 0) AS duration_sec
		FROM mes_activity_logs
		WHERE action = ? AND created_at >= ? AND created_at < ?
		GROUP BY operator
		ORDER BY operator
	`, entity.ActionStop, start, end).Scan(&rows).Error
	return rows, err
}
