package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories MES仓库集合
type Repositories struct {
	Order       *OrderRepository
	Batch       *BatchRepository
	Operator    *OperatorRepository
	ActivityLog *ActivityLogRepository
}

// NewRepositories 创建MES仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Order:       NewOrderRepository(db),
		Batch:       NewBatchRepository(db),
		Operator:    NewOperatorRepository(db),
		ActivityLog: NewActivityLogRepository(db),
	}
}
