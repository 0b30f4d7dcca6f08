package repository

import (
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) Create(b *entity.Batch) error {
	return r.db.Create(b).Error
}

func (r *BatchRepository) GetByID(id string) (*entity.Batch, error) {
	var b entity.Batch
	err := r.db.Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &b, err
}

// Patch 批次阶段迁移的合并写入
func (r *BatchRepository) Patch(id string, fields map[string]interface{}) error {
	return r.db.Model(&entity.Batch{}).Where("id = ?", id).Updates(fields).Error
}

// DeleteByOrder 仅用于管理员重置订单
func (r *BatchRepository) DeleteByOrder(orderID string) error {
	return r.db.Where("order_id = ?", orderID).Delete(&entity.Batch{}).Error
}
