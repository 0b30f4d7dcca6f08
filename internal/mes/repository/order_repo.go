package repository

import (
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(o *entity.Order) error {
	return r.db.Create(o).Error
}

func (r *OrderRepository) GetByID(id string) (*entity.Order, error) {
	var o entity.Order
	err := r.db.Preload("Batches", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Where("id = ?", id).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &o, err
}

// Patch 按字段合并写入（文档存储语义）
// 只更新补丁中出现的列，并发写互不覆盖对方未触及的字段；
// 同一字段的并发写为后写覆盖，订单文档上不做乐观锁。
func (r *OrderRepository) Patch(id string, fields map[string]interface{}) error {
	return r.db.Model(&entity.Order{}).Where("id = ?", id).Updates(fields).Error
}

type OrderListParams struct {
	Status        string
	Keyword       string
	IncludeHidden bool
}

// List 非隐藏订单，创建时间倒序
func (r *OrderRepository) List(params OrderListParams) ([]entity.Order, error) {
	query := r.db.Model(&entity.Order{})
	if !params.IncludeHidden {
		query = query.Where("hidden = false")
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("order_no ILIKE ? OR product_code ILIKE ? OR customer ILIKE ?", kw, kw, kw)
	}
	var orders []entity.Order
	err := query.Preload("Batches").Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// SetHidden 软隐藏/恢复，订单从不硬删除
func (r *OrderRepository) SetHidden(id string, hidden bool) error {
	return r.db.Model(&entity.Order{}).Where("id = ?", id).Update("hidden", hidden).Error
}
