package repository

import (
	"errors"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type OperatorRepository struct {
	db *gorm.DB
}

func NewOperatorRepository(db *gorm.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

func (r *OperatorRepository) Create(op *entity.Operator) error {
	return r.db.Create(op).Error
}

func (r *OperatorRepository) GetByID(id string) (*entity.Operator, error) {
	var op entity.Operator
	err := r.db.Where("id = ?", id).First(&op).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &op, err
}

func (r *OperatorRepository) GetByName(name string) (*entity.Operator, error) {
	var op entity.Operator
	err := r.db.Where("name = ?", name).First(&op).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &op, err
}

func (r *OperatorRepository) List(activeOnly bool) ([]entity.Operator, error) {
	query := r.db.Model(&entity.Operator{})
	if activeOnly {
		query = query.Where("active = true")
	}
	var ops []entity.Operator
	err := query.Order("name ASC").Find(&ops).Error
	return ops, err
}

func (r *OperatorRepository) Update(op *entity.Operator) error {
	return r.db.Save(op).Error
}
