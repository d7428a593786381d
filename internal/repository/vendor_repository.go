package repository

import (
	"context"
	"errors"

	"github.com/aalbahar80/rems-ai-sub000/internal/model"
	"gorm.io/gorm"
)

// ErrVendorNotFound 供应商不存在
var ErrVendorNotFound = errors.New("vendor not found")

// VendorRepository 供应商仓储接口
type VendorRepository interface {
	FindByID(ctx context.Context, id int64) (*model.VendorModel, error)
	IncrementCompletedJobs(ctx context.Context, id int64) error
}

type vendorRepository struct {
	db *gorm.DB
}

// NewVendorRepository 创建供应商仓储
func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepository{db: db}
}

// FindByID 根据 ID 查找供应商
func (r *vendorRepository) FindByID(ctx context.Context, id int64) (*model.VendorModel, error) {
	var vendor model.VendorModel
	err := conn(ctx, r.db).Where("id = ?", id).First(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// IncrementCompletedJobs 原子累加供应商的任务计数
func (r *vendorRepository) IncrementCompletedJobs(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).
		Model(&model.VendorModel{}).
		Where("id = ?", id).
		Update("completed_jobs", gorm.Expr("completed_jobs + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVendorNotFound
	}
	return nil
}
