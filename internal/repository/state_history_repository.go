package repository

import (
	"context"

	"github.com/aalbahar80/rems-ai-sub000/internal/model"
	"gorm.io/gorm"
)

// StateHistoryRepository 状态历史仓储接口
type StateHistoryRepository interface {
	Save(ctx context.Context, history *model.StateHistoryModel) error
	FindByOrderID(ctx context.Context, orderID int64) ([]*model.StateHistoryModel, error)
}

type stateHistoryRepository struct {
	db *gorm.DB
}

// NewStateHistoryRepository 创建状态历史仓储
func NewStateHistoryRepository(db *gorm.DB) StateHistoryRepository {
	return &stateHistoryRepository{db: db}
}

// Save 保存状态历史
func (r *stateHistoryRepository) Save(ctx context.Context, history *model.StateHistoryModel) error {
	if err := history.Validate(); err != nil {
		return err
	}
	return conn(ctx, r.db).Create(history).Error
}

// FindByOrderID 按时间顺序返回工单的状态历史
func (r *stateHistoryRepository) FindByOrderID(ctx context.Context, orderID int64) ([]*model.StateHistoryModel, error) {
	var histories []*model.StateHistoryModel
	err := conn(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&histories).Error
	return histories, err
}
