package repository

import (
	"context"
	"time"

	"github.com/aalbahar80/rems-ai-sub000/internal/model"
	"gorm.io/gorm"
)

// EventRepository 事件仓储接口
type EventRepository interface {
	Save(ctx context.Context, event *model.EventModel) error
	UpdateStatus(ctx context.Context, id string, status string, retryCount int) error
	FindByOrderID(ctx context.Context, orderID int64) ([]*model.EventModel, error)
	FindPending(ctx context.Context, limit int) ([]*model.EventModel, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository 创建事件仓储
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Save 保存事件
func (r *eventRepository) Save(ctx context.Context, event *model.EventModel) error {
	if err := event.Validate(); err != nil {
		return err
	}
	return conn(ctx, r.db).Save(event).Error
}

// UpdateStatus 更新投递状态与重试次数
func (r *eventRepository) UpdateStatus(ctx context.Context, id string, status string, retryCount int) error {
	return conn(ctx, r.db).
		Model(&model.EventModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"retry_count": retryCount,
			"updated_at":  time.Now(),
		}).Error
}

// FindByOrderID 根据工单 ID 查找事件
func (r *eventRepository) FindByOrderID(ctx context.Context, orderID int64) ([]*model.EventModel, error) {
	var events []*model.EventModel
	err := conn(ctx, r.db).Where("order_id = ?", orderID).Order("created_at ASC").Find(&events).Error
	return events, err
}

// FindPending 查找待投递的事件
func (r *eventRepository) FindPending(ctx context.Context, limit int) ([]*model.EventModel, error) {
	var events []*model.EventModel
	query := conn(ctx, r.db).Where("status = ?", model.EventStatusPending).Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&events).Error
	return events, err
}
