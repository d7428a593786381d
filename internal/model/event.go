package model

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

// 事件投递状态
const (
	EventStatusPending = "pending"
	EventStatusSuccess = "success"
	EventStatusFailed  = "failed"
)

// EventModel 工单事件数据模型
type EventModel struct {
	ID         string         `gorm:"primaryKey;type:varchar(64)"`
	OrderID    int64          `gorm:"not null;index"`
	Type       string         `gorm:"type:varchar(64);not null;index"`
	Data       datatypes.JSON `gorm:"not null"`
	Status     string         `gorm:"type:varchar(32);not null;default:'pending';index"` // pending/success/failed
	RetryCount int            `gorm:"not null;default:0"`
	CreatedAt  time.Time      `gorm:"not null;index"`
	UpdatedAt  time.Time      `gorm:"not null"`
}

// TableName 指定表名
func (EventModel) TableName() string {
	return "events"
}

// Validate 验证事件模型
func (m *EventModel) Validate() error {
	if m.ID == "" {
		return errors.New("event ID is required")
	}
	if m.OrderID == 0 {
		return errors.New("order ID is required")
	}
	if m.Type == "" {
		return errors.New("event type is required")
	}
	if len(m.Data) == 0 {
		return errors.New("event data is required")
	}
	if m.Status == "" {
		m.Status = EventStatusPending
	}
	return nil
}
