package model

import (
	"errors"
	"time"
)

// StateHistoryModel 工单状态变更历史
type StateHistoryModel struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)"`
	OrderID    int64     `gorm:"not null;index"`
	FromStatus string    `gorm:"type:varchar(32)"`
	ToStatus   string    `gorm:"type:varchar(32);not null"`
	Reason     string    `gorm:"type:text"`
	Operator   string    `gorm:"type:varchar(64);not null"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (StateHistoryModel) TableName() string {
	return "order_state_history"
}

// Validate 验证状态历史模型
func (m *StateHistoryModel) Validate() error {
	if m.ID == "" {
		return errors.New("history ID is required")
	}
	if m.OrderID == 0 {
		return errors.New("order ID is required")
	}
	if m.ToStatus == "" {
		return errors.New("to status is required")
	}
	if m.Operator == "" {
		return errors.New("operator is required")
	}
	return nil
}
