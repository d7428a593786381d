package model

import (
	"errors"
	"time"
)

// MaintenanceOrderModel 维修工单数据模型
type MaintenanceOrderModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	OrderNumber string `gorm:"type:varchar(32);not null;uniqueIndex"` // MO-YYYYMMDD-XXXXXXXX
	FirmID      *int64 `gorm:"index"`                                 // 所属公司（多租户范围）
	UnitID      *int64 `gorm:"index"`
	PropertyID  *int64 `gorm:"index"`

	RequestorType string `gorm:"type:varchar(32);not null"` // tenant/owner/staff/property_manager/system
	TenantID      *int64
	OwnerID       *int64

	ExpenseTypeID int64  `gorm:"not null"`
	Priority      string `gorm:"type:varchar(16);not null;default:'medium';index"`
	Title         string `gorm:"type:varchar(255);not null"`
	Description   string `gorm:"type:text;not null"`
	Status        string `gorm:"type:varchar(32);not null;index"`

	VendorID          *int64   `gorm:"index"`
	EstimatedCost     *float64 `gorm:"type:decimal(12,2)"`
	ActualCost        *float64 `gorm:"type:decimal(12,2)"`
	EstimatedDuration *int     // 小时
	ActualDuration    *int     // 小时

	RequiresApproval bool `gorm:"not null;default:false"`
	ApprovedBy       *int64
	ApprovedDate     *time.Time

	RequestedDate    time.Time `gorm:"not null;index"`
	AcknowledgedDate *time.Time
	ScheduledDate    *time.Time
	StartedDate      *time.Time
	CompletedDate    *time.Time

	AdminNotes string `gorm:"type:text"` // 追加写入,每行 "[RFC3339] note"
	CreatedBy  *int64
	Version    int64     `gorm:"not null;default:1"` // 乐观锁版本号
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (MaintenanceOrderModel) TableName() string {
	return "maintenance_orders"
}

// Validate 验证工单模型
func (m *MaintenanceOrderModel) Validate() error {
	if m.OrderNumber == "" {
		return errors.New("order number is required")
	}
	if m.UnitID == nil && m.PropertyID == nil {
		return errors.New("unit ID or property ID is required")
	}
	if m.RequestorType == "" {
		return errors.New("requestor type is required")
	}
	if m.ExpenseTypeID == 0 {
		return errors.New("expense type ID is required")
	}
	if m.Title == "" {
		return errors.New("title is required")
	}
	if m.Description == "" {
		return errors.New("description is required")
	}
	if m.Status == "" {
		return errors.New("status is required")
	}
	return nil
}
