package model

import (
	"errors"
	"time"
)

// VendorModel 供应商数据模型
// 供应商的增删改由其他服务负责,这里只读取状态并累加完成任务数
type VendorModel struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	FirmID        *int64 `gorm:"index"`
	Name          string `gorm:"type:varchar(255);not null"`
	IsActive      bool   `gorm:"not null"`
	CompletedJobs int    `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName 指定表名
func (VendorModel) TableName() string {
	return "vendors"
}

// Validate 验证供应商模型
func (v *VendorModel) Validate() error {
	if v.Name == "" {
		return errors.New("vendor name is required")
	}
	return nil
}
