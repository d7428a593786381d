// Package statemachine 维修工单状态注册表与迁移校验
package statemachine

import "fmt"

// Status 工单状态
type Status string

const (
	StatusSubmitted    Status = "submitted"
	StatusAcknowledged Status = "acknowledged"
	StatusApproved     Status = "approved"
	StatusScheduled    Status = "scheduled"
	StatusInProgress   Status = "in_progress"
	StatusOnHold       Status = "on_hold"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
	StatusRejected     Status = "rejected"
)

// AllStatuses 按生命周期顺序列出全部状态
var AllStatuses = []Status{
	StatusSubmitted,
	StatusAcknowledged,
	StatusApproved,
	StatusScheduled,
	StatusInProgress,
	StatusOnHold,
	StatusCompleted,
	StatusCancelled,
	StatusRejected,
}

// ParseStatus 解析状态字符串
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := registry[st]; !ok {
		return "", fmt.Errorf("unknown status: %q", s)
	}
	return st, nil
}

// Priority 工单优先级
type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityMedium    Priority = "medium"
	PriorityHigh      Priority = "high"
	PriorityUrgent    Priority = "urgent"
	PriorityEmergency Priority = "emergency"
)

// DefaultPriority 未指定优先级时使用
const DefaultPriority = PriorityMedium

// Valid 判断优先级是否合法
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent, PriorityEmergency:
		return true
	}
	return false
}

// RequestorType 报修人类型
type RequestorType string

const (
	RequestorTenant          RequestorType = "tenant"
	RequestorOwner           RequestorType = "owner"
	RequestorStaff           RequestorType = "staff"
	RequestorPropertyManager RequestorType = "property_manager"
	RequestorSystem          RequestorType = "system"
)

// Valid 判断报修人类型是否合法
func (r RequestorType) Valid() bool {
	switch r {
	case RequestorTenant, RequestorOwner, RequestorStaff, RequestorPropertyManager, RequestorSystem:
		return true
	}
	return false
}
