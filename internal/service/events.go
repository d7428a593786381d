package service

import (
	"context"
	"errors"
	"time"
)

// 工单事件类型
const (
	EventOrderCreated        = "order.created"
	EventOrderVendorAssigned = "order.vendor_assigned"
	EventOrderStatusChanged  = "order.status_changed"
	EventOrderApproved       = "order.approved"
)

// OrderEvent 工单事件
type OrderEvent struct {
	Type        string                 `json:"type"`
	OrderID     int64                  `json:"order_id"`
	OrderNumber string                 `json:"order_number"`
	FromStatus  string                 `json:"from_status,omitempty"`
	ToStatus    string                 `json:"to_status"`
	Operator    string                 `json:"operator"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// EventPublisher 发布工单事件
type EventPublisher interface {
	Publish(ctx context.Context, event *OrderEvent) error
}

// Publishers 依次发布到多个发布器,单个失败不影响其余发布器
type Publishers []EventPublisher

// Publish 发布事件,返回合并后的错误
func (p Publishers) Publish(ctx context.Context, event *OrderEvent) error {
	var errs []error
	for _, pub := range p {
		if pub == nil {
			continue
		}
		if err := pub.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
