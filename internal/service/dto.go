package service

import (
	"time"

	"github.com/aalbahar80/rems-ai-sub000/internal/model"
	"github.com/aalbahar80/rems-ai-sub000/internal/statemachine"
)

// CreateOrderRequest 创建工单请求
// @Description 创建维修工单的请求参数
type CreateOrderRequest struct {
	FirmID            *int64   `json:"firm_id" example:"1"`                            // 所属公司
	UnitID            *int64   `json:"unit_id" example:"12"`                           // 单元 ID（与 property_id 至少一个）
	PropertyID        *int64   `json:"property_id" example:"3"`                        // 物业 ID
	RequestorType     string   `json:"requestor_type" example:"tenant"`                // tenant/owner/staff/property_manager/system
	TenantID          *int64   `json:"tenant_id" example:"44"`                         // requestor_type=tenant 时必填
	OwnerID           *int64   `json:"owner_id"`                                       // requestor_type=owner 时必填
	ExpenseTypeID     *int64   `json:"expense_type_id" example:"2"`                    // 费用类型
	Priority          string   `json:"priority" example:"high"`                        // 默认 medium
	Title             string   `json:"title" example:"AC not cooling"`                 // 标题
	Description       string   `json:"description" example:"Living room AC blows warm"` // 描述
	EstimatedCost     *float64 `json:"estimated_cost" example:"150.5"`
	EstimatedDuration *int     `json:"estimated_duration" example:"3"` // 小时
	RequiresApproval  *bool    `json:"requires_approval" example:"false"`
}

// AssignVendorRequest 分配供应商请求
// @Description 为工单分配供应商的请求参数
type AssignVendorRequest struct {
	VendorID          int64      `json:"vendor_id" example:"5"`
	ScheduledDate     *time.Time `json:"scheduled_date" example:"2025-03-01T09:00:00Z"` // 为空时使用当前时间
	EstimatedCost     *float64   `json:"estimated_cost" example:"220"`
	EstimatedDuration *int       `json:"estimated_duration" example:"4"`
}

// UpdateStatusRequest 更新状态请求
// @Description 更新工单状态的请求参数
type UpdateStatusRequest struct {
	Status         string   `json:"status" example:"in_progress"`
	Note           string   `json:"note" example:"Technician on site"`
	ActualCost     *float64 `json:"actual_cost" example:"240"`
	ActualDuration *int     `json:"actual_duration" example:"5"`
}

// ApproveRequest 审批请求
// @Description 审批工单的请求参数,approver_id 为空时使用当前登录用户
type ApproveRequest struct {
	ApproverID *int64 `json:"approver_id" example:"7"`
	Note       string `json:"note" example:"Within budget"`
}

// ListOrdersQuery 工单列表查询参数
type ListOrdersQuery struct {
	Status     string `form:"status"`
	Priority   string `form:"priority"`
	FirmID     *int64 `form:"firm_id"`
	PropertyID *int64 `form:"property_id"`
	UnitID     *int64 `form:"unit_id"`
	VendorID   *int64 `form:"vendor_id"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	SortBy     string `form:"sort_by"`
	Order      string `form:"order"`
}

// MaintenanceOrder 工单视图
// @Description 维修工单
type MaintenanceOrder struct {
	ID                int64      `json:"id" example:"1"`
	OrderNumber       string     `json:"order_number" example:"MO-20250301-1A2B3C4D"`
	FirmID            *int64     `json:"firm_id"`
	UnitID            *int64     `json:"unit_id"`
	PropertyID        *int64     `json:"property_id"`
	RequestorType     string     `json:"requestor_type" example:"tenant"`
	TenantID          *int64     `json:"tenant_id"`
	OwnerID           *int64     `json:"owner_id"`
	ExpenseTypeID     int64      `json:"expense_type_id"`
	Priority          string     `json:"priority" example:"medium"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Status            string     `json:"status" example:"submitted"`
	VendorID          *int64     `json:"vendor_id"`
	EstimatedCost     *float64   `json:"estimated_cost"`
	ActualCost        *float64   `json:"actual_cost"`
	EstimatedDuration *int       `json:"estimated_duration"`
	ActualDuration    *int       `json:"actual_duration"`
	RequiresApproval  bool       `json:"requires_approval"`
	ApprovedBy        *int64     `json:"approved_by"`
	ApprovedDate      *time.Time `json:"approved_date"`
	RequestedDate     time.Time  `json:"requested_date"`
	AcknowledgedDate  *time.Time `json:"acknowledged_date"`
	ScheduledDate     *time.Time `json:"scheduled_date"`
	StartedDate       *time.Time `json:"started_date"`
	CompletedDate     *time.Time `json:"completed_date"`
	AdminNotes        string     `json:"admin_notes"`
	CreatedBy         *int64     `json:"created_by"`
	Version           int64      `json:"version"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// StateHistory 状态变更记录
type StateHistory struct {
	ID         string    `json:"id"`
	OrderID    int64     `json:"order_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Reason     string    `json:"reason"`
	Operator   string    `json:"operator"`
	CreatedAt  time.Time `json:"created_at"`
}

// TransitionOptions 工单当前可执行的状态操作
type TransitionOptions struct {
	OrderID    int64                 `json:"order_id"`
	Status     statemachine.Status   `json:"status"`
	Allowed    []statemachine.Status `json:"allowed"`
	CanApprove bool                  `json:"can_approve"`
	Terminal   bool                  `json:"terminal"`
}

// OrderStatistics 工单统计
type OrderStatistics struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByPriority map[string]int64 `json:"by_priority"`
}

func toMaintenanceOrder(m *model.MaintenanceOrderModel) *MaintenanceOrder {
	return &MaintenanceOrder{
		ID:                m.ID,
		OrderNumber:       m.OrderNumber,
		FirmID:            m.FirmID,
		UnitID:            m.UnitID,
		PropertyID:        m.PropertyID,
		RequestorType:     m.RequestorType,
		TenantID:          m.TenantID,
		OwnerID:           m.OwnerID,
		ExpenseTypeID:     m.ExpenseTypeID,
		Priority:          m.Priority,
		Title:             m.Title,
		Description:       m.Description,
		Status:            m.Status,
		VendorID:          m.VendorID,
		EstimatedCost:     m.EstimatedCost,
		ActualCost:        m.ActualCost,
		EstimatedDuration: m.EstimatedDuration,
		ActualDuration:    m.ActualDuration,
		RequiresApproval:  m.RequiresApproval,
		ApprovedBy:        m.ApprovedBy,
		ApprovedDate:      m.ApprovedDate,
		RequestedDate:     m.RequestedDate,
		AcknowledgedDate:  m.AcknowledgedDate,
		ScheduledDate:     m.ScheduledDate,
		StartedDate:       m.StartedDate,
		CompletedDate:     m.CompletedDate,
		AdminNotes:        m.AdminNotes,
		CreatedBy:         m.CreatedBy,
		Version:           m.Version,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
