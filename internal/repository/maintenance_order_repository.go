package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aalbahar80/rems-ai-sub000/internal/model"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound 工单不存在
	ErrOrderNotFound = errors.New("maintenance order not found")
	// ErrVersionConflict 工单已被其他请求修改
	ErrVersionConflict = errors.New("maintenance order was modified concurrently")
)

// OrderSortFields 允许的排序字段
var OrderSortFields = []string{"created_at", "updated_at", "requested_date", "priority", "status", "order_number"}

// MaintenanceOrderRepository 维修工单仓储接口
type MaintenanceOrderRepository interface {
	Create(ctx context.Context, order *model.MaintenanceOrderModel) error
	Load(ctx context.Context, id int64) (*model.MaintenanceOrderModel, error)
	Save(ctx context.Context, order *model.MaintenanceOrderModel) error
	FindByFilter(ctx context.Context, filter *OrderFilter) ([]*model.MaintenanceOrderModel, int64, error)
	CountBy(ctx context.Context, column string, filter *OrderFilter) (map[string]int64, error)
}

// OrderFilter 工单查询过滤器
type OrderFilter struct {
	Status     *string
	Priority   *string
	FirmID     *int64
	PropertyID *int64
	UnitID     *int64
	VendorID   *int64
	Page       int
	PageSize   int
	SortBy     string // 已通过白名单校验
	Order      string // ASC/DESC
}

type maintenanceOrderRepository struct {
	db *gorm.DB
}

// NewMaintenanceOrderRepository 创建维修工单仓储
func NewMaintenanceOrderRepository(db *gorm.DB) MaintenanceOrderRepository {
	return &maintenanceOrderRepository{db: db}
}

// Create 插入新工单,成功后回填 ID 与版本号
func (r *maintenanceOrderRepository) Create(ctx context.Context, order *model.MaintenanceOrderModel) error {
	if order.Version == 0 {
		order.Version = 1
	}
	if err := order.Validate(); err != nil {
		return err
	}
	return conn(ctx, r.db).Create(order).Error
}

// Load 根据 ID 加载工单
func (r *maintenanceOrderRepository) Load(ctx context.Context, id int64) (*model.MaintenanceOrderModel, error) {
	var order model.MaintenanceOrderModel
	err := conn(ctx, r.db).Where("id = ?", id).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Save 按版本号条件更新整条工单
//
// 更新条件为 id 与加载时的 version 同时匹配;没有命中行时区分
// 工单不存在（ErrOrderNotFound）与版本过期（ErrVersionConflict）。
// 成功后 order.Version 自增。
func (r *maintenanceOrderRepository) Save(ctx context.Context, order *model.MaintenanceOrderModel) error {
	if err := order.Validate(); err != nil {
		return err
	}

	now := time.Now()
	result := conn(ctx, r.db).
		Model(&model.MaintenanceOrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]interface{}{
			"firm_id":            order.FirmID,
			"unit_id":            order.UnitID,
			"property_id":        order.PropertyID,
			"requestor_type":     order.RequestorType,
			"tenant_id":          order.TenantID,
			"owner_id":           order.OwnerID,
			"expense_type_id":    order.ExpenseTypeID,
			"priority":           order.Priority,
			"title":              order.Title,
			"description":        order.Description,
			"status":             order.Status,
			"vendor_id":          order.VendorID,
			"estimated_cost":     order.EstimatedCost,
			"actual_cost":        order.ActualCost,
			"estimated_duration": order.EstimatedDuration,
			"actual_duration":    order.ActualDuration,
			"requires_approval":  order.RequiresApproval,
			"approved_by":        order.ApprovedBy,
			"approved_date":      order.ApprovedDate,
			"acknowledged_date":  order.AcknowledgedDate,
			"scheduled_date":     order.ScheduledDate,
			"started_date":       order.StartedDate,
			"completed_date":     order.CompletedDate,
			"admin_notes":        order.AdminNotes,
			"version":            order.Version + 1,
			"updated_at":         now,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := conn(ctx, r.db).Model(&model.MaintenanceOrderModel{}).
			Where("id = ?", order.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrOrderNotFound
		}
		return ErrVersionConflict
	}

	order.Version++
	order.UpdatedAt = now
	return nil
}

// FindByFilter 分页查询工单,返回当前页与总数
func (r *maintenanceOrderRepository) FindByFilter(ctx context.Context, filter *OrderFilter) ([]*model.MaintenanceOrderModel, int64, error) {
	if filter == nil {
		filter = &OrderFilter{}
	}
	query := applyOrderFilter(conn(ctx, r.db).Model(&model.MaintenanceOrderModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	order := filter.Order
	if order == "" {
		order = "DESC"
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var orders []*model.MaintenanceOrderModel
	err := query.
		Order(fmt.Sprintf("%s %s, id %s", sortBy, order, order)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}

	return orders, total, nil
}

// CountBy 按列分组计数（status 或 priority）
func (r *maintenanceOrderRepository) CountBy(ctx context.Context, column string, filter *OrderFilter) (map[string]int64, error) {
	if column != "status" && column != "priority" {
		return nil, fmt.Errorf("unsupported group column: %s", column)
	}
	if filter == nil {
		filter = &OrderFilter{}
	}

	var rows []struct {
		GroupKey string
		Count    int64
	}
	err := applyOrderFilter(conn(ctx, r.db).Model(&model.MaintenanceOrderModel{}), filter).
		Select(column + " AS group_key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by %s: %w", column, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.GroupKey] = row.Count
	}
	return counts, nil
}

func applyOrderFilter(query *gorm.DB, filter *OrderFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.FirmID != nil {
		query = query.Where("firm_id = ?", *filter.FirmID)
	}
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.UnitID != nil {
		query = query.Where("unit_id = ?", *filter.UnitID)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	return query
}
