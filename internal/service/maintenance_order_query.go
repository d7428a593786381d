package service

import (
	"context"
	"strings"

	"github.com/aalbahar80/rems-ai-sub000/internal/repository"
	"github.com/aalbahar80/rems-ai-sub000/internal/statemachine"
	"github.com/aalbahar80/rems-ai-sub000/internal/utils"
)

const maxPageSize = 100

// Get 获取工单详情
func (s *maintenanceOrderService) Get(ctx context.Context, id int64) (*MaintenanceOrder, error) {
	order, err := s.orders.Load(ctx, id)
	if err != nil {
		return nil, wrapStoreError("load maintenance order", id, err)
	}
	return toMaintenanceOrder(order), nil
}

// List 分页查询工单
func (s *maintenanceOrderService) List(ctx context.Context, query *ListOrdersQuery) ([]*MaintenanceOrder, int64, error) {
	if query == nil {
		query = &ListOrdersQuery{}
	}

	var errs validationErrors
	filter := &repository.OrderFilter{
		FirmID:     query.FirmID,
		PropertyID: query.PropertyID,
		UnitID:     query.UnitID,
		VendorID:   query.VendorID,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}

	if status := strings.TrimSpace(query.Status); status != "" {
		if _, err := statemachine.ParseStatus(status); err != nil {
			errs.add("status", err.Error())
		} else {
			filter.Status = &status
		}
	}
	if priority := strings.TrimSpace(query.Priority); priority != "" {
		if !statemachine.Priority(priority).Valid() {
			errs.add("priority", "must be one of low, medium, high, urgent, emergency")
		} else {
			filter.Priority = &priority
		}
	}
	if query.Page < 0 {
		errs.add("page", "must not be negative")
	}
	if query.PageSize < 0 || query.PageSize > maxPageSize {
		errs.add("page_size", "must be between 1 and 100")
	}
	if query.SortBy != "" {
		if err := utils.ValidateSortField(query.SortBy, repository.OrderSortFields); err != nil {
			errs.add("sort_by", err.Error())
		} else {
			filter.SortBy = query.SortBy
		}
	}
	order, err := utils.NormalizeSortOrder(query.Order)
	if err != nil {
		errs.add("order", err.Error())
	}
	filter.Order = order

	if err := errs.err(); err != nil {
		return nil, 0, err
	}

	models, total, err := s.orders.FindByFilter(ctx, filter)
	if err != nil {
		return nil, 0, &PersistenceError{Op: "list maintenance orders", Err: err}
	}

	orders := make([]*MaintenanceOrder, 0, len(models))
	for _, m := range models {
		orders = append(orders, toMaintenanceOrder(m))
	}
	return orders, total, nil
}

// History 返回工单状态变更历史
func (s *maintenanceOrderService) History(ctx context.Context, id int64) ([]*StateHistory, error) {
	if _, err := s.orders.Load(ctx, id); err != nil {
		return nil, wrapStoreError("load maintenance order", id, err)
	}

	models, err := s.history.FindByOrderID(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "load state history", Err: err}
	}

	histories := make([]*StateHistory, 0, len(models))
	for _, m := range models {
		histories = append(histories, &StateHistory{
			ID:         m.ID,
			OrderID:    m.OrderID,
			FromStatus: m.FromStatus,
			ToStatus:   m.ToStatus,
			Reason:     m.Reason,
			Operator:   m.Operator,
			CreatedAt:  m.CreatedAt,
		})
	}
	return histories, nil
}

// Transitions 返回工单当前状态下允许的操作
func (s *maintenanceOrderService) Transitions(ctx context.Context, id int64) (*TransitionOptions, error) {
	order, err := s.orders.Load(ctx, id)
	if err != nil {
		return nil, wrapStoreError("load maintenance order", id, err)
	}
	status := statemachine.Status(order.Status)
	return &TransitionOptions{
		OrderID:    order.ID,
		Status:     status,
		Allowed:    statemachine.AllowedTransitions(status),
		CanApprove: statemachine.CanApprove(status),
		Terminal:   statemachine.IsTerminal(status),
	}, nil
}

// Statistics 按状态与优先级统计工单
func (s *maintenanceOrderService) Statistics(ctx context.Context, firmID *int64) (*OrderStatistics, error) {
	filter := &repository.OrderFilter{FirmID: firmID}

	byStatus, err := s.orders.CountBy(ctx, "status", filter)
	if err != nil {
		return nil, &PersistenceError{Op: "count orders by status", Err: err}
	}
	byPriority, err := s.orders.CountBy(ctx, "priority", filter)
	if err != nil {
		return nil, &PersistenceError{Op: "count orders by priority", Err: err}
	}

	stats := &OrderStatistics{
		ByStatus:   make(map[string]int64, len(statemachine.AllStatuses)),
		ByPriority: byPriority,
	}
	for _, st := range statemachine.AllStatuses {
		stats.ByStatus[string(st)] = byStatus[string(st)]
	}
	for _, n := range byStatus {
		stats.Total += n
	}
	return stats, nil
}

// CountByStatus 各状态工单数（指标收集使用）
func (s *maintenanceOrderService) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts, err := s.orders.CountBy(ctx, "status", nil)
	if err != nil {
		return nil, &PersistenceError{Op: "count orders by status", Err: err}
	}
	return counts, nil
}
