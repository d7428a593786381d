package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aalbahar80/rems-ai-sub000/internal/metrics"
	"github.com/aalbahar80/rems-ai-sub000/internal/model"
	"github.com/aalbahar80/rems-ai-sub000/internal/repository"
	"github.com/aalbahar80/rems-ai-sub000/internal/statemachine"
	"github.com/aalbahar80/rems-ai-sub000/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 5000
	maxNoteLength        = 2000
)

// MaintenanceOrderService 维修工单生命周期服务
type MaintenanceOrderService interface {
	Create(ctx context.Context, req *CreateOrderRequest) (*MaintenanceOrder, error)
	AssignToVendor(ctx context.Context, id int64, req *AssignVendorRequest) (*MaintenanceOrder, error)
	UpdateStatus(ctx context.Context, id int64, req *UpdateStatusRequest) (*MaintenanceOrder, error)
	Approve(ctx context.Context, id int64, req *ApproveRequest) (*MaintenanceOrder, error)

	Get(ctx context.Context, id int64) (*MaintenanceOrder, error)
	List(ctx context.Context, query *ListOrdersQuery) ([]*MaintenanceOrder, int64, error)
	History(ctx context.Context, id int64) ([]*StateHistory, error)
	Transitions(ctx context.Context, id int64) (*TransitionOptions, error)
	Statistics(ctx context.Context, firmID *int64) (*OrderStatistics, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// Option 服务可选配置
type Option func(*maintenanceOrderService)

// WithClock 替换时间源（用于测试）
func WithClock(now func() time.Time) Option {
	return func(s *maintenanceOrderService) {
		s.now = now
	}
}

// WithAuditLog 启用审计日志
func WithAuditLog(audit AuditLogService) Option {
	return func(s *maintenanceOrderService) {
		s.audit = audit
	}
}

// WithEventPublisher 启用工单事件发布
func WithEventPublisher(events EventPublisher) Option {
	return func(s *maintenanceOrderService) {
		s.events = events
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *maintenanceOrderService) {
		s.logger = logger
	}
}

type maintenanceOrderService struct {
	tx      repository.Transactor
	orders  repository.MaintenanceOrderRepository
	vendors repository.VendorRepository
	history repository.StateHistoryRepository
	audit   AuditLogService
	events  EventPublisher
	logger  logrus.FieldLogger
	now     func() time.Time
}

// NewMaintenanceOrderService 创建维修工单服务
func NewMaintenanceOrderService(
	tx repository.Transactor,
	orders repository.MaintenanceOrderRepository,
	vendors repository.VendorRepository,
	history repository.StateHistoryRepository,
	opts ...Option,
) MaintenanceOrderService {
	s := &maintenanceOrderService{
		tx:      tx,
		orders:  orders,
		vendors: vendors,
		history: history,
		logger:  logrus.StandardLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create 创建工单,初始状态为 submitted
func (s *maintenanceOrderService) Create(ctx context.Context, req *CreateOrderRequest) (*MaintenanceOrder, error) {
	if req == nil {
		return nil, &ValidationError{Message: "request body is required"}
	}

	var errs validationErrors

	requestor := statemachine.RequestorType(strings.TrimSpace(req.RequestorType))
	switch {
	case requestor == "":
		errs.add("requestor_type", "is required")
	case !requestor.Valid():
		errs.add("requestor_type", "must be one of tenant, owner, staff, property_manager, system")
	}
	if requestor == statemachine.RequestorTenant && req.TenantID == nil {
		errs.add("tenant_id", "is required when requestor_type is tenant")
	} else if req.TenantID != nil && *req.TenantID <= 0 {
		errs.add("tenant_id", "must be a positive id")
	}
	if requestor == statemachine.RequestorOwner && req.OwnerID == nil {
		errs.add("owner_id", "is required when requestor_type is owner")
	} else if req.OwnerID != nil && *req.OwnerID <= 0 {
		errs.add("owner_id", "must be a positive id")
	}

	if req.ExpenseTypeID == nil || *req.ExpenseTypeID <= 0 {
		errs.add("expense_type_id", "is required")
	}

	title, err := utils.TrimAndValidate(req.Title, maxTitleLength)
	if err != nil {
		errs.add("title", fieldMessage(err, maxTitleLength))
	}
	description, err := utils.TrimAndValidate(req.Description, maxDescriptionLength)
	if err != nil {
		errs.add("description", fieldMessage(err, maxDescriptionLength))
	}

	if req.UnitID == nil && req.PropertyID == nil {
		errs.add("unit_id", "unit_id or property_id is required")
	}
	if req.UnitID != nil && *req.UnitID <= 0 {
		errs.add("unit_id", "must be a positive id")
	}
	if req.PropertyID != nil && *req.PropertyID <= 0 {
		errs.add("property_id", "must be a positive id")
	}

	priority := statemachine.Priority(strings.TrimSpace(req.Priority))
	if priority == "" {
		priority = statemachine.DefaultPriority
	} else if !priority.Valid() {
		errs.add("priority", "must be one of low, medium, high, urgent, emergency")
	}

	if req.EstimatedCost != nil && *req.EstimatedCost < 0 {
		errs.add("estimated_cost", "must not be negative")
	}
	if req.EstimatedDuration != nil && *req.EstimatedDuration < 0 {
		errs.add("estimated_duration", "must not be negative")
	}

	if err := errs.err(); err != nil {
		return nil, err
	}

	now := s.now()
	order := &model.MaintenanceOrderModel{
		OrderNumber:       newOrderNumber(now),
		FirmID:            req.FirmID,
		UnitID:            req.UnitID,
		PropertyID:        req.PropertyID,
		RequestorType:     string(requestor),
		TenantID:          req.TenantID,
		OwnerID:           req.OwnerID,
		ExpenseTypeID:     *req.ExpenseTypeID,
		Priority:          string(priority),
		Title:             title,
		Description:       description,
		Status:            string(statemachine.StatusSubmitted),
		EstimatedCost:     req.EstimatedCost,
		EstimatedDuration: req.EstimatedDuration,
		RequiresApproval:  req.RequiresApproval != nil && *req.RequiresApproval,
		RequestedDate:     now,
		CreatedBy:         numericUserID(ctx),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.orders.Create(ctx, order); err != nil {
			return &PersistenceError{Op: "create maintenance order", Err: err}
		}
		return s.recordHistory(ctx, order.ID, "", statemachine.StatusSubmitted, "order created")
	})
	if err != nil {
		return nil, wrapStoreError("create maintenance order", order.ID, err)
	}

	metrics.RecordOrderCreated(order.Priority)
	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"priority":     order.Priority,
	}).Info("maintenance order created")

	s.afterCommit(ctx, AuditActionCreate, order, &OrderEvent{
		Type:     EventOrderCreated,
		ToStatus: order.Status,
		Data: map[string]interface{}{
			"priority":       order.Priority,
			"requestor_type": order.RequestorType,
		},
	})

	return toMaintenanceOrder(order), nil
}

// AssignToVendor 为工单分配供应商
//
// submitted 的工单会被提升为 scheduled;供应商必须存在且处于启用状态。
// 分配成功后在同一事务内累加供应商的任务计数。
func (s *maintenanceOrderService) AssignToVendor(ctx context.Context, id int64, req *AssignVendorRequest) (*MaintenanceOrder, error) {
	if req == nil {
		return nil, &ValidationError{Message: "request body is required"}
	}
	var errs validationErrors
	if req.VendorID <= 0 {
		errs.add("vendor_id", "is required")
	}
	if req.EstimatedCost != nil && *req.EstimatedCost < 0 {
		errs.add("estimated_cost", "must not be negative")
	}
	if req.EstimatedDuration != nil && *req.EstimatedDuration < 0 {
		errs.add("estimated_duration", "must not be negative")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	var (
		order    *model.MaintenanceOrderModel
		from     statemachine.Status
		promoted bool
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.Load(ctx, id)
		if err != nil {
			return err
		}
		from = statemachine.Status(order.Status)
		if statemachine.IsTerminal(from) {
			return &BusinessRuleError{
				Message: fmt.Sprintf("Vendor cannot be assigned to an order in status %s", from),
				From:    from,
			}
		}

		vendor, err := s.vendors.FindByID(ctx, req.VendorID)
		if errors.Is(err, repository.ErrVendorNotFound) {
			return &ValidationError{
				Message: "vendor is not available",
				Fields:  []FieldError{{Field: "vendor_id", Message: fmt.Sprintf("vendor %d does not exist", req.VendorID)}},
			}
		}
		if err != nil {
			return &PersistenceError{Op: "load vendor", Err: err}
		}
		if !vendor.IsActive {
			return &ValidationError{
				Message: "vendor is not available",
				Fields:  []FieldError{{Field: "vendor_id", Message: fmt.Sprintf("vendor %d is inactive", req.VendorID)}},
			}
		}

		now := s.now()
		scheduled := now
		if req.ScheduledDate != nil {
			scheduled = *req.ScheduledDate
		}
		order.VendorID = &vendor.ID
		order.ScheduledDate = &scheduled
		if order.AcknowledgedDate == nil {
			order.AcknowledgedDate = &now
		}
		if req.EstimatedCost != nil {
			order.EstimatedCost = req.EstimatedCost
		}
		if req.EstimatedDuration != nil {
			order.EstimatedDuration = req.EstimatedDuration
		}

		var next statemachine.Status
		next, promoted = statemachine.PromoteOnAssignment(from)
		order.Status = string(next)

		if err := s.orders.Save(ctx, order); err != nil {
			return err
		}
		if promoted {
			if err := s.recordHistory(ctx, order.ID, from, next, fmt.Sprintf("vendor %d assigned", vendor.ID)); err != nil {
				return err
			}
		}
		if err := s.vendors.IncrementCompletedJobs(ctx, vendor.ID); err != nil {
			return &PersistenceError{Op: "increment vendor jobs", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, wrapStoreError("assign vendor", id, err)
	}

	metrics.RecordVendorAssignment()
	if promoted {
		metrics.RecordTransition(string(from), order.Status)
	}
	s.logger.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"vendor_id": req.VendorID,
		"from":      from,
		"to":        order.Status,
	}).Info("vendor assigned to maintenance order")

	s.afterCommit(ctx, AuditActionAssignVendor, order, &OrderEvent{
		Type:       EventOrderVendorAssigned,
		FromStatus: string(from),
		ToStatus:   order.Status,
		Data: map[string]interface{}{
			"vendor_id":      req.VendorID,
			"scheduled_date": order.ScheduledDate,
		},
	})

	return toMaintenanceOrder(order), nil
}

// UpdateStatus 按状态注册表迁移工单状态
func (s *maintenanceOrderService) UpdateStatus(ctx context.Context, id int64, req *UpdateStatusRequest) (*MaintenanceOrder, error) {
	if req == nil {
		return nil, &ValidationError{Message: "request body is required"}
	}
	var errs validationErrors
	to, err := statemachine.ParseStatus(strings.TrimSpace(req.Status))
	if err != nil {
		if strings.TrimSpace(req.Status) == "" {
			errs.add("status", "is required")
		} else {
			errs.add("status", err.Error())
		}
	}
	note := strings.TrimSpace(req.Note)
	if len([]rune(note)) > maxNoteLength {
		errs.add("note", fmt.Sprintf("must be at most %d characters", maxNoteLength))
	}
	if req.ActualCost != nil && *req.ActualCost < 0 {
		errs.add("actual_cost", "must not be negative")
	}
	if req.ActualDuration != nil && *req.ActualDuration < 0 {
		errs.add("actual_duration", "must not be negative")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	var (
		order *model.MaintenanceOrderModel
		from  statemachine.Status
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.Load(ctx, id)
		if err != nil {
			return err
		}
		from = statemachine.Status(order.Status)

		if err := statemachine.Validate(from, to); err != nil {
			metrics.RecordRejectedTransition(string(from), string(to))
			return &BusinessRuleError{Message: err.Error(), From: from, To: to}
		}

		now := s.now()
		order.Status = string(to)
		if field, ok := statemachine.DateFieldFor(to); ok {
			stampDate(order, field, now)
		}
		if req.ActualCost != nil {
			order.ActualCost = req.ActualCost
		}
		if req.ActualDuration != nil {
			order.ActualDuration = req.ActualDuration
		}
		order.AdminNotes = appendNote(order.AdminNotes, now, utils.SanitizeString(note))

		if err := s.orders.Save(ctx, order); err != nil {
			return err
		}
		return s.recordHistory(ctx, order.ID, from, to, note)
	})
	if err != nil {
		return nil, wrapStoreError("update status", id, err)
	}

	metrics.RecordTransition(string(from), string(to))
	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"from":     from,
		"to":       to,
	}).Info("maintenance order status updated")

	s.afterCommit(ctx, AuditActionUpdateStatus, order, &OrderEvent{
		Type:       EventOrderStatusChanged,
		FromStatus: string(from),
		ToStatus:   string(to),
		Data:       map[string]interface{}{"note": note},
	})

	return toMaintenanceOrder(order), nil
}

// Approve 审批工单,仅 submitted 与 acknowledged 状态允许
func (s *maintenanceOrderService) Approve(ctx context.Context, id int64, req *ApproveRequest) (*MaintenanceOrder, error) {
	if req == nil {
		req = &ApproveRequest{}
	}
	approverID := req.ApproverID
	if approverID == nil {
		approverID = numericUserID(ctx)
	}
	var errs validationErrors
	if approverID == nil || *approverID <= 0 {
		errs.add("approver_id", "is required")
	}
	note := strings.TrimSpace(req.Note)
	if len([]rune(note)) > maxNoteLength {
		errs.add("note", fmt.Sprintf("must be at most %d characters", maxNoteLength))
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	var (
		order *model.MaintenanceOrderModel
		from  statemachine.Status
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.Load(ctx, id)
		if err != nil {
			return err
		}
		from = statemachine.Status(order.Status)
		if !statemachine.CanApprove(from) {
			metrics.RecordRejectedTransition(string(from), string(statemachine.StatusApproved))
			return &BusinessRuleError{
				Message: fmt.Sprintf("Order cannot be approved in status %s", from),
				From:    from,
				To:      statemachine.StatusApproved,
			}
		}

		now := s.now()
		order.Status = string(statemachine.StatusApproved)
		order.ApprovedBy = approverID
		order.ApprovedDate = &now

		approval := fmt.Sprintf("Approved by user %d", *approverID)
		if note != "" {
			approval += ": " + utils.SanitizeString(note)
		}
		order.AdminNotes = appendNote(order.AdminNotes, now, approval)

		if err := s.orders.Save(ctx, order); err != nil {
			return err
		}
		return s.recordHistory(ctx, order.ID, from, statemachine.StatusApproved, approval)
	})
	if err != nil {
		return nil, wrapStoreError("approve order", id, err)
	}

	metrics.RecordTransition(string(from), order.Status)
	s.logger.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"approver_id": *approverID,
		"from":        from,
	}).Info("maintenance order approved")

	s.afterCommit(ctx, AuditActionApprove, order, &OrderEvent{
		Type:       EventOrderApproved,
		FromStatus: string(from),
		ToStatus:   order.Status,
		Data: map[string]interface{}{
			"approver_id": *approverID,
			"note":        note,
		},
	})

	return toMaintenanceOrder(order), nil
}

func (s *maintenanceOrderService) recordHistory(ctx context.Context, orderID int64, from, to statemachine.Status, reason string) error {
	err := s.history.Save(ctx, &model.StateHistoryModel{
		ID:         uuid.New().String(),
		OrderID:    orderID,
		FromStatus: string(from),
		ToStatus:   string(to),
		Reason:     reason,
		Operator:   operatorFromContext(ctx),
		CreatedAt:  s.now(),
	})
	if err != nil {
		return &PersistenceError{Op: "save state history", Err: err}
	}
	return nil
}

// afterCommit 写审计日志并发布事件,失败只记录日志
func (s *maintenanceOrderService) afterCommit(ctx context.Context, action string, order *model.MaintenanceOrderModel, event *OrderEvent) {
	entry := s.logger.WithFields(logrus.Fields{"order_id": order.ID, "action": action})

	if s.audit != nil {
		if userID := UserIDFromContext(ctx); userID != "" {
			details := map[string]interface{}{
				"order_number": order.OrderNumber,
				"status":       order.Status,
				"version":      order.Version,
			}
			if event != nil && event.FromStatus != "" {
				details["from_status"] = event.FromStatus
			}
			if err := s.audit.RecordAction(ctx, userID, action, resourceMaintenanceOrder, strconv.FormatInt(order.ID, 10), details); err != nil {
				entry.WithError(err).Warn("failed to record audit log")
			}
		}
	}

	if s.events != nil && event != nil {
		event.OrderID = order.ID
		event.OrderNumber = order.OrderNumber
		event.Operator = operatorFromContext(ctx)
		event.OccurredAt = s.now()
		if err := s.events.Publish(ctx, event); err != nil {
			entry.WithError(err).Warn("failed to publish order event")
		}
	}
}

func stampDate(order *model.MaintenanceOrderModel, field statemachine.DateField, t time.Time) {
	var target **time.Time
	switch field {
	case statemachine.DateAcknowledged:
		target = &order.AcknowledgedDate
	case statemachine.DateScheduled:
		target = &order.ScheduledDate
	case statemachine.DateStarted:
		target = &order.StartedDate
	case statemachine.DateCompleted:
		target = &order.CompletedDate
	default:
		return
	}
	if *target == nil {
		stamped := t
		*target = &stamped
	}
}

// appendNote 追加一行 "[RFC3339] note",空 note 不追加
func appendNote(existing string, at time.Time, note string) string {
	if note == "" {
		return existing
	}
	line := fmt.Sprintf("[%s] %s", at.UTC().Format(time.RFC3339), note)
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("MO-%s-%s", now.Format("20060102"), suffix)
}

func numericUserID(ctx context.Context) *int64 {
	id, err := strconv.ParseInt(UserIDFromContext(ctx), 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func fieldMessage(err error, maxLen int) string {
	if errors.Is(err, utils.ErrStringTooLong) {
		return fmt.Sprintf("must be at most %d characters", maxLen)
	}
	return "is required"
}
