package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aalbahar80/rems-ai-sub000/internal/model"
	"github.com/aalbahar80/rems-ai-sub000/internal/repository"
	"github.com/google/uuid"
)

// 审计动作
const (
	AuditActionCreate       = "create"
	AuditActionAssignVendor = "assign_vendor"
	AuditActionUpdateStatus = "update_status"
	AuditActionApprove      = "approve"
)

const resourceMaintenanceOrder = "maintenance_order"

// AuditLogService 审计日志服务
type AuditLogService interface {
	RecordAction(ctx context.Context, userID string, action string, resourceType string, resourceID string, details interface{}) error
}

type auditLogService struct {
	auditRepo repository.AuditLogRepository
	now       func() time.Time
}

// NewAuditLogService 创建审计日志服务
func NewAuditLogService(auditRepo repository.AuditLogRepository) AuditLogService {
	return &auditLogService{
		auditRepo: auditRepo,
		now:       time.Now,
	}
}

// RecordAction 记录操作审计日志
func (s *auditLogService) RecordAction(
	ctx context.Context,
	userID string,
	action string,
	resourceType string,
	resourceID string,
	details interface{},
) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	info := RequestInfoFromContext(ctx)
	auditLog := &model.AuditLogModel{
		ID:           uuid.New().String(),
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    info.RequestID,
		IP:           info.IP,
		UserAgent:    info.UserAgent,
		Details:      detailsJSON,
		CreatedAt:    s.now(),
	}

	return s.auditRepo.Save(ctx, auditLog)
}
