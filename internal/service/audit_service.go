package service

import (
	"strings"
	"time"

	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/repository"
)

// AuditEntry 一次后台写操作
type AuditEntry struct {
	Scope            string
	Action           string
	ResourceID       uint
	OperatorAdminID  uint
	OperatorUsername string
	TargetAdminID    *uint
	Role             string
	Object           string
	Method           string
	RequestID        string
	Detail           models.JSON
}

var auditScopes = map[string]struct{}{
	models.AuditScopeAuthz:    {},
	models.AuditScopeShipping: {},
	models.AuditScopeCoupon:   {},
}

// AuditService 后台审计
type AuditService struct {
	repo repository.AuditLogRepository
}

// NewAuditService 创建审计服务
func NewAuditService(repo repository.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record 写入审计记录，匿名操作与空动作直接忽略
func (s *AuditService) Record(entry AuditEntry) error {
	if s == nil || s.repo == nil || entry.OperatorAdminID == 0 {
		return nil
	}
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return nil
	}
	scope := strings.ToLower(strings.TrimSpace(entry.Scope))
	if _, ok := auditScopes[scope]; !ok {
		return ErrInvalidInput
	}
	row := &models.AuditLog{
		Scope:            scope,
		Action:           action,
		OperatorAdminID:  entry.OperatorAdminID,
		OperatorUsername: strings.TrimSpace(entry.OperatorUsername),
		TargetAdminID:    entry.TargetAdminID,
		Role:             strings.TrimSpace(entry.Role),
		Object:           strings.TrimSpace(entry.Object),
		Method:           strings.ToUpper(strings.TrimSpace(entry.Method)),
		RequestID:        strings.TrimSpace(entry.RequestID),
		Detail:           entry.Detail,
		CreatedAt:        time.Now(),
	}
	if entry.ResourceID != 0 {
		id := entry.ResourceID
		row.ResourceID = &id
	}
	return s.repo.Create(row)
}

// List 管理端分页查询
func (s *AuditService) List(filter repository.AuditLogListFilter) ([]models.AuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AuditLog{}, 0, nil
	}
	filter.Scope = strings.ToLower(strings.TrimSpace(filter.Scope))
	filter.Action = strings.TrimSpace(filter.Action)
	return s.repo.ListAdmin(filter)
}
