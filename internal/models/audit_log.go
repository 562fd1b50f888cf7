package models

import "time"

// 审计范围
const (
	AuditScopeAuthz    = "authz"
	AuditScopeShipping = "shipping"
	AuditScopeCoupon   = "coupon"
)

// AuditLog 后台写操作审计
type AuditLog struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	Scope            string    `gorm:"type:varchar(20);index:idx_audit_scope_action;not null" json:"scope"`
	Action           string    `gorm:"type:varchar(64);index:idx_audit_scope_action;not null" json:"action"`
	ResourceID       *uint     `gorm:"index" json:"resource_id,omitempty"`
	OperatorAdminID  uint      `gorm:"index;not null" json:"operator_admin_id"`
	OperatorUsername string    `gorm:"type:varchar(100);not null;default:''" json:"operator_username"`
	TargetAdminID    *uint     `gorm:"index" json:"target_admin_id,omitempty"`
	Role             string    `gorm:"type:varchar(120);not null;default:''" json:"role,omitempty"`
	Object           string    `gorm:"type:varchar(255);not null;default:''" json:"object,omitempty"`
	Method           string    `gorm:"type:varchar(20);not null;default:''" json:"method,omitempty"`
	RequestID        string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	Detail           JSON      `gorm:"type:json" json:"detail"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string {
	return "admin_audit_logs"
}
