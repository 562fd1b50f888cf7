package service

import (
	"errors"
	"testing"

	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/repository"
)

func TestAuditServiceRecordAndList(t *testing.T) {
	f := setupServiceTest(t)
	svc := NewAuditService(repository.NewAuditLogRepository(f.db))

	entries := []AuditEntry{
		{Scope: "Shipping", Action: "method_create", ResourceID: 3, OperatorAdminID: 1, Method: "post", Detail: models.JSON{"name": "Express"}},
		{Scope: models.AuditScopeCoupon, Action: "coupon_delete", ResourceID: 9, OperatorAdminID: 1},
		{Scope: models.AuditScopeAuthz, Action: "role_create", OperatorAdminID: 2, Role: "role:ops"},
	}
	for _, entry := range entries {
		if err := svc.Record(entry); err != nil {
			t.Fatalf("record %s failed: %v", entry.Action, err)
		}
	}
	// 匿名操作不落库
	if err := svc.Record(AuditEntry{Scope: models.AuditScopeCoupon, Action: "coupon_update"}); err != nil {
		t.Fatalf("anonymous entry should be ignored: %v", err)
	}
	if err := svc.Record(AuditEntry{Scope: "billing", Action: "refund", OperatorAdminID: 1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown scope want ErrInvalidInput got %v", err)
	}

	items, total, err := svc.List(repository.AuditLogListFilter{Page: 1, PageSize: 10, Scope: " SHIPPING "})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("shipping entries want 1 got %d", total)
	}
	got := items[0]
	if got.Scope != models.AuditScopeShipping || got.Method != "POST" || got.ResourceID == nil || *got.ResourceID != 3 {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.Detail["name"] != "Express" {
		t.Fatalf("detail want name=Express got %v", got.Detail)
	}

	_, total, err = svc.List(repository.AuditLogListFilter{Page: 1, PageSize: 10, OperatorAdminID: 1})
	if err != nil {
		t.Fatalf("list by operator failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("operator 1 entries want 2 got %d", total)
	}
}
