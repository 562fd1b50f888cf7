package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Objects   []string
	Action    string
	Immutable bool
}

// BuiltinRoleSeeds 配送后台预置角色
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role:      "readonly_auditor",
			Objects:   []string{"/admin/*"},
			Action:    "GET",
			Immutable: true,
		},
		{
			Role:     "shipping_manager",
			Inherits: []string{"readonly_auditor"},
			Objects: []string{
				"/admin/shipping/methods",
				"/admin/shipping/methods/:id",
				"/admin/shipping/methods/:id/tiers",
				"/admin/shipping/tiers/:tier_id",
				"/admin/shipping/categories",
				"/admin/shipping/categories/:id",
				"/admin/shipping/free-rules",
				"/admin/shipping/free-rules/:id",
				"/admin/products",
				"/admin/products/:id",
			},
			Action:    "*",
			Immutable: true,
		},
		{
			Role:     "marketing",
			Inherits: []string{"readonly_auditor"},
			Objects: []string{
				"/admin/coupons",
				"/admin/coupons/:id",
				"/admin/users",
				"/admin/users/batch-status",
				"/admin/orders",
				"/admin/orders/:id",
			},
			Action:    "*",
			Immutable: true,
		},
	}
}

func isImmutableRole(role string) bool {
	for _, seed := range BuiltinRoleSeeds() {
		if seed.Immutable && rolePrefix+seed.Role == role {
			return true
		}
	}
	return false
}

// BootstrapBuiltinRoles 幂等写入预置角色、继承与策略
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return fmt.Errorf("create builtin role %s failed: %w", seed.Role, err)
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.addGrouping(role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		for _, object := range seed.Objects {
			if err := s.GrantRolePolicy(role, object, seed.Action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
