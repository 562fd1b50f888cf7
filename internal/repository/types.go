package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page               int
	PageSize           int
	ShippingCategoryID *uint
	Search             string
	OnlyActive         bool
	WithCategory       bool
}

// ShippingMethodListFilter 查询配送方式列表的过滤条件
type ShippingMethodListFilter struct {
	Page     int
	PageSize int
	Search   string
	IsActive *bool
}

// CouponListFilter 优惠券列表筛选
type CouponListFilter struct {
	Code     string
	Type     string
	Active   *bool
	Page     int
	PageSize int
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// UserListFilter 用户列表筛选
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AuditLogListFilter 审计日志筛选
type AuditLogListFilter struct {
	Page            int
	PageSize        int
	Scope           string
	Action          string
	ResourceID      uint
	OperatorAdminID uint
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
