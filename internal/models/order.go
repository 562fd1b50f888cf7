package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表（记录用户历史订单状态，用于首单资格判断）
type Order struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                          // 主键
	OrderNo          string         `gorm:"uniqueIndex;not null" json:"order_no"`                          // 订单编号
	UserID           uint           `gorm:"index;not null" json:"user_id"`                                 // 用户ID
	Status           string         `gorm:"type:varchar(20);index;not null" json:"status"`                 // 订单状态
	Currency         string         `gorm:"type:varchar(10);not null" json:"currency"`                     // 币种
	Subtotal         Money          `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`         // 商品小计
	ShippingCost     Money          `gorm:"type:decimal(12,2);not null;default:0" json:"shipping_cost"`    // 运费
	DiscountAmount   Money          `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`  // 优惠金额
	TotalAmount      Money          `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`     // 实付金额
	CouponID         *uint          `gorm:"index" json:"coupon_id,omitempty"`                              // 优惠券ID
	ShippingMethodID *uint          `gorm:"index" json:"shipping_method_id,omitempty"`                     // 配送方式ID
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
