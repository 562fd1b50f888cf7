package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon 优惠券
type Coupon struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                               // 主键
	Code                string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`                  // 优惠码
	Type                string         `gorm:"type:varchar(25);not null;index" json:"type"`                        // 类型（PRODUCT_DISCOUNT 等）
	DiscountPercent     Money          `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percent"`       // 折扣百分比（0-100）
	MinQuantityRequired int            `gorm:"not null;default:1" json:"min_quantity_required"`                    // 最少商品件数
	MinCartTotal        *Money         `gorm:"type:decimal(10,2)" json:"min_cart_total"`                           // 购物车最低金额（CART_TOTAL_DISCOUNT）
	EligibleUsers       []User         `gorm:"many2many:coupon_eligible_users;" json:"eligible_users,omitempty"`   // 指定用户（USER_SPECIFIC）
	Active              bool           `gorm:"not null;index" json:"active"`                                       // 是否启用
	ValidFrom           time.Time      `gorm:"not null;index" json:"valid_from"`                                   // 生效时间
	ExpiresAt           time.Time      `gorm:"not null;index" json:"expires_at"`                                   // 失效时间
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                            // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                            // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                                     // 软删除时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}

// EligibleUserIDs 指定用户 ID 列表
func (c Coupon) EligibleUserIDs() []uint {
	ids := make([]uint, 0, len(c.EligibleUsers))
	for _, user := range c.EligibleUsers {
		ids = append(ids, user.ID)
	}
	return ids
}
