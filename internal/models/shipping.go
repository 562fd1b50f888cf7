package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShippingCategory 配送分类表
// AllowedMethods 为空表示不限制配送方式。
type ShippingCategory struct {
	ID             uint             `gorm:"primarykey" json:"id"`                                                       // 主键
	Name           string           `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`                         // 分类名称
	Description    string           `gorm:"type:text" json:"description"`                                               // 描述
	AllowedMethods []ShippingMethod `gorm:"many2many:shipping_category_methods;" json:"allowed_shipping_methods"`       // 允许的配送方式
	CreatedAt      time.Time        `gorm:"index" json:"created_at"`                                                    // 创建时间
	UpdatedAt      time.Time        `json:"updated_at"`                                                                 // 更新时间
	DeletedAt      gorm.DeletedAt   `gorm:"index" json:"-"`                                                             // 软删除时间
}

// TableName 指定表名
func (ShippingCategory) TableName() string {
	return "shipping_categories"
}

// ShippingMethod 配送方式表
type ShippingMethod struct {
	ID                    uint             `gorm:"primarykey" json:"id"`                                                         // 主键
	Name                  string           `gorm:"type:varchar(100);not null;index" json:"name"`                                 // 名称
	Description           string           `gorm:"type:text" json:"description"`                                                 // 描述
	Price                 Money            `gorm:"type:decimal(10,2);not null;default:0" json:"price"`                           // 基础价（无阶梯匹配时使用）
	DeliveryEstimatedTime string           `gorm:"type:varchar(100)" json:"delivery_estimated_time"`                             // 预计送达时间
	MaxWeight             *decimal.Decimal `gorm:"type:decimal(10,3)" json:"max_weight"`                                         // 重量上限（kg，空或 0 不限制）
	MaxQuantity           *int             `json:"max_quantity"`                                                                 // 数量上限（空或 0 不限制）
	PreferredPricingType  string           `gorm:"type:varchar(20);not null;default:'quantity'" json:"preferred_pricing_type"`   // 偏好计价维度
	IsActive              bool             `gorm:"not null;index" json:"is_active"`                                              // 是否启用
	Tiers                 []ShippingTier   `gorm:"foreignKey:ShippingMethodID;constraint:OnDelete:CASCADE" json:"shipping_tiers"` // 运费阶梯
	CreatedAt             time.Time        `gorm:"index" json:"created_at"`                                                      // 创建时间
	UpdatedAt             time.Time        `json:"updated_at"`                                                                   // 更新时间
	DeletedAt             gorm.DeletedAt   `gorm:"index" json:"-"`                                                               // 软删除时间
}

// TableName 指定表名
func (ShippingMethod) TableName() string {
	return "shipping_methods"
}

// ShippingTier 运费阶梯表
type ShippingTier struct {
	ID                    uint             `gorm:"primarykey" json:"id"`                                               // 主键
	ShippingMethodID      uint             `gorm:"not null;index" json:"shipping_method_id"`                           // 所属配送方式
	PricingType           string           `gorm:"type:varchar(20);not null" json:"pricing_type"`                      // 计价维度（quantity/weight）
	MinQuantity           *int             `json:"min_quantity"`                                                       // 最小数量
	MaxQuantity           *int             `json:"max_quantity"`                                                       // 最大数量（空表示无上限）
	MinWeight             *decimal.Decimal `gorm:"type:decimal(10,3)" json:"min_weight"`                               // 最小重量
	MaxWeight             *decimal.Decimal `gorm:"type:decimal(10,3)" json:"max_weight"`                               // 最大重量（空表示无上限）
	BasePrice             Money            `gorm:"type:decimal(10,2);not null;default:0" json:"base_price"`            // 阶梯基础价
	HasIncrementalPricing bool             `gorm:"not null;default:false" json:"has_incremental_pricing"`              // 是否递增计价
	IncrementPerUnit      Money            `gorm:"type:decimal(10,2);not null;default:0" json:"increment_per_unit"`    // 每单位加价
	IncrementUnitSize     decimal.Decimal  `gorm:"type:decimal(10,3);not null;default:1" json:"increment_unit_size"`   // 单位大小
	Priority              int              `gorm:"not null;default:0;index" json:"priority"`                           // 优先级（越大越优先）
	CreatedAt             time.Time        `json:"created_at"`                                                         // 创建时间
	UpdatedAt             time.Time        `json:"updated_at"`                                                         // 更新时间
}

// TableName 指定表名
func (ShippingTier) TableName() string {
	return "shipping_tiers"
}

// FreeShippingRule 免运费规则表
// Categories 为空表示适用全部分类。
type FreeShippingRule struct {
	ID              uint               `gorm:"primarykey" json:"id"`                                               // 主键
	Name            string             `gorm:"type:varchar(100)" json:"name"`                                      // 规则名称
	ThresholdAmount Money              `gorm:"type:decimal(10,2);not null;index" json:"threshold_amount"`          // 门槛金额
	Active          bool               `gorm:"not null;index" json:"active"`                                       // 是否启用
	Categories      []ShippingCategory `gorm:"many2many:free_shipping_rule_categories;" json:"applicable_categories"` // 适用分类
	CreatedAt       time.Time          `gorm:"index" json:"created_at"`                                            // 创建时间
	UpdatedAt       time.Time          `json:"updated_at"`                                                         // 更新时间
	DeletedAt       gorm.DeletedAt     `gorm:"index" json:"-"`                                                     // 软删除时间
}

// TableName 指定表名
func (FreeShippingRule) TableName() string {
	return "free_shipping_rules"
}
