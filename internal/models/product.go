package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product 商品表（主键为 UUID）
type Product struct {
	ID                 string            `gorm:"type:varchar(36);primaryKey" json:"id"`                       // 主键
	Name               string            `gorm:"type:varchar(255);not null" json:"name"`                      // 名称
	Slug               string            `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`          // 唯一标识
	Description        string            `gorm:"type:text" json:"description"`                                // 描述
	Price              Money             `gorm:"type:decimal(10,2);not null;default:0" json:"price"`          // 单价
	Weight             decimal.Decimal   `gorm:"type:decimal(10,3);not null;default:0" json:"weight"`         // 单件重量（kg）
	ShippingCategoryID *uint             `gorm:"index" json:"shipping_category_id"`                           // 配送分类
	ShippingCategory   *ShippingCategory `gorm:"foreignKey:ShippingCategoryID" json:"shipping_category,omitempty"` // 配送分类信息
	IsActive           bool              `gorm:"not null;index" json:"is_active"`                             // 是否上架
	CreatedAt          time.Time         `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt          time.Time         `json:"updated_at"`                                                  // 更新时间
	DeletedAt          gorm.DeletedAt    `gorm:"index" json:"-"`                                              // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// BeforeCreate 未指定主键时生成 UUID
func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
