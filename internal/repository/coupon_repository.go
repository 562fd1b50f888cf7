package repository

import (
	"errors"

	"github.com/shipping-engine/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠券数据访问接口
type CouponRepository interface {
	GetByID(id uint) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
	GetActiveByCode(code string) (*models.Coupon, error)
	GetActiveByID(id uint) (*models.Coupon, error)
	Create(coupon *models.Coupon) error
	Update(coupon *models.Coupon) error
	ReplaceEligibleUsers(coupon *models.Coupon, userIDs []uint) error
	Delete(id uint) error
	List(filter CouponListFilter) ([]models.Coupon, int64, error)
	WithTx(tx *gorm.DB) *GormCouponRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormCouponRepository GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠券仓库
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCouponRepository) WithTx(tx *gorm.DB) *GormCouponRepository {
	if tx == nil {
		return r
	}
	return &GormCouponRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCouponRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *GormCouponRepository) first(query *gorm.DB) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := query.Preload("EligibleUsers").First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// GetByID 根据ID获取优惠券
func (r *GormCouponRepository) GetByID(id uint) (*models.Coupon, error) {
	return r.first(r.db.Where("id = ?", id))
}

// GetByCode 根据优惠码获取优惠券
func (r *GormCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	return r.first(r.db.Where("code = ?", code))
}

// GetActiveByCode 根据优惠码获取启用中的优惠券
func (r *GormCouponRepository) GetActiveByCode(code string) (*models.Coupon, error) {
	return r.first(r.db.Where("code = ? AND active = ?", code, true))
}

// GetActiveByID 根据ID获取启用中的优惠券
func (r *GormCouponRepository) GetActiveByID(id uint) (*models.Coupon, error) {
	return r.first(r.db.Where("id = ? AND active = ?", id, true))
}

// Create 创建优惠券
func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	return r.db.Omit("EligibleUsers.*").Create(coupon).Error
}

// Update 更新优惠券基础字段
func (r *GormCouponRepository) Update(coupon *models.Coupon) error {
	return r.db.Omit("EligibleUsers").Save(coupon).Error
}

// ReplaceEligibleUsers 替换指定用户
func (r *GormCouponRepository) ReplaceEligibleUsers(coupon *models.Coupon, userIDs []uint) error {
	association := r.db.Model(coupon).Omit("EligibleUsers.*").Association("EligibleUsers")
	if len(userIDs) == 0 {
		if err := association.Clear(); err != nil {
			return err
		}
		coupon.EligibleUsers = []models.User{}
		return nil
	}
	var users []models.User
	if err := r.db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return err
	}
	if err := association.Replace(users); err != nil {
		return err
	}
	coupon.EligibleUsers = users
	return nil
}

// Delete 删除优惠券
func (r *GormCouponRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM coupon_eligible_users WHERE coupon_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Coupon{}, id).Error
	})
}

// List 获取优惠券列表
func (r *GormCouponRepository) List(filter CouponListFilter) ([]models.Coupon, int64, error) {
	var coupons []models.Coupon
	query := r.db.Model(&models.Coupon{})

	if filter.Code != "" {
		query = query.Where("code LIKE ?", "%"+filter.Code+"%")
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Preload("EligibleUsers").Order("created_at desc, id desc").Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}
