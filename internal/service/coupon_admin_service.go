package service

import (
	"strings"
	"time"

	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponAdminService 优惠券管理服务
type CouponAdminService struct {
	repo     repository.CouponRepository
	userRepo repository.UserRepository
}

// NewCouponAdminService 创建优惠券管理服务
func NewCouponAdminService(repo repository.CouponRepository, userRepo repository.UserRepository) *CouponAdminService {
	return &CouponAdminService{repo: repo, userRepo: userRepo}
}

// CouponAdminInput 创建/更新优惠券输入
type CouponAdminInput struct {
	Code                string           `json:"code" validate:"required,max=50"`
	Type                string           `json:"type" validate:"required,coupon_type"`
	DiscountPercent     decimal.Decimal  `json:"discount_percent" validate:"gte=0,lte=100"`
	MinQuantityRequired int              `json:"min_quantity_required" validate:"gte=1"`
	MinCartTotal        *decimal.Decimal `json:"min_cart_total" validate:"omitempty,gte=0"`
	EligibleUserIDs     []uint           `json:"eligible_user_ids" validate:"omitempty,dive,gt=0"`
	Active              *bool            `json:"active"`
	ValidFrom           time.Time        `json:"valid_from" validate:"required"`
	ExpiresAt           time.Time        `json:"expires_at" validate:"required"`
}

func normalizeCouponInput(input CouponAdminInput) CouponAdminInput {
	input.Code = strings.TrimSpace(input.Code)
	input.Type = strings.ToUpper(strings.TrimSpace(input.Type))
	if input.MinQuantityRequired == 0 {
		input.MinQuantityRequired = 1
	}
	return input
}

// Create 创建优惠券
func (s *CouponAdminService) Create(input CouponAdminInput) (*models.Coupon, error) {
	input = normalizeCouponInput(input)
	if err := validateInput(input, ErrCouponInvalid); err != nil {
		return nil, err
	}
	exist, err := s.repo.GetByCode(input.Code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrCouponCodeExists
	}
	if err := s.ensureUsersExist(input.EligibleUserIDs); err != nil {
		return nil, err
	}

	coupon := &models.Coupon{Active: true}
	applyCouponInput(coupon, input)
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(coupon); err != nil {
			return err
		}
		return repo.ReplaceEligibleUsers(coupon, input.EligibleUserIDs)
	})
	if err != nil {
		return nil, err
	}
	return coupon, nil
}

// Update 更新优惠券
func (s *CouponAdminService) Update(id uint, input CouponAdminInput) (*models.Coupon, error) {
	if id == 0 {
		return nil, ErrCouponInvalid
	}
	input = normalizeCouponInput(input)
	if err := validateInput(input, ErrCouponInvalid); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCouponNotFound
	}
	if input.Code != existing.Code {
		dup, err := s.repo.GetByCode(input.Code)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, ErrCouponCodeExists
		}
	}
	if err := s.ensureUsersExist(input.EligibleUserIDs); err != nil {
		return nil, err
	}

	applyCouponInput(existing, input)
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(existing); err != nil {
			return err
		}
		return repo.ReplaceEligibleUsers(existing, input.EligibleUserIDs)
	})
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// Get 获取优惠券
func (s *CouponAdminService) Get(id uint) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// Delete 删除优惠券
func (s *CouponAdminService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// List 获取优惠券列表
func (s *CouponAdminService) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	filter.Type = strings.ToUpper(strings.TrimSpace(filter.Type))
	return s.repo.List(filter)
}

func applyCouponInput(coupon *models.Coupon, input CouponAdminInput) {
	coupon.Code = input.Code
	coupon.Type = input.Type
	coupon.DiscountPercent = models.NewMoneyFromDecimal(input.DiscountPercent)
	coupon.MinQuantityRequired = input.MinQuantityRequired
	coupon.MinCartTotal = nil
	if input.MinCartTotal != nil {
		total := models.NewMoneyFromDecimal(*input.MinCartTotal)
		coupon.MinCartTotal = &total
	}
	coupon.ValidFrom = input.ValidFrom
	coupon.ExpiresAt = input.ExpiresAt
	if input.Active != nil {
		coupon.Active = *input.Active
	}
}

func (s *CouponAdminService) ensureUsersExist(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	users, err := s.userRepo.ListByIDs(ids)
	if err != nil {
		return err
	}
	found := make(map[uint]struct{}, len(users))
	for _, user := range users {
		found[user.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return ErrUserNotFound
		}
	}
	return nil
}
