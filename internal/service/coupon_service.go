package service

import (
	"context"
	"strings"
	"time"

	"github.com/shipping-engine/internal/constants"
	"github.com/shipping-engine/internal/logger"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/obs"
	"github.com/shipping-engine/internal/pricing"
	"github.com/shipping-engine/internal/repository"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// CouponValidateInput 按优惠码校验的输入
type CouponValidateInput struct {
	Code       string
	Quantities []int
	CartTotal  *decimal.Decimal
	UserID     *uint
}

// CouponValidation 校验结果
type CouponValidation struct {
	Verdict   pricing.Verdict
	Coupon    *models.Coupon
	Discount  *pricing.Discount
	TypeLabel string
}

// CouponCalculation 按 ID 计算优惠的结果
type CouponCalculation struct {
	Verdict  pricing.Verdict
	Coupon   *models.Coupon
	Discount *pricing.Discount
}

// CouponService 优惠券校验与计算服务
type CouponService struct {
	couponRepo repository.CouponRepository
	userRepo   repository.UserRepository
	orderRepo  repository.OrderRepository
	metrics    *obs.Metrics
	now        func() time.Time
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, userRepo repository.UserRepository, orderRepo repository.OrderRepository, metrics *obs.Metrics) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		userRepo:   userRepo,
		orderRepo:  orderRepo,
		metrics:    metrics,
		now:        time.Now,
	}
}

// ValidateByCode 按优惠码校验，购物车金额存在时同时给出优惠金额（运费按 0 计）
func (s *CouponService) ValidateByCode(ctx context.Context, input CouponValidateInput) (*CouponValidation, error) {
	_, span := obs.StartSpan(ctx, "coupon.validate")
	defer span.End()

	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, ErrInvalidInput
	}

	var user *pricing.UserFacts
	if input.UserID != nil {
		facts, err := s.userFacts(*input.UserID)
		if err != nil {
			return nil, err
		}
		if facts == nil {
			return nil, ErrUserNotFound
		}
		user = facts
	}

	coupon, err := s.couponRepo.GetActiveByCode(code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	engineCoupon := toPricingCoupon(coupon)
	verdict := pricing.ValidateCoupon(engineCoupon, pricing.CouponInput{
		Quantities: input.Quantities,
		User:       user,
		CartTotal:  input.CartTotal,
		Now:        s.now(),
	})
	span.SetAttributes(
		attribute.String("coupon.type", coupon.Type),
		attribute.Bool("coupon.valid", verdict.Valid),
	)
	s.metrics.IncCouponValidation(coupon.Type, verdict.Valid)

	result := &CouponValidation{
		Verdict:   verdict,
		TypeLabel: engineCoupon.Type.Label(),
	}
	if !verdict.Valid {
		return result, nil
	}
	result.Coupon = coupon
	if input.CartTotal != nil {
		discount := pricing.CalculateDiscount(engineCoupon, *input.CartTotal, decimal.Zero)
		result.Discount = &discount
	}
	return result, nil
}

// CalculateByID 按优惠券 ID 校验并计算优惠拆分，停用的优惠券视为不存在
func (s *CouponService) CalculateByID(ctx context.Context, id uint, cartTotal, shippingCost decimal.Decimal, quantities []int) (*CouponCalculation, error) {
	_, span := obs.StartSpan(ctx, "coupon.calculate")
	defer span.End()

	if cartTotal.IsNegative() || shippingCost.IsNegative() {
		return nil, ErrAmountInvalid
	}
	coupon, err := s.couponRepo.GetActiveByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	engineCoupon := toPricingCoupon(coupon)
	verdict := pricing.ValidateCoupon(engineCoupon, pricing.CouponInput{
		Quantities: quantities,
		Now:        s.now(),
	})
	s.metrics.IncCouponValidation(coupon.Type, verdict.Valid)
	result := &CouponCalculation{Verdict: verdict, Coupon: coupon}
	if !verdict.Valid {
		return result, nil
	}
	discount := pricing.CalculateDiscount(engineCoupon, cartTotal, shippingCost)
	result.Discount = &discount
	result.Verdict.Message = "Discount calculated successfully."
	return result, nil
}

// lookupActive 结算时查找启用中的优惠券
func (s *CouponService) lookupActive(code string) (*models.Coupon, error) {
	return s.couponRepo.GetActiveByCode(strings.TrimSpace(code))
}

// evaluate 结算时校验并计算优惠
func (s *CouponService) evaluate(coupon *models.Coupon, quantities []int, user *pricing.UserFacts, subtotal, shippingCost decimal.Decimal) (pricing.Verdict, *pricing.Discount) {
	engineCoupon := toPricingCoupon(coupon)
	verdict := pricing.ValidateCoupon(engineCoupon, pricing.CouponInput{
		Quantities: quantities,
		User:       user,
		CartTotal:  &subtotal,
		Now:        s.now(),
	})
	s.metrics.IncCouponValidation(coupon.Type, verdict.Valid)
	if !verdict.Valid {
		return verdict, nil
	}
	discount := pricing.CalculateDiscount(engineCoupon, subtotal, shippingCost)
	return verdict, &discount
}

// userFacts 查询用户及其是否已有有效订单，用户不存在返回 nil；停用账号视为未登录
func (s *CouponService) userFacts(userID uint) (*pricing.UserFacts, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	hasOrder, err := s.orderRepo.HasOrderInStatuses(user.ID, constants.CommittedOrderStatuses)
	if err != nil {
		logger.Warnw("coupon_user_order_lookup_failed", "user_id", user.ID, "error", err)
		return nil, err
	}
	return &pricing.UserFacts{
		ID:                user.ID,
		Authenticated:     !strings.EqualFold(user.Status, constants.UserStatusDisabled),
		HasCommittedOrder: hasOrder,
	}, nil
}
