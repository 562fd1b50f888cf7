package service

import (
	"strings"

	"github.com/shipping-engine/internal/constants"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/pricing"
	"github.com/shipping-engine/internal/repository"

	"github.com/shopspring/decimal"
)

// OrderInput 后台录入的订单（用于首单资格）
type OrderInput struct {
	OrderNo          string          `json:"order_no" validate:"required,max=64"`
	UserID           uint            `json:"user_id" validate:"gt=0"`
	Status           string          `json:"status" validate:"required"`
	Currency         string          `json:"currency" validate:"omitempty,len=3"`
	Subtotal         decimal.Decimal `json:"subtotal" validate:"gte=0"`
	ShippingCost     decimal.Decimal `json:"shipping_cost" validate:"gte=0"`
	DiscountAmount   decimal.Decimal `json:"discount_amount" validate:"gte=0"`
	CouponID         *uint           `json:"coupon_id" validate:"omitempty,gt=0"`
	ShippingMethodID *uint           `json:"shipping_method_id" validate:"omitempty,gt=0"`
}

// OrderService 订单服务
type OrderService struct {
	repo     repository.OrderRepository
	userRepo repository.UserRepository
}

// NewOrderService 创建订单服务
func NewOrderService(repo repository.OrderRepository, userRepo repository.UserRepository) *OrderService {
	return &OrderService{repo: repo, userRepo: userRepo}
}

// ListAdmin 后台订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.Status = normalizeOrderStatus(filter.Status)
	return s.repo.ListAdmin(filter)
}

// Get 获取订单
func (s *OrderService) Get(id uint) (*models.Order, error) {
	order, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Create 录入订单，订单号重复时返回已有订单并更新状态
func (s *OrderService) Create(input OrderInput) (*models.Order, error) {
	input.OrderNo = strings.TrimSpace(input.OrderNo)
	input.Status = normalizeOrderStatus(input.Status)
	if err := validateInput(input, ErrInvalidInput); err != nil {
		return nil, err
	}
	if !isOrderStatus(input.Status) {
		return nil, ErrOrderStatusInvalid
	}
	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.repo.GetByOrderNo(input.OrderNo)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status != input.Status {
			if err := s.repo.UpdateStatus(existing.ID, input.Status); err != nil {
				return nil, err
			}
			existing.Status = input.Status
		}
		return existing, nil
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = pricing.CurrencyCode
	}
	totals := pricing.ComputeTotals(input.Subtotal, input.ShippingCost, &pricing.Discount{Product: input.DiscountAmount, Shipping: decimal.Zero})
	order := &models.Order{
		OrderNo:          input.OrderNo,
		UserID:           input.UserID,
		Status:           input.Status,
		Currency:         currency,
		Subtotal:         models.NewMoneyFromDecimal(input.Subtotal),
		ShippingCost:     models.NewMoneyFromDecimal(input.ShippingCost),
		DiscountAmount:   models.NewMoneyFromDecimal(input.DiscountAmount),
		TotalAmount:      models.NewMoneyFromDecimal(totals.FinalTotal),
		CouponID:         input.CouponID,
		ShippingMethodID: input.ShippingMethodID,
	}
	if err := s.repo.Create(order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus 修改订单状态
func (s *OrderService) UpdateStatus(id uint, status string) (*models.Order, error) {
	status = normalizeOrderStatus(status)
	if !isOrderStatus(status) {
		return nil, ErrOrderStatusInvalid
	}
	order, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(order.ID, status); err != nil {
		return nil, err
	}
	order.Status = status
	return order, nil
}

func normalizeOrderStatus(status string) string {
	return strings.ToUpper(strings.TrimSpace(status))
}

func isOrderStatus(status string) bool {
	for _, item := range constants.OrderStatuses {
		if item == status {
			return true
		}
	}
	return false
}
