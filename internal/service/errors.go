package service

import "errors"

// 通用错误
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password does not satisfy policy")
	ErrInvalidInput       = errors.New("invalid input")
	ErrTokenInvalid       = errors.New("token is invalid")
)

// 配送配置错误
var (
	ErrShippingMethodNotFound   = errors.New("shipping method not found")
	ErrShippingTierNotFound     = errors.New("shipping tier not found")
	ErrShippingCategoryNotFound = errors.New("shipping category not found")
	ErrShippingCategoryExists   = errors.New("shipping category already exists")
	ErrFreeRuleNotFound         = errors.New("free shipping rule not found")
	ErrTierInvalid              = errors.New("shipping tier is invalid")
	ErrShippingMethodInvalid    = errors.New("shipping method is invalid")
	ErrFreeRuleInvalid          = errors.New("free shipping rule is invalid")
	ErrPricingTypeInvalid       = errors.New("pricing type is invalid")
	ErrAmountInvalid            = errors.New("amount is invalid")
)

// 购物车与结算错误
var (
	ErrCartEmpty        = errors.New("cart is empty")
	ErrNoValidProducts  = errors.New("no valid product ids")
	ErrProductNotFound  = errors.New("product not found")
	ErrProductInvalid   = errors.New("product is invalid")
	ErrProductSlugExist = errors.New("product slug already exists")
)

// 优惠券错误
var (
	ErrCouponNotFound   = errors.New("coupon not found or inactive")
	ErrCouponInvalid    = errors.New("coupon is invalid")
	ErrCouponCodeExists = errors.New("coupon code already exists")
)

// 用户与订单错误
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserEmailExists    = errors.New("user email already exists")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderStatusInvalid = errors.New("order status is invalid")
)
