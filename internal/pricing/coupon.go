package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CouponType 优惠券类型
type CouponType string

const (
	CouponProductDiscount    CouponType = "PRODUCT_DISCOUNT"
	CouponMinProductQuantity CouponType = "MIN_PRODUCT_QUANTITY"
	CouponShippingDiscount   CouponType = "SHIPPING_DISCOUNT"
	CouponCartTotalDiscount  CouponType = "CART_TOTAL_DISCOUNT"
	CouponFirstTimeUser      CouponType = "FIRST_TIME_USER"
	CouponUserSpecific       CouponType = "USER_SPECIFIC"
)

var couponTypeLabels = map[CouponType]string{
	CouponProductDiscount:    "Product Discount",
	CouponMinProductQuantity: "Minimum Product Quantity",
	CouponShippingDiscount:   "Shipping Discount",
	CouponCartTotalDiscount:  "Cart Total Discount",
	CouponFirstTimeUser:      "First Time User",
	CouponUserSpecific:       "User Specific",
}

// CouponTypes 全部优惠券类型
func CouponTypes() []CouponType {
	return []CouponType{
		CouponProductDiscount,
		CouponMinProductQuantity,
		CouponShippingDiscount,
		CouponCartTotalDiscount,
		CouponFirstTimeUser,
		CouponUserSpecific,
	}
}

// Valid 类型是否受支持
func (t CouponType) Valid() bool {
	_, ok := couponTypeLabels[t]
	return ok
}

// Label 类型展示名
func (t CouponType) Label() string {
	if label, ok := couponTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// Coupon 优惠券（只读快照）
type Coupon struct {
	ID                  uint
	Code                string
	Type                CouponType
	DiscountPercent     decimal.Decimal
	MinQuantityRequired int
	MinCartTotal        *decimal.Decimal
	EligibleUserIDs     []uint
	Active              bool
	ValidFrom           time.Time
	ExpiresAt           time.Time
}

// UserFacts 校验所需的用户信息
type UserFacts struct {
	ID                uint
	Authenticated     bool
	HasCommittedOrder bool
}

// CouponInput 优惠券校验输入
type CouponInput struct {
	Quantities []int
	User       *UserFacts
	CartTotal  *decimal.Decimal
	Now        time.Time
}

func (in CouponInput) totalQuantity() int {
	total := 0
	for _, q := range in.Quantities {
		total += q
	}
	return total
}

// Verdict 校验结论，失败不是错误
type Verdict struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

func reject(message string) Verdict {
	return Verdict{Valid: false, Message: message}
}

// Discount 优惠拆分
type Discount struct {
	Product  decimal.Decimal `json:"product_discount"`
	Shipping decimal.Decimal `json:"shipping_discount"`
}

// Total 合计优惠
func (d Discount) Total() decimal.Decimal {
	return d.Product.Add(d.Shipping)
}

// couponRule 每种类型一个实现，集合封闭在本包内
type couponRule interface {
	check(c Coupon, in CouponInput) (Verdict, bool)
	targetsShipping() bool
}

type productDiscountRule struct{}
type minProductQuantityRule struct{}
type shippingDiscountRule struct{}
type cartTotalRule struct{}
type firstTimeUserRule struct{}
type userSpecificRule struct{}

func ruleFor(t CouponType) (couponRule, bool) {
	switch t {
	case CouponProductDiscount:
		return productDiscountRule{}, true
	case CouponMinProductQuantity:
		return minProductQuantityRule{}, true
	case CouponShippingDiscount:
		return shippingDiscountRule{}, true
	case CouponCartTotalDiscount:
		return cartTotalRule{}, true
	case CouponFirstTimeUser:
		return firstTimeUserRule{}, true
	case CouponUserSpecific:
		return userSpecificRule{}, true
	default:
		return nil, false
	}
}

func (productDiscountRule) check(c Coupon, in CouponInput) (Verdict, bool) {
	if in.totalQuantity() < c.MinQuantityRequired {
		return reject(fmt.Sprintf("You need at least %d items in your cart to use this product discount coupon.", c.MinQuantityRequired)), false
	}
	return Verdict{}, true
}

func (productDiscountRule) targetsShipping() bool { return false }

func (minProductQuantityRule) check(c Coupon, in CouponInput) (Verdict, bool) {
	if q := in.totalQuantity(); q < c.MinQuantityRequired {
		return reject(fmt.Sprintf("This coupon requires at least %d products in your cart. You currently have %d items.", c.MinQuantityRequired, q)), false
	}
	return Verdict{}, true
}

func (minProductQuantityRule) targetsShipping() bool { return false }

func (shippingDiscountRule) check(c Coupon, in CouponInput) (Verdict, bool) {
	if q := in.totalQuantity(); q < c.MinQuantityRequired {
		return reject(fmt.Sprintf("You need at least %d items in your cart to qualify for shipping discount. You currently have %d items.", c.MinQuantityRequired, q)), false
	}
	return Verdict{}, true
}

func (shippingDiscountRule) targetsShipping() bool { return true }

func (cartTotalRule) check(c Coupon, in CouponInput) (Verdict, bool) {
	if in.CartTotal == nil {
		return reject("Cart total is required to validate this coupon."), false
	}
	if c.MinCartTotal != nil && c.MinCartTotal.IsPositive() && in.CartTotal.LessThan(*c.MinCartTotal) {
		return reject(fmt.Sprintf("This coupon requires a minimum cart total of %s. Your current total is %s.",
			FormatBDT(*c.MinCartTotal, true), FormatBDT(*in.CartTotal, true))), false
	}
	if in.totalQuantity() < c.MinQuantityRequired {
		return reject(fmt.Sprintf("You need at least %d items in your cart to use this coupon.", c.MinQuantityRequired)), false
	}
	return Verdict{}, true
}

func (cartTotalRule) targetsShipping() bool { return false }

func (firstTimeUserRule) check(c Coupon, in CouponInput) (Verdict, bool) {
	if in.User == nil || !in.User.Authenticated {
		return reject("User authentication is required for this coupon."), false
	}
	if in.User.HasCommittedOrder {
		return reject("This coupon is only available for first-time customers."), false
	}
	if in.totalQuantity() < c.MinQuantityRequired {
		return reject(fmt.Sprintf("You need at least %d items in your cart to use this first-time user coupon.", c.MinQuantityRequired)), false
	}
	return Verdict{}, true
}

func (firstTimeUserRule) targetsShipping() bool { return false }

func (userSpecificRule) check(c Coupon, in CouponInput) (Verdict, bool) {
	if in.User == nil || !in.User.Authenticated {
		return reject("User authentication is required for this coupon."), false
	}
	eligible := false
	for _, id := range c.EligibleUserIDs {
		if id == in.User.ID {
			eligible = true
			break
		}
	}
	if !eligible {
		return reject("This coupon is not available for your account."), false
	}
	if in.totalQuantity() < c.MinQuantityRequired {
		return reject(fmt.Sprintf("You need at least %d items in your cart to use this coupon.", c.MinQuantityRequired)), false
	}
	return Verdict{}, true
}

func (userSpecificRule) targetsShipping() bool { return false }

// ValidateCoupon 校验优惠券：启用 -> 有效期 -> 类型谓词，首个失败即返回
func ValidateCoupon(c Coupon, in CouponInput) Verdict {
	if !c.Active {
		return reject("This coupon is not active.")
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	if now.Before(c.ValidFrom) {
		return reject(fmt.Sprintf("This coupon is not yet valid. It becomes active on %s.", c.ValidFrom.Format("2006-01-02 15:04")))
	}
	if now.After(c.ExpiresAt) {
		return reject("This coupon has expired.")
	}
	rule, ok := ruleFor(c.Type)
	if !ok {
		return reject("This coupon type is not supported.")
	}
	if verdict, passed := rule.check(c, in); !passed {
		return verdict
	}
	return Verdict{Valid: true, Message: "Coupon is valid and can be applied."}
}

// CalculateDiscount 计算优惠拆分，不判断有效性
// 运费券只作用于运费，其余类型只作用于商品小计。金额保留两位小数。
func CalculateDiscount(c Coupon, cartTotal, shippingCost decimal.Decimal) Discount {
	rate := c.DiscountPercent.Div(decimal.NewFromInt(100))
	rule, ok := ruleFor(c.Type)
	if ok && rule.targetsShipping() {
		return Discount{Product: decimal.Zero, Shipping: shippingCost.Mul(rate).Round(moneyPlaces)}
	}
	return Discount{Product: cartTotal.Mul(rate).Round(moneyPlaces), Shipping: decimal.Zero}
}
