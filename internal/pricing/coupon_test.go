package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var couponNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func baseCoupon(t CouponType) Coupon {
	return Coupon{
		ID:                  1,
		Code:                "SAVE",
		Type:                t,
		DiscountPercent:     dec("10"),
		MinQuantityRequired: 1,
		Active:              true,
		ValidFrom:           couponNow.Add(-24 * time.Hour),
		ExpiresAt:           couponNow.Add(24 * time.Hour),
	}
}

func TestValidateCouponLifecycle(t *testing.T) {
	c := baseCoupon(CouponProductDiscount)
	c.Active = false
	require.Equal(t, "This coupon is not active.", ValidateCoupon(c, CouponInput{Quantities: []int{1}, Now: couponNow}).Message)

	c = baseCoupon(CouponProductDiscount)
	c.ValidFrom = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	v := ValidateCoupon(c, CouponInput{Quantities: []int{1}, Now: couponNow})
	require.False(t, v.Valid)
	require.Equal(t, "This coupon is not yet valid. It becomes active on 2026-03-02 09:30.", v.Message)

	c = baseCoupon(CouponProductDiscount)
	c.ExpiresAt = couponNow.Add(-time.Minute)
	require.Equal(t, "This coupon has expired.", ValidateCoupon(c, CouponInput{Quantities: []int{1}, Now: couponNow}).Message)

	c = baseCoupon(CouponProductDiscount)
	v = ValidateCoupon(c, CouponInput{Quantities: []int{1}, Now: couponNow})
	require.True(t, v.Valid)
	require.Equal(t, "Coupon is valid and can be applied.", v.Message)
}

func TestValidateCouponQuantityMessages(t *testing.T) {
	cases := []struct {
		typ  CouponType
		want string
	}{
		{CouponProductDiscount, "You need at least 3 items in your cart to use this product discount coupon."},
		{CouponMinProductQuantity, "This coupon requires at least 3 products in your cart. You currently have 2 items."},
		{CouponShippingDiscount, "You need at least 3 items in your cart to qualify for shipping discount. You currently have 2 items."},
	}
	for _, tc := range cases {
		c := baseCoupon(tc.typ)
		c.MinQuantityRequired = 3
		v := ValidateCoupon(c, CouponInput{Quantities: []int{1, 1}, Now: couponNow})
		require.False(t, v.Valid, tc.typ)
		require.Equal(t, tc.want, v.Message, tc.typ)
	}
}

func TestValidateCartTotalCoupon(t *testing.T) {
	c := baseCoupon(CouponCartTotalDiscount)
	c.MinCartTotal = decPtr("1500")

	v := ValidateCoupon(c, CouponInput{Quantities: []int{1}, Now: couponNow})
	require.Equal(t, "Cart total is required to validate this coupon.", v.Message)

	total := dec("1200")
	v = ValidateCoupon(c, CouponInput{Quantities: []int{1}, CartTotal: &total, Now: couponNow})
	require.Equal(t, "This coupon requires a minimum cart total of ৳1,500.00. Your current total is ৳1,200.00.", v.Message)

	total = dec("1500")
	v = ValidateCoupon(c, CouponInput{Quantities: []int{1}, CartTotal: &total, Now: couponNow})
	require.True(t, v.Valid)
}

func TestValidateFirstTimeUserCoupon(t *testing.T) {
	c := baseCoupon(CouponFirstTimeUser)
	require.Equal(t, "User authentication is required for this coupon.",
		ValidateCoupon(c, CouponInput{Quantities: []int{1}, Now: couponNow}).Message)

	returning := &UserFacts{ID: 7, Authenticated: true, HasCommittedOrder: true}
	require.Equal(t, "This coupon is only available for first-time customers.",
		ValidateCoupon(c, CouponInput{Quantities: []int{1}, User: returning, Now: couponNow}).Message)

	fresh := &UserFacts{ID: 8, Authenticated: true}
	require.True(t, ValidateCoupon(c, CouponInput{Quantities: []int{1}, User: fresh, Now: couponNow}).Valid)
}

func TestValidateUserSpecificCoupon(t *testing.T) {
	c := baseCoupon(CouponUserSpecific)
	c.EligibleUserIDs = []uint{42}

	v := ValidateCoupon(c, CouponInput{Quantities: []int{1}, User: &UserFacts{ID: 7, Authenticated: true}, Now: couponNow})
	require.False(t, v.Valid)
	require.Equal(t, "This coupon is not available for your account.", v.Message)

	v = ValidateCoupon(c, CouponInput{Quantities: []int{1}, User: &UserFacts{ID: 42, Authenticated: true}, Now: couponNow})
	require.True(t, v.Valid)
}

func TestCalculateDiscountSplit(t *testing.T) {
	shipping := baseCoupon(CouponShippingDiscount)
	shipping.DiscountPercent = dec("50")
	d := CalculateDiscount(shipping, dec("800"), dec("100"))
	require.True(t, d.Product.IsZero())
	require.True(t, d.Shipping.Equal(dec("50")))

	for _, typ := range []CouponType{CouponProductDiscount, CouponMinProductQuantity, CouponCartTotalDiscount, CouponFirstTimeUser, CouponUserSpecific} {
		c := baseCoupon(typ)
		d := CalculateDiscount(c, dec("800"), dec("100"))
		require.True(t, d.Product.Equal(dec("80")), typ)
		require.True(t, d.Shipping.IsZero(), typ)
		require.True(t, d.Total().Equal(decimal.NewFromInt(80)), typ)
	}
}

func TestCalculateDiscountRoundsToCents(t *testing.T) {
	c := baseCoupon(CouponProductDiscount)
	c.DiscountPercent = dec("15")
	d := CalculateDiscount(c, dec("333.33"), dec("0"))
	require.Equal(t, "50", d.Product.String())

	shipping := baseCoupon(CouponShippingDiscount)
	shipping.DiscountPercent = dec("12.5")
	d = CalculateDiscount(shipping, dec("800"), dec("46.67"))
	require.Equal(t, "5.83", d.Shipping.String())
}

func TestCouponTypeLabels(t *testing.T) {
	for _, typ := range CouponTypes() {
		require.True(t, typ.Valid())
		_, ok := ruleFor(typ)
		require.True(t, ok, typ)
	}
	require.Equal(t, "Cart Total Discount", CouponCartTotalDiscount.Label())
	require.False(t, CouponType("BOGUS").Valid())
}
