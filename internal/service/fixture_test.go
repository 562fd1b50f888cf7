package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/shipping-engine/internal/config"
	"github.com/shipping-engine/internal/constants"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type serviceFixture struct {
	db           *gorm.DB
	shippingRepo *repository.GormShippingRepository
	productRepo  *repository.GormProductRepository
	couponRepo   *repository.GormCouponRepository
	userRepo     *repository.GormUserRepository
	orderRepo    *repository.GormOrderRepository
}

func setupServiceTest(t *testing.T) *serviceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.ShippingMethod{},
		&models.ShippingTier{},
		&models.ShippingCategory{},
		&models.FreeShippingRule{},
		&models.Product{},
		&models.User{},
		&models.Coupon{},
		&models.Order{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return &serviceFixture{
		db:           db,
		shippingRepo: repository.NewShippingRepository(db),
		productRepo:  repository.NewProductRepository(db),
		couponRepo:   repository.NewCouponRepository(db),
		userRepo:     repository.NewUserRepository(db),
		orderRepo:    repository.NewOrderRepository(db),
	}
}

func (f *serviceFixture) snapshots() *ShippingSnapshotService {
	return NewShippingSnapshotService(f.shippingRepo, config.PricingConfig{SnapshotCacheTTLSeconds: 60}, nil)
}

func (f *serviceFixture) cartShipping() *CartShippingService {
	return NewCartShippingService(f.snapshots(), f.productRepo, nil)
}

func (f *serviceFixture) coupons() *CouponService {
	return NewCouponService(f.couponRepo, f.userRepo, f.orderRepo, nil)
}

func (f *serviceFixture) checkout() *CheckoutService {
	return NewCheckoutService(f.cartShipping(), f.coupons(), config.PricingConfig{Currency: "bdt"})
}

func money(value string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(value))
}

func intPtr(value int) *int {
	return &value
}

func decimalPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func (f *serviceFixture) createMethod(t *testing.T, method models.ShippingMethod) models.ShippingMethod {
	t.Helper()
	if method.PreferredPricingType == "" {
		method.PreferredPricingType = "quantity"
	}
	if err := f.shippingRepo.CreateMethod(&method); err != nil {
		t.Fatalf("create method failed: %v", err)
	}
	return method
}

func (f *serviceFixture) createTier(t *testing.T, tier models.ShippingTier) models.ShippingTier {
	t.Helper()
	if tier.IncrementUnitSize.IsZero() {
		tier.IncrementUnitSize = decimal.NewFromInt(1)
	}
	if err := f.shippingRepo.CreateTier(&tier); err != nil {
		t.Fatalf("create tier failed: %v", err)
	}
	return tier
}

func (f *serviceFixture) createCategory(t *testing.T, name string, methodIDs ...uint) models.ShippingCategory {
	t.Helper()
	category := models.ShippingCategory{Name: name}
	if err := f.shippingRepo.CreateCategory(&category); err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	if len(methodIDs) > 0 {
		if err := f.shippingRepo.ReplaceCategoryMethods(&category, methodIDs); err != nil {
			t.Fatalf("link category methods failed: %v", err)
		}
	}
	return category
}

func (f *serviceFixture) createFreeRule(t *testing.T, threshold string, active bool, categoryIDs ...uint) models.FreeShippingRule {
	t.Helper()
	rule := models.FreeShippingRule{Name: "Orders over " + threshold, ThresholdAmount: money(threshold), Active: active}
	if err := f.shippingRepo.CreateFreeRule(&rule); err != nil {
		t.Fatalf("create free rule failed: %v", err)
	}
	if len(categoryIDs) > 0 {
		if err := f.shippingRepo.ReplaceFreeRuleCategories(&rule, categoryIDs); err != nil {
			t.Fatalf("link free rule categories failed: %v", err)
		}
	}
	return rule
}

func (f *serviceFixture) createProduct(t *testing.T, slug, price, weight string, categoryID *uint) models.Product {
	t.Helper()
	product := models.Product{
		Name:               slug,
		Slug:               slug,
		Price:              money(price),
		Weight:             decimal.RequireFromString(weight),
		ShippingCategoryID: categoryID,
		IsActive:           true,
	}
	if err := f.productRepo.Create(&product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func (f *serviceFixture) createUser(t *testing.T, email string) models.User {
	t.Helper()
	user := models.User{Email: email, Status: constants.UserStatusActive}
	if err := f.userRepo.Create(&user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func (f *serviceFixture) createOrder(t *testing.T, orderNo string, userID uint, status string) models.Order {
	t.Helper()
	order := models.Order{OrderNo: orderNo, UserID: userID, Status: status, Currency: "BDT"}
	if err := f.orderRepo.Create(&order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func (f *serviceFixture) createCoupon(t *testing.T, coupon models.Coupon) models.Coupon {
	t.Helper()
	if coupon.ValidFrom.IsZero() {
		coupon.ValidFrom = time.Now().Add(-time.Hour)
	}
	if coupon.ExpiresAt.IsZero() {
		coupon.ExpiresAt = time.Now().Add(24 * time.Hour)
	}
	if coupon.MinQuantityRequired == 0 {
		coupon.MinQuantityRequired = 1
	}
	if err := f.couponRepo.Create(&coupon); err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	return coupon
}
