package main

import (
	"log"
	"time"

	"github.com/shipping-engine/internal/config"
	"github.com/shipping-engine/internal/constants"
	"github.com/shipping-engine/internal/logger"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/pricing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.DB

	// 配送方式
	standard := ensureMethod(db, stdLog, models.ShippingMethod{
		Name:                  "Standard Shipping",
		Description:           "Regular delivery service",
		Price:                 money(50),
		DeliveryEstimatedTime: "3-5 business days",
		PreferredPricingType:  string(pricing.PricingQuantity),
		IsActive:              true,
	})
	express := ensureMethod(db, stdLog, models.ShippingMethod{
		Name:                  "Express Shipping",
		Description:           "Fast delivery service",
		Price:                 money(100),
		DeliveryEstimatedTime: "1-2 business days",
		PreferredPricingType:  string(pricing.PricingWeight),
		MaxWeight:             decimalPtr(30),
		IsActive:              true,
	})
	economy := ensureMethod(db, stdLog, models.ShippingMethod{
		Name:                  "Economy Shipping",
		Description:           "Budget-friendly shipping option",
		Price:                 money(30),
		DeliveryEstimatedTime: "5-7 business days",
		PreferredPricingType:  string(pricing.PricingQuantity),
		MaxQuantity:           intPtr(20),
		IsActive:              true,
	})

	// 配送分类：General 允许全部方式，Electronics 不走经济配送
	general := ensureCategory(db, stdLog, "General", "General merchandise", []models.ShippingMethod{standard, express, economy})
	electronics := ensureCategory(db, stdLog, "Electronics", "Electronic devices and accessories", []models.ShippingMethod{standard, express})

	// 运费阶梯
	if countTiers(db, standard.ID) == 0 {
		tiers := []models.ShippingTier{
			{ShippingMethodID: standard.ID, PricingType: string(pricing.PricingQuantity), MinQuantity: intPtr(5), MaxQuantity: intPtr(9), BasePrice: money(40), IncrementUnitSize: decimal.NewFromInt(1), Priority: 1},
			{ShippingMethodID: standard.ID, PricingType: string(pricing.PricingQuantity), MinQuantity: intPtr(10), BasePrice: money(20), IncrementUnitSize: decimal.NewFromInt(1), Priority: 2},
		}
		createTiers(db, stdLog, standard.Name, tiers)
	}
	if countTiers(db, express.ID) == 0 {
		tiers := []models.ShippingTier{
			{ShippingMethodID: express.ID, PricingType: string(pricing.PricingWeight), MinWeight: decimalPtr(0), MaxWeight: decimalPtr(5), BasePrice: money(100), IncrementUnitSize: decimal.NewFromInt(1), Priority: 1},
			{
				ShippingMethodID:      express.ID,
				PricingType:           string(pricing.PricingWeight),
				MinWeight:             decimalPtr(5),
				BasePrice:             money(100),
				HasIncrementalPricing: true,
				IncrementPerUnit:      money(20),
				IncrementUnitSize:     decimal.NewFromInt(1),
				Priority:              2,
			},
		}
		createTiers(db, stdLog, express.Name, tiers)
	}

	// 免运费规则
	var ruleCount int64
	db.Model(&models.FreeShippingRule{}).Where("threshold_amount = ?", money(1000)).Count(&ruleCount)
	if ruleCount == 0 {
		rule := models.FreeShippingRule{Name: "Orders over 1000", ThresholdAmount: money(1000), Active: true}
		if err := db.Create(&rule).Error; err != nil {
			stdLog.Printf("Failed to create free shipping rule: %v", err)
		} else {
			stdLog.Printf("Created free shipping rule: %s+", pricing.FormatWholeBDT(rule.ThresholdAmount.Decimal))
		}
	} else {
		stdLog.Printf("Free shipping rule already exists: 1000")
	}

	// 商品
	products := []models.Product{
		{Name: "Cotton T-Shirt", Slug: "cotton-t-shirt", Description: "Everyday cotton tee", Price: money(450), Weight: decimal.RequireFromString("0.250"), ShippingCategoryID: &general.ID, IsActive: true},
		{Name: "Ceramic Mug", Slug: "ceramic-mug", Description: "350ml ceramic mug", Price: money(300), Weight: decimal.RequireFromString("0.400"), ShippingCategoryID: &general.ID, IsActive: true},
		{Name: "Wireless Earbuds", Slug: "wireless-earbuds", Description: "Bluetooth 5.3 earbuds", Price: money(2500), Weight: decimal.RequireFromString("0.150"), ShippingCategoryID: &electronics.ID, IsActive: true},
		{Name: "Desk Lamp", Slug: "desk-lamp", Description: "LED desk lamp", Price: money(1800), Weight: decimal.RequireFromString("1.200"), ShippingCategoryID: &electronics.ID, IsActive: true},
	}
	for _, product := range products {
		var existing models.Product
		if err := db.Where("slug = ?", product.Slug).First(&existing).Error; err == nil {
			stdLog.Printf("Product already exists: %s", product.Slug)
			continue
		}
		if err := db.Create(&product).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			continue
		}
		stdLog.Printf("Created product: %s (%s)", product.Slug, product.ID)
	}

	// 用户：demo 已有一笔已确认订单，newcomer 用于首单券
	demo := ensureUser(db, stdLog, "demo@example.com", "Demo Customer")
	newcomer := ensureUser(db, stdLog, "newcomer@example.com", "New Customer")
	var orderCount int64
	db.Model(&models.Order{}).Where("user_id = ?", demo.ID).Count(&orderCount)
	if orderCount == 0 {
		order := models.Order{
			OrderNo:      "SEED-0001",
			UserID:       demo.ID,
			Status:       constants.OrderStatusDelivered,
			Currency:     pricing.CurrencyCode,
			Subtotal:     money(900),
			ShippingCost: money(50),
			TotalAmount:  money(950),
		}
		if err := db.Create(&order).Error; err != nil {
			stdLog.Printf("Failed to create seed order: %v", err)
		}
	}

	// 优惠券
	now := time.Now()
	expires := now.AddDate(1, 0, 0)
	coupons := []models.Coupon{
		{Code: "SAVE10", Type: string(pricing.CouponProductDiscount), DiscountPercent: money(10), MinQuantityRequired: 1},
		{Code: "BULK15", Type: string(pricing.CouponMinProductQuantity), DiscountPercent: money(15), MinQuantityRequired: 5},
		{Code: "FREESHIP", Type: string(pricing.CouponShippingDiscount), DiscountPercent: money(100), MinQuantityRequired: 1},
		{Code: "BIGCART20", Type: string(pricing.CouponCartTotalDiscount), DiscountPercent: money(20), MinQuantityRequired: 1, MinCartTotal: moneyPtr(3000)},
		{Code: "WELCOME", Type: string(pricing.CouponFirstTimeUser), DiscountPercent: money(15), MinQuantityRequired: 1},
		{Code: "VIP25", Type: string(pricing.CouponUserSpecific), DiscountPercent: money(25), MinQuantityRequired: 1, EligibleUsers: []models.User{newcomer}},
	}
	for _, coupon := range coupons {
		var existing models.Coupon
		if err := db.Where("code = ?", coupon.Code).First(&existing).Error; err == nil {
			stdLog.Printf("Coupon already exists: %s", coupon.Code)
			continue
		}
		coupon.Active = true
		coupon.ValidFrom = now
		coupon.ExpiresAt = expires
		if err := db.Create(&coupon).Error; err != nil {
			stdLog.Printf("Failed to create coupon %s: %v", coupon.Code, err)
			continue
		}
		stdLog.Printf("Created coupon: %s (%s)", coupon.Code, pricing.CouponType(coupon.Type).Label())
	}

	stdLog.Printf("Seed complete")
}

func ensureMethod(db *gorm.DB, stdLog *log.Logger, method models.ShippingMethod) models.ShippingMethod {
	var existing models.ShippingMethod
	if err := db.Where("name = ?", method.Name).First(&existing).Error; err == nil {
		stdLog.Printf("Shipping method already exists: %s", method.Name)
		return existing
	}
	if err := db.Create(&method).Error; err != nil {
		stdLog.Fatalf("Failed to create shipping method %s: %v", method.Name, err)
	}
	stdLog.Printf("Created shipping method: %s", method.Name)
	return method
}

func ensureCategory(db *gorm.DB, stdLog *log.Logger, name, description string, allowed []models.ShippingMethod) models.ShippingCategory {
	var existing models.ShippingCategory
	if err := db.Where("name = ?", name).First(&existing).Error; err == nil {
		stdLog.Printf("Shipping category already exists: %s", name)
		return existing
	}
	category := models.ShippingCategory{Name: name, Description: description}
	if err := db.Create(&category).Error; err != nil {
		stdLog.Fatalf("Failed to create shipping category %s: %v", name, err)
	}
	if err := db.Model(&category).Association("AllowedMethods").Replace(allowed); err != nil {
		stdLog.Printf("Failed to link methods for category %s: %v", name, err)
	}
	stdLog.Printf("Created shipping category: %s", name)
	return category
}

func ensureUser(db *gorm.DB, stdLog *log.Logger, email, displayName string) models.User {
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return existing
	}
	user := models.User{Email: email, DisplayName: displayName, Status: constants.UserStatusActive}
	if err := db.Create(&user).Error; err != nil {
		stdLog.Fatalf("Failed to create user %s: %v", email, err)
	}
	stdLog.Printf("Created user: %s", email)
	return user
}

func countTiers(db *gorm.DB, methodID uint) int64 {
	var count int64
	db.Model(&models.ShippingTier{}).Where("shipping_method_id = ?", methodID).Count(&count)
	return count
}

func createTiers(db *gorm.DB, stdLog *log.Logger, methodName string, tiers []models.ShippingTier) {
	for i := range tiers {
		if err := db.Create(&tiers[i]).Error; err != nil {
			stdLog.Printf("Failed to create tier for %s: %v", methodName, err)
			continue
		}
		stdLog.Printf("Created tier for %s: %s", methodName, pricing.FormatBDT(tiers[i].BasePrice.Decimal, true))
	}
}

func money(value int64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromInt(value))
}

func moneyPtr(value int64) *models.Money {
	m := money(value)
	return &m
}

func decimalPtr(value int64) *decimal.Decimal {
	d := decimal.NewFromInt(value)
	return &d
}

func intPtr(value int) *int {
	return &value
}
