package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shipping-engine/internal/cache"
	"github.com/shipping-engine/internal/config"
	"github.com/shipping-engine/internal/logger"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/obs"
	"github.com/shipping-engine/internal/pricing"
	"github.com/shipping-engine/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// refreshAttempts 刷新期间配置持续变化时的重建次数上限
const refreshAttempts = 3

var errSnapshotCache = errors.New("shipping snapshot cache unavailable")

// ShippingSnapshotService 配送配置快照服务
// 优先读取 Redis 缓存，未命中时从数据库构建并回写。
type ShippingSnapshotService struct {
	repo    repository.ShippingRepository
	ttl     time.Duration
	metrics *obs.Metrics
}

// NewShippingSnapshotService 创建快照服务
func NewShippingSnapshotService(repo repository.ShippingRepository, cfg config.PricingConfig, metrics *obs.Metrics) *ShippingSnapshotService {
	ttl := time.Duration(cfg.SnapshotCacheTTLSeconds) * time.Second
	return &ShippingSnapshotService{repo: repo, ttl: ttl, metrics: metrics}
}

// Current 获取当前快照
func (s *ShippingSnapshotService) Current(ctx context.Context) (*pricing.Snapshot, error) {
	ctx, span := obs.StartSpan(ctx, "shipping.snapshot.current")
	defer span.End()

	snap, hit, err := cache.GetShippingSnapshot(ctx)
	if err != nil {
		logger.Warnw("shipping_snapshot_cache_read_failed", "error", err)
	}
	if hit && snap != nil {
		span.SetAttributes(attribute.String("snapshot.source", "cache"))
		s.metrics.IncSnapshotLoad("cache")
		return snap, nil
	}

	logger.Debugw("shipping_snapshot_cache_miss")
	snap, _, err = s.buildAndStore(ctx)
	if errors.Is(err, errSnapshotCache) {
		logger.Warnw("shipping_snapshot_cache_write_failed", "error", err)
		err = nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("snapshot.source", "database"))
	s.metrics.IncSnapshotLoad("database")
	return snap, nil
}

// buildAndStore 构建快照并按构建前的版本号回写，期间被失效时不写入
func (s *ShippingSnapshotService) buildAndStore(ctx context.Context) (*pricing.Snapshot, bool, error) {
	version, err := cache.ShippingSnapshotVersion(ctx)
	if err != nil {
		snap, buildErr := s.Build()
		if buildErr != nil {
			return nil, false, buildErr
		}
		return snap, false, fmt.Errorf("%w: %v", errSnapshotCache, err)
	}
	snap, err := s.Build()
	if err != nil {
		return nil, false, err
	}
	stored, err := cache.SetShippingSnapshot(ctx, snap, s.ttl, version)
	if err != nil {
		return snap, false, fmt.Errorf("%w: %v", errSnapshotCache, err)
	}
	if !stored && cache.Enabled() {
		logger.Debugw("shipping_snapshot_write_superseded", "version", version)
	}
	return snap, stored, nil
}

// Build 从数据库构建快照（不读写缓存）
func (s *ShippingSnapshotService) Build() (*pricing.Snapshot, error) {
	methods, err := s.repo.ListAllMethods()
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.ListCategories()
	if err != nil {
		return nil, err
	}
	rules, err := s.repo.ListFreeRules(false)
	if err != nil {
		return nil, err
	}

	snap := &pricing.Snapshot{
		Methods:    make([]pricing.Method, 0, len(methods)),
		Categories: make([]pricing.Category, 0, len(categories)),
		FreeRules:  make([]pricing.FreeRule, 0, len(rules)),
	}
	for i := range methods {
		snap.Methods = append(snap.Methods, toPricingMethod(&methods[i]))
	}
	for i := range categories {
		snap.Categories = append(snap.Categories, toPricingCategory(&categories[i]))
	}
	for i := range rules {
		snap.FreeRules = append(snap.FreeRules, toPricingFreeRule(&rules[i]))
	}
	return snap, nil
}

// Refresh 重建快照并写入缓存
func (s *ShippingSnapshotService) Refresh(ctx context.Context, reason string) (*pricing.Snapshot, error) {
	ctx, span := obs.StartSpan(ctx, "shipping.snapshot.refresh")
	defer span.End()
	span.SetAttributes(attribute.String("snapshot.reason", reason))

	var (
		snap   *pricing.Snapshot
		stored bool
		err    error
	)
	for attempt := 0; attempt < refreshAttempts && !stored; attempt++ {
		snap, stored, err = s.buildAndStore(ctx)
		if err != nil {
			s.metrics.IncSnapshotRefresh(reason, false)
			span.RecordError(err)
			return nil, err
		}
		if !cache.Enabled() {
			break
		}
	}
	s.metrics.IncSnapshotRefresh(reason, true)
	logger.Infow("shipping_snapshot_refreshed",
		"reason", reason,
		"methods", len(snap.Methods),
		"categories", len(snap.Categories),
		"free_rules", len(snap.FreeRules),
		"cached", stored,
	)
	return snap, nil
}

// Invalidate 删除缓存快照，进行中的构建结果随之作废
func (s *ShippingSnapshotService) Invalidate(ctx context.Context) error {
	return cache.InvalidateShippingSnapshot(ctx)
}

func toPricingTier(tier *models.ShippingTier) pricing.Tier {
	return pricing.Tier{
		ID:                    tier.ID,
		PricingType:           pricing.PricingType(tier.PricingType),
		MinQuantity:           tier.MinQuantity,
		MaxQuantity:           tier.MaxQuantity,
		MinWeight:             tier.MinWeight,
		MaxWeight:             tier.MaxWeight,
		BasePrice:             tier.BasePrice.Decimal,
		HasIncrementalPricing: tier.HasIncrementalPricing,
		IncrementPerUnit:      tier.IncrementPerUnit.Decimal,
		IncrementUnitSize:     tier.IncrementUnitSize,
		Priority:              tier.Priority,
	}
}

func toPricingMethod(method *models.ShippingMethod) pricing.Method {
	tiers := make([]pricing.Tier, 0, len(method.Tiers))
	for i := range method.Tiers {
		tiers = append(tiers, toPricingTier(&method.Tiers[i]))
	}
	return pricing.Method{
		ID:                    method.ID,
		Name:                  method.Name,
		Description:           method.Description,
		Price:                 method.Price.Decimal,
		DeliveryEstimatedTime: method.DeliveryEstimatedTime,
		MaxWeight:             method.MaxWeight,
		MaxQuantity:           method.MaxQuantity,
		PreferredPricingType:  pricing.PricingType(method.PreferredPricingType),
		IsActive:              method.IsActive,
		Tiers:                 tiers,
	}
}

func toPricingCategory(category *models.ShippingCategory) pricing.Category {
	ids := make([]uint, 0, len(category.AllowedMethods))
	for _, method := range category.AllowedMethods {
		ids = append(ids, method.ID)
	}
	return pricing.Category{
		ID:          category.ID,
		Name:        category.Name,
		Restriction: pricing.Restricted(ids...),
	}
}

func toPricingFreeRule(rule *models.FreeShippingRule) pricing.FreeRule {
	ids := make([]uint, 0, len(rule.Categories))
	for _, category := range rule.Categories {
		ids = append(ids, category.ID)
	}
	return pricing.FreeRule{
		ID:              rule.ID,
		ThresholdAmount: rule.ThresholdAmount.Decimal,
		Active:          rule.Active,
		CategoryIDs:     pricing.SortedCategoryIDs(ids),
	}
}

func toPricingCoupon(coupon *models.Coupon) pricing.Coupon {
	result := pricing.Coupon{
		ID:                  coupon.ID,
		Code:                coupon.Code,
		Type:                pricing.CouponType(coupon.Type),
		DiscountPercent:     coupon.DiscountPercent.Decimal,
		MinQuantityRequired: coupon.MinQuantityRequired,
		EligibleUserIDs:     coupon.EligibleUserIDs(),
		Active:              coupon.Active,
		ValidFrom:           coupon.ValidFrom,
		ExpiresAt:           coupon.ExpiresAt,
	}
	if coupon.MinCartTotal != nil {
		total := coupon.MinCartTotal.Decimal
		result.MinCartTotal = &total
	}
	return result
}
