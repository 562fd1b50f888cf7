package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shipping-engine/internal/constants"
	"github.com/shipping-engine/internal/logger"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/pricing"
	"github.com/shipping-engine/internal/queue"
	"github.com/shipping-engine/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShippingMethodInput 配送方式录入
type ShippingMethodInput struct {
	Name                  string           `json:"name" validate:"required,max=100"`
	Description           string           `json:"description"`
	Price                 decimal.Decimal  `json:"price" validate:"gte=0"`
	DeliveryEstimatedTime string           `json:"delivery_estimated_time" validate:"max=100"`
	MaxWeight             *decimal.Decimal `json:"max_weight" validate:"omitempty,gte=0"`
	MaxQuantity           *int             `json:"max_quantity" validate:"omitempty,gte=0"`
	PreferredPricingType  string           `json:"preferred_pricing_type" validate:"omitempty,pricing_type"`
	IsActive              *bool            `json:"is_active"`
}

// ShippingTierInput 运费阶梯录入
type ShippingTierInput struct {
	PricingType           string           `json:"pricing_type" validate:"required,pricing_type"`
	MinQuantity           *int             `json:"min_quantity" validate:"omitempty,gte=0"`
	MaxQuantity           *int             `json:"max_quantity" validate:"omitempty,gte=0"`
	MinWeight             *decimal.Decimal `json:"min_weight" validate:"omitempty,gte=0"`
	MaxWeight             *decimal.Decimal `json:"max_weight" validate:"omitempty,gte=0"`
	BasePrice             decimal.Decimal  `json:"base_price" validate:"gte=0"`
	HasIncrementalPricing bool             `json:"has_incremental_pricing"`
	IncrementPerUnit      *decimal.Decimal `json:"increment_per_unit" validate:"omitempty,gte=0"`
	IncrementUnitSize     *decimal.Decimal `json:"increment_unit_size"`
	Priority              int              `json:"priority" validate:"gte=0"`
}

// ShippingCategoryInput 配送分类录入
type ShippingCategoryInput struct {
	Name             string `json:"name" validate:"required,max=100"`
	Description      string `json:"description"`
	AllowedMethodIDs []uint `json:"allowed_shipping_method_ids" validate:"omitempty,dive,gt=0"`
}

// FreeShippingRuleInput 免运费规则录入
type FreeShippingRuleInput struct {
	Name            string          `json:"name" validate:"max=100"`
	ThresholdAmount decimal.Decimal `json:"threshold_amount" validate:"gte=0"`
	Active          *bool           `json:"active"`
	CategoryIDs     []uint          `json:"applicable_category_ids" validate:"omitempty,dive,gt=0"`
}

// ShippingAdminService 配送配置管理服务
// 每次写入后刷新快照：队列可用时异步重建，否则直接删除缓存。
type ShippingAdminService struct {
	repo        repository.ShippingRepository
	snapshots   *ShippingSnapshotService
	queueClient *queue.Client
}

// NewShippingAdminService 创建配送配置管理服务
func NewShippingAdminService(repo repository.ShippingRepository, snapshots *ShippingSnapshotService, queueClient *queue.Client) *ShippingAdminService {
	return &ShippingAdminService{
		repo:        repo,
		snapshots:   snapshots,
		queueClient: queueClient,
	}
}

// ListMethods 分页获取配送方式
func (s *ShippingAdminService) ListMethods(filter repository.ShippingMethodListFilter) ([]models.ShippingMethod, int64, error) {
	return s.repo.ListMethods(filter)
}

// GetMethod 获取配送方式
func (s *ShippingAdminService) GetMethod(id uint) (*models.ShippingMethod, error) {
	method, err := s.repo.GetMethodByID(id)
	if err != nil {
		return nil, err
	}
	if method == nil {
		return nil, ErrShippingMethodNotFound
	}
	return method, nil
}

// CreateMethod 创建配送方式
func (s *ShippingAdminService) CreateMethod(ctx context.Context, input ShippingMethodInput) (*models.ShippingMethod, error) {
	if err := validateInput(input, ErrShippingMethodInvalid); err != nil {
		return nil, err
	}
	method := &models.ShippingMethod{IsActive: true}
	applyMethodInput(method, input)
	if err := s.repo.CreateMethod(method); err != nil {
		return nil, err
	}
	s.afterChange(ctx, "method_created")
	return method, nil
}

// UpdateMethod 更新配送方式
func (s *ShippingAdminService) UpdateMethod(ctx context.Context, id uint, input ShippingMethodInput) (*models.ShippingMethod, error) {
	if err := validateInput(input, ErrShippingMethodInvalid); err != nil {
		return nil, err
	}
	method, err := s.GetMethod(id)
	if err != nil {
		return nil, err
	}
	applyMethodInput(method, input)
	if err := s.repo.UpdateMethod(method); err != nil {
		return nil, err
	}
	s.afterChange(ctx, "method_updated")
	return method, nil
}

// DeleteMethod 删除配送方式
func (s *ShippingAdminService) DeleteMethod(ctx context.Context, id uint) error {
	if _, err := s.GetMethod(id); err != nil {
		return err
	}
	if err := s.repo.DeleteMethod(id); err != nil {
		return err
	}
	s.afterChange(ctx, "method_deleted")
	return nil
}

func applyMethodInput(method *models.ShippingMethod, input ShippingMethodInput) {
	method.Name = strings.TrimSpace(input.Name)
	method.Description = strings.TrimSpace(input.Description)
	method.Price = models.NewMoneyFromDecimal(input.Price)
	method.DeliveryEstimatedTime = strings.TrimSpace(input.DeliveryEstimatedTime)
	method.MaxWeight = input.MaxWeight
	method.MaxQuantity = input.MaxQuantity
	method.PreferredPricingType = input.PreferredPricingType
	if method.PreferredPricingType == "" {
		method.PreferredPricingType = string(pricing.PricingQuantity)
	}
	if input.IsActive != nil {
		method.IsActive = *input.IsActive
	}
}

// ListTiers 获取配送方式的阶梯
func (s *ShippingAdminService) ListTiers(methodID uint) ([]models.ShippingTier, error) {
	if _, err := s.GetMethod(methodID); err != nil {
		return nil, err
	}
	return s.repo.ListTiers(methodID)
}

// CreateTier 为配送方式新增阶梯
func (s *ShippingAdminService) CreateTier(ctx context.Context, methodID uint, input ShippingTierInput) (*models.ShippingTier, error) {
	if err := validateInput(input, ErrTierInvalid); err != nil {
		return nil, err
	}
	if _, err := s.GetMethod(methodID); err != nil {
		return nil, err
	}
	tier := &models.ShippingTier{ShippingMethodID: methodID}
	applyTierInput(tier, input)
	if err := s.repo.CreateTier(tier); err != nil {
		return nil, err
	}
	s.afterChange(ctx, "tier_created")
	return tier, nil
}

// UpdateTier 更新阶梯
func (s *ShippingAdminService) UpdateTier(ctx context.Context, id uint, input ShippingTierInput) (*models.ShippingTier, error) {
	if err := validateInput(input, ErrTierInvalid); err != nil {
		return nil, err
	}
	tier, err := s.repo.GetTierByID(id)
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return nil, ErrShippingTierNotFound
	}
	applyTierInput(tier, input)
	if err := s.repo.UpdateTier(tier); err != nil {
		return nil, err
	}
	s.afterChange(ctx, "tier_updated")
	return tier, nil
}

// DeleteTier 删除阶梯
func (s *ShippingAdminService) DeleteTier(ctx context.Context, id uint) error {
	tier, err := s.repo.GetTierByID(id)
	if err != nil {
		return err
	}
	if tier == nil {
		return ErrShippingTierNotFound
	}
	if err := s.repo.DeleteTier(id); err != nil {
		return err
	}
	s.afterChange(ctx, "tier_deleted")
	return nil
}

// applyTierInput 写入阶梯，另一维度的上下限清空
func applyTierInput(tier *models.ShippingTier, input ShippingTierInput) {
	tier.PricingType = input.PricingType
	tier.MinQuantity, tier.MaxQuantity = nil, nil
	tier.MinWeight, tier.MaxWeight = nil, nil
	if pricing.PricingType(input.PricingType) == pricing.PricingQuantity {
		tier.MinQuantity = input.MinQuantity
		tier.MaxQuantity = input.MaxQuantity
	} else {
		tier.MinWeight = input.MinWeight
		tier.MaxWeight = input.MaxWeight
	}
	tier.BasePrice = models.NewMoneyFromDecimal(input.BasePrice)
	tier.HasIncrementalPricing = input.HasIncrementalPricing
	tier.IncrementPerUnit = models.NewMoneyFromDecimal(decimal.Zero)
	tier.IncrementUnitSize = decimal.NewFromInt(1)
	if input.HasIncrementalPricing {
		tier.IncrementPerUnit = models.NewMoneyFromDecimal(*input.IncrementPerUnit)
		if input.IncrementUnitSize != nil {
			tier.IncrementUnitSize = *input.IncrementUnitSize
		}
	}
	tier.Priority = input.Priority
}

// ListCategories 获取配送分类
func (s *ShippingAdminService) ListCategories() ([]models.ShippingCategory, error) {
	return s.repo.ListCategories()
}

// GetCategory 获取配送分类
func (s *ShippingAdminService) GetCategory(id uint) (*models.ShippingCategory, error) {
	category, err := s.repo.GetCategoryByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrShippingCategoryNotFound
	}
	return category, nil
}

// CreateCategory 创建配送分类
func (s *ShippingAdminService) CreateCategory(ctx context.Context, input ShippingCategoryInput) (*models.ShippingCategory, error) {
	if err := validateInput(input, ErrInvalidInput); err != nil {
		return nil, err
	}
	if err := s.ensureMethodsExist(input.AllowedMethodIDs); err != nil {
		return nil, err
	}
	if err := s.ensureCategoryNameFree(input.Name, 0); err != nil {
		return nil, err
	}
	category := &models.ShippingCategory{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateCategory(category); err != nil {
			return err
		}
		return repo.ReplaceCategoryMethods(category, input.AllowedMethodIDs)
	})
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, "category_created")
	return category, nil
}

// UpdateCategory 更新配送分类及允许的配送方式
func (s *ShippingAdminService) UpdateCategory(ctx context.Context, id uint, input ShippingCategoryInput) (*models.ShippingCategory, error) {
	if err := validateInput(input, ErrInvalidInput); err != nil {
		return nil, err
	}
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureMethodsExist(input.AllowedMethodIDs); err != nil {
		return nil, err
	}
	if err := s.ensureCategoryNameFree(input.Name, id); err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(input.Name)
	category.Description = strings.TrimSpace(input.Description)
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateCategory(category); err != nil {
			return err
		}
		return repo.ReplaceCategoryMethods(category, input.AllowedMethodIDs)
	})
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, "category_updated")
	return category, nil
}

// DeleteCategory 删除配送分类，关联商品的分类置空
func (s *ShippingAdminService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.GetCategory(id); err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(id); err != nil {
		return err
	}
	s.afterChange(ctx, "category_deleted")
	return nil
}

// ListFreeRules 获取免运费规则
func (s *ShippingAdminService) ListFreeRules() ([]models.FreeShippingRule, error) {
	return s.repo.ListFreeRules(false)
}

// CreateFreeRule 创建免运费规则
func (s *ShippingAdminService) CreateFreeRule(ctx context.Context, input FreeShippingRuleInput) (*models.FreeShippingRule, error) {
	if err := validateInput(input, ErrFreeRuleInvalid); err != nil {
		return nil, err
	}
	if err := s.ensureCategoriesExist(input.CategoryIDs); err != nil {
		return nil, err
	}
	rule := &models.FreeShippingRule{Active: true}
	applyFreeRuleInput(rule, input)
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateFreeRule(rule); err != nil {
			return err
		}
		return repo.ReplaceFreeRuleCategories(rule, input.CategoryIDs)
	})
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, "free_rule_created")
	return rule, nil
}

// UpdateFreeRule 更新免运费规则
func (s *ShippingAdminService) UpdateFreeRule(ctx context.Context, id uint, input FreeShippingRuleInput) (*models.FreeShippingRule, error) {
	if err := validateInput(input, ErrFreeRuleInvalid); err != nil {
		return nil, err
	}
	rule, err := s.repo.GetFreeRuleByID(id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrFreeRuleNotFound
	}
	if err := s.ensureCategoriesExist(input.CategoryIDs); err != nil {
		return nil, err
	}
	applyFreeRuleInput(rule, input)
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateFreeRule(rule); err != nil {
			return err
		}
		return repo.ReplaceFreeRuleCategories(rule, input.CategoryIDs)
	})
	if err != nil {
		return nil, err
	}
	s.afterChange(ctx, "free_rule_updated")
	return rule, nil
}

// DeleteFreeRule 删除免运费规则
func (s *ShippingAdminService) DeleteFreeRule(ctx context.Context, id uint) error {
	rule, err := s.repo.GetFreeRuleByID(id)
	if err != nil {
		return err
	}
	if rule == nil {
		return ErrFreeRuleNotFound
	}
	if err := s.repo.DeleteFreeRule(id); err != nil {
		return err
	}
	s.afterChange(ctx, "free_rule_deleted")
	return nil
}

func applyFreeRuleInput(rule *models.FreeShippingRule, input FreeShippingRuleInput) {
	rule.Name = strings.TrimSpace(input.Name)
	rule.ThresholdAmount = models.NewMoneyFromDecimal(input.ThresholdAmount)
	if input.Active != nil {
		rule.Active = *input.Active
	}
}

func (s *ShippingAdminService) ensureMethodsExist(ids []uint) error {
	for _, id := range ids {
		method, err := s.repo.GetMethodByID(id)
		if err != nil {
			return err
		}
		if method == nil {
			return ErrShippingMethodNotFound
		}
	}
	return nil
}

func (s *ShippingAdminService) ensureCategoriesExist(ids []uint) error {
	for _, id := range ids {
		category, err := s.repo.GetCategoryByID(id)
		if err != nil {
			return err
		}
		if category == nil {
			return ErrShippingCategoryNotFound
		}
	}
	return nil
}

func (s *ShippingAdminService) ensureCategoryNameFree(name string, selfID uint) error {
	categories, err := s.repo.ListCategories()
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	for _, category := range categories {
		if category.ID != selfID && strings.EqualFold(category.Name, name) {
			return ErrShippingCategoryExists
		}
	}
	return nil
}

// afterChange 配置变更后先作废缓存快照，再投递预热任务
func (s *ShippingAdminService) afterChange(ctx context.Context, action string) {
	if s.snapshots != nil {
		if err := s.snapshots.Invalidate(ctx); err != nil {
			logger.Warnw("shipping_snapshot_invalidate_failed", "action", action, "error", err)
		}
	}
	err := s.queueClient.EnqueueShippingSnapshotRefresh(constants.SnapshotReasonAdminWrite)
	switch {
	case err == nil:
		logger.Debugw("shipping_snapshot_refresh_enqueued", "action", action)
	case !errors.Is(err, queue.ErrQueueDisabled):
		logger.Warnw("shipping_snapshot_refresh_enqueue_failed", "action", action, "error", err)
	}
}
