package repository

import (
	"errors"

	"github.com/shipping-engine/internal/models"

	"gorm.io/gorm"
)

// ShippingRepository 配送配置数据访问接口
type ShippingRepository interface {
	ListMethods(filter ShippingMethodListFilter) ([]models.ShippingMethod, int64, error)
	ListAllMethods() ([]models.ShippingMethod, error)
	GetMethodByID(id uint) (*models.ShippingMethod, error)
	CreateMethod(method *models.ShippingMethod) error
	UpdateMethod(method *models.ShippingMethod) error
	DeleteMethod(id uint) error

	GetTierByID(id uint) (*models.ShippingTier, error)
	ListTiers(methodID uint) ([]models.ShippingTier, error)
	CreateTier(tier *models.ShippingTier) error
	UpdateTier(tier *models.ShippingTier) error
	DeleteTier(id uint) error

	ListCategories() ([]models.ShippingCategory, error)
	GetCategoryByID(id uint) (*models.ShippingCategory, error)
	CreateCategory(category *models.ShippingCategory) error
	UpdateCategory(category *models.ShippingCategory) error
	ReplaceCategoryMethods(category *models.ShippingCategory, methodIDs []uint) error
	DeleteCategory(id uint) error

	ListFreeRules(onlyActive bool) ([]models.FreeShippingRule, error)
	GetFreeRuleByID(id uint) (*models.FreeShippingRule, error)
	CreateFreeRule(rule *models.FreeShippingRule) error
	UpdateFreeRule(rule *models.FreeShippingRule) error
	ReplaceFreeRuleCategories(rule *models.FreeShippingRule, categoryIDs []uint) error
	DeleteFreeRule(id uint) error

	WithTx(tx *gorm.DB) *GormShippingRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormShippingRepository GORM 实现
type GormShippingRepository struct {
	db *gorm.DB
}

// NewShippingRepository 创建配送配置仓库
func NewShippingRepository(db *gorm.DB) *GormShippingRepository {
	return &GormShippingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShippingRepository) WithTx(tx *gorm.DB) *GormShippingRepository {
	if tx == nil {
		return r
	}
	return &GormShippingRepository{db: tx}
}

// Transaction 执行事务
func (r *GormShippingRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// ListMethods 分页获取配送方式（含阶梯）
func (r *GormShippingRepository) ListMethods(filter ShippingMethodListFilter) ([]models.ShippingMethod, int64, error) {
	query := r.db.Model(&models.ShippingMethod{})
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var methods []models.ShippingMethod
	if err := query.Preload("Tiers").Order("name ASC, id ASC").Find(&methods).Error; err != nil {
		return nil, 0, err
	}
	return methods, total, nil
}

// ListAllMethods 获取全部配送方式（含阶梯）
func (r *GormShippingRepository) ListAllMethods() ([]models.ShippingMethod, error) {
	var methods []models.ShippingMethod
	if err := r.db.Preload("Tiers").Order("name ASC, id ASC").Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// GetMethodByID 根据 ID 获取配送方式
func (r *GormShippingRepository) GetMethodByID(id uint) (*models.ShippingMethod, error) {
	var method models.ShippingMethod
	if err := r.db.Preload("Tiers").First(&method, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &method, nil
}

// CreateMethod 创建配送方式
func (r *GormShippingRepository) CreateMethod(method *models.ShippingMethod) error {
	return r.db.Omit("Tiers").Create(method).Error
}

// UpdateMethod 更新配送方式（不修改阶梯）
func (r *GormShippingRepository) UpdateMethod(method *models.ShippingMethod) error {
	return r.db.Omit("Tiers").Save(method).Error
}

// DeleteMethod 删除配送方式及其阶梯
func (r *GormShippingRepository) DeleteMethod(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shipping_method_id = ?", id).Delete(&models.ShippingTier{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM shipping_category_methods WHERE shipping_method_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ShippingMethod{}, id).Error
	})
}

// GetTierByID 根据 ID 获取阶梯
func (r *GormShippingRepository) GetTierByID(id uint) (*models.ShippingTier, error) {
	var tier models.ShippingTier
	if err := r.db.First(&tier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tier, nil
}

// ListTiers 获取配送方式的阶梯
func (r *GormShippingRepository) ListTiers(methodID uint) ([]models.ShippingTier, error) {
	var tiers []models.ShippingTier
	if err := r.db.Where("shipping_method_id = ?", methodID).
		Order("pricing_type ASC, priority DESC, id ASC").
		Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

// CreateTier 创建阶梯
func (r *GormShippingRepository) CreateTier(tier *models.ShippingTier) error {
	return r.db.Create(tier).Error
}

// UpdateTier 更新阶梯
func (r *GormShippingRepository) UpdateTier(tier *models.ShippingTier) error {
	return r.db.Save(tier).Error
}

// DeleteTier 删除阶梯
func (r *GormShippingRepository) DeleteTier(id uint) error {
	return r.db.Delete(&models.ShippingTier{}, id).Error
}

// ListCategories 获取全部配送分类（含允许方式）
func (r *GormShippingRepository) ListCategories() ([]models.ShippingCategory, error) {
	var categories []models.ShippingCategory
	if err := r.db.Preload("AllowedMethods").Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategoryByID 根据 ID 获取配送分类
func (r *GormShippingRepository) GetCategoryByID(id uint) (*models.ShippingCategory, error) {
	var category models.ShippingCategory
	if err := r.db.Preload("AllowedMethods").First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// CreateCategory 创建配送分类
func (r *GormShippingRepository) CreateCategory(category *models.ShippingCategory) error {
	return r.db.Omit("AllowedMethods.*").Create(category).Error
}

// UpdateCategory 更新配送分类基础字段
func (r *GormShippingRepository) UpdateCategory(category *models.ShippingCategory) error {
	return r.db.Omit("AllowedMethods").Save(category).Error
}

// ReplaceCategoryMethods 替换分类允许的配送方式，空列表表示不限制
func (r *GormShippingRepository) ReplaceCategoryMethods(category *models.ShippingCategory, methodIDs []uint) error {
	association := r.db.Model(category).Omit("AllowedMethods.*").Association("AllowedMethods")
	if len(methodIDs) == 0 {
		if err := association.Clear(); err != nil {
			return err
		}
		category.AllowedMethods = []models.ShippingMethod{}
		return nil
	}
	var methods []models.ShippingMethod
	if err := r.db.Where("id IN ?", methodIDs).Find(&methods).Error; err != nil {
		return err
	}
	if err := association.Replace(methods); err != nil {
		return err
	}
	category.AllowedMethods = methods
	return nil
}

// DeleteCategory 删除配送分类
func (r *GormShippingRepository) DeleteCategory(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM shipping_category_methods WHERE shipping_category_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM free_shipping_rule_categories WHERE shipping_category_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Product{}).Where("shipping_category_id = ?", id).
			Update("shipping_category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ShippingCategory{}, id).Error
	})
}

// ListFreeRules 获取免运费规则（含适用分类）
func (r *GormShippingRepository) ListFreeRules(onlyActive bool) ([]models.FreeShippingRule, error) {
	query := r.db.Preload("Categories")
	if onlyActive {
		query = query.Where("active = ?", true)
	}
	var rules []models.FreeShippingRule
	if err := query.Order("threshold_amount DESC, id ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// GetFreeRuleByID 根据 ID 获取免运费规则
func (r *GormShippingRepository) GetFreeRuleByID(id uint) (*models.FreeShippingRule, error) {
	var rule models.FreeShippingRule
	if err := r.db.Preload("Categories").First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// CreateFreeRule 创建免运费规则
func (r *GormShippingRepository) CreateFreeRule(rule *models.FreeShippingRule) error {
	return r.db.Omit("Categories.*").Create(rule).Error
}

// UpdateFreeRule 更新免运费规则基础字段
func (r *GormShippingRepository) UpdateFreeRule(rule *models.FreeShippingRule) error {
	return r.db.Omit("Categories").Save(rule).Error
}

// ReplaceFreeRuleCategories 替换规则适用分类，空列表表示适用全部
func (r *GormShippingRepository) ReplaceFreeRuleCategories(rule *models.FreeShippingRule, categoryIDs []uint) error {
	association := r.db.Model(rule).Omit("Categories.*").Association("Categories")
	if len(categoryIDs) == 0 {
		if err := association.Clear(); err != nil {
			return err
		}
		rule.Categories = []models.ShippingCategory{}
		return nil
	}
	var categories []models.ShippingCategory
	if err := r.db.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
		return err
	}
	if err := association.Replace(categories); err != nil {
		return err
	}
	rule.Categories = categories
	return nil
}

// DeleteFreeRule 删除免运费规则
func (r *GormShippingRepository) DeleteFreeRule(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM free_shipping_rule_categories WHERE free_shipping_rule_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.FreeShippingRule{}, id).Error
	})
}
