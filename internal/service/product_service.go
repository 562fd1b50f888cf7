package service

import (
	"regexp"
	"strings"

	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ProductInput 商品录入
type ProductInput struct {
	Name               string          `json:"name" validate:"required,max=255"`
	Slug               string          `json:"slug" validate:"required,max=255"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price" validate:"gte=0"`
	Weight             decimal.Decimal `json:"weight" validate:"gte=0"`
	ShippingCategoryID *uint           `json:"shipping_category_id" validate:"omitempty,gt=0"`
	IsActive           *bool           `json:"is_active"`
}

// ProductService 商品服务
type ProductService struct {
	repo         repository.ProductRepository
	shippingRepo repository.ShippingRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, shippingRepo repository.ShippingRepository) *ProductService {
	return &ProductService{repo: repo, shippingRepo: shippingRepo}
}

// List 分页获取商品
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.repo.List(filter)
}

// Get 获取商品，ID 必须是 UUID
func (s *ProductService) Get(id string) (*models.Product, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrProductNotFound
	}
	product, err := s.repo.GetByID(parsed.String())
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	input = normalizeProductInput(input)
	if err := s.check(input, nil); err != nil {
		return nil, err
	}
	product := &models.Product{IsActive: true}
	applyProductInput(product, input)
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	return s.Get(product.ID)
}

// Update 更新商品
func (s *ProductService) Update(id string, input ProductInput) (*models.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	input = normalizeProductInput(input)
	if err := s.check(input, &product.ID); err != nil {
		return nil, err
	}
	applyProductInput(product, input)
	product.ShippingCategory = nil
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return s.Get(product.ID)
}

// Delete 删除商品
func (s *ProductService) Delete(id string) error {
	product, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(product.ID)
}

func normalizeProductInput(input ProductInput) ProductInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	input.Description = strings.TrimSpace(input.Description)
	return input
}

func (s *ProductService) check(input ProductInput, excludeID *string) error {
	if err := validateInput(input, ErrProductInvalid); err != nil {
		return err
	}
	if !slugPattern.MatchString(input.Slug) {
		return ErrProductInvalid
	}
	count, err := s.repo.CountBySlug(input.Slug, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrProductSlugExist
	}
	if input.ShippingCategoryID != nil {
		category, err := s.shippingRepo.GetCategoryByID(*input.ShippingCategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return ErrShippingCategoryNotFound
		}
	}
	return nil
}

func applyProductInput(product *models.Product, input ProductInput) {
	product.Name = input.Name
	product.Slug = input.Slug
	product.Description = input.Description
	product.Price = models.NewMoneyFromDecimal(input.Price)
	product.Weight = input.Weight
	product.ShippingCategoryID = input.ShippingCategoryID
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
}
