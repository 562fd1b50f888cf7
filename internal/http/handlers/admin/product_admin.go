package admin

import (
	"strconv"
	"strings"

	"github.com/shipping-engine/internal/http/response"
	"github.com/shipping-engine/internal/repository"
	"github.com/shipping-engine/internal/service"

	"github.com/gin-gonic/gin"
)

func respondProductAdminError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, productAdminErrorRules, response.CodeInternal, fallbackKey)
}

// ListProducts 商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := pageQuery(c)
	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		Search:       strings.TrimSpace(c.Query("search")),
		WithCategory: true,
	}
	if raw := strings.TrimSpace(c.Query("shipping_category_id")); raw != "" {
		value, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		categoryID := uint(value)
		filter.ShippingCategoryID = &categoryID
	}
	products, total, err := h.ProductService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, products, pagination(page, pageSize, total))
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.ProductService.Get(c.Param("id"))
	if err != nil {
		respondProductAdminError(c, err, "error.fetch_failed")
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Create(req)
	if err != nil {
		respondProductAdminError(c, err, "error.save_failed")
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Update(c.Param("id"), req)
	if err != nil {
		respondProductAdminError(c, err, "error.save_failed")
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品（软删除）
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.ProductService.Delete(c.Param("id")); err != nil {
		respondProductAdminError(c, err, "error.delete_failed")
		return
	}
	response.Success(c, nil)
}
