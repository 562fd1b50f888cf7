package admin

import (
	"errors"

	"github.com/shipping-engine/internal/http/response"
	"github.com/shipping-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			if rule.code == response.CodeBadRequest {
				requestLog(c).Infow("admin_input_rejected", "error", err.Error())
			}
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var shippingAdminErrorRules = []mappedHandlerError{
	{target: service.ErrShippingMethodNotFound, code: response.CodeNotFound, key: "error.shipping_method_not_found"},
	{target: service.ErrShippingTierNotFound, code: response.CodeNotFound, key: "error.shipping_tier_not_found"},
	{target: service.ErrShippingCategoryNotFound, code: response.CodeNotFound, key: "error.shipping_category_not_found"},
	{target: service.ErrFreeRuleNotFound, code: response.CodeNotFound, key: "error.free_rule_not_found"},
	{target: service.ErrShippingCategoryExists, code: response.CodeConflict, key: "error.shipping_category_exists"},
	{target: service.ErrShippingMethodInvalid, code: response.CodeBadRequest, key: "error.shipping_method_invalid"},
	{target: service.ErrTierInvalid, code: response.CodeBadRequest, key: "error.shipping_tier_invalid"},
	{target: service.ErrFreeRuleInvalid, code: response.CodeBadRequest, key: "error.free_rule_invalid"},
}

var couponAdminErrorRules = []mappedHandlerError{
	{target: service.ErrCouponNotFound, code: response.CodeNotFound, key: "error.coupon_not_found"},
	{target: service.ErrCouponCodeExists, code: response.CodeConflict, key: "error.coupon_code_exists"},
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, key: "error.coupon_invalid"},
	{target: service.ErrUserNotFound, code: response.CodeBadRequest, key: "error.user_not_found"},
}

var productAdminErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrProductSlugExist, code: response.CodeConflict, key: "error.product_slug_exists"},
	{target: service.ErrProductInvalid, code: response.CodeBadRequest, key: "error.product_invalid"},
	{target: service.ErrShippingCategoryNotFound, code: response.CodeBadRequest, key: "error.shipping_category_not_found"},
}

var userAdminErrorRules = []mappedHandlerError{
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrUserEmailExists, code: response.CodeConflict, key: "error.user_email_exists"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
}

var orderAdminErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
	{target: service.ErrOrderStatusInvalid, code: response.CodeBadRequest, key: "error.order_status_invalid"},
	{target: service.ErrUserNotFound, code: response.CodeBadRequest, key: "error.user_not_found"},
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
}
