package i18n

var catalog = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":                 "Invalid request parameters",
		"error.unauthorized":                "Unauthorized",
		"error.forbidden":                   "Permission denied",
		"error.not_found":                   "Resource not found",
		"error.internal_error":              "Internal server error",
		"error.rate_limited":                "Too many requests, please retry in %d seconds",
		"error.rate_limit_unavailable":      "Rate limiter unavailable, please retry later",
		"error.auth_header_missing":         "Authorization header is missing",
		"error.auth_header_invalid":         "Authorization header is invalid",
		"error.token_invalid":               "Token is invalid or expired",
		"error.token_revoked":               "Token has been revoked, please sign in again",
		"error.jwt_secret_missing":          "JWT secret is not configured",
		"error.login_failed":                "Invalid username or password",
		"error.password_invalid":            "Current password is incorrect",
		"error.password_min_length":         "Password must be at least %d characters",
		"error.password_require_upper":      "Password must contain an uppercase letter",
		"error.password_require_lower":      "Password must contain a lowercase letter",
		"error.password_require_number":     "Password must contain a number",
		"error.password_require_special":    "Password must contain a special character",
		"error.cart_empty":                  "Cart is empty",
		"error.no_valid_products":           "No valid product IDs provided",
		"error.product_not_found":           "Product not found",
		"error.product_invalid":             "Product data is invalid",
		"error.product_slug_exists":         "Product slug already exists",
		"error.shipping_method_not_found":   "Shipping method not found",
		"error.shipping_method_invalid":     "Shipping method data is invalid",
		"error.shipping_tier_not_found":     "Shipping tier not found",
		"error.shipping_tier_invalid":       "Shipping tier data is invalid",
		"error.shipping_category_not_found": "Shipping category not found",
		"error.shipping_category_exists":    "Shipping category already exists",
		"error.free_rule_not_found":         "Free shipping rule not found",
		"error.free_rule_invalid":           "Free shipping rule data is invalid",
		"error.pricing_type_invalid":        "Pricing type must be quantity or weight",
		"error.amount_invalid":              "Invalid amount",
		"error.coupon_not_found":            "Coupon not found or inactive.",
		"error.coupon_invalid":              "Coupon data is invalid",
		"error.coupon_code_exists":          "Coupon code already exists",
		"error.user_not_found":              "User not found.",
		"error.user_email_exists":           "User email already exists",
		"error.order_not_found":             "Order not found",
		"error.order_status_invalid":        "Order status is invalid",
		"error.admin_not_found":             "Admin not found",
		"error.admin_exists":                "Admin username already exists",
		"error.admin_self_delete":           "You cannot delete your own account",
		"error.role_invalid":                "Role name is invalid",
		"error.policy_invalid":              "Policy is invalid",
		"error.authz_unavailable":           "Authorization service unavailable",
		"error.save_failed":                 "Failed to save",
		"error.delete_failed":               "Failed to delete",
		"error.fetch_failed":                "Failed to fetch data",
		"error.quote_failed":                "Failed to calculate shipping",
	},
	LocaleZH: {
		"error.bad_request":                 "请求参数错误",
		"error.unauthorized":                "未授权",
		"error.forbidden":                   "无权限",
		"error.not_found":                   "资源不存在",
		"error.internal_error":              "服务器内部错误",
		"error.rate_limited":                "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":      "限流服务不可用，请稍后重试",
		"error.auth_header_missing":         "缺少认证头",
		"error.auth_header_invalid":         "认证头格式错误",
		"error.token_invalid":               "Token 无效或已过期",
		"error.token_revoked":               "Token 已失效，请重新登录",
		"error.jwt_secret_missing":          "未配置 JWT 密钥",
		"error.login_failed":                "用户名或密码错误",
		"error.password_invalid":            "原密码错误",
		"error.password_min_length":         "密码长度不能少于 %d 位",
		"error.password_require_upper":      "密码需包含大写字母",
		"error.password_require_lower":      "密码需包含小写字母",
		"error.password_require_number":     "密码需包含数字",
		"error.password_require_special":    "密码需包含特殊字符",
		"error.cart_empty":                  "购物车为空",
		"error.no_valid_products":           "没有有效的商品 ID",
		"error.product_not_found":           "商品不存在",
		"error.product_invalid":             "商品数据不合法",
		"error.product_slug_exists":         "商品标识已存在",
		"error.shipping_method_not_found":   "配送方式不存在",
		"error.shipping_method_invalid":     "配送方式数据不合法",
		"error.shipping_tier_not_found":     "运费阶梯不存在",
		"error.shipping_tier_invalid":       "运费阶梯数据不合法",
		"error.shipping_category_not_found": "配送分类不存在",
		"error.shipping_category_exists":    "配送分类已存在",
		"error.free_rule_not_found":         "免运费规则不存在",
		"error.free_rule_invalid":           "免运费规则数据不合法",
		"error.pricing_type_invalid":        "计价维度必须为 quantity 或 weight",
		"error.amount_invalid":              "金额不合法",
		"error.coupon_not_found":            "优惠券不存在或未启用",
		"error.coupon_invalid":              "优惠券数据不合法",
		"error.coupon_code_exists":          "优惠码已存在",
		"error.user_not_found":              "用户不存在",
		"error.user_email_exists":           "用户邮箱已存在",
		"error.order_not_found":             "订单不存在",
		"error.order_status_invalid":        "订单状态不合法",
		"error.admin_not_found":             "管理员不存在",
		"error.admin_exists":                "管理员账号已存在",
		"error.admin_self_delete":           "不能删除自己的账号",
		"error.role_invalid":                "角色名不合法",
		"error.policy_invalid":              "策略不合法",
		"error.authz_unavailable":           "权限服务不可用",
		"error.save_failed":                 "保存失败",
		"error.delete_failed":               "删除失败",
		"error.fetch_failed":                "获取数据失败",
		"error.quote_failed":                "运费计算失败",
	},
	LocaleBN: {
		"error.bad_request":       "অনুরোধের প্যারামিটার সঠিক নয়",
		"error.unauthorized":      "অনুমোদিত নয়",
		"error.not_found":         "খুঁজে পাওয়া যায়নি",
		"error.internal_error":    "সার্ভারে সমস্যা হয়েছে",
		"error.cart_empty":        "কার্ট খালি",
		"error.coupon_not_found":  "কুপন পাওয়া যায়নি বা সক্রিয় নয়।",
		"error.user_not_found":    "ব্যবহারকারী পাওয়া যায়নি।",
		"error.amount_invalid":    "অবৈধ পরিমাণ",
		"error.product_not_found": "পণ্য পাওয়া যায়নি",
	},
}
