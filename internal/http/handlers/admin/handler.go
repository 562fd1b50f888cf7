package admin

import "github.com/shipping-engine/internal/provider"

// Handler 后台管理接口处理器入口
// 说明：配送配置、优惠券、商品与权限管理 API。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
