package public

import "github.com/shipping-engine/internal/provider"

// Handler 前台/公开接口处理器入口
// 说明：运费试算、结算、优惠券校验等公开 API。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
