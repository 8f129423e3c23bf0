package exchange

import (
	"bitget-grid-bot-go/internal/models"

	"go.uber.org/zap"
)

// Exchange 定义了所有交易所实现必须提供的通用方法。
// 这使得交易核心可以在真实交易和模拟模式之间轻松切换。
type Exchange interface {
	GetCurrentPrice(symbol string) (float64, error)
	PlaceOrder(symbol string, side models.Side, price, quantity float64) (*models.Order, error)
}

// New 根据凭证是否齐全选择交易所实现。
// 凭证缺失时返回模拟交易所，该选择在构造时一次性确定，之后不再按调用检查。
func New(cfg *models.Config, creds models.Credentials, logger *zap.Logger) Exchange {
	if !creds.IsComplete() {
		logger.Info("凭证不完整，交易所客户端进入模拟模式",
			zap.Float64("lower", cfg.LowerPrice),
			zap.Float64("upper", cfg.UpperPrice))
		return NewSimulatedExchange(cfg.LowerPrice, cfg.UpperPrice, logger)
	}
	return NewLiveExchange(creds, cfg.APIBaseURL, logger)
}
