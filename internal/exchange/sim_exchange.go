package exchange

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"bitget-grid-bot-go/internal/models"

	"github.com/jxskiss/base62"
	"go.uber.org/zap"
)

// SimulatedExchange 实现了 Exchange 接口，在没有凭证时模拟交易所行为。
// 不持有任何 HTTP 客户端，保证零网络流量；价格在配置的网格区间内均匀抽取。
type SimulatedExchange struct {
	lower  float64
	upper  float64
	nextID atomic.Int64
	logger *zap.Logger
}

// NewSimulatedExchange 创建一个新的模拟交易所实例。
func NewSimulatedExchange(lower, upper float64, logger *zap.Logger) *SimulatedExchange {
	return &SimulatedExchange{
		lower:  lower,
		upper:  upper,
		logger: logger,
	}
}

// GetCurrentPrice 返回 [lower, upper] 区间内的一个随机价格。
// 不要求确定性，但结果必须始终落在区间内。
func (e *SimulatedExchange) GetCurrentPrice(symbol string) (float64, error) {
	return e.lower + rand.Float64()*(e.upper-e.lower), nil
}

// PlaceOrder 立即返回一张合成订单，订单号形如 sim-<毫秒时间戳>-<序号>，
// 在单次会话内单调可区分。
func (e *SimulatedExchange) PlaceOrder(symbol string, side models.Side, price, quantity float64) (*models.Order, error) {
	seq := e.nextID.Add(1)
	id := fmt.Sprintf("sim-%s-%s",
		base62.FormatInt(time.Now().UnixMilli()),
		base62.FormatInt(seq))

	e.logger.Info("模拟成交",
		zap.String("orderId", id),
		zap.String("symbol", symbol),
		zap.String("side", string(side)),
		zap.Float64("price", price),
		zap.Float64("quantity", quantity))

	return &models.Order{ID: id, Price: price, Quantity: quantity}, nil
}
