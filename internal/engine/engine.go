// Package engine 实现轮询驱动的网格交易控制循环。
package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"bitget-grid-bot-go/internal/config"
	"bitget-grid-bot-go/internal/events"
	"bitget-grid-bot-go/internal/exchange"
	"bitget-grid-bot-go/internal/grid"
	"bitget-grid-bot-go/internal/ledger"
	"bitget-grid-bot-go/internal/metrics"
	"bitget-grid-bot-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PollingEngine 是网格交易的核心状态机，只有 Stopped 和 Running 两个状态。
// 所有交易状态（当前价格、网格线、成交账本）都由它独占持有，随会话创建和销毁；
// 每个tick在唯一的循环goroutine内串行执行，两个tick永远不会并发。
type PollingEngine struct {
	exchange exchange.Exchange
	mode     string // "live" 或 "simulation"，仅用于指标标签
	priceHub *events.Hub[events.PriceEvent]
	tradeHub *events.Hub[events.TradeEvent]
	logger   *zap.Logger

	mu           sync.RWMutex
	cfg          *models.Config
	running      bool
	sessionID    string
	gridLevels   []models.GridLevel
	tradeLedger  *ledger.TradeLedger
	currentPrice float64
	stopChannel  chan struct{}
	loopDone     chan struct{}
}

// NewPollingEngine 创建一个处于 Stopped 状态的引擎实例。
func NewPollingEngine(ex exchange.Exchange, mode string, priceHub *events.Hub[events.PriceEvent], tradeHub *events.Hub[events.TradeEvent], logger *zap.Logger) *PollingEngine {
	return &PollingEngine{
		exchange: ex,
		mode:     mode,
		priceHub: priceHub,
		tradeHub: tradeHub,
		logger:   logger,
	}
}

// Start 校验配置、计算网格并启动轮询循环。仅在 Stopped 状态下有效。
// 配置错误在任何 I/O 之前返回，不会部分生效；重新启动会丢弃上一会话的账本。
func (e *PollingEngine) Start(cfg *models.Config) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	levels, err := grid.ComputeLevels(cfg.LowerPrice, cfg.UpperPrice, cfg.GridCount, cfg.Investment)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return fmt.Errorf("引擎已在运行")
	}
	e.cfg = cfg
	e.sessionID = uuid.NewString()
	e.gridLevels = levels
	e.tradeLedger = ledger.New()
	e.currentPrice = 0
	e.stopChannel = make(chan struct{})
	e.loopDone = make(chan struct{})
	e.running = true
	stop, done := e.stopChannel, e.loopDone
	session := e.sessionID
	e.mu.Unlock()

	e.logger.Info("网格交易引擎已启动",
		zap.String("session", session),
		zap.String("symbol", cfg.Symbol),
		zap.String("mode", e.mode),
		zap.Int("levels", len(levels)),
		zap.Duration("interval", cfg.PollInterval()))

	go e.loop(cfg.PollInterval(), stop, done)
	return nil
}

// Stop 停止轮询循环并等待在途的tick结束。
// 对已停止的引擎调用是无害的空操作，以便容忍重复的外部触发。
func (e *PollingEngine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopChannel)
	done := e.loopDone
	session := e.sessionID
	e.mu.Unlock()

	<-done
	e.logger.Info("网格交易引擎已停止", zap.String("session", session))
}

// loop 是唯一驱动tick的goroutine。ticker会合并积压的触发，
// 因此一个超时的tick只会让后续触发被跳过，绝不会并发执行。
func (e *PollingEngine) loop(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.runTick()
			// tick期间积压的触发按跳过处理
			select {
			case <-ticker.C:
				metrics.TicksSkipped.Inc()
			default:
			}
		}
	}
}

// runTick 执行一次完整的轮询：取价、广播、逐网格线评估触发。
func (e *PollingEngine) runTick() {
	metrics.Ticks.Inc()

	e.mu.RLock()
	cfg := e.cfg
	led := e.tradeLedger
	levels := e.gridLevels
	e.mu.RUnlock()

	price, err := e.exchange.GetCurrentPrice(cfg.Symbol)
	if err != nil {
		metrics.PriceFetchFailures.Inc()
		e.logger.Warn("获取价格失败，跳过本次tick", zap.Error(err))
		return
	}

	e.mu.Lock()
	e.currentPrice = price
	e.mu.Unlock()

	metrics.CurrentPrice.Set(price)
	e.priceHub.Broadcast(events.PriceEvent{Price: price})

	for _, level := range levels {
		// 触发条件：价格进入该网格线的容差范围
		if math.Abs(price-level.Price) >= level.Price*cfg.ProximityFraction {
			continue
		}
		// 一条网格线在单次会话内至多成交一次
		if led.HasTradeAt(level.Price) {
			continue
		}
		// 单条网格线的失败只影响它自己，剩余网格线继续评估
		e.triggerLevel(cfg, led, level)
	}
}

// triggerLevel 对一条被触发的网格线下单并记账。
func (e *PollingEngine) triggerLevel(cfg *models.Config, led *ledger.TradeLedger, level models.GridLevel) {
	order, err := e.exchange.PlaceOrder(cfg.Symbol, level.Side(), level.Price, level.Quantity)
	if err != nil {
		e.recordOrderFailure(level, err)
		return
	}

	trade := models.Trade{
		ID:         order.ID,
		Timestamp:  time.Now(),
		Side:       level.Side(),
		Price:      level.Price,
		Quantity:   level.Quantity,
		LevelPrice: level.Price,
	}
	if err := led.Record(trade); err != nil {
		// 防御性不变量：正常控制流先查询后记录，到达这里说明逻辑出错
		metrics.OrderFailures.WithLabelValues("internal").Inc()
		e.logger.Error("账本拒绝记录成交", zap.Error(err), zap.Float64("level", level.Price))
		return
	}

	metrics.Orders.WithLabelValues(e.mode, strings.ToLower(string(trade.Side))).Inc()
	profit := led.ComputeProfit(trade)

	fields := []zap.Field{
		zap.String("orderId", trade.ID),
		zap.String("side", string(trade.Side)),
		zap.Float64("price", trade.Price),
		zap.Float64("quantity", trade.Quantity),
	}
	if profit != nil {
		fields = append(fields, zap.Float64("profit", *profit))
	}
	e.logger.Info("网格线成交", fields...)

	e.tradeHub.Broadcast(events.TradeEvent{
		ID:        trade.ID,
		Timestamp: trade.Timestamp,
		Side:      trade.Side,
		Price:     trade.Price,
		Quantity:  trade.Quantity,
		Profit:    profit,
	})
}

// recordOrderFailure 记录单条网格线的下单失败并分类计数。
// 认证失败会在之后的每次调用中重现，按 Error 级别显著暴露。
func (e *PollingEngine) recordOrderFailure(level models.GridLevel, err error) {
	var authErr *models.AuthError
	var netErr *models.NetworkError
	var venueErr *models.VenueError

	switch {
	case errors.As(err, &authErr):
		metrics.OrderFailures.WithLabelValues("auth").Inc()
		e.logger.Error("下单被拒：凭证或签名无效，后续调用将持续失败",
			zap.Float64("level", level.Price), zap.Error(err))
	case errors.As(err, &netErr):
		metrics.OrderFailures.WithLabelValues("network").Inc()
		e.logger.Warn("下单网络失败", zap.Float64("level", level.Price), zap.Error(err))
	case errors.As(err, &venueErr):
		metrics.OrderFailures.WithLabelValues("venue").Inc()
		e.logger.Warn("下单被交易所拒绝", zap.Float64("level", level.Price), zap.Error(err))
	default:
		metrics.OrderFailures.WithLabelValues("internal").Inc()
		e.logger.Warn("下单失败", zap.Float64("level", level.Price), zap.Error(err))
	}
}

// IsRunning 报告引擎当前是否处于 Running 状态
func (e *PollingEngine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

// CurrentPrice 返回最近一次轮询到的价格
func (e *PollingEngine) CurrentPrice() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.currentPrice
}

// GridLevels 返回当前会话网格线的副本，供展示层只读使用
func (e *PollingEngine) GridLevels() []models.GridLevel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.GridLevel, len(e.gridLevels))
	copy(out, e.gridLevels)
	return out
}

// Trades 返回当前（或最近一次）会话的成交记录副本
func (e *PollingEngine) Trades() []models.Trade {
	e.mu.RLock()
	led := e.tradeLedger
	e.mu.RUnlock()
	if led == nil {
		return nil
	}
	return led.Trades()
}

// Ledger 返回当前会话的账本，供利润汇总等只读用途
func (e *PollingEngine) Ledger() *ledger.TradeLedger {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tradeLedger
}
