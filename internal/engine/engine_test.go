package engine

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"bitget-grid-bot-go/internal/events"
	"bitget-grid-bot-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type placedOrder struct {
	symbol   string
	side     models.Side
	price    float64
	quantity float64
}

// fakeExchange serves a scripted price feed and records every order.
type fakeExchange struct {
	mu       sync.Mutex
	prices   []float64 // consumed front to back; the last value repeats
	priceErr error
	orderErr map[models.Side]error
	placed   []placedOrder
	nextID   int
}

func (f *fakeExchange) GetCurrentPrice(symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.priceErr != nil {
		return 0, f.priceErr
	}
	price := f.prices[0]
	if len(f.prices) > 1 {
		f.prices = f.prices[1:]
	}
	return price, nil
}

func (f *fakeExchange) PlaceOrder(symbol string, side models.Side, price, quantity float64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.orderErr[side]; err != nil {
		return nil, err
	}
	f.nextID++
	f.placed = append(f.placed, placedOrder{symbol: symbol, side: side, price: price, quantity: quantity})
	return &models.Order{ID: fmt.Sprintf("fake-%d", f.nextID), Price: price, Quantity: quantity}, nil
}

func (f *fakeExchange) orders() []placedOrder {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]placedOrder, len(f.placed))
	copy(out, f.placed)
	return out
}

func testConfig() *models.Config {
	return &models.Config{
		Symbol:            "BTCUSDT_SPBL",
		LowerPrice:        40000,
		UpperPrice:        50000,
		GridCount:         10,
		Investment:        10000,
		PollIntervalMs:    3_600_000, // ticks are driven manually in tests
		ProximityFraction: 0.005,
	}
}

func newTestEngine(fake *fakeExchange) *PollingEngine {
	return NewPollingEngine(fake, "simulation", events.NewHub[events.PriceEvent](), events.NewHub[events.TradeEvent](), zap.NewNop())
}

func TestTickTriggersLevelOnce(t *testing.T) {
	fake := &fakeExchange{prices: []float64{40010, 40015}}
	e := newTestEngine(fake)
	require.NoError(t, e.Start(testConfig()))
	defer e.Stop()

	// 40010 is within 0.5% of the 40000 buy level and of no other level.
	e.runTick()
	orders := fake.orders()
	require.Len(t, orders, 1)
	assert.Equal(t, models.Buy, orders[0].side)
	assert.Equal(t, 40000.0, orders[0].price)
	assert.InDelta(t, (10000.0/11)/40000, orders[0].quantity, 1e-9)
	require.Len(t, e.Trades(), 1)
	assert.Equal(t, 40000.0, e.Trades()[0].LevelPrice)

	// 40015 is still at the same level; the occupied level must not retrigger.
	e.runTick()
	assert.Len(t, fake.orders(), 1)
	assert.Len(t, e.Trades(), 1)
	assert.Equal(t, 40015.0, e.CurrentPrice())
}

func TestTickIsIdempotentAtSamePrice(t *testing.T) {
	fake := &fakeExchange{prices: []float64{40010}}
	e := newTestEngine(fake)
	require.NoError(t, e.Start(testConfig()))
	defer e.Stop()

	e.runTick()
	e.runTick()
	assert.Len(t, fake.orders(), 1)
}

func TestOrderFailureDoesNotAbortTick(t *testing.T) {
	// With a wide tolerance both surrounding levels trigger in one tick.
	cfg := testConfig()
	cfg.LowerPrice, cfg.UpperPrice, cfg.GridCount = 100, 200, 1
	cfg.ProximityFraction = 0.6

	fake := &fakeExchange{
		prices:   []float64{150},
		orderErr: map[models.Side]error{models.Buy: &models.NetworkError{Op: "order", Err: errors.New("timeout")}},
	}
	e := newTestEngine(fake)
	require.NoError(t, e.Start(cfg))
	defer e.Stop()

	e.runTick()

	// The buy at 100 failed, the sell at 200 still went through.
	orders := fake.orders()
	require.Len(t, orders, 1)
	assert.Equal(t, models.Sell, orders[0].side)
	assert.True(t, e.IsRunning(), "a failed order must not stop the engine")

	// The failed level is not occupied and retriggers once the venue recovers.
	fake.mu.Lock()
	fake.orderErr = nil
	fake.mu.Unlock()
	e.runTick()
	assert.Len(t, fake.orders(), 2)
}

func TestPriceFetchFailureSkipsTick(t *testing.T) {
	fake := &fakeExchange{priceErr: &models.NetworkError{Op: "ticker", Err: errors.New("timeout")}}
	e := newTestEngine(fake)
	require.NoError(t, e.Start(testConfig()))
	defer e.Stop()

	e.runTick()
	assert.Empty(t, fake.orders())
	assert.True(t, e.IsRunning())
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	fake := &fakeExchange{prices: []float64{40010}}
	e := newTestEngine(fake)

	cfg := testConfig()
	cfg.UpperPrice = cfg.LowerPrice // inverted range
	err := e.Start(cfg)
	var cfgErr *models.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.False(t, e.IsRunning(), "a rejected start must leave the engine stopped")
}

func TestStartWhileRunningFails(t *testing.T) {
	fake := &fakeExchange{prices: []float64{45000}}
	e := newTestEngine(fake)
	require.NoError(t, e.Start(testConfig()))
	defer e.Stop()

	assert.Error(t, e.Start(testConfig()))
}

func TestStopIsIdempotent(t *testing.T) {
	fake := &fakeExchange{prices: []float64{45000}}
	e := newTestEngine(fake)

	// Stop on a never-started engine is a no-op, not an error.
	e.Stop()

	require.NoError(t, e.Start(testConfig()))
	e.Stop()
	assert.False(t, e.IsRunning())
	e.Stop() // duplicate UI trigger
	assert.False(t, e.IsRunning())
}

func TestRestartDiscardsLedger(t *testing.T) {
	fake := &fakeExchange{prices: []float64{40010}}
	e := newTestEngine(fake)
	require.NoError(t, e.Start(testConfig()))
	e.runTick()
	require.Len(t, e.Trades(), 1)
	e.Stop()

	// The report for the finished session stays readable after Stop.
	assert.Len(t, e.Trades(), 1)

	// A new start recomputes levels from current config and forgets old trades.
	cfg := testConfig()
	cfg.GridCount = 4
	require.NoError(t, e.Start(cfg))
	defer e.Stop()
	assert.Empty(t, e.Trades())
	assert.Len(t, e.GridLevels(), 5)
}

func TestTradeEventsCarryProfit(t *testing.T) {
	fake := &fakeExchange{prices: []float64{40010, 42010, 43010}}
	tradeHub := events.NewHub[events.TradeEvent]()
	e := NewPollingEngine(fake, "simulation", events.NewHub[events.PriceEvent](), tradeHub, zap.NewNop())
	sub := tradeHub.Subscribe(8)
	defer tradeHub.Unsubscribe(sub)

	require.NoError(t, e.Start(testConfig()))
	defer e.Stop()

	e.runTick() // buy at 40000
	e.runTick() // buy at 42000
	e.runTick() // sell at 43000

	var got []events.TradeEvent
	for i := 0; i < 3; i++ {
		select {
		case ev := <-sub.C():
			got = append(got, ev)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for trade event")
		}
	}

	require.Len(t, got, 3)
	assert.Nil(t, got[0].Profit, "buys have no realized profit")
	assert.Nil(t, got[1].Profit)
	require.NotNil(t, got[2].Profit, "the sell pairs with the most recent lower buy")
	assert.InDelta(t, (43000-42000)*got[2].Quantity, *got[2].Profit, 1e-9)
}

func TestLoopDrivesTicks(t *testing.T) {
	fake := &fakeExchange{prices: []float64{40010}}
	e := newTestEngine(fake)

	cfg := testConfig()
	cfg.PollIntervalMs = 10
	require.NoError(t, e.Start(cfg))

	require.Eventually(t, func() bool {
		return len(e.Trades()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	e.Stop()
	// After Stop returns no further ticks run.
	n := len(e.Trades())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, len(e.Trades()))
}
