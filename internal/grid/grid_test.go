package grid

import (
	"testing"

	"bitget-grid-bot-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLevelsShape(t *testing.T) {
	levels, err := ComputeLevels(40000, 50000, 10, 10000)
	require.NoError(t, err)
	require.Len(t, levels, 11)

	// Strictly increasing prices, fixed step of 1000.
	for i, level := range levels {
		assert.InDelta(t, 40000+float64(i)*1000, level.Price, 1e-9)
		if i > 0 {
			assert.Greater(t, level.Price, levels[i-1].Price)
		}
	}
}

func TestComputeLevelsAlternation(t *testing.T) {
	levels, err := ComputeLevels(40000, 50000, 10, 10000)
	require.NoError(t, err)

	// Lowest level is a buy, sides alternate upward.
	assert.True(t, levels[0].IsBuy)
	assert.Equal(t, models.Buy, levels[0].Side())
	for i, level := range levels {
		assert.Equal(t, i%2 == 0, level.IsBuy, "level %d", i)
	}
}

func TestComputeLevelsAllocation(t *testing.T) {
	const investment = 10000.0
	levels, err := ComputeLevels(40000, 50000, 10, investment)
	require.NoError(t, err)

	// The per-level notional sums back to the configured investment.
	var total float64
	for _, level := range levels {
		assert.Positive(t, level.Quantity)
		total += level.Quantity * level.Price
	}
	assert.InDelta(t, investment, total, 1e-6)
}

func TestComputeLevelsDeterministic(t *testing.T) {
	a, err := ComputeLevels(100, 200, 7, 3500)
	require.NoError(t, err)
	b, err := ComputeLevels(100, 200, 7, 3500)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputeLevelsSingleGrid(t *testing.T) {
	levels, err := ComputeLevels(100, 200, 1, 1000)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.True(t, levels[0].IsBuy)
	assert.False(t, levels[1].IsBuy)
}

func TestComputeLevelsRejectsBadInput(t *testing.T) {
	cases := []struct {
		name       string
		lower      float64
		upper      float64
		count      int
		investment float64
	}{
		{"inverted range", 50000, 40000, 10, 10000},
		{"equal bounds", 40000, 40000, 10, 10000},
		{"zero count", 40000, 50000, 0, 10000},
		{"negative count", 40000, 50000, -3, 10000},
		{"zero investment", 40000, 50000, 10, 0},
		{"negative lower", -1, 50000, 10, 10000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			levels, err := ComputeLevels(tc.lower, tc.upper, tc.count, tc.investment)
			assert.Nil(t, levels)
			var cfgErr *models.ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}
