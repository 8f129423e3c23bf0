// Package events carries the outbound surface towards presentation clients.
// Delivery is fire-and-forget: a slow or absent consumer never blocks the
// trading loop.
package events

import (
	"time"

	"bitget-grid-bot-go/internal/models"
)

// PriceEvent is emitted on every polling tick with the freshly fetched price.
type PriceEvent struct {
	Price float64 `json:"price"`
}

// TradeEvent is emitted once per recorded trade. Profit is null for buys and
// for sells with no matching lower buy.
type TradeEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Side      models.Side `json:"side"`
	Price     float64     `json:"price"`
	Quantity  float64     `json:"quantity"`
	Profit    *float64    `json:"profit"`
}
