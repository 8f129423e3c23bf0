package events

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const subscriberBuffer = 64

// Server exposes the price and trade streams over websocket so that UI
// collaborators can render charts and trade tables without touching the core.
type Server struct {
	priceHub *Hub[PriceEvent]
	tradeHub *Hub[TradeEvent]
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// outboundMessage wraps every websocket payload with its kind.
type outboundMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewServer wires the server to the hubs the engine publishes on.
func NewServer(priceHub *Hub[PriceEvent], tradeHub *Hub[TradeEvent], logger *zap.Logger) *Server {
	return &Server{
		priceHub: priceHub,
		tradeHub: tradeHub,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		logger:   logger,
	}
}

// Routes returns the mux serving the event stream endpoints. Callers may
// mount additional handlers (e.g. /metrics) on the returned mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/price", s.handlePriceStream)
	mux.HandleFunc("/ws/trades", s.handleTradeStream)
	return mux
}

func (s *Server) handlePriceStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket升级失败", zap.Error(err))
		return
	}
	sub := s.priceHub.Subscribe(subscriberBuffer)
	defer s.priceHub.Unsubscribe(sub)
	stream(conn, "price", sub)
}

func (s *Server) handleTradeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket升级失败", zap.Error(err))
		return
	}
	sub := s.tradeHub.Subscribe(subscriberBuffer)
	defer s.tradeHub.Unsubscribe(sub)
	stream(conn, "trade", sub)
}

// stream pumps hub values to one websocket client until either side goes away.
// A disconnect ends the pump even when the hub has gone quiet.
func stream[T any](conn *websocket.Conn, kind string, sub *Subscription[T]) {
	defer conn.Close()

	// Drain client frames so close handshakes are noticed; inbound data is ignored.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case value, ok := <-sub.C():
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage{Type: kind, Data: value}); err != nil {
				return
			}
		}
	}
}
