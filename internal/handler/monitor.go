package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/openauction/marketsim/internal/domain"
	"github.com/openauction/marketsim/internal/service"
)

// MonitorHandler serves read-only views of a running simulation. All
// trading happens in-process between the exchange and its clients; the
// monitor only observes.
type MonitorHandler struct {
	sim *service.Simulation
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(sim *service.Simulation) *MonitorHandler {
	return &MonitorHandler{sim: sim}
}

// priceResponse is the JSON response for GET /price.
type priceResponse struct {
	Bid        float64 `json:"bid"`
	Offer      float64 `json:"offer"`
	LastPrice  float64 `json:"last_price"`
	LastVolume *int64  `json:"last_volume"`
}

// bookLevelResponse is a single price level in the book response.
type bookLevelResponse struct {
	Price         float64 `json:"price"`
	TotalQuantity int64   `json:"total_quantity"`
	OrderCount    int     `json:"order_count"`
}

// bookResponse is the JSON response for GET /book.
type bookResponse struct {
	Bids          []bookLevelResponse `json:"bids"`
	Asks          []bookLevelResponse `json:"asks"`
	Spread        *float64            `json:"spread"`
	RestingOrders int                 `json:"resting_orders"`
	SnapshotAt    string              `json:"snapshot_at"`
}

// tradeResponse is a single trade in the trades response.
type tradeResponse struct {
	TradeID    string  `json:"trade_id"`
	Price      float64 `json:"price"`
	Quantity   int64   `json:"quantity"`
	ExecutedAt string  `json:"executed_at"`
}

// tradesResponse is the JSON response for GET /trades.
type tradesResponse struct {
	Trades []tradeResponse `json:"trades"`
	Count  int             `json:"count"`
}

// statsResponse is the JSON response for GET /stats.
type statsResponse struct {
	Rounds        int64 `json:"rounds"`
	Trades        int   `json:"trades"`
	RestingOrders int   `json:"resting_orders"`
}

// GetPrice handles GET /price.
func (h *MonitorHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	view := h.sim.Price()

	WriteJSON(w, http.StatusOK, priceResponse{
		Bid:        domain.CentsToDollars(view.Bid),
		Offer:      domain.CentsToDollars(view.Offer),
		LastPrice:  domain.CentsToDollars(view.LastPrice),
		LastVolume: view.LastVolume,
	})
}

// GetBook handles GET /book.
func (h *MonitorHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	// Parse depth query param (default 10, max 50).
	depth := 10
	if d := r.URL.Query().Get("depth"); d != "" {
		var err error
		depth, err = strconv.Atoi(d)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "depth must be a valid integer")
			return
		}
	}

	view, err := h.sim.Book(depth)
	if err != nil {
		mapError(w, err)
		return
	}

	resp := bookResponse{
		Bids:          make([]bookLevelResponse, len(view.Bids)),
		Asks:          make([]bookLevelResponse, len(view.Asks)),
		RestingOrders: view.RestingOrders,
		SnapshotAt:    view.SnapshotAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	for i, level := range view.Bids {
		resp.Bids[i] = bookLevelResponse{
			Price:         domain.CentsToDollars(level.Price),
			TotalQuantity: level.TotalQuantity,
			OrderCount:    level.OrderCount,
		}
	}
	for i, level := range view.Asks {
		resp.Asks[i] = bookLevelResponse{
			Price:         domain.CentsToDollars(level.Price),
			TotalQuantity: level.TotalQuantity,
			OrderCount:    level.OrderCount,
		}
	}
	if view.Spread != nil {
		spread := domain.CentsToDollars(*view.Spread)
		resp.Spread = &spread
	}

	WriteJSON(w, http.StatusOK, resp)
}

// GetTrades handles GET /trades.
func (h *MonitorHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	// Parse limit query param (default 50, max 500).
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be a valid integer")
			return
		}
	}

	trades, err := h.sim.RecentTrades(limit)
	if err != nil {
		mapError(w, err)
		return
	}

	resp := tradesResponse{
		Trades: make([]tradeResponse, len(trades)),
		Count:  len(trades),
	}
	for i, t := range trades {
		resp.Trades[i] = tradeResponse{
			TradeID:    t.TradeID,
			Price:      domain.CentsToDollars(t.Price),
			Quantity:   t.Quantity,
			ExecutedAt: t.ExecutedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	WriteJSON(w, http.StatusOK, resp)
}

// GetStats handles GET /stats.
func (h *MonitorHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.sim.Stats()

	WriteJSON(w, http.StatusOK, statsResponse{
		Rounds:        stats.Rounds,
		Trades:        stats.Trades,
		RestingOrders: stats.RestingOrders,
	})
}

// mapError maps service errors to HTTP responses.
func mapError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}
	WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
}
