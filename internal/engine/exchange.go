package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/openauction/marketsim/internal/domain"
)

// Client is a trading agent invoked once per round with the exchange as
// its sole argument. During the invocation it may submit orders, delete
// its own resting orders, and read book state; the exchange attributes
// everything it does to the client being invoked.
type Client interface {
	Trade(x *Exchange)
}

// ClientFunc adapts a plain function to the Client interface.
type ClientFunc func(x *Exchange)

// Trade invokes f.
func (f ClientFunc) Trade(x *Exchange) {
	f(x)
}

// Exchange simulates a continuous double auction for a single security.
// It owns the order book, tracks the reference price and volume of the
// last matching pass, and drives registered clients through trading
// rounds.
//
// The exchange is single-threaded by design: submission happens inside a
// client invocation and matching inside a matching pass, both on one call
// stack. A concurrent host must treat each round (DoTrading followed by
// MatchOrders) as a single critical section; see the service layer.
type Exchange struct {
	book       *Book
	lastPrice  int64
	lastVolume *int64 // nil until the first matching pass produces a trade
	clients    []Client
	current    int // client id being invoked, HouseClient outside rounds
}

// NewExchange creates an exchange with the given opening reference price
// in cents, an empty book, and no registered clients.
func NewExchange(openingPrice int64) *Exchange {
	return &Exchange{
		book:      NewBook(),
		lastPrice: openingPrice,
		current:   HouseClient,
	}
}

// Register appends a client to the trading round rotation. Clients are
// invoked strictly in registration order and their registration index is
// their client id for order attribution.
func (x *Exchange) Register(c Client) {
	x.clients = append(x.clients, c)
}

// SubmitOrder validates the order and places it on the book attributed to
// the client currently being invoked, or to the house when no round is in
// progress. It returns the opaque id assigned to the resting order.
// Submission never touches the reference price or volume.
func (x *Exchange) SubmitOrder(o domain.Order) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	return x.book.Add(o, x.current), nil
}

// SubmitOrders submits each order in sequence, preserving order. It stops
// at the first invalid order.
func (x *Exchange) SubmitOrders(orders []domain.Order) error {
	for _, o := range orders {
		if _, err := x.SubmitOrder(o); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMyOrders removes every resting order belonging to the client
// currently being invoked. Outside a round it scopes to house orders.
func (x *Exchange) DeleteMyOrders() {
	x.book.DeleteForClient(x.current)
}

// BidOffer returns the current bid and offer. The bid is the highest
// priced buy order when one exists, falling back to the offer and then to
// the reference price; the offer is the lowest priced sell order, falling
// back to the bid and then to the reference price. The fallback chain
// means both values are always usable numbers, even with an empty or
// all-unpriced book.
func (x *Exchange) BidOffer() (bid, offer int64) {
	highestBuy, hasBid := x.book.HighestBuy()
	lowestSell, hasOffer := x.book.LowestSell()

	switch {
	case hasBid:
		bid = highestBuy
	case hasOffer:
		bid = lowestSell
	default:
		bid = x.lastPrice
	}
	switch {
	case hasOffer:
		offer = lowestSell
	case hasBid:
		offer = highestBuy
	default:
		offer = x.lastPrice
	}
	return bid, offer
}

// LastPrice returns the reference price: the opening price until a
// matching pass produces a trade, then the first trade price of the most
// recent pass that produced any.
func (x *Exchange) LastPrice() int64 {
	return x.lastPrice
}

// LastVolume returns the reference volume, or ok=false before the first
// trade.
func (x *Exchange) LastVolume() (int64, bool) {
	if x.lastVolume == nil {
		return 0, false
	}
	return *x.lastVolume, true
}

// OrderBook returns all live orders in insertion order.
func (x *Exchange) OrderBook() []domain.Order {
	return x.book.Orders()
}

// BuyOrderBook returns live buy orders in insertion order.
func (x *Exchange) BuyOrderBook() []domain.Order {
	return x.book.BuyOrders()
}

// SellOrderBook returns live sell orders in insertion order.
func (x *Exchange) SellOrderBook() []domain.Order {
	return x.book.SellOrders()
}

// Depth returns up to n aggregated price levels per side.
func (x *Exchange) Depth(n int) (bids, asks []PriceLevel) {
	return x.book.TopBids(n), x.book.TopAsks(n)
}

// RestingOrders returns the number of live orders on the book.
func (x *Exchange) RestingOrders() int {
	return x.book.Len()
}

// DoTrading runs one trading round: each registered client is invoked in
// registration order with its index as the current client id, so orders
// it submits are attributed to it and DeleteMyOrders scopes to it. The
// round does not match; matching is a separate pass driven externally.
func (x *Exchange) DoTrading() {
	for i, c := range x.clients {
		x.current = i
		c.Trade(x)
		x.current = HouseClient
	}
}

// MatchOrders crosses the book and returns the trades produced, in match
// order. The scan is deliberately a plain O(B×S) walk in book order, not
// a priority queue: for each buy order (insertion order), sell orders are
// tried in insertion order and the first compatible one wins. A pair is
// compatible when quantities are equal, the two orders belong to
// different clients, and MatchPrice crosses them against the reference
// price as it stood at the start of the pass.
//
// A matched sell leaves the book immediately; matched buys are removed
// after the scan. When the pass produces any trades, the reference price
// and volume are set from the first trade only.
func (x *Exchange) MatchOrders() []domain.Trade {
	executedAt := time.Now()
	trades := make([]domain.Trade, 0)
	var matchedBuys []string

	for _, buy := range x.book.sideEntries(domain.SideBuy) {
		for _, sell := range x.book.sideEntries(domain.SideSell) {
			if sell.Order.Quantity != buy.Order.Quantity {
				continue
			}
			// No self-trading.
			if sell.ClientID == buy.ClientID {
				continue
			}
			price, ok := MatchPrice(x.lastPrice, buy.Order.Price, sell.Order.Price)
			if !ok {
				continue
			}
			trades = append(trades, domain.Trade{
				TradeID:    uuid.New().String(),
				Buy:        buy.Order,
				Sell:       sell.Order,
				Price:      price,
				Quantity:   buy.Order.Quantity,
				ExecutedAt: executedAt,
			})
			x.book.deleteByID(sell.OrderID)
			matchedBuys = append(matchedBuys, buy.OrderID)
			// A buy order matches at most one sell per pass.
			break
		}
	}

	for _, orderID := range matchedBuys {
		x.book.deleteByID(orderID)
	}

	if len(trades) > 0 {
		// Only the first trade of the pass updates the reference state.
		x.lastPrice = trades[0].Price
		volume := trades[0].Buy.Quantity
		x.lastVolume = &volume
	}

	return trades
}
