package domain

import "time"

// Trade represents a matched execution between a buy and a sell order.
// Trades are created only inside a matching pass and never mutated. The
// buy and sell quantities are always equal; Quantity repeats them for
// convenience.
type Trade struct {
	TradeID    string
	Buy        Order
	Sell       Order
	Price      int64 // cents
	Quantity   int64
	ExecutedAt time.Time
}
