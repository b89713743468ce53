package domain

// Side indicates whether an order is a buy or a sell.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Order represents a buy or sell instruction submitted by a trading client.
// Price is in cents; a nil Price marks a market order, which accepts any
// counterparty price. Orders are immutable once submitted and compared by
// value, not identity.
type Order struct {
	Side     Side
	Quantity int64
	Price    *int64 // cents, nil for market orders
}

// NewOrder creates a market (unpriced) order.
func NewOrder(side Side, quantity int64) Order {
	return Order{Side: side, Quantity: quantity}
}

// NewLimitOrder creates an order with a limit price in cents.
func NewLimitOrder(side Side, quantity, price int64) Order {
	return Order{Side: side, Quantity: quantity, Price: &price}
}

// Priced reports whether the order carries a limit price.
func (o Order) Priced() bool {
	return o.Price != nil
}

// Equal reports structural equality: same side, same quantity, and the
// same limit price (or both unpriced). Two orders that compare equal are
// indistinguishable to the book, which matters for value-based deletion.
func (o Order) Equal(other Order) bool {
	if o.Side != other.Side || o.Quantity != other.Quantity {
		return false
	}
	if (o.Price == nil) != (other.Price == nil) {
		return false
	}
	if o.Price == nil {
		return true
	}
	return *o.Price == *other.Price
}

// Validate checks the order for values the matching engine cannot price
// correctly. It returns ErrInvalidOrder for a non-positive quantity, a
// non-positive limit price, or an unknown side.
func (o Order) Validate() error {
	if o.Side != SideBuy && o.Side != SideSell {
		return ErrInvalidOrder
	}
	if o.Quantity <= 0 {
		return ErrInvalidOrder
	}
	if o.Price != nil && *o.Price <= 0 {
		return ErrInvalidOrder
	}
	return nil
}
