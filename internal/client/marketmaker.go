package client

import (
	"math"

	"github.com/openauction/marketsim/internal/domain"
	"github.com/openauction/marketsim/internal/engine"
)

// MarketMaker is a stateless quoting strategy re-evaluated every round.
// On each invocation it withdraws its previous quotes, reads the current
// bid/offer, and rests a fresh buy at bid*(1-margin/2) and a sell at
// offer*(1+margin/2), both at a fixed quantity. Because the quote is
// derived from the exchange's own bid/offer, which in turn reflects the
// previous round's trades, the maker and the matching pass form a closed
// feedback loop.
type MarketMaker struct {
	quantity int64
	margin   float64
}

// NewMarketMaker creates a maker quoting the given fixed quantity with
// the given proportional margin (e.g. 0.02 for a 2% spread).
func NewMarketMaker(quantity int64, margin float64) *MarketMaker {
	return &MarketMaker{quantity: quantity, margin: margin}
}

// Trade implements engine.Client.
func (m *MarketMaker) Trade(x *engine.Exchange) {
	x.DeleteMyOrders()

	bid, offer := x.BidOffer()
	buyPrice := scalePrice(bid, 1-m.margin/2)
	sellPrice := scalePrice(offer, 1+m.margin/2)

	_ = x.SubmitOrders([]domain.Order{
		domain.NewLimitOrder(domain.SideBuy, m.quantity, buyPrice),
		domain.NewLimitOrder(domain.SideSell, m.quantity, sellPrice),
	})
}

// scalePrice multiplies a cents price by a factor, rounding to the
// nearest cent.
func scalePrice(price int64, factor float64) int64 {
	return int64(math.Round(float64(price) * factor))
}
