package client

import (
	"math/rand"

	"github.com/openauction/marketsim/internal/domain"
	"github.com/openauction/marketsim/internal/engine"
)

// SideFunc decides which side, if any, a trader takes this round.
// Returning ok=false means the trader sits the round out.
type SideFunc func() (domain.Side, bool)

// RandomSide returns a SideFunc that picks buy or sell uniformly using
// the given source. The simulation is single-threaded, so an unlocked
// *rand.Rand may be shared between traders.
func RandomSide(r *rand.Rand) SideFunc {
	return func() (domain.Side, bool) {
		if r.Intn(2) == 0 {
			return domain.SideBuy, true
		}
		return domain.SideSell, true
	}
}

// NoiseTrader submits one unpriced order of fixed quantity per round,
// on the side chosen by its decision function. Unpriced orders accept
// any counterparty price, so the trader provides the order flow the
// market maker quotes against.
type NoiseTrader struct {
	quantity int64
	nextSide SideFunc
}

// NewNoiseTrader creates a trader submitting the given quantity each
// round, with sides drawn from next.
func NewNoiseTrader(quantity int64, next SideFunc) *NoiseTrader {
	return &NoiseTrader{quantity: quantity, nextSide: next}
}

// Trade implements engine.Client.
func (t *NoiseTrader) Trade(x *engine.Exchange) {
	side, ok := t.nextSide()
	if !ok {
		return
	}
	_, _ = x.SubmitOrder(domain.NewOrder(side, t.quantity))
}
