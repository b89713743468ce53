package engine

// Clamp restricts n to the range [min, max]. Either bound may be nil,
// meaning no bound on that side; with both nil, n is returned unchanged.
func Clamp(n int64, max, min *int64) int64 {
	if max != nil && n > *max {
		n = *max
	}
	if min != nil && n < *min {
		n = *min
	}
	return n
}

// MatchPrice decides whether a buy/sell pair crosses and at what price.
// It is the single place that encodes price-priority semantics.
//
// The pair crosses when either side is unpriced (a market order accepts
// any price) or when buyPrice >= sellPrice. The execution price is the
// current reference price clamped into [sellPrice, buyPrice]: the trade
// happens at the prior reference price when that already lies between the
// two limits, otherwise at whichever limit it violates.
//
// When the pair does not cross, ok is false and the returned price is the
// unchanged current price, which the caller must not apply.
func MatchPrice(current int64, buyPrice, sellPrice *int64) (int64, bool) {
	if buyPrice != nil && sellPrice != nil && *buyPrice < *sellPrice {
		return current, false
	}
	return Clamp(current, buyPrice, sellPrice), true
}
