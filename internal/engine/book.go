package engine

import (
	"github.com/google/btree"
	"github.com/google/uuid"

	"github.com/openauction/marketsim/internal/domain"
)

// HouseClient is the client id used for orders submitted outside a trading
// round, when no registered client is being invoked.
const HouseClient = -1

// BookEntry represents a single order resting on the book, tagged with the
// client that submitted it and an opaque id assigned at submission time.
type BookEntry struct {
	OrderID  string
	ClientID int
	Seq      uint64
	Order    domain.Order
}

// PriceLevel represents an aggregated price level in the order book.
type PriceLevel struct {
	Price         int64
	TotalQuantity int64
	OrderCount    int
}

// priceEntry is the per-side B-tree item for priced orders. The comparators
// order on (Price, Seq) only; Quantity rides along for depth aggregation.
type priceEntry struct {
	Price    int64
	Seq      uint64
	Quantity int64
}

// bidLess defines ordering for the buy side: price descending, then
// submission sequence ascending. Min() returns the best bid (highest
// price, earliest submission).
func bidLess(a, b priceEntry) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	return a.Seq < b.Seq
}

// askLess defines ordering for the sell side: price ascending, then
// submission sequence ascending. Min() returns the best ask (lowest
// price, earliest submission).
func askLess(a, b priceEntry) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.Seq < b.Seq
}

// Book holds the live set of (client, order) pairs for a single security.
// The entries slice preserves insertion order, which doubles as matching
// priority: first inserted, first tried. Priced orders are additionally
// indexed per side in B-trees for best-price and depth queries; unpriced
// (market) orders never appear in the trees.
//
// A Book is owned by exactly one Exchange and is not safe for concurrent
// use on its own.
type Book struct {
	entries []BookEntry
	bids    *btree.BTreeG[priceEntry]
	asks    *btree.BTreeG[priceEntry]
	seq     uint64
}

// NewBook creates an empty order book.
func NewBook() *Book {
	const degree = 32
	return &Book{
		bids: btree.NewG[priceEntry](degree, bidLess),
		asks: btree.NewG[priceEntry](degree, askLess),
	}
}

// Add appends an order tagged with the given client id and returns the
// opaque order id assigned to it. No validation is performed here; the
// Exchange validates before it inserts.
func (b *Book) Add(o domain.Order, clientID int) string {
	b.seq++
	entry := BookEntry{
		OrderID:  uuid.New().String(),
		ClientID: clientID,
		Seq:      b.seq,
		Order:    o,
	}
	b.entries = append(b.entries, entry)
	if o.Priced() {
		b.treeFor(o.Side).ReplaceOrInsert(priceEntry{Price: *o.Price, Seq: entry.Seq, Quantity: o.Quantity})
	}
	return entry.OrderID
}

// Delete removes the first stored entry whose order compares equal by
// value to the argument. Deleting an order that is not on the book is a
// silent no-op. If duplicate-valued orders exist, the earliest-inserted
// one is removed.
func (b *Book) Delete(o domain.Order) {
	for i, entry := range b.entries {
		if entry.Order.Equal(o) {
			b.removeAt(i)
			return
		}
	}
}

// DeleteForClient removes every entry submitted by the given client id.
func (b *Book) DeleteForClient(clientID int) {
	kept := b.entries[:0]
	for _, entry := range b.entries {
		if entry.ClientID == clientID {
			b.dropIndex(entry)
			continue
		}
		kept = append(kept, entry)
	}
	b.entries = kept
}

// deleteByID removes the entry with the given order id, if present.
func (b *Book) deleteByID(orderID string) {
	for i, entry := range b.entries {
		if entry.OrderID == orderID {
			b.removeAt(i)
			return
		}
	}
}

func (b *Book) removeAt(i int) {
	entry := b.entries[i]
	b.entries = append(b.entries[:i], b.entries[i+1:]...)
	b.dropIndex(entry)
}

func (b *Book) dropIndex(entry BookEntry) {
	if entry.Order.Priced() {
		b.treeFor(entry.Order.Side).Delete(priceEntry{Price: *entry.Order.Price, Seq: entry.Seq})
	}
}

func (b *Book) treeFor(side domain.Side) *btree.BTreeG[priceEntry] {
	if side == domain.SideBuy {
		return b.bids
	}
	return b.asks
}

// Orders returns all live orders in insertion order.
func (b *Book) Orders() []domain.Order {
	orders := make([]domain.Order, len(b.entries))
	for i, entry := range b.entries {
		orders[i] = entry.Order
	}
	return orders
}

// BuyOrders returns live buy orders in insertion order.
func (b *Book) BuyOrders() []domain.Order {
	return b.sideOrders(domain.SideBuy)
}

// SellOrders returns live sell orders in insertion order.
func (b *Book) SellOrders() []domain.Order {
	return b.sideOrders(domain.SideSell)
}

func (b *Book) sideOrders(side domain.Side) []domain.Order {
	orders := make([]domain.Order, 0)
	for _, entry := range b.entries {
		if entry.Order.Side == side {
			orders = append(orders, entry.Order)
		}
	}
	return orders
}

// sideEntries returns live entries of one side in insertion order.
// Matching iterates the returned snapshot, so the book may be mutated
// while walking it.
func (b *Book) sideEntries(side domain.Side) []BookEntry {
	entries := make([]BookEntry, 0)
	for _, entry := range b.entries {
		if entry.Order.Side == side {
			entries = append(entries, entry)
		}
	}
	return entries
}

// HighestBuy returns the highest limit price among priced buy orders.
// Unpriced orders are ignored; ok is false when no priced buy exists,
// which is distinct from "no buy orders at all".
func (b *Book) HighestBuy() (int64, bool) {
	best, ok := b.bids.Min()
	return best.Price, ok
}

// LowestSell returns the lowest limit price among priced sell orders, or
// ok=false when no priced sell exists.
func (b *Book) LowestSell() (int64, bool) {
	best, ok := b.asks.Min()
	return best.Price, ok
}

// ClientFor returns the client id of the first stored entry whose order
// compares equal by value to the argument, or ok=false if absent.
func (b *Book) ClientFor(o domain.Order) (int, bool) {
	for _, entry := range b.entries {
		if entry.Order.Equal(o) {
			return entry.ClientID, true
		}
	}
	return 0, false
}

// Len returns the number of live orders on the book.
func (b *Book) Len() int {
	return len(b.entries)
}

// TopBids returns up to n aggregated price levels from the buy side,
// ordered by price descending. Unpriced orders are not represented.
func (b *Book) TopBids(n int) []PriceLevel {
	return topLevels(b.bids, n)
}

// TopAsks returns up to n aggregated price levels from the sell side,
// ordered by price ascending.
func (b *Book) TopAsks(n int) []PriceLevel {
	return topLevels(b.asks, n)
}

// topLevels iterates a side's B-tree in order and aggregates entries into
// at most n price levels.
func topLevels(tree *btree.BTreeG[priceEntry], n int) []PriceLevel {
	if n <= 0 {
		return nil
	}
	levels := make([]PriceLevel, 0, n)
	tree.Ascend(func(entry priceEntry) bool {
		if len(levels) > 0 && levels[len(levels)-1].Price == entry.Price {
			levels[len(levels)-1].TotalQuantity += entry.Quantity
			levels[len(levels)-1].OrderCount++
			return true
		}
		if len(levels) >= n {
			return false
		}
		levels = append(levels, PriceLevel{
			Price:         entry.Price,
			TotalQuantity: entry.Quantity,
			OrderCount:    1,
		})
		return true
	})
	return levels
}
