// Package types defines the data model shared by the book, queue, and
// sim packages: the value types that flow through a backtest — orders,
// trades, book snapshots, and market-data updates. It has no
// dependencies on internal packages, so it can be imported by any layer.
package types

import (
	"github.com/shopspring/decimal"
)

// ————————————————————————————————————————————————————————————————————————
// Side
// ————————————————————————————————————————————————————————————————————————

// Side is the direction of an order or the aggressor side of a trade print.
type Side int

const (
	BID Side = iota
	ASK
)

func (s Side) String() string {
	if s == BID {
		return "BID"
	}
	return "ASK"
}

// ExecutionTag distinguishes why a resting own order filled.
type ExecutionTag int

const (
	// BOOK: the quoted book moved through the order's price.
	BOOK ExecutionTag = iota
	// TRADE: an anonymous market-trade print swept through the order's price.
	TRADE
)

func (t ExecutionTag) String() string {
	if t == BOOK {
		return "BOOK"
	}
	return "TRADE"
}

// ————————————————————————————————————————————————————————————————————————
// Own orders
// ————————————————————————————————————————————————————————————————————————

// Order is a strategy-placed limit order. PlaceTS is the strategy's clock
// at the moment place_order was called; ExchangeTS is when it arrives at
// the exchange (PlaceTS + execution latency).
type Order struct {
	PlaceTS    int64
	ExchangeTS int64
	ID         uint64
	Side       Side
	Size       decimal.Decimal
	Price      float64
}

// CancelOrder requests that OrderID be pulled from the book once it
// arrives at the exchange at ExchangeTS.
type CancelOrder struct {
	ExchangeTS int64
	OrderID    uint64
}

// ————————————————————————————————————————————————————————————————————————
// Market data
// ————————————————————————————————————————————————————————————————————————

// PriceLevel is a single (price, size) resting level in a book snapshot.
type PriceLevel struct {
	Price float64
	Size  decimal.Decimal
}

// OrderBookSnapshot is a depth-N view of the replayed book at one instant.
// Asks are ascending by price, bids descending; level 0 on each side is
// the touch (best bid / best ask).
type OrderBookSnapshot struct {
	ExchangeTS int64
	ReceiveTS  int64
	Asks       []PriceLevel
	Bids       []PriceLevel
}

// AnonTrade is an anonymous market-trade print: someone lifted the
// opposite touch at Price for Size, aggressing as Side.
type AnonTrade struct {
	ExchangeTS int64
	ReceiveTS  int64
	Side       Side
	Size       decimal.Decimal
	Price      float64
}

// MdUpdate is a tagged union of exactly one of Snapshot or Trade. Exactly
// one must be non-nil; a value with neither (or an unrecognized Side on
// Trade) is malformed and is rejected by the simulator.
type MdUpdate struct {
	ExchangeTS int64
	ReceiveTS  int64
	Snapshot   *OrderBookSnapshot
	Trade      *AnonTrade
}

// ————————————————————————————————————————————————————————————————————————
// Own-trade executions
// ————————————————————————————————————————————————————————————————————————

// OwnTrade is an execution of one of our own orders. ReceiveTS is always
// ExchangeTS + md_latency, never earlier.
type OwnTrade struct {
	PlaceTS    int64
	ExchangeTS int64
	ReceiveTS  int64
	TradeID    uint64
	OrderID    uint64
	Side       Side
	Size       decimal.Decimal
	Price      float64
	Tag        ExecutionTag
}

// ————————————————————————————————————————————————————————————————————————
// Batch items
// ————————————————————————————————————————————————————————————————————————

// BatchItem is the element type of a tick() batch: either an MdUpdate or
// an OwnTrade, delivered to the strategy in insertion order. The marker
// method keeps the union closed to this package's two implementers.
type BatchItem interface {
	isBatchItem()
}

func (MdUpdate) isBatchItem() {}
func (OwnTrade) isBatchItem() {}
