// Package sim implements the discrete-event core: a single-threaded
// matching simulator that replays a recorded market-data stream
// against a strategy's own orders, merging three event sources (market
// data, pending own-order actions, and the strategy's pull queue) into
// one deterministic timeline.
package sim

import (
	"log/slog"
	"math"

	"github.com/shopspring/decimal"

	"marketsim/internal/book"
	"marketsim/internal/queue"
	"marketsim/pkg/types"
)

// Simulator is the discrete-event core. Zero value is not usable;
// construct with New.
type Simulator struct {
	cfg Config

	md      *queue.MdQueue
	actions *queue.ActionQueue
	updates *queue.TimedQueue

	bidLadder *book.Ladder
	askLadder *book.Ladder
	resting   map[uint64]types.Order // orders currently resting, by id

	bestBid float64
	bestAsk float64

	// tradePrice holds the most recent trade-print price keyed by
	// aggressor side, valid only for the md event currently being
	// processed; it is reset before every md advance.
	tradePrice    map[types.Side]float64
	tradePriceSet map[types.Side]bool

	lastMdTS int64 // exchange_ts of the most recently processed md event

	nextOrderID uint64
	nextTradeID uint64

	lastOrder *types.Order // holds the most recently placed order until it is resolved against the touch

	logger *slog.Logger
}

// New constructs a Simulator over a pre-ordered market-data stream.
// The stream must already be sorted by ExchangeTS; the simulator never
// reorders its input.
func New(cfg Config, marketData []types.MdUpdate, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		cfg:           cfg,
		md:            queue.NewMdQueue(marketData),
		actions:       queue.NewActionQueue(),
		updates:       queue.NewTimedQueue(),
		bidLadder:     book.New(),
		askLadder:     book.New(),
		resting:       make(map[uint64]types.Order),
		bestBid:       math.Inf(-1),
		bestAsk:       math.Inf(1),
		tradePrice:    make(map[types.Side]float64, 2),
		tradePriceSet: make(map[types.Side]bool, 2),
		logger:        logger.With("component", "sim"),
	}
}

// BestBid and BestAsk expose the current quoted touch, ±∞ sentinels
// before the first snapshot arrives.
func (s *Simulator) BestBid() float64 { return s.bestBid }
func (s *Simulator) BestAsk() float64 { return s.bestAsk }

// PlaceOrder queues a limit order for arrival at the exchange at
// ts + execution latency. ts is the strategy's own clock at the
// moment of the call. Returns the constructed Order (with its
// assigned id) so the strategy can track it for a later cancel.
func (s *Simulator) PlaceOrder(ts int64, side types.Side, price float64, size decimal.Decimal) (types.Order, error) {
	if size.IsZero() || size.IsNegative() {
		return types.Order{}, ErrInvalidOrder
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return types.Order{}, ErrInvalidOrder
	}

	id := s.nextOrderID
	s.nextOrderID++

	o := types.Order{
		PlaceTS:    ts,
		ExchangeTS: ts + s.cfg.ExecutionLatencyNanos,
		ID:         id,
		Side:       side,
		Size:       size,
		Price:      price,
	}
	s.actions.Push(queue.NewOrderAction(o))
	s.logger.Debug("order placed", "id", id, "side", side, "price", price, "exchange_ts", o.ExchangeTS)
	return o, nil
}

// CancelOrder queues a cancel request for arrival at the exchange at
// ts + cancel latency. Cancelling an id that never existed, or that
// already executed or was already cancelled, is a no-op at execution
// time.
func (s *Simulator) CancelOrder(ts int64, orderID uint64) {
	c := types.CancelOrder{
		ExchangeTS: ts + s.cfg.cancelLatency(),
		OrderID:    orderID,
	}
	s.actions.Push(queue.NewCancelAction(c))
	s.logger.Debug("cancel requested", "order_id", orderID, "exchange_ts", c.ExchangeTS)
}

// Tick drains the market-data and action queues up to the next pending
// strategy delivery, applying every md advance and action in
// timestamp order (market data first on a tie), and returns the next
// batch the strategy should see. Returns ErrEndOfStream once market
// data, actions, and pending deliveries are all exhausted.
func (s *Simulator) Tick() (int64, []types.BatchItem, error) {
	for {
		tMd := s.md.Peek()
		tAct := s.actions.Peek()
		if tMd == queue.InfTS && tAct == queue.InfTS {
			break
		}

		next := tMd
		if tAct < next {
			next = tAct
		}
		if tStrat := s.updates.Peek(); tStrat < next {
			break
		}

		if tMd <= tAct {
			u := s.md.Pop()
			if err := s.applyMdUpdate(u); err != nil {
				return 0, nil, err
			}
		} else {
			a := s.actions.Pop()
			s.applyAction(a)
			s.executeLastOrder()
		}
	}

	if s.updates.Empty() {
		return 0, nil, ErrEndOfStream
	}
	ts, batch := s.updates.Pop()
	return ts, batch, nil
}

func (s *Simulator) applyAction(a queue.Action) {
	if o, ok := queue.AsOrder(a); ok {
		s.lastOrder = &o
		return
	}
	if c, ok := queue.AsCancel(a); ok {
		s.cancelResting(c.OrderID)
	}
}

func (s *Simulator) cancelResting(id uint64) {
	if _, ok := s.resting[id]; !ok {
		return
	}
	delete(s.resting, id)
	s.bidLadder.Erase(id)
	s.askLadder.Erase(id)
}

// executeLastOrder resolves the staged order against the current
// touch: an immediate fill if it crosses, otherwise it rests in the
// appropriate ladder. A fill here still reuses the most recently
// processed market-data event's exchange_ts for the resulting trade's
// ExchangeTS, even though the fill itself was triggered by an action
// rather than a fresh market-data event — the replay clock only moves
// on market data.
func (s *Simulator) executeLastOrder() {
	if s.lastOrder == nil {
		return
	}
	o := *s.lastOrder
	s.lastOrder = nil

	var executedPrice float64
	var crossed bool
	switch o.Side {
	case types.BID:
		if o.Price >= s.bestAsk {
			executedPrice, crossed = Min(o.Price, s.bestAsk), true
		}
	case types.ASK:
		if o.Price <= s.bestBid {
			executedPrice, crossed = Max(o.Price, s.bestBid), true
		}
	}

	if !crossed {
		s.resting[o.ID] = o
		switch o.Side {
		case types.BID:
			s.bidLadder.Insert(o.ID, o.Price)
		case types.ASK:
			s.askLadder.Insert(o.ID, o.Price)
		}
		return
	}

	s.emitFill(o, executedPrice, types.BOOK)
}

// applyMdUpdate validates and applies one market-data event: updates
// the touch (or the implied side of the touch, for a trade print),
// enqueues the raw update for strategy delivery at
// exchange_ts + md_latency, and runs the book-matching pass.
func (s *Simulator) applyMdUpdate(u types.MdUpdate) error {
	if (u.Snapshot == nil) == (u.Trade == nil) {
		return ErrMalformedUpdate
	}

	s.lastMdTS = u.ExchangeTS
	s.tradePriceSet[types.BID] = false
	s.tradePriceSet[types.ASK] = false

	switch {
	case u.Snapshot != nil:
		if len(u.Snapshot.Bids) == 0 || len(u.Snapshot.Asks) == 0 {
			return ErrMalformedUpdate
		}
		s.bestBid = u.Snapshot.Bids[0].Price
		s.bestAsk = u.Snapshot.Asks[0].Price
	case u.Trade != nil:
		switch u.Trade.Side {
		case types.BID:
			s.bestAsk = u.Trade.Price
		case types.ASK:
			s.bestBid = u.Trade.Price
		default:
			return ErrMalformedUpdate
		}
		s.tradePrice[u.Trade.Side] = u.Trade.Price
		s.tradePriceSet[u.Trade.Side] = true
	}

	deliverTS := u.ExchangeTS + s.cfg.MdLatencyNanos
	u.ReceiveTS = deliverTS
	s.updates.Push(deliverTS, u)

	s.matchBook()
	return nil
}

// matchBook runs the book-matching pass: every resting order whose
// price the touch just moved through fills with tag BOOK, then every
// resting order a trade print just swept through fills with tag TRADE.
// The two passes apply in that order, mutating the ladders between
// them, so an order qualifying under both conditions fills once,
// tagged BOOK, rather than twice.
func (s *Simulator) matchBook() {
	bidBook := s.bidLadder.IDsGE(s.bestAsk)
	askBook := s.askLadder.IDsLE(s.bestBid)
	for _, id := range bidBook {
		s.executeResting(id, types.BOOK)
	}
	for _, id := range askBook {
		s.executeResting(id, types.BOOK)
	}

	if s.tradePriceSet[types.ASK] {
		price := s.tradePrice[types.ASK]
		for _, id := range s.bidLadder.IDsGE(price) {
			s.executeResting(id, types.TRADE)
		}
	}
	if s.tradePriceSet[types.BID] {
		price := s.tradePrice[types.BID]
		for _, id := range s.askLadder.IDsLE(price) {
			s.executeResting(id, types.TRADE)
		}
	}
}

func (s *Simulator) executeResting(id uint64, tag types.ExecutionTag) {
	o, ok := s.resting[id]
	if !ok {
		return
	}
	delete(s.resting, id)
	s.bidLadder.Erase(id)
	s.askLadder.Erase(id)
	s.emitFill(o, o.Price, tag)
}

// Min and Max clamp a crossing execution to the better of the order's
// own limit price and the touch it crossed.
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func (s *Simulator) emitFill(o types.Order, price float64, tag types.ExecutionTag) {
	trade := types.OwnTrade{
		PlaceTS:    o.PlaceTS,
		ExchangeTS: s.lastMdTS,
		ReceiveTS:  s.lastMdTS + s.cfg.MdLatencyNanos,
		TradeID:    s.nextTradeID,
		OrderID:    o.ID,
		Side:       o.Side,
		Size:       o.Size,
		Price:      price,
		Tag:        tag,
	}
	s.nextTradeID++
	s.updates.Push(trade.ReceiveTS, trade)
	s.logger.Debug("own trade", "order_id", o.ID, "trade_id", trade.TradeID, "tag", tag, "price", price)
}
