package main

import (
	"math"

	"github.com/shopspring/decimal"

	"marketsim/internal/sim"
	"marketsim/pkg/types"
)

// fixedSpreadQuoter is a minimal reference strategy: once the touch is
// known, it keeps exactly one resting bid and one resting ask,
// quoteSpread away from the observed mid, replacing both whenever the
// mid drifts past requoteThreshold. It exists to drive the simulator
// end to end, not as a trading recommendation.
type fixedSpreadQuoter struct {
	engine           *sim.Simulator
	size             decimal.Decimal
	quoteSpread      float64
	requoteThreshold float64

	bidID, askID           uint64
	bidResting, askResting bool
	lastMid                float64
}

func newFixedSpreadQuoter(engine *sim.Simulator, size decimal.Decimal, quoteSpread, requoteThreshold float64) *fixedSpreadQuoter {
	return &fixedSpreadQuoter{
		engine:           engine,
		size:             size,
		quoteSpread:      quoteSpread,
		requoteThreshold: requoteThreshold,
		lastMid:          math.NaN(),
	}
}

// react inspects one delivered batch: it retires resting-order state
// for anything that just filled, then requotes around the current mid
// if the touch has moved enough to warrant it.
func (f *fixedSpreadQuoter) react(ts int64, batch []types.BatchItem) {
	for _, item := range batch {
		trade, ok := item.(types.OwnTrade)
		if !ok {
			continue
		}
		if trade.OrderID == f.bidID {
			f.bidResting = false
		}
		if trade.OrderID == f.askID {
			f.askResting = false
		}
	}

	bid, ask := f.engine.BestBid(), f.engine.BestAsk()
	if math.IsInf(bid, -1) || math.IsInf(ask, 1) {
		return // warm-up: touch not known yet
	}
	mid := (bid + ask) / 2
	if f.bidResting && f.askResting && math.Abs(mid-f.lastMid) < f.requoteThreshold {
		return
	}

	if f.bidResting {
		f.engine.CancelOrder(ts, f.bidID)
		f.bidResting = false
	}
	if f.askResting {
		f.engine.CancelOrder(ts, f.askID)
		f.askResting = false
	}

	bidOrder, err := f.engine.PlaceOrder(ts, types.BID, mid-f.quoteSpread, f.size)
	if err != nil {
		return
	}
	askOrder, err := f.engine.PlaceOrder(ts, types.ASK, mid+f.quoteSpread, f.size)
	if err != nil {
		return
	}
	f.bidID, f.askID = bidOrder.ID, askOrder.ID
	f.bidResting, f.askResting = true, true
	f.lastMid = mid
}

// restingCount reports how many of this strategy's own orders are
// currently resting in the book, for the risk monitor's resting-order
// cap.
func (f *fixedSpreadQuoter) restingCount() int {
	n := 0
	if f.bidResting {
		n++
	}
	if f.askResting {
		n++
	}
	return n
}
