// Package risk implements the backtest's invariant monitor: an
// observer that watches every tick and fill a replay produces and
// flags anything that should never happen — a crossed book, a receive
// timestamp that moved backwards, a fill whose latency came out
// negative, an implausibly wide quoted spread, or a resting-order count
// that suggests a strategy has stopped managing its own book. It never
// alters replay behavior; it only records violations for the run
// summary.
package risk

import (
	"container/list"
	"fmt"
	"log/slog"
	"math"

	"marketsim/internal/config"
	"marketsim/pkg/types"
)

// Violation is one invariant breach observed during a replay.
type Violation struct {
	ExchangeTS int64
	Kind       string
	Detail     string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s @ %d: %s", v.Kind, v.ExchangeTS, v.Detail)
}

type spreadPoint struct {
	ts        int64
	spreadBps float64
}

// Monitor accumulates violations across a single backtest run. Zero
// value is not usable; construct with NewMonitor.
type Monitor struct {
	cfg    config.RiskConfig
	logger *slog.Logger

	window  *list.List // of spreadPoint, oldest at Front, grounded on a bounded rolling-window idiom
	haveRcv bool
	lastRcv int64

	violations []Violation
}

// NewMonitor creates an invariant monitor.
func NewMonitor(cfg config.RiskConfig, logger *slog.Logger) *Monitor {
	return &Monitor{
		cfg:    cfg,
		logger: logger.With("component", "risk"),
		window: list.New(),
	}
}

// ObserveTick records one delivered batch's receive timestamp and the
// book state at the moment it was delivered. restingOrders is the
// total count of own orders currently resting in both ladders.
func (m *Monitor) ObserveTick(receiveTS int64, bestBid, bestAsk float64, restingOrders int) {
	if m.haveRcv && receiveTS < m.lastRcv {
		m.record(receiveTS, "receive_ts_regression", fmt.Sprintf("receive_ts %d < previous %d", receiveTS, m.lastRcv))
	}
	m.lastRcv = receiveTS
	m.haveRcv = true

	if !math.IsInf(bestBid, -1) && !math.IsInf(bestAsk, 1) {
		if bestBid >= bestAsk {
			m.record(receiveTS, "crossed_book", fmt.Sprintf("best_bid %v >= best_ask %v", bestBid, bestAsk))
		} else {
			mid := (bestBid + bestAsk) / 2
			spreadBps := (bestAsk - bestBid) / mid * 10000
			m.pushSpread(receiveTS, spreadBps)
			if mean := m.TrailingMeanSpreadBps(); mean > m.cfg.MaxSpreadBps {
				m.record(receiveTS, "spread_sanity", fmt.Sprintf("trailing mean spread %.2fbps exceeds %.2fbps", mean, m.cfg.MaxSpreadBps))
			}
		}
	}

	if restingOrders > m.cfg.MaxRestingOrders {
		m.record(receiveTS, "resting_order_cap", fmt.Sprintf("%d resting orders exceeds %d", restingOrders, m.cfg.MaxRestingOrders))
	}
}

// ObserveFill records one OwnTrade's latency. A negative latency
// (receive before exchange) can never happen legitimately: ReceiveTS
// is always ExchangeTS + md_latency, never earlier.
func (m *Monitor) ObserveFill(trade types.OwnTrade) {
	latency := trade.ReceiveTS - trade.ExchangeTS
	if latency < 0 {
		m.record(trade.ExchangeTS, "negative_fill_latency", fmt.Sprintf("order %d: receive_ts %d < exchange_ts %d", trade.OrderID, trade.ReceiveTS, trade.ExchangeTS))
	}
}

// pushSpread appends a spread sample and evicts everything older than
// cfg.SpreadWindow, measured in replay-clock nanoseconds (the receive
// timestamps passed to ObserveTick) rather than wall-clock time, since a
// backtest replays a recorded timeline.
func (m *Monitor) pushSpread(ts int64, spreadBps float64) {
	m.window.PushBack(spreadPoint{ts: ts, spreadBps: spreadBps})
	cutoff := ts - m.cfg.SpreadWindow.Nanoseconds()
	for e := m.window.Front(); e != nil; {
		next := e.Next()
		if e.Value.(spreadPoint).ts < cutoff {
			m.window.Remove(e)
		}
		e = next
	}
}

// TrailingMeanSpreadBps returns the mean quoted spread, in basis
// points, over the current rolling window.
func (m *Monitor) TrailingMeanSpreadBps() float64 {
	if m.window.Len() == 0 {
		return 0
	}
	var sum float64
	for e := m.window.Front(); e != nil; e = e.Next() {
		sum += e.Value.(spreadPoint).spreadBps
	}
	return sum / float64(m.window.Len())
}

func (m *Monitor) record(ts int64, kind, detail string) {
	v := Violation{ExchangeTS: ts, Kind: kind, Detail: detail}
	m.violations = append(m.violations, v)
	m.logger.Warn("invariant violation", "kind", kind, "exchange_ts", ts, "detail", detail)
}

// Violations returns every violation observed so far, in the order
// they were recorded.
func (m *Monitor) Violations() []Violation {
	return m.violations
}
