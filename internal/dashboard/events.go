package dashboard

import (
	"time"

	"marketsim/pkg/types"
)

// Event is the envelope every message sent over the websocket is
// wrapped in: a type discriminator plus a wall-clock timestamp (of
// broadcast, not of the replayed event — Data carries the replay's own
// exchange_ts/receive_ts) and the payload itself.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// TickPayload mirrors one Simulator.Tick() batch: the receive
// timestamp the batch was delivered at, the resulting touch, and the
// items delivered in that batch (market data and/or own fills, in
// delivery order).
type TickPayload struct {
	ReceiveTS int64             `json:"receive_ts"`
	BestBid   float64           `json:"best_bid"`
	BestAsk   float64           `json:"best_ask"`
	Items     []types.BatchItem `json:"items"`
}

// RunStartedPayload announces a backtest run beginning.
type RunStartedPayload struct {
	RunID    string `json:"run_id"`
	FeedPath string `json:"feed_path"`
}

// RunFinishedPayload announces a backtest run's terminal summary.
type RunFinishedPayload struct {
	RunID         string `json:"run_id"`
	OwnTradeCount int    `json:"own_trade_count"`
	Violations    int    `json:"violations"`
}
