// Package feed is the minimal on-disk market-data loader that makes
// cmd/backtest runnable end to end. It is intentionally thin: it
// carries none of the matching or latency logic — it only turns a
// JSON-lines file into the []types.MdUpdate slice the simulator's
// constructor expects, already in file order. ReceiveTS is left zero
// on every record: the simulator recomputes it from exchange_ts plus
// its own configured md latency and ignores whatever a feed supplies.
package feed

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"marketsim/pkg/types"
)

type priceLevelLine struct {
	Price float64         `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

type snapshotLine struct {
	Bids []priceLevelLine `json:"bids"`
	Asks []priceLevelLine `json:"asks"`
}

type tradeLine struct {
	Price float64         `json:"price"`
	Size  decimal.Decimal `json:"size"`
	Side  string          `json:"side"`
}

// updateLine is the on-disk shape of one market-data record: exactly
// one of Snapshot or Trade must be present, matching types.MdUpdate's
// tagged union.
type updateLine struct {
	ExchangeTS int64         `json:"exchange_ts"`
	Snapshot   *snapshotLine `json:"snapshot,omitempty"`
	Trade      *tradeLine    `json:"trade,omitempty"`
}

func parseSide(s string) (types.Side, error) {
	switch s {
	case "BID":
		return types.BID, nil
	case "ASK":
		return types.ASK, nil
	default:
		return 0, fmt.Errorf("unrecognized side %q", s)
	}
}

func levels(ls []priceLevelLine) []types.PriceLevel {
	if ls == nil {
		return nil
	}
	out := make([]types.PriceLevel, len(ls))
	for i, l := range ls {
		out[i] = types.PriceLevel{Price: l.Price, Size: l.Size}
	}
	return out
}

// Load reads a JSON-lines market-data file into an ordered slice of
// updates, ready for sim.New. It does not sort, validate monotonicity,
// or reorder — the simulator treats a misordered or malformed stream
// as the caller's problem.
func Load(path string) ([]types.MdUpdate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed file: %w", err)
	}
	defer f.Close()

	var updates []types.MdUpdate
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var l updateLine
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("feed line %d: %w", lineNo, err)
		}

		update := types.MdUpdate{ExchangeTS: l.ExchangeTS}
		switch {
		case l.Snapshot != nil:
			update.Snapshot = &types.OrderBookSnapshot{
				ExchangeTS: l.ExchangeTS,
				Bids:       levels(l.Snapshot.Bids),
				Asks:       levels(l.Snapshot.Asks),
			}
		case l.Trade != nil:
			side, err := parseSide(l.Trade.Side)
			if err != nil {
				return nil, fmt.Errorf("feed line %d: %w", lineNo, err)
			}
			update.Trade = &types.AnonTrade{
				ExchangeTS: l.ExchangeTS,
				Side:       side,
				Size:       l.Trade.Size,
				Price:      l.Trade.Price,
			}
		default:
			return nil, fmt.Errorf("feed line %d: neither snapshot nor trade present", lineNo)
		}
		updates = append(updates, update)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read feed file: %w", err)
	}
	return updates, nil
}
