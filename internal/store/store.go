// Package store provides crash-safe run-summary persistence using JSON
// files.
//
// Each backtest run is stored as a separate file: run_<runID>.json.
// Writes use atomic file replacement (write to .tmp, then rename) to
// prevent corruption from partial writes or crashes mid-save.
// cmd/backtest calls Save once the replay finishes, and Load can be
// used to inspect a prior run's summary.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// RunSummary is what a backtest leaves behind: enough to audit what
// was replayed and what the strategy did, without re-running anything.
// It totals execution volume and any invariant violations the monitor
// raised; profit-and-loss accounting belongs to the strategy itself.
type RunSummary struct {
	RunID         string          `json:"run_id"`
	FeedPath      string          `json:"feed_path"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
	FirstExchTS   int64           `json:"first_exchange_ts"`
	LastExchTS    int64           `json:"last_exchange_ts"`
	OwnTradeCount int             `json:"own_trade_count"`
	TotalVolume   decimal.Decimal `json:"total_volume"`
	NetSignedSize decimal.Decimal `json:"net_signed_size"`
	Violations    []string        `json:"violations,omitempty"`
}

// Store persists run summaries to JSON files in a designated directory.
// All operations are mutex-protected to prevent concurrent file corruption.
type Store struct {
	dir string     // directory containing run_*.json files
	mu  sync.Mutex // serializes all file operations
}

// Open creates a store backed by the given directory.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Close is a no-op for file-based storage.
func (s *Store) Close() error {
	return nil
}

// Save atomically persists a run's summary.
// It writes to a .tmp file first, then renames over the target to
// ensure the file is never left in a partial state (crash-safe).
func (s *Store) Save(summary RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}

	path := s.path(summary.RunID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load restores a run's summary from disk.
// Returns nil, nil if no saved summary exists for runID.
func (s *Store) Load(runID string) (*RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read run summary: %w", err)
	}

	var summary RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("unmarshal run summary: %w", err)
	}
	return &summary, nil
}

func (s *Store) path(runID string) string {
	return filepath.Join(s.dir, "run_"+runID+".json")
}
