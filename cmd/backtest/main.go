// Command backtest replays a recorded market-data feed through the
// discrete-event limit-order-book simulator and reports the fills of a
// simple reference strategy (trade count, total volume, net signed size).
//
//	main.go           — entry point: loads config, runs the replay loop, stops early on SIGINT/SIGTERM
//	internal/sim      — the simulator core: tick()/place_order()/cancel_order()
//	internal/feed     — JSON-lines market-data loader
//	internal/risk     — invariant monitor (crossed book, latency regressions, ...)
//	internal/store    — JSON file persistence for the run summary
//	internal/dashboard — optional live-replay websocket server
//
// The bundled strategy is a minimal fixed-spread market maker: it
// quotes a two-sided market a constant distance from the touch and
// re-quotes whenever the touch moves past a threshold. It exists to
// exercise the simulator end to end, not as a trading recommendation.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"marketsim/internal/config"
	"marketsim/internal/dashboard"
	"marketsim/internal/feed"
	"marketsim/internal/risk"
	"marketsim/internal/sim"
	"marketsim/internal/store"
	"marketsim/pkg/types"
)

func main() {
	cfgPath := "configs/config.yaml"
	if p := os.Getenv("BACKTEST_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)

	marketData, err := feed.Load(cfg.Feed.Path)
	if err != nil {
		logger.Error("failed to load feed", "error", err, "path", cfg.Feed.Path)
		os.Exit(1)
	}
	logger.Info("feed loaded", "path", cfg.Feed.Path, "updates", len(marketData))

	runID := uuid.NewString()

	st, err := store.Open(cfg.Store.DataDir)
	if err != nil {
		logger.Error("failed to open store", "error", err, "data_dir", cfg.Store.DataDir)
		os.Exit(1)
	}
	defer st.Close()

	monitor := risk.NewMonitor(cfg.Risk, logger)

	var dash *dashboard.Server
	if cfg.Dashboard.Enabled {
		dash = dashboard.NewServer(cfg.Dashboard, logger)
		go func() {
			if err := dash.Start(); err != nil {
				logger.Error("dashboard server failed", "error", err)
			}
		}()
		logger.Info("dashboard started", "url", fmt.Sprintf("http://localhost:%d", cfg.Dashboard.Port))
		dash.Hub().BroadcastRunStarted(dashboard.RunStartedPayload{RunID: runID, FeedPath: cfg.Feed.Path})
	}

	simCfg := sim.Config{
		ExecutionLatencyNanos: cfg.Sim.ExecutionLatencyNanos,
		CancelLatencyNanos:    cfg.Sim.CancelLatencyNanos,
		MdLatencyNanos:        cfg.Sim.MdLatencyNanos,
	}
	engine := sim.New(simCfg, marketData, logger)
	strat := newFixedSpreadQuoter(engine, decimal.NewFromInt(1), 0.01, 0.02)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	startedAt := time.Now()
	var firstExchTS, lastExchTS int64
	var haveFirst bool
	var ownTradeCount int
	var totalVolume, netSignedSize decimal.Decimal

runLoop:
	for {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal, stopping replay early", "signal", sig.String())
			break runLoop
		default:
		}

		receiveTS, batch, err := engine.Tick()
		if err != nil {
			break
		}

		// Every item in a batch was delivered md latency after its
		// exchange timestamp.
		exchTS := receiveTS - simCfg.MdLatencyNanos
		if !haveFirst {
			firstExchTS = exchTS
			haveFirst = true
		}
		lastExchTS = exchTS

		for _, item := range batch {
			switch v := item.(type) {
			case types.OwnTrade:
				ownTradeCount++
				totalVolume = totalVolume.Add(v.Size)
				if v.Side == types.ASK {
					netSignedSize = netSignedSize.Sub(v.Size)
				} else {
					netSignedSize = netSignedSize.Add(v.Size)
				}
				monitor.ObserveFill(v)
			}
		}

		monitor.ObserveTick(receiveTS, engine.BestBid(), engine.BestAsk(), strat.restingCount())
		strat.react(receiveTS, batch)

		if dash != nil {
			dash.Hub().BroadcastTick(dashboard.TickPayload{
				ReceiveTS: receiveTS,
				BestBid:   engine.BestBid(),
				BestAsk:   engine.BestAsk(),
				Items:     batch,
			})
		}
	}

	violations := monitor.Violations()
	violationDetails := make([]string, 0, len(violations))
	for _, v := range violations {
		violationDetails = append(violationDetails, v.String())
	}

	summary := store.RunSummary{
		RunID:         runID,
		FeedPath:      cfg.Feed.Path,
		StartedAt:     startedAt,
		FinishedAt:    time.Now(),
		FirstExchTS:   firstExchTS,
		LastExchTS:    lastExchTS,
		OwnTradeCount: ownTradeCount,
		TotalVolume:   totalVolume,
		NetSignedSize: netSignedSize,
		Violations:    violationDetails,
	}
	if err := st.Save(summary); err != nil {
		logger.Error("failed to save run summary", "error", err)
	}

	logger.Info("backtest finished",
		"run_id", runID,
		"own_trades", ownTradeCount,
		"violations", len(violations),
		"first_exchange_ts", firstExchTS,
		"last_exchange_ts", lastExchTS,
	)
	for _, v := range violations {
		logger.Warn("invariant violation", "violation", v.String())
	}

	if dash != nil {
		dash.Hub().BroadcastRunFinished(dashboard.RunFinishedPayload{
			RunID:         runID,
			OwnTradeCount: ownTradeCount,
			Violations:    len(violations),
		})
		if err := dash.Stop(); err != nil {
			logger.Error("failed to stop dashboard", "error", err)
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
