// Command rtcsim runs the canonical ping-pong scheduler demo on a
// hosted clock, driven by a scenario file instead of real hardware
// ticks. It exists to let the scheduler core be exercised and watched
// without a target board.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kaizoku-oh/rtcos"
	"github.com/kaizoku-oh/rtcos/examples/pingpong"
	"github.com/kaizoku-oh/rtcos/host"
	"github.com/kaizoku-oh/rtcos/internal/critsec"
	"github.com/kaizoku-oh/rtcos/internal/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a scenario TOML file (optional)")
		verbose    = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	scenario := DefaultScenario()
	if *configPath != "" {
		loaded, err := LoadScenario(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rtcsim: loading scenario: %v\n", err)
			os.Exit(1)
		}
		scenario = loaded
	}

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	if scenario.CPUPin != nil {
		if err := host.PinCurrentThread(*scenario.CPUPin); err != nil {
			logger.Warnf("cpu pin failed: %v", err)
		} else {
			defer host.UnpinCurrentThread()
		}
	}

	// tickLoop drives sys.Tick() from its own goroutine while pingpong.Run
	// dispatches on this one; a recursive critical section is required so
	// those two goroutines don't race on task/mailbox/tick state.
	sys := rtcos.New(rtcos.Config{
		MaxTasks:        scenario.MaxTasks,
		MaxFutureEvents: scenario.MaxFutureEvents,
		MaxMessages:     scenario.MaxMessages,
		MaxTimers:       scenario.MaxTimers,
		CriticalSection: critsec.NewRecursive(),
		Logger:          logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if scenario.DurationTicks > 0 {
		budget := time.Duration(scenario.DurationTicks) * time.Duration(scenario.TickIntervalMS) * time.Millisecond
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Infof("received shutdown signal")
		cancel()
	}()

	go tickLoop(ctx, sys, time.Duration(scenario.TickIntervalMS)*time.Millisecond)

	logger.Infof("starting simulation: tick_interval=%dms tasks=%d", scenario.TickIntervalMS, scenario.MaxTasks)
	if err := pingpong.Run(ctx, sys, nil); err != nil {
		logger.Errorf("simulation failed: %v", err)
		os.Exit(1)
	}

	snap := sys.Metrics.Snapshot()
	fmt.Printf("ticks=%d dispatches=%d events_sent=%d idle_runs=%d\n",
		snap.Ticks, snap.Dispatches, snap.EventsSent, snap.IdleRuns)
}

// tickLoop stands in for the hardware tick ISR, advancing the
// scheduler's clock at a fixed wall-clock interval until ctx is done.
func tickLoop(ctx context.Context, sys *rtcos.System, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sys.Tick()
		}
	}
}
