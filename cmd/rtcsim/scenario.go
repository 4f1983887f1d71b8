package main

import "github.com/BurntSushi/toml"

// Scenario describes a simulated run: how big the scheduler's tables
// are and how fast the simulated tick source advances.
type Scenario struct {
	TickIntervalMS int    `toml:"tick_interval_ms"`
	DurationTicks  uint32 `toml:"duration_ticks"`

	MaxTasks        int `toml:"max_tasks"`
	MaxFutureEvents int `toml:"max_future_events"`
	MaxMessages     int `toml:"max_messages"`
	MaxTimers       int `toml:"max_timers"`

	CPUPin *int `toml:"cpu_pin"`
}

// DefaultScenario mirrors the sizing the canonical ping-pong demo needs:
// two tasks, a couple of spare future-event and timer slots, and a tick
// fast enough to be interactive but slow enough to read in a terminal.
func DefaultScenario() Scenario {
	return Scenario{
		TickIntervalMS:  100,
		DurationTicks:   0, // 0 means run until interrupted
		MaxTasks:        4,
		MaxFutureEvents: 4,
		MaxMessages:     4,
		MaxTimers:       4,
	}
}

// LoadScenario reads a TOML scenario file, starting from DefaultScenario
// so unset fields keep their sensible defaults.
func LoadScenario(path string) (Scenario, error) {
	s := DefaultScenario()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Scenario{}, err
	}
	return s, nil
}
