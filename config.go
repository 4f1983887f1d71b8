package rtcos

import (
	"github.com/kaizoku-oh/rtcos/internal/constants"
	"github.com/kaizoku-oh/rtcos/internal/critsec"
	"github.com/kaizoku-oh/rtcos/internal/logging"
)

// Config holds the parameters needed to construct a System. Table sizes
// are fixed for the lifetime of the System; there is no dynamic growth,
// matching the fixed-memory-footprint design of the original scheduler.
type Config struct {
	// MaxTasks bounds how many task handlers can be registered. 0 uses
	// constants.DefaultMaxTasks.
	MaxTasks int

	// MaxFutureEvents bounds how many deferred event deliveries can be
	// armed simultaneously. 0 uses constants.DefaultMaxFutureEvents.
	MaxFutureEvents int

	// MaxMessages bounds the depth of each task's mailbox. 0 uses
	// constants.DefaultMaxMessages.
	MaxMessages int

	// MaxTimers bounds how many software timers can be created. 0 uses
	// constants.DefaultMaxTimers.
	MaxTimers int

	// CriticalSection is the port-supplied mutual exclusion primitive
	// guarding shared scheduler state. A nil value uses critsec.NoOp,
	// which is only safe for single-goroutine use (e.g. tests).
	CriticalSection critsec.Section

	// Logger receives diagnostic output. A nil value uses
	// logging.Default().
	Logger *logging.Logger
}

// DefaultConfig returns a Config sized for typical single-goroutine use
// with a reentrant critical section, matching what a bare-metal port
// would configure for a single interrupt-disable region.
func DefaultConfig() Config {
	return Config{
		MaxTasks:        constants.DefaultMaxTasks,
		MaxFutureEvents: constants.DefaultMaxFutureEvents,
		MaxMessages:     constants.DefaultMaxMessages,
		MaxTimers:       constants.DefaultMaxTimers,
		CriticalSection: critsec.NewRecursive(),
		Logger:          logging.Default(),
	}
}

func (c Config) withDefaults() Config {
	if c.MaxTasks <= 0 {
		c.MaxTasks = constants.DefaultMaxTasks
	}
	if c.MaxFutureEvents <= 0 {
		c.MaxFutureEvents = constants.DefaultMaxFutureEvents
	}
	if c.MaxMessages <= 0 {
		c.MaxMessages = constants.DefaultMaxMessages
	}
	if c.MaxTimers <= 0 {
		c.MaxTimers = constants.DefaultMaxTimers
	}
	if c.CriticalSection == nil {
		c.CriticalSection = &critsec.NoOp{}
	}
	if c.Logger == nil {
		c.Logger = logging.Default()
	}
	return c
}
