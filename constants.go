package rtcos

import "github.com/kaizoku-oh/rtcos/internal/constants"

// Re-exported sizing defaults, mirroring the RTCOS_MAX_* compile-time
// defaults of the original port configuration.
const (
	DefaultMaxTasks        = constants.DefaultMaxTasks
	DefaultMaxFutureEvents = constants.DefaultMaxFutureEvents
	DefaultMaxMessages     = constants.DefaultMaxMessages
	DefaultMaxTimers       = constants.DefaultMaxTimers
)
