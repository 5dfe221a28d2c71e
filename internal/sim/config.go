package sim

import (
	"io"

	"github.com/thelolagemann/gbsdiff/internal/logbook"
	"github.com/thelolagemann/gbsdiff/pkg/log"
)

// WatchPoint stops a simulation successfully once the byte at Addr reads
// back as Value.
type WatchPoint struct {
	Addr  uint16
	Value uint8
}

// Config controls one Simulate call. Jitter is threaded through only
// because the CLI parses it once for both sides of a comparison; Simulate
// itself never reads it - it is consumed by internal/diff.
type Config struct {
	MaxLevel             logbook.Level
	TimeoutCycles        uint32
	AllowTimeout         bool
	SilenceTimeoutCycles uint32
	Watch                *WatchPoint
	Jitter               uint16

	// Trace, if non-nil, receives a human-readable register dump before
	// every call-frame step. Purely a debugging aid; costs nothing when
	// nil.
	Trace io.Writer

	// Logger receives operational messages about why a run ended. Unset
	// means a null logger - Simulate never requires one.
	Logger log.Logger
}

func (c Config) logger() log.Logger {
	if c.Logger == nil {
		return log.NewNullLogger()
	}
	return c.Logger
}
