// Package sim drives a GBS header's LOAD/INIT/PLAY entry points against a
// cpu.Core and a memory.GbsAddrSpace, recording every audio I/O write and
// every protocol violation into a logbook.Logbook.
package sim

import (
	"github.com/thelolagemann/gbsdiff/internal/apu"
	"github.com/thelolagemann/gbsdiff/internal/cpu"
	"github.com/thelolagemann/gbsdiff/internal/gbs"
	"github.com/thelolagemann/gbsdiff/internal/logbook"
	"github.com/thelolagemann/gbsdiff/internal/memory"
)

// Simulate runs song songID of header to completion (or failure),
// returning the Logbook it produced.
func Simulate(header *gbs.Header, songID uint8, cfg Config) (*logbook.Logbook, error) {
	lb := &logbook.Logbook{}
	w := logbook.NewWriter(lb, cfg.MaxLevel)
	logger := cfg.logger()

	a := apu.New()
	bus := memory.New(header.ROM(), header.LoadAddr(), a, w)
	core := cpu.New()
	trace := traceFunc(cfg)

	logger.Debugf("song %d: INIT at $%04x, SP=$%04x", songID, header.InitAddr(), header.StackPtr())

	// INIT - tick 0.
	core.A = songID
	core.SP = header.StackPtr()
	core.PC = header.InitAddr()
	if _, err := runFrame(core, bus, w, trace); err != nil {
		logger.Errorf("song %d: INIT failed: %v", songID, err)
		return lb, err
	}

	cyclesPerTick := ticksPerFrame(header)
	timeoutRemaining := cfg.TimeoutCycles

	for {
		w.NextTick()
		core.SP = header.StackPtr()
		core.PC = header.PlayAddr()

		cycles, err := runFrame(core, bus, w, trace)
		if err != nil {
			logger.Errorf("song %d: PLAY failed on tick %d: %v", songID, w.Tick(), err)
			return lb, err
		}
		if uint32(cycles) > uint32(cyclesPerTick) {
			w.Diagnose(logbook.Warning, logbook.TooLong{Cycles: cycles, Budget: cyclesPerTick})
		}

		if uint32(a.SilenceTimer()) >= cfg.SilenceTimeoutCycles {
			logger.Debugf("song %d: stopped on silence at tick %d", songID, w.Tick())
			return lb, nil
		}
		a.AddCycles(uint32(cyclesPerTick))

		if cfg.Watch != nil && bus.Read(cfg.Watch.Addr) == cfg.Watch.Value {
			logger.Debugf("song %d: watch point $%04x=$%02x hit at tick %d", songID, cfg.Watch.Addr, cfg.Watch.Value, w.Tick())
			return lb, nil
		}

		if timeoutRemaining < uint32(cyclesPerTick) {
			if cfg.AllowTimeout {
				logger.Debugf("song %d: timed out at tick %d (allowed)", songID, w.Tick())
				return lb, nil
			}
			logger.Errorf("song %d: timed out at tick %d", songID, w.Tick())
			return lb, &Error{Kind: Timeout}
		}
		timeoutRemaining -= uint32(cyclesPerTick)
	}
}

// ticksPerFrame computes the cycles-per-tick pacing value: the configured
// timer cadence if the header opts into one, otherwise one video frame's
// worth of cycles (114 * 154).
func ticksPerFrame(header *gbs.Header) uint16 {
	if header.UseTimer() {
		return (uint16(1) << header.TimerDivBit()) * (256 - uint16(header.TimerMod()))
	}
	return 114 * 154
}
