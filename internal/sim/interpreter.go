package sim

import (
	"fmt"

	"github.com/thelolagemann/gbsdiff/internal/cpu"
	"github.com/thelolagemann/gbsdiff/internal/logbook"
	"github.com/thelolagemann/gbsdiff/internal/memory"
)

// ioWindowStart and ioWindowEnd bound the region a haywire PC or SP is
// never expected to land in - it signals a driver that has run off the
// end of its own stack frame or jumped into register space.
const (
	ioWindowStart = 0xFF00
	ioWindowEnd   = 0xFF7F
)

// runFrame steps core until the call frame established at entry (with
// stack pointer orig_sp) unwinds, logging every step's PC through w.
// It returns the total cycle cost of the frame, or a *Error describing
// why the driver's call frame never unwound cleanly.
func runFrame(core *cpu.Core, bus memory.AddressSpace, w *logbook.Writer, trace func(*cpu.Core)) (uint16, error) {
	origSP := core.SP
	var totalCycles uint32

	for {
		if core.PC >= ioWindowStart && core.PC <= ioWindowEnd {
			return 0, &Error{Kind: PcHaywire, PC: core.PC}
		}
		if core.SP >= ioWindowStart && core.SP <= ioWindowEnd {
			return 0, &Error{Kind: SpHaywire, SP: core.SP}
		}

		prevBank, prevPC := w.RomBank, core.PC
		w.PC = core.PC

		if trace != nil {
			trace(core)
		}

		outcome := core.Tick(bus)
		delta := uint16(core.CyclesElapsed)
		core.CyclesElapsed = 0

		switch outcome {
		case cpu.Debug, cpu.Break:
			w.Diagnose(logbook.Note, logbook.DebugOp{Addr: prevPC})
		case cpu.Halt:
			return 0, &Error{Kind: Halted, Bank: prevBank, PC: prevPC}
		case cpu.Stop:
			return 0, &Error{Kind: Stopped, Bank: prevBank, PC: prevPC}
		case cpu.InvalidOpcode:
			return 0, &Error{Kind: InvalidOpcode, Opcode: bus.Read(prevPC), Bank: prevBank, PC: prevPC}
		}

		if uint32(totalCycles)+uint32(delta) > 0xFFFF {
			return 0, &Error{Kind: LockedUp}
		}
		totalCycles += uint32(delta)
		w.AddCycles(delta)

		if !(core.SP >= 0x8000 && core.SP <= origSP) {
			break
		}
	}

	if core.SP != origSP+2 {
		return 0, &Error{Kind: PoppedTooDeep, SP: core.SP, OrigSP: origSP}
	}
	return uint16(totalCycles), nil
}

// traceFunc renders a register dump for cfg.Trace, if set.
func traceFunc(cfg Config) func(*cpu.Core) {
	if cfg.Trace == nil {
		return nil
	}
	return func(c *cpu.Core) {
		fmt.Fprintf(cfg.Trace, "A:%02x F:%02x B:%02x C:%02x D:%02x E:%02x H:%02x L:%02x SP:%04x PC:%04x\n",
			c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L, c.SP, c.PC)
	}
}
