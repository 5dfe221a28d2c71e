// Package diff streams the divergences between two recorded I/O logs,
// pairing writes that reached the APU band during two otherwise-identical
// simulation runs.
package diff

import "github.com/thelolagemann/gbsdiff/internal/logbook"

// Generator is a pull iterator over two I/O logs. It holds no state
// beyond its two cursors, so it is cheap to construct and safe to
// abandon partway through.
type Generator struct {
	before []logbook.IoAccess
	after  []logbook.IoAccess
	i, j   int
	jitter uint16
}

// New returns a Generator pairing before against after. jitter bounds how
// large a cycle-offset between two otherwise-identical writes may be
// before it's reported at Error instead of Note.
func New(before, after []logbook.IoAccess, jitter uint16) *Generator {
	return &Generator{before: before, after: after, jitter: jitter}
}

func diagnostic(when logbook.Timestamp, pc logbook.Address, level logbook.Level, kind Kind) logbook.Diagnostic[Kind] {
	return logbook.Diagnostic[Kind]{When: when, PC: pc, Level: level, Kind: kind}
}

// Next produces the next diagnostic in the pairing, or (zero, false) once
// both logs are exhausted. Pairs that match exactly (address, data, cycle,
// and PC) are consumed silently; Next loops internally past them rather
// than returning an empty diagnostic.
func (g *Generator) Next() (logbook.Diagnostic[Kind], bool) {
	for {
		bDone := g.i >= len(g.before)
		aDone := g.j >= len(g.after)

		switch {
		case bDone && aDone:
			return logbook.Diagnostic[Kind]{}, false

		case bDone:
			a := g.after[g.j]
			g.j++
			return diagnostic(a.When, a.PC, logbook.Error, Added{Addr: a.Addr, Data: a.Data}), true

		case aDone:
			b := g.before[g.i]
			g.i++
			return diagnostic(b.When, b.PC, logbook.Error, Removed{Addr: b.Addr, Data: b.Data}), true
		}

		b := g.before[g.i]
		a := g.after[g.j]

		switch {
		case b.When.Tick < a.When.Tick:
			g.i++
			return diagnostic(b.When, b.PC, logbook.Error, Removed{Addr: b.Addr, Data: b.Data}), true

		case b.When.Tick > a.When.Tick:
			g.j++
			return diagnostic(a.When, a.PC, logbook.Error, Added{Addr: a.Addr, Data: a.Data}), true
		}

		// Equal ticks: align by content. Only a full IoAccess match (addr,
		// data, cycle, and PC) is silent; same addr/data/cycle reached from
		// a different PC still falls through to the timing-only branch
		// below, which reports it as Moved with a zero delta.
		if b.Addr == a.Addr && b.Data == a.Data && b.When.Cycle == a.When.Cycle && b.PC == a.PC {
			g.i++
			g.j++
			continue // the only silent path
		}

		addrEq := b.Addr == a.Addr
		dataEq := b.Data == a.Data

		switch {
		case addrEq && dataEq: // timing only
			delta := int32(a.When.Cycle) - int32(b.When.Cycle)
			abs := delta
			if abs < 0 {
				abs = -abs
			}
			level := logbook.Error
			if uint16(abs) < g.jitter {
				level = logbook.Note
			}
			g.i++
			g.j++
			return diagnostic(a.When, a.PC, level, Moved{Addr: a.Addr, Data: a.Data, Delta: delta}), true

		case addrEq && !dataEq:
			g.i++
			g.j++
			return diagnostic(a.When, a.PC, logbook.Error, OtherValue{Addr: a.Addr, Before: b.Data, After: a.Data}), true

		case !addrEq && dataEq:
			g.i++
			g.j++
			return diagnostic(a.When, a.PC, logbook.Error, OtherReg{BeforeAddr: b.Addr, Data: b.Data, AfterAddr: a.Addr}), true

		default:
			return g.lookahead(b, a), true
		}
	}
}

// lookahead resolves the (addr differs, data differs) case: it peeks one
// slot ahead in each log to see whether one side's write is simply
// spurious (its neighbour matches the other side's current write), and
// falls back to reporting whichever write is cycle-earlier.
func (g *Generator) lookahead(b, a logbook.IoAccess) logbook.Diagnostic[Kind] {
	if g.i+1 < len(g.before) && g.before[g.i+1].Addr == a.Addr {
		g.i++
		return diagnostic(b.When, b.PC, logbook.Error, Removed{Addr: b.Addr, Data: b.Data})
	}
	if g.j+1 < len(g.after) && g.after[g.j+1].Addr == b.Addr {
		g.j++
		return diagnostic(a.When, a.PC, logbook.Error, Added{Addr: a.Addr, Data: a.Data})
	}
	if b.When.Cycle < a.When.Cycle {
		g.i++
		return diagnostic(b.When, b.PC, logbook.Error, Removed{Addr: b.Addr, Data: b.Data})
	}
	g.j++
	return diagnostic(a.When, a.PC, logbook.Error, Added{Addr: a.Addr, Data: a.Data})
}
