package logbook

// Writer is the single place that advances and reads the mutable state a
// simulation run stamps onto every record it produces: the current ROM
// bank, program counter, tick, and cycle. The address space, the simulator
// driver, and the call-frame interpreter all share one Writer for the
// duration of a song, so every logged record is consistent with the instruction that
// produced it.
type Writer struct {
	logbook  *Logbook
	maxLevel Level

	// RomBank is the currently-latched ROM bank (1 at reset). Mutated
	// directly by the address space on a bank-switch write.
	RomBank uint8
	// PC is the address of the instruction currently executing. Mutated
	// directly by the call-frame interpreter before each step.
	PC uint16

	tick  uint64
	cycle uint16
}

// NewWriter returns a Writer with rom_bank=1 and tick=cycle=0, as the spec
// requires.
func NewWriter(lb *Logbook, maxLevel Level) *Writer {
	return &Writer{logbook: lb, maxLevel: maxLevel, RomBank: 1}
}

// Now returns the current Timestamp.
func (w *Writer) Now() Timestamp {
	return Timestamp{Tick: w.tick, Cycle: w.cycle}
}

// Tick returns the current tick number (0 during INIT).
func (w *Writer) Tick() uint64 {
	return w.tick
}

// NextTick begins a new PLAY tick: tick advances, cycle resets to 0.
func (w *Writer) NextTick() {
	w.tick++
	w.cycle = 0
}

// AddCycles advances the within-tick cycle counter by n.
func (w *Writer) AddCycles(n uint16) {
	w.cycle += n
}

func (w *Writer) pc() Address {
	return Address{Bank: w.RomBank, Offset: w.PC}
}

// Log appends an I/O access stamped with the current timestamp and PC.
func (w *Writer) Log(addr uint16, data uint8) {
	w.logbook.IoLog = append(w.logbook.IoLog, IoAccess{
		When: w.Now(),
		PC:   w.pc(),
		Addr: addr,
		Data: data,
	})
}

// Diagnose appends a diagnostic stamped with the current timestamp and PC,
// if its level passes the configured threshold.
func (w *Writer) Diagnose(level Level, kind SimKind) {
	if level <= w.maxLevel {
		w.logbook.Diagnostics = append(w.logbook.Diagnostics, Diagnostic[SimKind]{
			When:  w.Now(),
			PC:    w.pc(),
			Level: level,
			Kind:  kind,
		})
	}
}
