// Package apu models just enough of the Game Boy's audio unit to answer
// reads and writes against its 21 registers and wave RAM. It does not
// synthesise audio; it exists so the address space has somewhere
// authentic to delegate the 0xFF00-0xFF7F band to, and so writes to it
// show up in the logbook's I/O log.
package apu

import "github.com/thelolagemann/gbsdiff/internal/types"

const numRegisters = 0xFF26 - 0xFF10 + 1 // NR10..NR52 inclusive

// APU holds the raw register bytes and wave RAM. Read-back masking is
// applied on read; writes always store the raw byte.
type APU struct {
	regs     [numRegisters]uint8
	waveRAM  [16]byte
	silence  uint32 // cycles since the last register write
}

// New returns an APU with all registers and wave RAM zeroed.
func New() *APU {
	return &APU{}
}

// SilenceTimer returns the number of cycles elapsed since the last write
// to any register or to wave RAM.
func (a *APU) SilenceTimer() uint32 { return a.silence }

// AddCycles advances the silence timer. The simulator driver calls this
// once per tick with the tick's cycle budget; Write resets it to 0.
func (a *APU) AddCycles(n uint32) { a.silence += n }

// Read returns the byte at addr and true if addr falls within the APU's
// register or wave RAM window, or (0, false) if it does not - in which
// case the caller (the address space) is responsible for the diagnostic.
func (a *APU) Read(addr uint16) (uint8, bool) {
	if addr >= types.WaveRAMStart && addr <= types.WaveRAMEnd {
		return a.waveRAM[addr-types.WaveRAMStart], true
	}
	if addr < types.APUBandStart || addr > types.NR52 {
		return 0, false
	}
	if types.IsHole(addr) {
		return 0xFF, true
	}

	raw := a.regs[addr-types.APUBandStart]
	switch addr {
	case types.NR10:
		return raw | 0x80, true
	case types.NR11:
		return raw | 0x3F, true
	case types.NR13, types.NR23, types.NR33, types.NR43:
		return 0xFF, true
	case types.NR14, types.NR24, types.NR34, types.NR44:
		return raw | 0xBF, true
	case types.NR21:
		return raw | 0x3F, true
	case types.NR30:
		return raw | 0x7F, true
	case types.NR41:
		return raw | 0xC0, true
	case types.NR52:
		return raw | 0x70, true
	default:
		return raw, true
	}
}

// Write stores value at addr and resets the silence timer, returning true
// if addr fell within the APU's window. It never masks on write.
func (a *APU) Write(addr uint16, value uint8) bool {
	if addr >= types.WaveRAMStart && addr <= types.WaveRAMEnd {
		a.waveRAM[addr-types.WaveRAMStart] = value
		a.silence = 0
		return true
	}
	if addr < types.APUBandStart || addr > types.NR52 {
		return false
	}
	a.regs[addr-types.APUBandStart] = value
	a.silence = 0
	return true
}

// IsUndefinedHole reports whether addr is one of the two undocumented
// addresses inside the register window, for which the address space logs
// a Note rather than the usual silent pass-through.
func IsUndefinedHole(addr uint16) bool {
	return types.IsHole(addr)
}
