// Package cpu models the subset of the Sharp SM83 instruction set a GBS
// sound driver plausibly executes: loads, arithmetic, control flow, stack
// operations, and I/O writes. It is not a cycle-exact, complete
// implementation - see doc.go for why that is a deliberate boundary, not
// an oversight.
package cpu

import (
	"github.com/thelolagemann/gbsdiff/internal/memory"
	"github.com/thelolagemann/gbsdiff/internal/types"
	"github.com/thelolagemann/gbsdiff/pkg/utils"
)

// Outcome is the result of stepping one instruction.
type Outcome int

const (
	// Ok means the instruction executed normally.
	Ok Outcome = iota
	// Debug means the instruction was a debug marker (0xED); the caller
	// may choose to treat this as a breakpoint.
	Debug
	// Break means the CPU hit a conventional breakpoint opcode (LD B,B).
	Break
	// Halt means the CPU executed HALT.
	Halt
	// Stop means the CPU executed STOP.
	Stop
	// InvalidOpcode means the opcode is not modelled by this Core.
	InvalidOpcode
)

func (o Outcome) String() string {
	switch o {
	case Ok:
		return "Ok"
	case Debug:
		return "Debug"
	case Break:
		return "Break"
	case Halt:
		return "Halt"
	case Stop:
		return "Stop"
	case InvalidOpcode:
		return "InvalidOpcode"
	default:
		return "Unknown"
	}
}

// flag bit masks within the F register. The lower 4 bits of F are always
// zero on real hardware; Core never sets them.
const (
	flagZ = types.Bit7
	flagN = types.Bit6
	flagH = types.Bit5
	flagC = types.Bit4
)

// Core holds the SM83 register file. CyclesElapsed accumulates the cycle
// cost of every Tick call since the caller last zeroed it - the
// call-frame interpreter in internal/sim reads and resets it after every
// step.
type Core struct {
	A, B, C, D, E, H, L, F uint8
	SP, PC                 uint16

	CyclesElapsed uint32
}

// New returns a zeroed Core. The caller is responsible for setting PC and
// SP before the first Tick - LOAD/INIT/PLAY each do this explicitly.
func New() *Core {
	return &Core{}
}

func (c *Core) setFlag(bit types.Bit, set bool) {
	if set {
		c.F = types.SetBit(c.F, bit)
	} else {
		c.F = types.ResetBit(c.F, bit)
	}
}

func (c *Core) flag(bit types.Bit) bool {
	return types.TestBit(c.F, bit)
}

func (c *Core) bc() uint16 { return utils.BytesToUint16(c.B, c.C) }
func (c *Core) de() uint16 { return utils.BytesToUint16(c.D, c.E) }
func (c *Core) hl() uint16 { return utils.BytesToUint16(c.H, c.L) }
func (c *Core) af() uint16 { return utils.BytesToUint16(c.A, c.F) }

func (c *Core) setBC(v uint16) { c.B, c.C = utils.Uint16ToBytes(v) }
func (c *Core) setDE(v uint16) { c.D, c.E = utils.Uint16ToBytes(v) }
func (c *Core) setHL(v uint16) { c.H, c.L = utils.Uint16ToBytes(v) }
func (c *Core) setAF(v uint16) {
	hi, lo := utils.Uint16ToBytes(v)
	c.A, c.F = hi, lo&types.CombineMasks(types.Mask0, types.Mask1, types.Mask2, types.Mask3)
}

// tick adds n cycles to CyclesElapsed.
func (c *Core) tick(n uint32) {
	c.CyclesElapsed += n
}

// fetch8 reads the byte at PC and advances PC.
func (c *Core) fetch8(bus memory.AddressSpace) uint8 {
	v := bus.Read(c.PC)
	c.PC++
	return v
}

// fetch16 reads a little-endian word at PC and advances PC by two.
func (c *Core) fetch16(bus memory.AddressSpace) uint16 {
	lo := c.fetch8(bus)
	hi := c.fetch8(bus)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *Core) push16(bus memory.AddressSpace, v uint16) {
	c.SP--
	bus.Write(c.SP, uint8(v>>8))
	c.SP--
	bus.Write(c.SP, uint8(v))
}

func (c *Core) pop16(bus memory.AddressSpace) uint16 {
	lo := bus.Read(c.SP)
	c.SP++
	hi := bus.Read(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}
