package cpu

import "github.com/thelolagemann/gbsdiff/internal/memory"

// readR8 reads an 8-bit operand by its standard SM83 3-bit encoding:
// 0=B 1=C 2=D 3=E 4=H 5=L 6=(HL) 7=A.
func (c *Core) readR8(bus memory.AddressSpace, idx uint8) uint8 {
	switch idx {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return bus.Read(c.hl())
	default:
		return c.A
	}
}

func (c *Core) writeR8(bus memory.AddressSpace, idx uint8, v uint8) {
	switch idx {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		bus.Write(c.hl(), v)
	default:
		c.A = v
	}
}

// execLD8 handles the 0x40-0x7F block of LD r,r' instructions (0x76 is
// HALT and is intercepted before this is called).
func (c *Core) execLD8(bus memory.AddressSpace, op uint8) {
	dst := (op >> 3) & 0x7
	src := op & 0x7
	v := c.readR8(bus, src)
	c.writeR8(bus, dst, v)
	if dst == 6 || src == 6 {
		c.tick(8)
	} else {
		c.tick(4)
	}
}

// execLDImm8 handles LD r,n and LD (HL),n.
func (c *Core) execLDImm8(bus memory.AddressSpace, op uint8) {
	dst := (op >> 3) & 0x7
	n := c.fetch8(bus)
	c.writeR8(bus, dst, n)
	if dst == 6 {
		c.tick(12)
	} else {
		c.tick(8)
	}
}

// execLDImm16 handles LD BC/DE/HL/SP,nn.
func (c *Core) execLDImm16(bus memory.AddressSpace, op uint8) {
	nn := c.fetch16(bus)
	switch (op >> 4) & 0x3 {
	case 0:
		c.setBC(nn)
	case 1:
		c.setDE(nn)
	case 2:
		c.setHL(nn)
	case 3:
		c.SP = nn
	}
	c.tick(12)
}

// pairByPushIndex resolves the rr field of PUSH/POP, which uses AF in
// place of SP (index 3).
func (c *Core) pairByPushIndex(idx uint8) uint16 {
	switch idx {
	case 0:
		return c.bc()
	case 1:
		return c.de()
	case 2:
		return c.hl()
	default:
		return c.af()
	}
}

func (c *Core) setPairByPushIndex(idx uint8, v uint16) {
	switch idx {
	case 0:
		c.setBC(v)
	case 1:
		c.setDE(v)
	case 2:
		c.setHL(v)
	default:
		c.setAF(v)
	}
}

// incDecRR applies delta (+1 or -1) to BC/DE/HL/SP. 16-bit INC/DEC never
// touch the flags.
func (c *Core) incDecRR(idx uint8, delta int) {
	switch idx {
	case 0:
		c.setBC(uint16(int32(c.bc()) + int32(delta)))
	case 1:
		c.setDE(uint16(int32(c.de()) + int32(delta)))
	case 2:
		c.setHL(uint16(int32(c.hl()) + int32(delta)))
	case 3:
		c.SP = uint16(int32(c.SP) + int32(delta))
	}
}

func (c *Core) addHL(idx uint8) {
	var operand uint16
	switch idx {
	case 0:
		operand = c.bc()
	case 1:
		operand = c.de()
	case 2:
		operand = c.hl()
	case 3:
		operand = c.SP
	}
	hl := c.hl()
	sum := uint32(hl) + uint32(operand)
	c.setFlag(flagN, false)
	c.setFlag(flagH, (hl&0xFFF)+(operand&0xFFF) > 0xFFF)
	c.setFlag(flagC, sum > 0xFFFF)
	c.setHL(uint16(sum))
}

// execIncDec8 handles the 8-bit INC/DEC block, including INC/DEC (HL).
func (c *Core) execIncDec8(bus memory.AddressSpace, op uint8) {
	idx := (op >> 3) & 0x7
	isDec := op&1 == 1
	v := c.readR8(bus, idx)

	var result uint8
	if isDec {
		result = v - 1
		c.setFlag(flagH, v&0x0F == 0)
		c.setFlag(flagN, true)
	} else {
		result = v + 1
		c.setFlag(flagH, v&0x0F == 0x0F)
		c.setFlag(flagN, false)
	}
	c.setFlag(flagZ, result == 0)
	c.writeR8(bus, idx, result)

	if idx == 6 {
		c.tick(12)
	} else {
		c.tick(4)
	}
}

// condition resolves the cc field of conditional jumps/calls/returns:
// 0=NZ 1=Z 2=NC 3=C.
func (c *Core) condition(cc uint8) bool {
	switch cc {
	case 0:
		return !c.flag(flagZ)
	case 1:
		return c.flag(flagZ)
	case 2:
		return !c.flag(flagC)
	default:
		return c.flag(flagC)
	}
}
