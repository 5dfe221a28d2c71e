package cpu

import "github.com/thelolagemann/gbsdiff/internal/memory"

// execALU dispatches the 0x80-0xBF / 0xC6-0xFE block: ADD, ADC, SUB, SBC,
// AND, XOR, OR, CP, selected by the 3-bit op field and applied to A and
// the given operand.
func (c *Core) execALU(bus memory.AddressSpace, op uint8, operand uint8) {
	switch op {
	case 0:
		c.add(operand, false)
	case 1:
		c.add(operand, true)
	case 2:
		c.sub(operand, false)
	case 3:
		c.sub(operand, true)
	case 4:
		c.and(operand)
	case 5:
		c.xor(operand)
	case 6:
		c.or(operand)
	case 7:
		c.cp(operand)
	}
}

func (c *Core) add(operand uint8, withCarry bool) {
	carryIn := uint8(0)
	if withCarry && c.flag(flagC) {
		carryIn = 1
	}
	sum := uint16(c.A) + uint16(operand) + uint16(carryIn)
	c.setFlag(flagH, (c.A&0x0F)+(operand&0x0F)+carryIn > 0x0F)
	c.setFlag(flagC, sum > 0xFF)
	c.setFlag(flagN, false)
	c.A = uint8(sum)
	c.setFlag(flagZ, c.A == 0)
}

func (c *Core) sub(operand uint8, withCarry bool) {
	carryIn := uint8(0)
	if withCarry && c.flag(flagC) {
		carryIn = 1
	}
	result := int16(c.A) - int16(operand) - int16(carryIn)
	c.setFlag(flagH, int16(c.A&0x0F)-int16(operand&0x0F)-int16(carryIn) < 0)
	c.setFlag(flagC, result < 0)
	c.setFlag(flagN, true)
	c.A = uint8(result)
	c.setFlag(flagZ, c.A == 0)
}

func (c *Core) and(operand uint8) {
	c.A &= operand
	c.setFlag(flagZ, c.A == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, true)
	c.setFlag(flagC, false)
}

func (c *Core) or(operand uint8) {
	c.A |= operand
	c.setFlag(flagZ, c.A == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, false)
}

func (c *Core) xor(operand uint8) {
	c.A ^= operand
	c.setFlag(flagZ, c.A == 0)
	c.setFlag(flagN, false)
	c.setFlag(flagH, false)
	c.setFlag(flagC, false)
}

// cp compares A against operand without storing the result.
func (c *Core) cp(operand uint8) {
	saved := c.A
	c.sub(operand, false)
	c.A = saved
}
