package cpu

// execute applies one decoded instruction. PC has already been advanced
// past it, so jumps, calls and skips overwrite or bump PC directly.
func (c *CPU) execute(ins Instruction) error {
	// Operands are read before any register is written, so the flag
	// written below never feeds back into the result.
	vx := &c.V[ins.X]
	x, y := c.V[ins.X], c.V[ins.Y]

	switch ins.Op {
	case OpNOP:
		// No operation.

	case OpCLS:
		c.Display = [DisplayWidth * DisplayHeight]byte{}
		c.Redraw = true

	case OpRET:
		addr, err := c.pop()
		if err != nil {
			return err
		}
		c.PC = addr

	case OpJP:
		c.PC = ins.NNN

	case OpCALL:
		c.push(c.PC)
		c.PC = ins.NNN

	case OpSEImm:
		if *vx == ins.KK {
			c.PC += 2
		}

	case OpSNEImm:
		if *vx != ins.KK {
			c.PC += 2
		}

	case OpSEReg:
		if *vx == y {
			c.PC += 2
		}

	case OpSNEReg:
		if *vx != y {
			c.PC += 2
		}

	case OpLDImm:
		*vx = ins.KK

	case OpADDImm:
		*vx += ins.KK

	case OpLDReg:
		*vx = y

	case OpOR:
		*vx |= y

	case OpAND:
		*vx &= y

	case OpXOR:
		*vx ^= y

	case OpADDReg:
		sum := uint16(x) + uint16(y)
		c.V[RegF] = boolToByte(sum > 0xFF)
		*vx = byte(sum)

	case OpSUB:
		c.V[RegF] = boolToByte(x >= y)
		*vx = x - y

	case OpSUBN:
		c.V[RegF] = boolToByte(y >= x)
		*vx = y - x

	case OpSHR:
		// Shifts read and write Vx; Vy is ignored.
		c.V[RegF] = x & 0x01
		*vx = x >> 1

	case OpSHL:
		c.V[RegF] = x >> 7
		*vx = x << 1

	case OpLDI:
		c.I = ins.NNN

	case OpJPV0:
		c.PC = (ins.NNN + uint16(c.V[0])) & 0xFFF

	case OpRND:
		*vx = byte(c.Rand.UintN(256)) & ins.KK

	case OpDRW:
		return c.drawSprite(*vx, y, ins.N)

	case OpSKP:
		if c.KeyPressed(*vx) {
			c.PC += 2
		}

	case OpSKNP:
		if !c.KeyPressed(*vx) {
			c.PC += 2
		}

	case OpLDVxDT:
		*vx = c.DelayTimer

	case OpLDVxK:
		key, ok := c.firstPressedKey()
		if !ok {
			// Re-run this instruction next cycle.
			c.PC -= 2
			return nil
		}
		*vx = key

	case OpLDDTVx:
		c.DelayTimer = *vx

	case OpLDSTVx:
		c.SoundTimer = *vx

	case OpADDI:
		c.I += uint16(*vx)

	case OpLDF:
		c.I = FontStart + FontGlyphHeight*uint16(*vx&0xF)

	case OpLDB:
		if err := c.checkRange(c.I, 3); err != nil {
			return err
		}
		v := *vx
		c.Memory[c.I] = v / 100 % 10
		c.Memory[c.I+1] = v / 10 % 10
		c.Memory[c.I+2] = v % 10

	case OpLDIVx:
		n := uint16(ins.X) + 1
		if err := c.checkRange(c.I, n); err != nil {
			return err
		}
		copy(c.Memory[c.I:c.I+n], c.V[:n])

	case OpLDVxI:
		n := uint16(ins.X) + 1
		if err := c.checkRange(c.I, n); err != nil {
			return err
		}
		copy(c.V[:n], c.Memory[c.I:c.I+n])

	default:
		return &UnknownOpcodeError{Raw: ins.Raw}
	}

	return nil
}

// checkRange rejects an n byte access at addr that leaves memory.
func (c *CPU) checkRange(addr, n uint16) error {
	if uint32(addr)+uint32(n) > MemorySize {
		return &AddressError{Addr: addr}
	}
	return nil
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
