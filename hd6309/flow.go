package hd6309

import "fmt"

type condition func(CC) bool

func always(CC) bool { return true }

// branches lists the short branches in opcode order from 0x20.
// Their long forms carry the 0x10 prefix.
var branches = []struct {
	name string
	cond condition
}{
	{"BRA", always},
	{"BRN", func(CC) bool { return false }},
	{"BHI", func(cc CC) bool { return !cc.Has(FlagC) && !cc.Has(FlagZ) }},
	{"BLS", func(cc CC) bool { return cc.Has(FlagC) || cc.Has(FlagZ) }},
	{"BCC", func(cc CC) bool { return !cc.Has(FlagC) }},
	{"BCS", func(cc CC) bool { return cc.Has(FlagC) }},
	{"BNE", func(cc CC) bool { return !cc.Has(FlagZ) }},
	{"BEQ", func(cc CC) bool { return cc.Has(FlagZ) }},
	{"BVC", func(cc CC) bool { return !cc.Has(FlagV) }},
	{"BVS", func(cc CC) bool { return cc.Has(FlagV) }},
	{"BPL", func(cc CC) bool { return !cc.Has(FlagN) }},
	{"BMI", func(cc CC) bool { return cc.Has(FlagN) }},
	{"BGE", func(cc CC) bool { return cc.Has(FlagN) == cc.Has(FlagV) }},
	{"BLT", func(cc CC) bool { return cc.Has(FlagN) != cc.Has(FlagV) }},
	{"BGT", func(cc CC) bool { return !cc.Has(FlagZ) && cc.Has(FlagN) == cc.Has(FlagV) }},
	{"BLE", func(cc CC) bool { return cc.Has(FlagZ) || cc.Has(FlagN) != cc.Has(FlagV) }},
}

// branch builds a short branch taken when cond holds.
func (c *CPU) branch(cond condition) func() error {
	return func() error {
		off, err := c.operand8()
		if err != nil {
			return err
		}
		if cond(c.reg.CC) {
			c.reg.PC += ext8(off)
		}
		c.cycles++
		return nil
	}
}

// longBranch builds a long branch, one cycle slower when taken.
func (c *CPU) longBranch(cond condition) func() error {
	return func() error {
		off, err := c.operand16()
		if err != nil {
			return err
		}
		if cond(c.reg.CC) {
			c.reg.PC += off
			c.cycles++
		}
		c.cycles++
		return nil
	}
}

// BSR - Branch to subroutine.
func (c *CPU) bsr() error {
	off, err := c.operand8()
	if err != nil {
		return err
	}
	c.pushWord(&c.reg.S, c.reg.PC)
	c.reg.PC += ext8(off)
	c.cycles += 3
	return nil
}

// LBSR - Long branch to subroutine.
func (c *CPU) lbsr() error {
	off, err := c.operand16()
	if err != nil {
		return err
	}
	c.pushWord(&c.reg.S, c.reg.PC)
	c.reg.PC += off
	c.cycles += 4
	return nil
}

// JMP - Jump.
func (c *CPU) jmp() error {
	ea, err := c.effectiveAddress()
	if err != nil {
		return err
	}
	c.reg.PC = ea
	return nil
}

// JSR - Jump to subroutine.
func (c *CPU) jsr() error {
	ea, err := c.effectiveAddress()
	if err != nil {
		return err
	}
	c.pushWord(&c.reg.S, c.reg.PC)
	c.reg.PC = ea
	c.cycles += 2
	return nil
}

// RTS - Return from subroutine.
func (c *CPU) rts() error {
	c.reg.PC = c.pullWord(&c.reg.S)
	c.cycles += 2
	return nil
}

// RTI - Return from interrupt. E in the stacked CC tells how much was saved.
func (c *CPU) rti() error {
	c.pull(&c.reg.S, &c.reg.U, 0x01)
	if c.reg.CC.Has(FlagE) {
		c.pull(&c.reg.S, &c.reg.U, 0xFE)
	} else {
		c.pull(&c.reg.S, &c.reg.U, 0x80)
	}
	c.cycles += 2
	return nil
}

// PSHS - Push registers onto the system stack.
func (c *CPU) pshs() error {
	m, err := c.operand8()
	if err != nil {
		return err
	}
	c.push(&c.reg.S, c.reg.U, m)
	c.cycles += 3
	return nil
}

// PULS - Pull registers from the system stack.
func (c *CPU) puls() error {
	m, err := c.operand8()
	if err != nil {
		return err
	}
	c.pull(&c.reg.S, &c.reg.U, m)
	c.cycles += 3
	return nil
}

// PSHU - Push registers onto the user stack.
func (c *CPU) pshu() error {
	m, err := c.operand8()
	if err != nil {
		return err
	}
	c.push(&c.reg.U, c.reg.S, m)
	c.cycles += 3
	return nil
}

// PULU - Pull registers from the user stack.
func (c *CPU) pulu() error {
	m, err := c.operand8()
	if err != nil {
		return err
	}
	c.pull(&c.reg.U, &c.reg.S, m)
	c.cycles += 3
	return nil
}

// CWAI - Clear CC bits, stack the entire state and wait for an unmasked interrupt.
func (c *CPU) cwai() error {
	m, err := c.operand8()
	if err != nil {
		return err
	}
	c.reg.CC &= CC(m)
	c.reg.CC.Set(FlagE, true)
	c.push(&c.reg.S, c.reg.U, 0xFF)
	c.cycles += 2
	c.state = WaitingForUnmaskedInterrupt
	return nil
}

// SYNC - Wait for any interrupt line to be asserted.
func (c *CPU) sync() error {
	c.state = WaitingForAnyInterrupt
	c.cycles++
	return nil
}

// softwareInterrupt stacks the entire state and jumps through vector.
func (c *CPU) softwareInterrupt(vector uint16, mask bool) {
	c.reg.CC.Set(FlagE, true)
	c.push(&c.reg.S, c.reg.U, 0xFF)
	if mask {
		c.reg.CC |= FlagF | FlagI
	}
	c.reg.PC = c.read16(vector)
	c.cycles += 4
}

// SWI - Software interrupt. Masks FIRQ and IRQ.
func (c *CPU) swi() error {
	c.softwareInterrupt(vectorSWI, true)
	return nil
}

// SWI2 - Software interrupt 2. Leaves the masks alone.
func (c *CPU) swi2() error {
	c.softwareInterrupt(vectorSWI2, false)
	return nil
}

// SWI3 - Software interrupt 3. Leaves the masks alone.
func (c *CPU) swi3() error {
	c.softwareInterrupt(vectorSWI3, false)
	return nil
}

// transferPair decodes an EXG/TFR postbyte into source and destination selectors,
// both of which must be of the same class.
func transferPair(post byte) (int, int, error) {
	r1, r2 := int(post>>4), int(post&0x0F)
	switch {
	case isWordSelector(r1) && isWordSelector(r2):
	case isByteSelector(r1) && isByteSelector(r2):
	default:
		return 0, 0, fmt.Errorf("%w: %X,%X", ErrInvalidRegisterClassMix, r1, r2)
	}
	return r1, r2, nil
}

// EXG - Exchange registers.
func (c *CPU) exg() error {
	post, err := c.operand8()
	if err != nil {
		return err
	}
	r1, r2, err := transferPair(post)
	if err != nil {
		return err
	}
	if isWordSelector(r1) {
		v1, _ := c.reg.Word(r1)
		v2, _ := c.reg.Word(r2)
		if err := c.reg.SetWord(r1, v2); err != nil {
			return err
		}
		if err := c.reg.SetWord(r2, v1); err != nil {
			return err
		}
	} else {
		v1, _ := c.reg.Byte(r1)
		v2, _ := c.reg.Byte(r2)
		if err := c.reg.SetByte(r1, v2); err != nil {
			return err
		}
		if err := c.reg.SetByte(r2, v1); err != nil {
			return err
		}
	}
	c.cycles += 6
	return nil
}

// TFR - Transfer register r1 to r2.
func (c *CPU) tfr() error {
	post, err := c.operand8()
	if err != nil {
		return err
	}
	r1, r2, err := transferPair(post)
	if err != nil {
		return err
	}
	if isWordSelector(r1) {
		v, _ := c.reg.Word(r1)
		if err := c.reg.SetWord(r2, v); err != nil {
			return err
		}
	} else {
		v, _ := c.reg.Byte(r1)
		if err := c.reg.SetByte(r2, v); err != nil {
			return err
		}
	}
	c.cycles += 4
	return nil
}
