package hd6309

import "fmt"

// ext8 sign-extends a byte.
func ext8(x byte) uint16 { return uint16(int16(int8(x))) }

// ext5 sign-extends the low 5 bits of an indexed postbyte.
func ext5(x byte) uint16 {
	x &= 0x1F
	if x&0x10 != 0 {
		x |= 0xE0
	}
	return ext8(x)
}

// operand8 returns the byte operand of the current instruction.
// For relative mode it returns the raw offset.
func (c *CPU) operand8() (byte, error) {
	switch c.cur.mode {
	case Immediate:
		x := c.fetch()
		c.cur.operand = uint16(x)
		return x, nil
	case Relative:
		x := c.fetch()
		c.cur.operand = c.reg.PC + ext8(x)
		return x, nil
	}
	ea, err := c.effectiveAddress()
	if err != nil {
		return 0, err
	}
	return c.read(ea), nil
}

// operand16 returns the word operand of the current instruction.
func (c *CPU) operand16() (uint16, error) {
	switch c.cur.mode {
	case Immediate:
		x := c.fetch16()
		c.cur.operand = x
		return x, nil
	case Relative:
		x := c.fetch16()
		c.cur.operand = c.reg.PC + x
		return x, nil
	}
	ea, err := c.effectiveAddress()
	if err != nil {
		return 0, err
	}
	return c.read16(ea), nil
}

// effectiveAddress resolves the memory address of the current instruction's operand.
func (c *CPU) effectiveAddress() (uint16, error) {
	var ea uint16
	switch c.cur.mode {
	case Extended:
		ea = c.fetch16()
		c.cycles++
	case Direct:
		ea = uint16(c.reg.DP)<<8 | uint16(c.fetch())
		c.cycles++
	case Indexed:
		post := c.fetch()
		c.cur.post = post
		x, err := c.indexed(post)
		if err != nil {
			return 0, err
		}
		ea = x
	default:
		return 0, fmt.Errorf("%w: %v has no effective address", ErrInvalidAddressingMode, c.cur.mode)
	}
	c.cur.operand = ea
	return ea, nil
}

// indexRegister returns the base register selected by bits 6-5 of the postbyte.
func (c *CPU) indexRegister(post byte) *uint16 {
	switch (post >> 5) & 0x03 {
	case 0:
		return &c.reg.X
	case 1:
		return &c.reg.Y
	case 2:
		return &c.reg.U
	}
	return &c.reg.S
}

// validIndexed reports whether a postbyte with bit 7 set encodes a defined form.
func validIndexed(post byte) bool {
	switch post & 0x1F {
	case 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x08, 0x09, 0x0B, 0x0C, 0x0D,
		0x11, 0x13, 0x14, 0x15, 0x16, 0x18, 0x19, 0x1B, 0x1C, 0x1D, 0x1F:
		return true
	}
	return false
}

// indexed computes the effective address encoded by an indexed postbyte.
// The base register is only touched once the postbyte is known to be valid.
func (c *CPU) indexed(post byte) (uint16, error) {
	if post&0x80 == 0 {
		c.cycles += 2
		return *c.indexRegister(post) + ext5(post), nil
	}
	if !validIndexed(post) {
		return 0, fmt.Errorf("%w: postbyte %02X", ErrInvalidIndexedOperand, post)
	}
	r := c.indexRegister(post)

	switch post & 0x9F {
	case 0x82:
		*r--
	case 0x83, 0x93:
		*r -= 2
	}

	var ea uint16
	switch post & 0x1F {
	case 0x00:
		ea = *r
		c.cycles += 3
	case 0x01, 0x11:
		ea = *r
		c.cycles += 4
	case 0x02:
		ea = *r
		c.cycles += 3
	case 0x03, 0x13:
		ea = *r
		c.cycles += 4
	case 0x04, 0x14:
		ea = *r
		c.cycles++
	case 0x05, 0x15:
		ea = *r + ext8(c.reg.B())
		c.cycles += 2
	case 0x06, 0x16:
		ea = *r + ext8(c.reg.A())
		c.cycles += 2
	case 0x08, 0x18:
		c.cur.offset = ext8(c.fetch())
		ea = *r + c.cur.offset
		c.cycles++
	case 0x09, 0x19:
		c.cur.offset = c.fetch16()
		ea = *r + c.cur.offset
		c.cycles += 3
	case 0x0B, 0x1B:
		ea = *r + c.reg.D.Word()
		c.cycles += 5
	case 0x0C, 0x1C:
		c.cur.offset = ext8(c.fetch())
		ea = c.reg.PC + c.cur.offset
		c.cycles++
	case 0x0D, 0x1D:
		c.cur.offset = c.fetch16()
		ea = c.reg.PC + c.cur.offset
		c.cycles += 3
	case 0x1F:
		c.cur.offset = c.fetch16()
		ea = c.cur.offset
		c.cycles++
	}

	switch post & 0x9F {
	case 0x80:
		*r++
	case 0x81, 0x91:
		*r += 2
	}

	if post&0x10 != 0 {
		ea = c.read16(ea)
		c.cycles++
	}
	return ea, nil
}
