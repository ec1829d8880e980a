package hd6309

// Flag computation shared by the register and memory forms of each instruction family.

func bit(x uint32, n uint) bool { return (x>>n)&1 != 0 }

// setNZ8 sets N and Z from an 8-bit result.
func (c *CPU) setNZ8(x byte) {
	c.reg.CC.Set(FlagN, x&0x80 != 0)
	c.reg.CC.Set(FlagZ, x == 0)
}

// setNZ16 sets N and Z from a 16-bit result.
func (c *CPU) setNZ16(x uint16) {
	c.reg.CC.Set(FlagN, x&0x8000 != 0)
	c.reg.CC.Set(FlagZ, x == 0)
}

func (c *CPU) carry() uint32 {
	if c.reg.CC.Has(FlagC) {
		return 1
	}
	return 0
}

// add8 returns x+m+carry, updating H, N, Z, V and C.
func (c *CPU) add8(x, m byte, withCarry bool) byte {
	var cin uint32
	if withCarry {
		cin = c.carry()
	}
	t := uint32(x&0x0F) + uint32(m&0x0F) + cin
	c.reg.CC.Set(FlagH, bit(t, 4))
	t = uint32(x&0x7F) + uint32(m&0x7F) + cin
	v := bit(t, 7)
	t = uint32(x) + uint32(m) + cin
	cout := bit(t, 8)
	c.reg.CC.Set(FlagC, cout)
	c.reg.CC.Set(FlagV, v != cout)
	c.setNZ8(byte(t))
	return byte(t)
}

// add16 returns x+m, updating N, Z, V and C.
func (c *CPU) add16(x, m uint16) uint16 {
	t := uint32(x&0x7FFF) + uint32(m&0x7FFF)
	v := bit(t, 15)
	t = uint32(x) + uint32(m)
	cout := bit(t, 16)
	c.reg.CC.Set(FlagC, cout)
	c.reg.CC.Set(FlagV, v != cout)
	c.setNZ16(uint16(t))
	c.cycles++
	return uint16(t)
}

// sub8 returns x-m-borrow, updating N, Z, V and C. H is left alone.
func (c *CPU) sub8(x, m byte, withCarry bool) byte {
	t := int32(x) - int32(m)
	if withCarry {
		t -= int32(c.carry())
	}
	c.reg.CC.Set(FlagV, bit(uint32(int32(x)^int32(m)^t^(t>>1)), 7))
	c.reg.CC.Set(FlagC, bit(uint32(t), 8))
	c.setNZ8(byte(t))
	return byte(t)
}

// sub16 returns x-m, updating N, Z, V and C.
func (c *CPU) sub16(x, m uint16) uint16 {
	t := int32(x) - int32(m)
	c.reg.CC.Set(FlagV, bit(uint32(int32(x)^int32(m)^t^(t>>1)), 15))
	c.reg.CC.Set(FlagC, bit(uint32(t), 16))
	c.setNZ16(uint16(t))
	return uint16(t)
}

// cmp16 is sub16 without a result, plus one cycle.
func (c *CPU) cmp16(x, m uint16) {
	c.sub16(x, m)
	c.cycles++
}

func (c *CPU) neg8(x byte) byte {
	t := c.sub8(0, x, false)
	c.cycles++
	return t
}

func (c *CPU) and8(x, m byte) byte {
	t := x & m
	c.reg.CC.Set(FlagV, false)
	c.setNZ8(t)
	return t
}

func (c *CPU) or8(x, m byte) byte {
	t := x | m
	c.reg.CC.Set(FlagV, false)
	c.setNZ8(t)
	return t
}

func (c *CPU) eor8(x, m byte) byte {
	t := x ^ m
	c.reg.CC.Set(FlagV, false)
	c.setNZ8(t)
	return t
}

// logic16 sets the flags of a 16-bit AND, OR or EOR result.
func (c *CPU) logic16(t uint16) uint16 {
	c.reg.CC.Set(FlagV, false)
	c.setNZ16(t)
	c.cycles++
	return t
}

func (c *CPU) com8(x byte) byte {
	x = ^x
	c.reg.CC.Set(FlagC, true)
	c.reg.CC.Set(FlagV, false)
	c.setNZ8(x)
	c.cycles++
	return x
}

func (c *CPU) com16(x uint16) uint16 {
	x = ^x
	c.reg.CC.Set(FlagC, true)
	c.reg.CC.Set(FlagV, false)
	c.setNZ16(x)
	c.cycles++
	return x
}

func (c *CPU) inc8(x byte) byte {
	c.reg.CC.Set(FlagV, x == 0x7F)
	x++
	c.setNZ8(x)
	c.cycles++
	return x
}

func (c *CPU) dec8(x byte) byte {
	c.reg.CC.Set(FlagV, x == 0x80)
	x--
	c.setNZ8(x)
	c.cycles++
	return x
}

func (c *CPU) inc16(x uint16) uint16 {
	c.reg.CC.Set(FlagV, x == 0x7FFF)
	x++
	c.setNZ16(x)
	c.cycles++
	return x
}

func (c *CPU) dec16(x uint16) uint16 {
	c.reg.CC.Set(FlagV, x == 0x8000)
	x--
	c.setNZ16(x)
	c.cycles++
	return x
}

// clear implements CLR: N, V and C are cleared and Z is set.
func (c *CPU) clear() {
	c.reg.CC &= 0xF0
	c.reg.CC |= FlagZ
	c.cycles++
}

func (c *CPU) tst8(x byte) {
	c.reg.CC.Set(FlagV, false)
	c.setNZ8(x)
	c.cycles++
}

func (c *CPU) tst16(x uint16) {
	c.reg.CC.Set(FlagV, false)
	c.setNZ16(x)
	c.cycles++
}

// load8 sets the flags of a byte load or store.
func (c *CPU) load8(x byte) byte {
	c.reg.CC.Set(FlagV, false)
	c.setNZ8(x)
	return x
}

func (c *CPU) load16(x uint16) uint16 {
	c.reg.CC.Set(FlagV, false)
	c.setNZ16(x)
	return x
}

func (c *CPU) lsl8(x byte) byte {
	c.reg.CC.Set(FlagC, x&0x80 != 0)
	c.reg.CC.Set(FlagV, (x^x<<1)&0x80 != 0)
	x <<= 1
	c.setNZ8(x)
	c.cycles++
	return x
}

func (c *CPU) lsr8(x byte) byte {
	c.reg.CC.Set(FlagC, x&0x01 != 0)
	x >>= 1
	c.reg.CC.Set(FlagN, false)
	c.reg.CC.Set(FlagZ, x == 0)
	c.cycles++
	return x
}

func (c *CPU) asr8(x byte) byte {
	c.reg.CC.Set(FlagC, x&0x01 != 0)
	x = x>>1 | x&0x80
	c.setNZ8(x)
	c.cycles++
	return x
}

func (c *CPU) rol8(x byte) byte {
	oc := byte(c.carry())
	c.reg.CC.Set(FlagV, (x^x<<1)&0x80 != 0)
	c.reg.CC.Set(FlagC, x&0x80 != 0)
	x = x<<1 | oc
	c.setNZ8(x)
	c.cycles++
	return x
}

func (c *CPU) ror8(x byte) byte {
	oc := byte(c.carry())
	c.reg.CC.Set(FlagC, x&0x01 != 0)
	x = x>>1 | oc<<7
	c.setNZ8(x)
	c.cycles++
	return x
}

// daa decimal-adjusts x after a BCD addition.
func (c *CPU) daa(x byte) byte {
	lsn := x & 0x0F
	msn := x >> 4
	var cf uint16
	if c.reg.CC.Has(FlagH) || lsn > 9 {
		cf |= 0x06
	}
	if c.reg.CC.Has(FlagC) || msn > 9 || (msn > 8 && lsn > 9) {
		cf |= 0x60
	}
	t := uint16(x) + cf
	if t&0x100 != 0 {
		c.reg.CC.Set(FlagC, true)
	}
	c.setNZ8(byte(t))
	c.cycles++
	return byte(t)
}
