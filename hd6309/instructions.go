package hd6309

// reg8 and reg16 give handlers uniform access to the registers they work on.
type reg8 struct {
	get func() byte
	set func(byte)
}

type reg16 struct {
	get func() uint16
	set func(uint16)
}

func (c *CPU) word(p *uint16) reg16 {
	return reg16{func() uint16 { return *p }, func(x uint16) { *p = x }}
}

func (c *CPU) createInstructions() [3][256]instruction {
	var t [3][256]instruction
	def := func(mnemonic string, execute func() error, opcodes ...uint16) {
		for _, op := range opcodes {
			t[page(op)][op&0xFF] = instruction{mnemonic, execute}
		}
	}

	a := reg8{c.reg.A, c.reg.SetA}
	b := reg8{c.reg.B, c.reg.SetB}
	e := reg8{c.reg.E, c.reg.SetE}
	f := reg8{c.reg.F, c.reg.SetF}
	d := c.word((*uint16)(&c.reg.D))
	w := c.word((*uint16)(&c.reg.W))
	x := c.word(&c.reg.X)
	y := c.word(&c.reg.Y)
	u := c.word(&c.reg.U)
	s := c.word(&c.reg.S)

	adc := func(x, m byte) byte { return c.add8(x, m, true) }
	add := func(x, m byte) byte { return c.add8(x, m, false) }
	sbc := func(x, m byte) byte { return c.sub8(x, m, true) }
	sub := func(x, m byte) byte { return c.sub8(x, m, false) }
	and16 := func(x, m uint16) uint16 { return c.logic16(x & m) }
	or16 := func(x, m uint16) uint16 { return c.logic16(x | m) }
	eor16 := func(x, m uint16) uint16 { return c.logic16(x ^ m) }

	// Arithmetic.
	def("ABX", c.abx, 0x3A)
	def("ADCA", c.alu8(a, adc), 0x89, 0x99, 0xA9, 0xB9)
	def("ADCB", c.alu8(b, adc), 0xC9, 0xD9, 0xE9, 0xF9)
	def("ADDA", c.alu8(a, add), 0x8B, 0x9B, 0xAB, 0xBB)
	def("ADDB", c.alu8(b, add), 0xCB, 0xDB, 0xEB, 0xFB)
	def("ADDE", c.alu8(e, add), 0x118B, 0x119B, 0x11AB, 0x11BB)
	def("ADDF", c.alu8(f, add), 0x11CB, 0x11DB, 0x11EB, 0x11FB)
	def("ADDD", c.alu16(d, c.add16), 0xC3, 0xD3, 0xE3, 0xF3)
	def("ADDW", c.alu16(w, c.add16), 0x108B, 0x109B, 0x10AB, 0x10BB)
	def("SBCA", c.alu8(a, sbc), 0x82, 0x92, 0xA2, 0xB2)
	def("SBCB", c.alu8(b, sbc), 0xC2, 0xD2, 0xE2, 0xF2)
	def("SUBA", c.alu8(a, sub), 0x80, 0x90, 0xA0, 0xB0)
	def("SUBB", c.alu8(b, sub), 0xC0, 0xD0, 0xE0, 0xF0)
	def("SUBE", c.alu8(e, sub), 0x1180, 0x1190, 0x11A0, 0x11B0)
	def("SUBF", c.alu8(f, sub), 0x11C0, 0x11D0, 0x11E0, 0x11F0)
	def("SUBD", c.alu16(d, c.sub16), 0x83, 0x93, 0xA3, 0xB3)
	def("SUBW", c.alu16(w, c.sub16), 0x1080, 0x1090, 0x10A0, 0x10B0)
	def("MUL", c.mul, 0x3D)
	def("DAA", c.daaa, 0x19)
	def("SEX", c.sex, 0x1D)

	// Compare.
	def("CMPA", c.cmp8(a), 0x81, 0x91, 0xA1, 0xB1)
	def("CMPB", c.cmp8(b), 0xC1, 0xD1, 0xE1, 0xF1)
	def("CMPE", c.cmp8(e), 0x1181, 0x1191, 0x11A1, 0x11B1)
	def("CMPF", c.cmp8(f), 0x11C1, 0x11D1, 0x11E1, 0x11F1)
	def("CMPD", c.cmp16r(d), 0x1083, 0x1093, 0x10A3, 0x10B3)
	def("CMPW", c.cmp16r(w), 0x1081, 0x1091, 0x10A1, 0x10B1)
	def("CMPX", c.cmp16r(x), 0x8C, 0x9C, 0xAC, 0xBC)
	def("CMPY", c.cmp16r(y), 0x108C, 0x109C, 0x10AC, 0x10BC)
	def("CMPU", c.cmp16r(u), 0x1183, 0x1193, 0x11A3, 0x11B3)
	def("CMPS", c.cmp16r(s), 0x118C, 0x119C, 0x11AC, 0x11BC)

	// Logic.
	def("ANDA", c.alu8(a, c.and8), 0x84, 0x94, 0xA4, 0xB4)
	def("ANDB", c.alu8(b, c.and8), 0xC4, 0xD4, 0xE4, 0xF4)
	def("ANDD", c.alu16(d, and16), 0x1084, 0x1094, 0x10A4, 0x10B4)
	def("ORA", c.alu8(a, c.or8), 0x8A, 0x9A, 0xAA, 0xBA)
	def("ORB", c.alu8(b, c.or8), 0xCA, 0xDA, 0xEA, 0xFA)
	def("ORD", c.alu16(d, or16), 0x108A, 0x109A, 0x10AA, 0x10BA)
	def("EORA", c.alu8(a, c.eor8), 0x88, 0x98, 0xA8, 0xB8)
	def("EORB", c.alu8(b, c.eor8), 0xC8, 0xD8, 0xE8, 0xF8)
	def("EORD", c.alu16(d, eor16), 0x1088, 0x1098, 0x10A8, 0x10B8)
	def("BITA", c.bit8(a), 0x85, 0x95, 0xA5, 0xB5)
	def("BITB", c.bit8(b), 0xC5, 0xD5, 0xE5, 0xF5)
	def("ANDCC", c.andcc, 0x1C)
	def("ORCC", c.orcc, 0x1A)

	// Read-modify-write, on accumulators and memory.
	def("ASRA", c.unary8(a, c.asr8), 0x47)
	def("ASRB", c.unary8(b, c.asr8), 0x57)
	def("ASR", c.modify(c.asr8), 0x07, 0x67, 0x77)
	def("LSLA", c.unary8(a, c.lsl8), 0x48)
	def("LSLB", c.unary8(b, c.lsl8), 0x58)
	def("LSL", c.modify(c.lsl8), 0x08, 0x68, 0x78)
	def("LSRA", c.unary8(a, c.lsr8), 0x44, 0x45)
	def("LSRB", c.unary8(b, c.lsr8), 0x54, 0x55)
	def("LSR", c.modify(c.lsr8), 0x04, 0x05, 0x64, 0x65, 0x74, 0x75)
	def("ROLA", c.unary8(a, c.rol8), 0x49)
	def("ROLB", c.unary8(b, c.rol8), 0x59)
	def("ROL", c.modify(c.rol8), 0x09, 0x69, 0x79)
	def("RORA", c.unary8(a, c.ror8), 0x46)
	def("RORB", c.unary8(b, c.ror8), 0x56)
	def("ROR", c.modify(c.ror8), 0x06, 0x66, 0x76)
	def("NEGA", c.unary8(a, c.neg8), 0x40, 0x41)
	def("NEGB", c.unary8(b, c.neg8), 0x50, 0x51)
	def("NEG", c.modify(c.neg8), 0x00, 0x01, 0x60, 0x61, 0x70, 0x71)
	def("COMA", c.unary8(a, c.com8), 0x42, 0x43, 0x1042)
	def("COMB", c.unary8(b, c.com8), 0x52, 0x53)
	def("COME", c.unary8(e, c.com8), 0x1143)
	def("COMF", c.unary8(f, c.com8), 0x1153)
	def("COMD", c.unary16(d, c.com16), 0x1043)
	def("COMW", c.unary16(w, c.com16), 0x1053)
	def("COM", c.modify(c.com8), 0x03, 0x62, 0x63, 0x73)
	def("DECA", c.unary8(a, c.dec8), 0x4A, 0x4B)
	def("DECB", c.unary8(b, c.dec8), 0x5A, 0x5B)
	def("DECE", c.unary8(e, c.dec8), 0x114A)
	def("DECF", c.unary8(f, c.dec8), 0x115A)
	def("DECD", c.unary16(d, c.dec16), 0x104A)
	def("DECW", c.unary16(w, c.dec16), 0x105A)
	def("DEC", c.modify(c.dec8), 0x0A, 0x0B, 0x6A, 0x6B, 0x7A, 0x7B)
	def("INCA", c.unary8(a, c.inc8), 0x4C)
	def("INCB", c.unary8(b, c.inc8), 0x5C)
	def("INCE", c.unary8(e, c.inc8), 0x114C)
	def("INCF", c.unary8(f, c.inc8), 0x115C)
	def("INCD", c.unary16(d, c.inc16), 0x104C)
	def("INCW", c.unary16(w, c.inc16), 0x105C)
	def("INC", c.modify(c.inc8), 0x0C, 0x6C, 0x7C)
	def("CLRA", c.clr8(a), 0x4E, 0x4F)
	def("CLRB", c.clr8(b), 0x5E, 0x5F)
	def("CLRE", c.clr8(e), 0x114F)
	def("CLRF", c.clr8(f), 0x115F)
	def("CLRD", c.clr16(d), 0x104F)
	def("CLRW", c.clr16(w), 0x105F)
	def("CLR", c.clr, 0x0F, 0x6F, 0x7F)
	def("TSTA", c.tstr8(a), 0x4D)
	def("TSTB", c.tstr8(b), 0x5D)
	def("TSTE", c.tstr8(e), 0x114D)
	def("TSTF", c.tstr8(f), 0x115D)
	def("TSTD", c.tstr16(d), 0x104D)
	def("TSTW", c.tstr16(w), 0x105D)
	def("TST", c.tst, 0x0D, 0x6D, 0x7D)

	// Loads and stores.
	def("LDA", c.ld8(a), 0x86, 0x96, 0xA6, 0xB6)
	def("LDB", c.ld8(b), 0xC6, 0xD6, 0xE6, 0xF6)
	def("LDE", c.ld8(e), 0x1186, 0x1196, 0x11A6, 0x11B6)
	def("LDF", c.ld8(f), 0x11C6, 0x11D6, 0x11E6, 0x11F6)
	def("LDD", c.ld16(d), 0xCC, 0xDC, 0xEC, 0xFC)
	def("LDW", c.ld16(w), 0x1086, 0x1096, 0x10A6, 0x10B6)
	def("LDX", c.ld16(x), 0x8E, 0x9E, 0xAE, 0xBE)
	def("LDY", c.ld16(y), 0x108E, 0x109E, 0x10AE, 0x10BE)
	def("LDU", c.ld16(u), 0xCE, 0xDE, 0xEE, 0xFE)
	def("LDS", c.ld16(s), 0x10CE, 0x10DE, 0x10EE, 0x10FE)
	def("LDMD", c.ldmd, 0x113D)
	def("BITMD", c.bitmd, 0x113C)
	def("STA", c.st8(a), 0x97, 0xA7, 0xB7)
	def("STB", c.st8(b), 0xD7, 0xE7, 0xF7)
	def("STE", c.st8(e), 0x1197, 0x11A7, 0x11B7)
	def("STF", c.st8(f), 0x11D7, 0x11E7, 0x11F7)
	def("STD", c.st16(d), 0xDD, 0xED, 0xFD)
	def("STW", c.st16(w), 0x1097, 0x10A7, 0x10B7)
	def("STX", c.st16(x), 0x9F, 0xAF, 0xBF)
	def("STY", c.st16(y), 0x109F, 0x10AF, 0x10BF)
	def("STU", c.st16(u), 0xDF, 0xEF, 0xFF)
	def("STS", c.st16(s), 0x10DF, 0x10EF, 0x10FF)
	def("LEAX", c.lea(x, true), 0x30)
	def("LEAY", c.lea(y, true), 0x31)
	def("LEAS", c.lea(s, false), 0x32)
	def("LEAU", c.lea(u, false), 0x33)

	// Branches.
	for i, br := range branches {
		op := uint16(0x20 + i)
		def(br.name, c.branch(br.cond), op)
		def("L"+br.name, c.longBranch(br.cond), 0x1000|op)
	}
	def("LBRA", c.longBranch(always), 0x16)
	def("LBSR", c.lbsr, 0x17)
	def("BSR", c.bsr, 0x8D)
	def("JMP", c.jmp, 0x0E, 0x6E, 0x7E)
	def("JSR", c.jsr, 0x9D, 0xAD, 0xBD)
	def("RTS", c.rts, 0x39)

	// Stack, interrupts and register transfer.
	def("PSHS", c.pshs, 0x34)
	def("PULS", c.puls, 0x35)
	def("PSHU", c.pshu, 0x36)
	def("PULU", c.pulu, 0x37)
	def("RTI", c.rti, 0x3B)
	def("CWAI", c.cwai, 0x3C)
	def("SYNC", c.sync, 0x13)
	def("SWI", c.swi, 0x3F)
	def("SWI2", c.swi2, 0x103F)
	def("SWI3", c.swi3, 0x113F)
	def("EXG", c.exg, 0x1E)
	def("TFR", c.tfr, 0x1F)
	def("NOP", c.nop, 0x12)
	return t
}

// alu8 applies op to a register and the operand, storing the result.
func (c *CPU) alu8(r reg8, op func(x, m byte) byte) func() error {
	return func() error {
		m, err := c.operand8()
		if err != nil {
			return err
		}
		r.set(op(r.get(), m))
		return nil
	}
}

func (c *CPU) alu16(r reg16, op func(x, m uint16) uint16) func() error {
	return func() error {
		m, err := c.operand16()
		if err != nil {
			return err
		}
		r.set(op(r.get(), m))
		return nil
	}
}

// CMP - Compare.
func (c *CPU) cmp8(r reg8) func() error {
	return func() error {
		m, err := c.operand8()
		if err != nil {
			return err
		}
		c.sub8(r.get(), m, false)
		return nil
	}
}

func (c *CPU) cmp16r(r reg16) func() error {
	return func() error {
		m, err := c.operand16()
		if err != nil {
			return err
		}
		c.cmp16(r.get(), m)
		return nil
	}
}

// BIT - Bit test.
func (c *CPU) bit8(r reg8) func() error {
	return func() error {
		m, err := c.operand8()
		if err != nil {
			return err
		}
		c.and8(r.get(), m)
		return nil
	}
}

// unary8 applies op to a register in place.
func (c *CPU) unary8(r reg8, op func(byte) byte) func() error {
	return func() error {
		r.set(op(r.get()))
		return nil
	}
}

func (c *CPU) unary16(r reg16, op func(uint16) uint16) func() error {
	return func() error {
		r.set(op(r.get()))
		return nil
	}
}

// modify applies op to the memory operand in place.
func (c *CPU) modify(op func(byte) byte) func() error {
	return func() error {
		ea, err := c.effectiveAddress()
		if err != nil {
			return err
		}
		c.write(ea, op(c.read(ea)))
		return nil
	}
}

func (c *CPU) clr8(r reg8) func() error {
	return func() error {
		r.set(0)
		c.clear()
		return nil
	}
}

func (c *CPU) clr16(r reg16) func() error {
	return func() error {
		r.set(0)
		c.clear()
		return nil
	}
}

// CLR - Clear memory. The operand is read before it is cleared.
func (c *CPU) clr() error {
	ea, err := c.effectiveAddress()
	if err != nil {
		return err
	}
	c.read(ea)
	c.clear()
	c.write(ea, 0)
	return nil
}

func (c *CPU) tstr8(r reg8) func() error {
	return func() error {
		c.tst8(r.get())
		return nil
	}
}

func (c *CPU) tstr16(r reg16) func() error {
	return func() error {
		c.tst16(r.get())
		return nil
	}
}

// TST - Test memory.
func (c *CPU) tst() error {
	ea, err := c.effectiveAddress()
	if err != nil {
		return err
	}
	c.tst8(c.read(ea))
	c.cycles++
	return nil
}

// LD - Load register.
func (c *CPU) ld8(r reg8) func() error {
	return func() error {
		m, err := c.operand8()
		if err != nil {
			return err
		}
		r.set(c.load8(m))
		return nil
	}
}

func (c *CPU) ld16(r reg16) func() error {
	return func() error {
		m, err := c.operand16()
		if err != nil {
			return err
		}
		r.set(c.load16(m))
		return nil
	}
}

// ST - Store register.
func (c *CPU) st8(r reg8) func() error {
	return func() error {
		ea, err := c.effectiveAddress()
		if err != nil {
			return err
		}
		c.write(ea, c.load8(r.get()))
		return nil
	}
}

func (c *CPU) st16(r reg16) func() error {
	return func() error {
		ea, err := c.effectiveAddress()
		if err != nil {
			return err
		}
		c.write16(ea, c.load16(r.get()))
		return nil
	}
}

// LEA - Load effective address. Only LEAX and LEAY affect Z.
func (c *CPU) lea(r reg16, setZ bool) func() error {
	return func() error {
		ea, err := c.effectiveAddress()
		if err != nil {
			return err
		}
		r.set(ea)
		if setZ {
			c.reg.CC.Set(FlagZ, ea == 0)
		}
		c.cycles++
		return nil
	}
}

// ABX - Add B to X, unsigned.
func (c *CPU) abx() error {
	c.reg.X += uint16(c.reg.B())
	c.cycles++
	return nil
}

// MUL - Unsigned multiply A by B into D.
func (c *CPU) mul() error {
	c.reg.D.SetWord(uint16(c.reg.A()) * uint16(c.reg.B()))
	c.reg.CC.Set(FlagC, c.reg.B()&0x80 != 0)
	c.reg.CC.Set(FlagZ, c.reg.D == 0)
	c.cycles += 10
	return nil
}

// DAA - Decimal adjust A.
func (c *CPU) daaa() error {
	c.reg.SetA(c.daa(c.reg.A()))
	return nil
}

// SEX - Sign extend B into A.
func (c *CPU) sex() error {
	bv := c.reg.B()
	c.reg.CC.Set(FlagN, bv&0x80 != 0)
	c.reg.CC.Set(FlagZ, bv == 0)
	if bv&0x80 != 0 {
		c.reg.SetA(0xFF)
	} else {
		c.reg.SetA(0)
	}
	c.cycles++
	return nil
}

// ANDCC - And immediate with CC.
func (c *CPU) andcc() error {
	m, err := c.operand8()
	if err != nil {
		return err
	}
	c.reg.CC &= CC(m)
	c.cycles++
	return nil
}

// ORCC - Or immediate with CC.
func (c *CPU) orcc() error {
	m, err := c.operand8()
	if err != nil {
		return err
	}
	c.reg.CC |= CC(m)
	c.cycles++
	return nil
}

// LDMD - Load the mode bits of MD.
func (c *CPU) ldmd() error {
	m, err := c.operand8()
	if err != nil {
		return err
	}
	mode := MDNative | MDFIRQMode
	c.reg.MD = c.reg.MD&^mode | MD(m)&mode
	c.cycles++
	return nil
}

// BITMD - Test the trap bits of MD, clearing those tested.
func (c *CPU) bitmd() error {
	m, err := c.operand8()
	if err != nil {
		return err
	}
	tested := MD(m) & (MDIllegal | MDDivZero)
	c.reg.CC.Set(FlagZ, c.reg.MD&tested == 0)
	c.reg.MD &^= tested
	c.cycles++
	return nil
}

// NOP - No operation.
func (c *CPU) nop() error {
	c.cycles++
	return nil
}
