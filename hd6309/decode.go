package hd6309

// Mode is an addressing mode.
type Mode int

const (
	Inherent Mode = iota
	Immediate
	Direct
	Indexed
	Extended
	Relative
)

func (m Mode) String() string {
	switch m {
	case Inherent:
		return "inherent"
	case Immediate:
		return "immediate"
	case Direct:
		return "direct"
	case Indexed:
		return "indexed"
	case Extended:
		return "extended"
	case Relative:
		return "relative"
	}
	return "unknown"
}

// decoded is the state of the instruction being executed.
type decoded struct {
	pc       uint16 // address of the first opcode byte
	opcode   uint16 // 0x10 and 0x11 prefixed opcodes keep the prefix in the high byte
	mode     Mode
	post     byte   // indexed postbyte
	offset   uint16 // indexed constant offset or indirect address
	operand  uint16 // operand or effective address, for tracing
	mnemonic string
}

type instruction struct {
	mnemonic string
	execute  func() error
}

// page returns the dispatch page of an opcode: 0 for unprefixed ones,
// 1 for 0x10 and 2 for 0x11 prefixed ones.
func page(opcode uint16) int {
	switch opcode >> 8 {
	case 0x10:
		return 1
	case 0x11:
		return 2
	}
	return 0
}

// lookup returns the handler of an opcode. Undefined opcodes execute as NOP.
func (c *CPU) lookup(opcode uint16) instruction {
	inst := c.instructions[page(opcode)][opcode&0xFF]
	if inst.execute == nil {
		return instruction{"NOP", c.nop}
	}
	return inst
}

// modeOf resolves the addressing mode from the opcode's column.
// Prefixed opcodes are resolved by their second byte.
func modeOf(opcode uint16) Mode {
	op := byte(opcode)
	switch op & 0xF0 {
	case 0x00, 0x90, 0xD0:
		return Direct
	case 0x10:
		switch op & 0x0F {
		case 0x06, 0x07:
			return Relative
		case 0x0A, 0x0C, 0x0E, 0x0F:
			return Immediate
		}
		return Inherent
	case 0x20:
		return Relative
	case 0x30, 0x40, 0x50:
		switch {
		case op < 0x34:
			return Indexed
		case op < 0x38, op == 0x3C, opcode == 0x113C, opcode == 0x113D:
			return Immediate
		}
		return Inherent
	case 0x60, 0xA0, 0xE0:
		return Indexed
	case 0x70, 0xB0, 0xF0:
		return Extended
	case 0x80, 0xC0:
		if op == 0x8D {
			return Relative
		}
		return Immediate
	}
	return Inherent
}
