package hd6309

import (
	"fmt"
	"strings"
)

var (
	// stackedNames are the PSH/PUL mask bits from bit 0; bit 6 is the other stack.
	stackedNames = [8]string{"CC", "A", "B", "DP", "X", "Y", "", "PC"}
	// pairNames are the EXG/TFR register codes.
	pairNames = [16]string{"D", "X", "Y", "U", "S", "PC", "", "", "A", "B", "CC", "DP", "", "", "", ""}
	indexNames = [4]string{"X", "Y", "U", "S"}
)

func formatTrace(t Trace) string {
	return fmt.Sprintf("/ %04X: [%2d] %-8s%s", t.PC, t.Cycles, t.Mnemonic, t.Operand)
}

// disassembleOperand renders the operand of the instruction just executed.
func (c *CPU) disassembleOperand() string {
	switch c.cur.opcode {
	case 0x34, 0x35:
		return registerList(byte(c.cur.operand), "U")
	case 0x36, 0x37:
		return registerList(byte(c.cur.operand), "S")
	case 0x1E, 0x1F:
		post := byte(c.cur.operand)
		return pairNames[post>>4] + "," + pairNames[post&0x0F]
	}
	switch c.cur.mode {
	case Immediate:
		return fmt.Sprintf("#$%02X", c.cur.operand)
	case Relative:
		return fmt.Sprintf("$%04X", c.cur.operand)
	case Direct:
		return fmt.Sprintf("<$%02X", c.cur.operand&0xFF)
	case Extended:
		return fmt.Sprintf("$%04X", c.cur.operand)
	case Indexed:
		return indexedOperand(c.cur.post, c.cur.offset)
	}
	return ""
}

func registerList(mask byte, other string) string {
	var names []string
	for i := 0; i < 8; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		if i == 6 {
			names = append(names, other)
		} else {
			names = append(names, stackedNames[i])
		}
	}
	return strings.Join(names, ",")
}

// indexedOperand renders an indexed postbyte with its constant offset.
func indexedOperand(post byte, offset uint16) string {
	r := indexNames[(post>>5)&0x03]
	if post&0x80 == 0 {
		return fmt.Sprintf("%d,%s", int16(ext5(post)), r)
	}
	var s string
	switch post & 0x1F {
	case 0x00:
		s = "," + r + "+"
	case 0x01, 0x11:
		s = "," + r + "++"
	case 0x02:
		s = ",-" + r
	case 0x03, 0x13:
		s = ",--" + r
	case 0x04, 0x14:
		s = "," + r
	case 0x05, 0x15:
		s = "B," + r
	case 0x06, 0x16:
		s = "A," + r
	case 0x08, 0x18, 0x09, 0x19:
		s = fmt.Sprintf("%d,%s", int16(offset), r)
	case 0x0B, 0x1B:
		s = "D," + r
	case 0x0C, 0x1C, 0x0D, 0x1D:
		s = fmt.Sprintf("%d,PCR", int16(offset))
	case 0x1F:
		s = fmt.Sprintf(",$%04X", offset)
	default:
		s = "?"
	}
	if post&0x10 != 0 {
		return "[" + s + "]"
	}
	return s
}
