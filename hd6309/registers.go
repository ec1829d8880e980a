package hd6309

import (
	"fmt"
	"strings"
)

// Pair is a 16-bit register made of two addressable bytes.
// The high byte is the most significant one regardless of host byte order.
type Pair uint16

// High returns the most significant byte.
func (p Pair) High() byte { return byte(p >> 8) }

// Low returns the least significant byte.
func (p Pair) Low() byte { return byte(p) }

// Word returns the whole 16-bit value.
func (p Pair) Word() uint16 { return uint16(p) }

// SetHigh replaces the most significant byte.
func (p *Pair) SetHigh(x byte) { *p = *p&0x00FF | Pair(x)<<8 }

// SetLow replaces the least significant byte.
func (p *Pair) SetLow(x byte) { *p = *p&0xFF00 | Pair(x) }

// SetWord replaces the whole value.
func (p *Pair) SetWord(x uint16) { *p = Pair(x) }

// CC is the condition code register.
type CC byte

const (
	FlagC CC = 1 << iota // carry
	FlagV                // overflow
	FlagZ                // zero
	FlagN                // negative
	FlagI                // IRQ mask
	FlagH                // half carry
	FlagF                // FIRQ mask
	FlagE                // entire state stacked
)

// Has reports whether every bit of f is set.
func (cc CC) Has(f CC) bool { return cc&f == f }

// Set sets or clears the bits of f.
func (cc *CC) Set(f CC, on bool) {
	if on {
		*cc |= f
	} else {
		*cc &^= f
	}
}

// String renders the flags as "EFHINZVC", using '-' for clear bits.
func (cc CC) String() string {
	const names = "EFHINZVC"
	var sb strings.Builder
	for i := 0; i < 8; i++ {
		if cc&(0x80>>i) != 0 {
			sb.WriteByte(names[i])
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// MD is the 6309 mode and error register.
type MD byte

const (
	MDNative   MD = 1 << 0 // native mode
	MDFIRQMode MD = 1 << 1 // FIRQ stacks the entire state
	MDIllegal  MD = 1 << 6 // illegal instruction trap
	MDDivZero  MD = 1 << 7 // division by zero trap
)

// Registers is a snapshot of every programmer visible register.
type Registers struct {
	D  Pair // A:B
	W  Pair // E:F
	X  uint16
	Y  uint16
	U  uint16
	S  uint16
	PC uint16
	DP byte
	CC CC
	MD MD
}

func (r *Registers) A() byte     { return r.D.High() }
func (r *Registers) B() byte     { return r.D.Low() }
func (r *Registers) E() byte     { return r.W.High() }
func (r *Registers) F() byte     { return r.W.Low() }
func (r *Registers) SetA(x byte) { r.D.SetHigh(x) }
func (r *Registers) SetB(x byte) { r.D.SetLow(x) }
func (r *Registers) SetE(x byte) { r.W.SetHigh(x) }
func (r *Registers) SetF(x byte) { r.W.SetLow(x) }

// Q returns the 32-bit accumulator D:W.
func (r *Registers) Q() uint32 { return uint32(r.D)<<16 | uint32(r.W) }

// SetQ replaces D and W at once.
func (r *Registers) SetQ(q uint32) {
	r.D = Pair(q >> 16)
	r.W = Pair(q)
}

// Word register selectors, as encoded in EXG/TFR postbytes.
const (
	RegD  = 0
	RegX  = 1
	RegY  = 2
	RegU  = 3
	RegS  = 4
	RegPC = 5
)

// Byte register selectors.
const (
	RegA  = 8
	RegB  = 9
	RegCC = 10
	RegDP = 11
)

func isWordSelector(sel int) bool { return sel >= RegD && sel <= RegPC }
func isByteSelector(sel int) bool { return sel >= RegA && sel <= RegDP }

// Word reads a word class register.
func (r *Registers) Word(sel int) (uint16, error) {
	switch sel {
	case RegD:
		return r.D.Word(), nil
	case RegX:
		return r.X, nil
	case RegY:
		return r.Y, nil
	case RegU:
		return r.U, nil
	case RegS:
		return r.S, nil
	case RegPC:
		return r.PC, nil
	}
	return 0, fmt.Errorf("%w: word register %d", ErrInvalidRegisterSelector, sel)
}

// SetWord writes a word class register.
func (r *Registers) SetWord(sel int, x uint16) error {
	switch sel {
	case RegD:
		r.D.SetWord(x)
	case RegX:
		r.X = x
	case RegY:
		r.Y = x
	case RegU:
		r.U = x
	case RegS:
		r.S = x
	case RegPC:
		r.PC = x
	default:
		return fmt.Errorf("%w: word register %d", ErrInvalidRegisterSelector, sel)
	}
	return nil
}

// Byte reads a byte class register.
func (r *Registers) Byte(sel int) (byte, error) {
	switch sel {
	case RegA:
		return r.A(), nil
	case RegB:
		return r.B(), nil
	case RegCC:
		return byte(r.CC), nil
	case RegDP:
		return r.DP, nil
	}
	return 0, fmt.Errorf("%w: byte register %d", ErrInvalidRegisterSelector, sel)
}

// SetByte writes a byte class register.
func (r *Registers) SetByte(sel int, x byte) error {
	switch sel {
	case RegA:
		r.SetA(x)
	case RegB:
		r.SetB(x)
	case RegCC:
		r.CC = CC(x)
	case RegDP:
		r.DP = x
	default:
		return fmt.Errorf("%w: byte register %d", ErrInvalidRegisterSelector, sel)
	}
	return nil
}

// String formats the registers the way the trace log prints them.
func (r Registers) String() string {
	return fmt.Sprintf("PC:%04X CC:%s S:%04X U:%04X A:%02X B:%02X X:%04X Y:%04X DP:%02X",
		r.PC, r.CC, r.S, r.U, r.A(), r.B(), r.X, r.Y, r.DP)
}
