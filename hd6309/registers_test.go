package hd6309

import (
	"errors"
	"testing"
)

func TestPairViews(t *testing.T) {
	var r Registers
	r.D.SetWord(0x1234)
	if r.A() != 0x12 || r.B() != 0x34 {
		t.Errorf("A:B want=12:34, got=%02X:%02X", r.A(), r.B())
	}
	r.SetA(0xAB)
	if r.D.Word() != 0xAB34 {
		t.Errorf("D want=AB34, got=%04X", r.D.Word())
	}
	r.SetB(0xCD)
	if r.D.Word() != 0xABCD {
		t.Errorf("D want=ABCD, got=%04X", r.D.Word())
	}
	r.SetE(0x01)
	r.SetF(0x02)
	if r.W.Word() != 0x0102 {
		t.Errorf("W want=0102, got=%04X", r.W.Word())
	}
	if r.Q() != 0xABCD0102 {
		t.Errorf("Q want=ABCD0102, got=%08X", r.Q())
	}
	r.SetQ(0x11223344)
	if r.A() != 0x11 || r.B() != 0x22 || r.E() != 0x33 || r.F() != 0x44 {
		t.Errorf("SetQ(11223344), got A=%02X B=%02X E=%02X F=%02X", r.A(), r.B(), r.E(), r.F())
	}
}

func TestSelectors(t *testing.T) {
	r := Registers{D: 0x0102, X: 0x0304, Y: 0x0506, U: 0x0708, S: 0x090A, PC: 0x0B0C, DP: 0x0D, CC: 0x0E}
	words := map[int]uint16{RegD: 0x0102, RegX: 0x0304, RegY: 0x0506, RegU: 0x0708, RegS: 0x090A, RegPC: 0x0B0C}
	for sel, want := range words {
		got, err := r.Word(sel)
		if err != nil || got != want {
			t.Errorf("Word(%d) want=%04X, got=%04X, %v", sel, want, got, err)
		}
	}
	bytes := map[int]byte{RegA: 0x01, RegB: 0x02, RegCC: 0x0E, RegDP: 0x0D}
	for sel, want := range bytes {
		got, err := r.Byte(sel)
		if err != nil || got != want {
			t.Errorf("Byte(%d) want=%02X, got=%02X, %v", sel, want, got, err)
		}
	}
	for _, sel := range []int{-1, 6, 7, 8, 15} {
		if _, err := r.Word(sel); !errors.Is(err, ErrInvalidRegisterSelector) {
			t.Errorf("Word(%d) want=%v, got=%v", sel, ErrInvalidRegisterSelector, err)
		}
		if err := r.SetWord(sel, 0); !errors.Is(err, ErrInvalidRegisterSelector) {
			t.Errorf("SetWord(%d) want=%v, got=%v", sel, ErrInvalidRegisterSelector, err)
		}
	}
	for _, sel := range []int{0, 5, 7, 12} {
		if _, err := r.Byte(sel); !errors.Is(err, ErrInvalidRegisterSelector) {
			t.Errorf("Byte(%d) want=%v, got=%v", sel, ErrInvalidRegisterSelector, err)
		}
		if err := r.SetByte(sel, 0); !errors.Is(err, ErrInvalidRegisterSelector) {
			t.Errorf("SetByte(%d) want=%v, got=%v", sel, ErrInvalidRegisterSelector, err)
		}
	}
}

func TestCCString(t *testing.T) {
	tests := []struct {
		cc   CC
		want string
	}{
		{0, "--------"},
		{0xFF, "EFHINZVC"},
		{FlagI | FlagF, "-F-I----"},
		{FlagE | FlagC, "E------C"},
	}
	for _, tt := range tests {
		if got := tt.cc.String(); got != tt.want {
			t.Errorf("CC(%02X).String() want=%q, got=%q", byte(tt.cc), tt.want, got)
		}
	}
}

func TestRegistersString(t *testing.T) {
	r := Registers{D: 0x1234, X: 0x5678, Y: 0x9ABC, U: 0xDEF0, S: 0x0100, PC: 0xC000, DP: 0x02, CC: FlagZ}
	want := "PC:C000 CC:-----Z-- S:0100 U:DEF0 A:12 B:34 X:5678 Y:9ABC DP:02"
	if got := r.String(); got != want {
		t.Errorf("String() want=%q, got=%q", want, got)
	}
}
