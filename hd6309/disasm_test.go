package hd6309

import "testing"

func TestRegisterList(t *testing.T) {
	tests := []struct {
		mask  byte
		other string
		want  string
	}{
		{0x00, "U", ""},
		{0x06, "U", "A,B"},
		{0xFF, "U", "CC,A,B,DP,X,Y,U,PC"},
		{0x40, "S", "S"},
		{0x81, "S", "CC,PC"},
	}
	for _, tt := range tests {
		if got := registerList(tt.mask, tt.other); got != tt.want {
			t.Errorf("registerList(%02X, %s) want=%q, got=%q", tt.mask, tt.other, tt.want, got)
		}
	}
}

func TestIndexedOperand(t *testing.T) {
	tests := []struct {
		post   byte
		offset uint16
		want   string
	}{
		{0x05, 0, "5,X"},
		{0x3F, 0, "-1,Y"},
		{0xC0, 0, ",U+"},
		{0xE1, 0, ",S++"},
		{0x82, 0, ",-X"},
		{0x83, 0, ",--X"},
		{0x84, 0, ",X"},
		{0xA5, 0, "B,Y"},
		{0xA6, 0, "A,Y"},
		{0x88, 0xFFF0, "-16,X"},
		{0x89, 0x1234, "4660,X"},
		{0x8B, 0, "D,X"},
		{0x8C, 0x0010, "16,PCR"},
		{0x94, 0, "[,X]"},
		{0x91, 0, "[,X++]"},
		{0xB8, 0x0002, "[2,Y]"},
		{0x9F, 0xC000, "[,$C000]"},
	}
	for _, tt := range tests {
		if got := indexedOperand(tt.post, tt.offset); got != tt.want {
			t.Errorf("indexedOperand(%02X, %04X) want=%q, got=%q", tt.post, tt.offset, tt.want, got)
		}
	}
}

func TestTraceString(t *testing.T) {
	tr := Trace{PC: 0xC012, Cycles: 4, Mnemonic: "JSR", Operand: "$C100"}
	want := "/ C012: [ 4] JSR     $C100"
	if got := tr.String(); got != want {
		t.Errorf("String() want=%q, got=%q", want, got)
	}
}
