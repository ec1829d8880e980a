package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jyane/j6309/board"
)

// echoFirmware prints "> " then echoes received bytes from its FIRQ handler.
var echoFirmware = map[uint16][]byte{
	0xC000: {
		0x10, 0xCE, 0x80, 0x00, // LDS #$8000
		0x86, 0x95, // LDA #$95
		0xB7, 0xA0, 0x00, // STA $A000
		0x86, '>', // LDA #'>'
		0xB7, 0xA0, 0x01, // STA $A001
		0x86, ' ', // LDA #' '
		0xB7, 0xA0, 0x01, // STA $A001
		0x1C, 0xBF, // ANDCC #$BF
		0x13,       // SYNC
		0x20, 0xFD, // BRA *-3
	},
	0xC100: {
		0xB6, 0xA0, 0x01, // LDA $A001
		0xB7, 0xA0, 0x01, // STA $A001
		0x3B, // RTI
	},
	0xFFF6: {0xC1, 0x00},
	0xFFFE: {0xC0, 0x00},
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	image := make([]byte, 0x4000)
	for address, b := range echoFirmware {
		copy(image[address-0xC000:], b)
	}
	path := filepath.Join(t.TempDir(), "echo.bin")
	if err := os.WriteFile(path, image, 0644); err != nil {
		t.Fatal(err)
	}
	cfg := board.DefaultConfig()
	cfg.Disks = [board.MaxDisks]string{}
	c, err := board.NewConsole(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Load(path); err != nil {
		t.Fatal(err)
	}
	r := New(c)
	t.Cleanup(func() {
		r.Close()
		c.Close()
	})
	return r
}

func TestScriptEcho(t *testing.T) {
	r := newTestRunner(t)
	err := r.DoString(`
		assert(run(100, "> "), "no prompt")
		send("hello\r")
		assert(run(1000, "hello\r"), "no echo: " .. output())
		step(5)
		assert(reg("s") == 0x8000, "stack")
		assert(cycles() > 0)
	`)
	if err != nil {
		t.Fatalf("DoString() = %v", err)
	}
}

func TestScriptRegisters(t *testing.T) {
	r := newTestRunner(t)
	err := r.DoString(`
		setreg("d", 0x1234)
		assert(reg("a") == 0x12 and reg("b") == 0x34)
		setreg("q", 0x01020304)
		assert(reg("w") == 0x0304 and reg("e") == 0x03 and reg("f") == 0x04)
		assert(reg("q") == 0x01020304)
		setreg("pc", 0xC100)
		assert(reg("PC") == 0xC100)
		setreg("md", 2)
		assert(reg("md") == 2)
		reset()
		assert(reg("pc") == 0xC000 and reg("md") == 0 and reg("cc") == 0x50)
	`)
	if err != nil {
		t.Fatalf("DoString() = %v", err)
	}
}

func TestScriptMemoryAndPins(t *testing.T) {
	r := newTestRunner(t)
	err := r.DoString(`
		poke(0x1000, 0xAB)
		assert(peek(0x1000) == 0xAB)
		assert(peek(0xC000) == 0x10)
		poke(0xC000, 0)
		assert(peek(0xC000) == 0x10, "ROM must ignore writes")
		-- The NMI vector at 0xFFFC holds 0x0000, where a NOP waits.
		poke(0x0000, 0x12)
		step(4)
		pin("nmi", false)
		step()
		assert(reg("pc") == 0x0001, "pc=" .. reg("pc"))
	`)
	if err != nil {
		t.Fatalf("DoString() = %v", err)
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		script string
		want   string
	}{
		{`reg("zz")`, "unknown register"},
		{`setreg("zz", 1)`, "unknown register"},
		{`pin("reset", true)`, "unknown pin"},
		{`setreg("pc", 0xC200) poke(0xC200, 0) step()`, ""},
	}
	for _, tt := range tests {
		r := newTestRunner(t)
		err := r.DoString(tt.script)
		if tt.want == "" {
			if err != nil {
				t.Errorf("%s, want no error, got=%v", tt.script, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s, want error containing %q, got=%v", tt.script, tt.want, err)
		}
	}
}

func TestScriptFatalCPUError(t *testing.T) {
	r := newTestRunner(t)
	// LDA with an invalid indexed postbyte placed in RAM.
	err := r.DoString(`
		poke(0x2000, 0xA6)
		poke(0x2001, 0x87)
		setreg("pc", 0x2000)
		step()
	`)
	if err == nil || !strings.Contains(err.Error(), "indexed") {
		t.Errorf("want an indexed operand error, got=%v", err)
	}
}

func TestScriptFile(t *testing.T) {
	r := newTestRunner(t)
	path := filepath.Join(t.TempDir(), "test.lua")
	if err := os.WriteFile(path, []byte(`assert(run(100, "> "))`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := r.DoFile(path); err != nil {
		t.Errorf("DoFile() = %v", err)
	}
	if err := r.DoFile(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Errorf("DoFile() on a missing file want an error")
	}
}
