package hd6309

import "testing"

const (
	testOrigin uint16 = 0x4000
	testStack  uint16 = 0x8000
	testUStack uint16 = 0x7000
)

// testBus is a flat 64K memory.
type testBus struct {
	mem    [0x10000]byte
	reads  int
	writes int
}

func (b *testBus) Read(address uint16) byte {
	b.reads++
	return b.mem[address]
}

func (b *testBus) Write(address uint16, data byte) {
	b.writes++
	b.mem[address] = data
}

func (b *testBus) setWord(address, x uint16) {
	b.mem[address] = byte(x >> 8)
	b.mem[address+1] = byte(x)
}

// newTestCPU loads program at testOrigin and resets the CPU into it.
func newTestCPU(t *testing.T, program ...byte) (*CPU, *testBus) {
	t.Helper()
	bus := &testBus{}
	bus.setWord(vectorReset, testOrigin)
	copy(bus.mem[testOrigin:], program)
	c := New(bus)
	c.reg.S = testStack
	c.reg.U = testUStack
	c.Reset()
	return c, bus
}

// tick runs n controller steps, failing the test on a fatal error.
func tick(t *testing.T, c *CPU, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := c.Tick(); err != nil {
			t.Fatalf("Tick() returned %v", err)
		}
	}
}
