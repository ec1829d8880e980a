package hd6309

import "testing"

const (
	nmiHandler  uint16 = 0x5000
	firqHandler uint16 = 0x5100
	irqHandler  uint16 = 0x5200
	swiHandler  uint16 = 0x5300
	swi2Handler uint16 = 0x5400
	swi3Handler uint16 = 0x5500
)

// lines holds the levels of the three interrupt inputs, true meaning high.
type lines struct {
	nmi, firq, irq bool
}

// newInterruptCPU returns a CPU with every vector pointing to a NOP sled
// and its interrupt pins bound to the returned lines.
func newInterruptCPU(t *testing.T, program ...byte) (*CPU, *testBus, *lines) {
	t.Helper()
	c, bus := newTestCPU(t, program...)
	for v, h := range map[uint16]uint16{
		vectorNMI: nmiHandler, vectorFIRQ: firqHandler, vectorIRQ: irqHandler,
		vectorSWI: swiHandler, vectorSWI2: swi2Handler, vectorSWI3: swi3Handler,
	} {
		bus.setWord(v, h)
		for i := uint16(0); i < 0x10; i++ {
			bus.mem[h+i] = 0x12
		}
	}
	l := &lines{true, true, true}
	c.NMI.Bind(func() bool { return l.nmi })
	c.FIRQ.Bind(func() bool { return l.firq })
	c.IRQ.Bind(func() bool { return l.irq })
	return c, bus, l
}

func TestInterruptPriority(t *testing.T) {
	c, bus, l := newInterruptCPU(t, 0x12)
	bus.mem[nmiHandler] = 0x1C // ANDCC #$AF unmasks FIRQ and IRQ
	bus.mem[nmiHandler+1] = 0xAF
	c.reg.CC = 0
	l.nmi, l.firq, l.irq = false, false, false

	tick(t, c, 1)
	if c.reg.PC != nmiHandler+2 {
		t.Fatalf("NMI first, PC want=%04X, got=%04X", nmiHandler+2, c.reg.PC)
	}
	if c.reg.S != testStack-12 {
		t.Errorf("NMI stacks everything, S want=%04X, got=%04X", testStack-12, c.reg.S)
	}

	tick(t, c, 1)
	if c.reg.PC != firqHandler+1 {
		t.Fatalf("FIRQ second, PC want=%04X, got=%04X", firqHandler+1, c.reg.PC)
	}
	if c.reg.S != testStack-15 {
		t.Errorf("FIRQ stacks PC and CC, S want=%04X, got=%04X", testStack-15, c.reg.S)
	}
	if c.reg.CC.Has(FlagE) {
		t.Errorf("FIRQ clears E, got CC=%v", c.reg.CC)
	}

	// FIRQ masked itself; IRQ stays pending while FIRQ code runs.
	for i := 0; i < 5; i++ {
		tick(t, c, 1)
		if c.reg.PC != firqHandler+2+uint16(i) {
			t.Fatalf("FIRQ handler, PC want=%04X, got=%04X", firqHandler+2+uint16(i), c.reg.PC)
		}
	}

	// Unmasking F with FIRQ still asserted services FIRQ again, not IRQ.
	c.reg.CC.Set(FlagF, false)
	c.reg.CC.Set(FlagI, false)
	tick(t, c, 1)
	if c.reg.PC != firqHandler+1 {
		t.Errorf("FIRQ before IRQ, PC want=%04X, got=%04X", firqHandler+1, c.reg.PC)
	}

	// With FIRQ released, IRQ is next.
	l.firq = true
	c.reg.CC.Set(FlagF, false)
	c.reg.CC.Set(FlagI, false)
	tick(t, c, 1)
	if c.reg.PC != irqHandler+1 {
		t.Errorf("IRQ last, PC want=%04X, got=%04X", irqHandler+1, c.reg.PC)
	}
}

func TestNMIEdge(t *testing.T) {
	c, _, l := newInterruptCPU(t, 0x12, 0x12, 0x12, 0x12)
	l.nmi = false
	tick(t, c, 1)
	if c.reg.PC != nmiHandler+1 {
		t.Fatalf("NMI falling edge, PC want=%04X, got=%04X", nmiHandler+1, c.reg.PC)
	}
	// Held low: no new edge.
	tick(t, c, 1)
	if c.reg.PC != nmiHandler+2 {
		t.Errorf("NMI held low, PC want=%04X, got=%04X", nmiHandler+2, c.reg.PC)
	}
	l.nmi = true
	tick(t, c, 1)
	l.nmi = false
	tick(t, c, 1)
	if c.reg.PC != nmiHandler+1 {
		t.Errorf("second NMI edge, PC want=%04X, got=%04X", nmiHandler+1, c.reg.PC)
	}
}

func TestNMIIgnoresMasks(t *testing.T) {
	c, _, l := newInterruptCPU(t, 0x12)
	c.reg.CC = FlagI | FlagF
	l.nmi = false
	tick(t, c, 1)
	if c.reg.PC != nmiHandler+1 {
		t.Errorf("masked NMI, PC want=%04X, got=%04X", nmiHandler+1, c.reg.PC)
	}
}

func TestMaskedIRQ(t *testing.T) {
	c, _, l := newInterruptCPU(t, 0x12, 0x12)
	c.reg.CC = FlagI
	l.irq = false
	tick(t, c, 1)
	if c.reg.PC != testOrigin+1 {
		t.Errorf("masked IRQ, PC want=%04X, got=%04X", testOrigin+1, c.reg.PC)
	}
}

func TestFIRQReturn(t *testing.T) {
	c, bus, l := newInterruptCPU(t, 0x12, 0x12)
	bus.mem[firqHandler] = 0x3B // RTI
	c.reg.CC = FlagN
	c.reg.D = 0x1234
	l.firq = false
	tick(t, c, 1) // enter FIRQ and execute RTI
	if c.reg.PC != testOrigin {
		t.Fatalf("FIRQ then RTI, PC want=%04X, got=%04X", testOrigin, c.reg.PC)
	}
	if c.reg.S != testStack || c.reg.CC != FlagN || c.reg.D != 0x1234 {
		t.Errorf("FIRQ then RTI, want S=%04X CC=%v D=1234, got S=%04X CC=%v D=%04X",
			testStack, FlagN, c.reg.S, c.reg.CC, c.reg.D)
	}
}

func TestFIRQModeStacksEverything(t *testing.T) {
	c, _, l := newInterruptCPU(t, 0x12)
	c.reg.CC = 0
	c.reg.MD = MDFIRQMode
	l.firq = false
	tick(t, c, 1)
	if c.reg.S != testStack-12 || !c.reg.CC.Has(FlagE) {
		t.Errorf("FIRQ mode, want S=%04X and E set, got S=%04X CC=%v", testStack-12, c.reg.S, c.reg.CC)
	}
}

func TestSoftwareInterrupts(t *testing.T) {
	tests := []struct {
		name    string
		program []byte
		handler uint16
		masked  bool
	}{
		{"SWI", []byte{0x3F}, swiHandler, true},
		{"SWI2", []byte{0x10, 0x3F}, swi2Handler, false},
		{"SWI3", []byte{0x11, 0x3F}, swi3Handler, false},
	}
	for _, tt := range tests {
		c, bus, _ := newInterruptCPU(t, tt.program...)
		bus.mem[tt.handler] = 0x3B // RTI
		c.reg.CC = FlagC
		c.reg.X = 0xCAFE
		tick(t, c, 1)
		if c.reg.PC != tt.handler {
			t.Fatalf("%v, PC want=%04X, got=%04X", tt.name, tt.handler, c.reg.PC)
		}
		if c.reg.S != testStack-12 {
			t.Errorf("%v, S want=%04X, got=%04X", tt.name, testStack-12, c.reg.S)
		}
		if got := c.reg.CC.Has(FlagI) && c.reg.CC.Has(FlagF); got != tt.masked {
			t.Errorf("%v, masks set want=%v, got=%v", tt.name, tt.masked, got)
		}
		if c.Cycles() != 4 {
			t.Errorf("%v, cycles want=4, got=%d", tt.name, c.Cycles())
		}
		c.reg.X = 0
		tick(t, c, 1)
		wantPC := testOrigin + uint16(len(tt.program))
		if c.reg.PC != wantPC || c.reg.S != testStack || c.reg.X != 0xCAFE {
			t.Errorf("%v then RTI, want PC=%04X S=%04X X=CAFE, got PC=%04X S=%04X X=%04X",
				tt.name, wantPC, testStack, c.reg.PC, c.reg.S, c.reg.X)
		}
		if c.reg.CC != FlagE|FlagC {
			t.Errorf("%v then RTI, CC want=%v, got=%v", tt.name, FlagE|FlagC, c.reg.CC)
		}
	}
}

func TestWaitWithMask(t *testing.T) {
	// CWAI #$FF keeps everything masked.
	c, bus, l := newInterruptCPU(t, 0x3C, 0xFF, 0x12)
	c.reg.CC = FlagI | FlagF
	tick(t, c, 1)
	if c.State() != WaitingForUnmaskedInterrupt {
		t.Fatalf("CWAI, state want=%v, got=%v", WaitingForUnmaskedInterrupt, c.State())
	}
	if c.reg.S != testStack-12 {
		t.Fatalf("CWAI, S want=%04X, got=%04X", testStack-12, c.reg.S)
	}
	if bus.mem[testStack-12]&byte(FlagE) == 0 {
		t.Errorf("CWAI, stacked CC want E set, got=%02X", bus.mem[testStack-12])
	}

	// Masked IRQ keeps it waiting; cycles still run.
	l.irq = false
	cycles := c.Cycles()
	tick(t, c, 3)
	if c.reg.PC != testOrigin+2 || c.State() != WaitingForUnmaskedInterrupt {
		t.Fatalf("CWAI with masked IRQ, want PC=%04X waiting, got PC=%04X %v", testOrigin+2, c.reg.PC, c.State())
	}
	if c.Cycles() != cycles+3 {
		t.Errorf("CWAI, cycles want=%d, got=%d", cycles+3, c.Cycles())
	}

	c.reg.CC.Set(FlagI, false)
	tick(t, c, 1)
	if c.reg.PC != irqHandler+1 {
		t.Errorf("CWAI then IRQ, PC want=%04X, got=%04X", irqHandler+1, c.reg.PC)
	}
	if c.reg.S != testStack-12 {
		t.Errorf("CWAI then IRQ must not stack again, S want=%04X, got=%04X", testStack-12, c.reg.S)
	}
	if c.State() != Running {
		t.Errorf("CWAI then IRQ, state want=%v, got=%v", Running, c.State())
	}
}

func TestWaitWithMaskClearsBits(t *testing.T) {
	// CWAI #$EF clears I itself, so an IRQ ends the wait.
	c, bus, l := newInterruptCPU(t, 0x3C, 0xEF, 0x12)
	bus.mem[irqHandler] = 0x3B // RTI
	c.reg.CC = FlagI | FlagF | FlagC
	tick(t, c, 1)
	if c.reg.CC.Has(FlagI) || !c.reg.CC.Has(FlagF) {
		t.Errorf("CWAI #$EF, CC want I clear F set, got=%v", c.reg.CC)
	}
	l.irq = false
	tick(t, c, 1) // enter IRQ and execute RTI
	if c.reg.PC != testOrigin+2 || c.reg.S != testStack {
		t.Errorf("CWAI, IRQ, RTI, want PC=%04X S=%04X, got PC=%04X S=%04X", testOrigin+2, testStack, c.reg.PC, c.reg.S)
	}
}

func TestSync(t *testing.T) {
	c, _, l := newInterruptCPU(t, 0x13, 0x12, 0x12)
	c.reg.CC = FlagI | FlagF
	tick(t, c, 1)
	if c.State() != WaitingForAnyInterrupt {
		t.Fatalf("SYNC, state want=%v, got=%v", WaitingForAnyInterrupt, c.State())
	}
	tick(t, c, 10)
	if c.reg.PC != testOrigin+1 {
		t.Fatalf("SYNC without interrupt, PC want=%04X, got=%04X", testOrigin+1, c.reg.PC)
	}
	// A masked line ends SYNC without servicing it.
	l.irq = false
	tick(t, c, 1)
	if c.reg.PC != testOrigin+2 || c.State() != Running {
		t.Errorf("SYNC then masked IRQ, want PC=%04X running, got PC=%04X %v", testOrigin+2, c.reg.PC, c.State())
	}
}

func TestSyncServicesUnmasked(t *testing.T) {
	c, _, l := newInterruptCPU(t, 0x13, 0x12)
	c.reg.CC = 0
	tick(t, c, 1)
	l.firq = false
	tick(t, c, 1)
	if c.reg.PC != firqHandler+1 {
		t.Errorf("SYNC then FIRQ, PC want=%04X, got=%04X", firqHandler+1, c.reg.PC)
	}
}

func TestSuspendedTickSkipsBus(t *testing.T) {
	c, bus, _ := newInterruptCPU(t, 0x13)
	tick(t, c, 1)
	reads, writes := bus.reads, bus.writes
	tick(t, c, 100)
	if bus.reads != reads || bus.writes != writes {
		t.Errorf("SYNC wait touched the bus: reads %d->%d writes %d->%d", reads, bus.reads, writes, bus.writes)
	}
}
