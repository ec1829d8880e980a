package board

import "testing"

func TestACIAReceive(t *testing.T) {
	s := NewBufferSerial()
	a := NewACIA(s)
	a.Write(0, 0x03) // master reset
	a.Write(0, 0x95) // receive interrupt enabled
	if got := a.Read(0); got != statusTDRE {
		t.Fatalf("idle status want=%02X, got=%02X", statusTDRE, got)
	}
	if !a.IRQ() {
		t.Errorf("idle IRQ line want=high, got=low")
	}

	s.Send([]byte("ab"))
	a.Tick()
	if got := a.Read(0); got != statusIRQ|statusTDRE|statusRDRF {
		t.Errorf("status after receive want=%02X, got=%02X", statusIRQ|statusTDRE|statusRDRF, got)
	}
	if a.IRQ() {
		t.Errorf("IRQ line with pending data want=low, got=high")
	}
	// A second byte waits until the first is read.
	a.Tick()
	if got := a.Read(1); got != 'a' {
		t.Errorf("data want=%q, got=%q", 'a', got)
	}
	if !a.IRQ() || a.Read(0)&statusRDRF != 0 {
		t.Errorf("reading data must clear RDRF and IRQ, status=%02X", a.Read(0))
	}
	a.Tick()
	if got := a.Read(1); got != 'b' {
		t.Errorf("data want=%q, got=%q", 'b', got)
	}
	if s.Pending() != 0 {
		t.Errorf("pending want=0, got=%d", s.Pending())
	}
}

func TestACIAReceiveWithoutInterrupt(t *testing.T) {
	s := NewBufferSerial()
	a := NewACIA(s)
	a.Write(0, 0x15)
	s.Send([]byte{'x'})
	a.Tick()
	if a.Read(0)&statusRDRF == 0 {
		t.Errorf("RDRF want=set, got=clear")
	}
	if !a.IRQ() {
		t.Errorf("IRQ line with receive interrupt disabled want=high, got=low")
	}
}

func TestACIATransmit(t *testing.T) {
	s := NewBufferSerial()
	a := NewACIA(s)
	for _, x := range []byte("OK\r\n") {
		a.Write(1, x)
	}
	if got := s.Output(); got != "OK\r\n" {
		t.Errorf("output want=%q, got=%q", "OK\r\n", got)
	}
	a.Write(0, 0x35) // transmit interrupt enabled
	if a.IRQ() {
		t.Errorf("IRQ line with TDRE and transmit interrupt want=low, got=high")
	}
	a.Write(0, 0x03)
	if !a.IRQ() {
		t.Errorf("IRQ line after master reset want=high, got=low")
	}
}
