package board

// Serial is the far end of the ACIA: a host terminal or a scripted buffer.
type Serial interface {
	// Poll reports whether a received byte is waiting.
	Poll() bool
	// Read returns the waiting byte. It is only called after Poll returned true.
	Read() byte
	Write(data byte)
}

// Status register bits.
const (
	statusRDRF byte = 0x01 // receive data register full
	statusTDRE byte = 0x02 // transmit data register empty
	statusIRQ  byte = 0x80
)

// Control register fields.
const (
	controlDivideMask  byte = 0x03
	controlMasterReset byte = 0x03
	controlTxMask      byte = 0x60
	controlTxIRQ       byte = 0x20
	controlRxIRQ       byte = 0x80
)

// ACIA emulates a Motorola MC6850 asynchronous communications interface adapter.
// Offset 0 is control (write) and status (read), offset 1 is transmit (write)
// and receive (read) data. Transmission completes immediately.
type ACIA struct {
	serial  Serial
	control byte
	status  byte
	rx      byte
}

// NewACIA creates an ACIA talking to serial.
func NewACIA(serial Serial) *ACIA {
	return &ACIA{serial: serial, status: statusTDRE}
}

// Read reads a register.
func (a *ACIA) Read(offset uint16) byte {
	if offset&1 == 0 {
		return a.status
	}
	a.status &^= statusRDRF
	a.updateIRQ()
	return a.rx
}

// Write writes a register.
func (a *ACIA) Write(offset uint16, data byte) {
	if offset&1 == 0 {
		a.control = data
		if data&controlDivideMask == controlMasterReset {
			a.status = statusTDRE
			a.rx = 0
		}
		a.updateIRQ()
		return
	}
	a.serial.Write(data)
	a.updateIRQ()
}

// Tick latches a byte from the serial endpoint once the previous one was read.
func (a *ACIA) Tick() {
	if a.status&statusRDRF == 0 && a.serial.Poll() {
		a.rx = a.serial.Read()
		a.status |= statusRDRF
	}
	a.updateIRQ()
}

func (a *ACIA) updateIRQ() {
	irq := a.control&controlRxIRQ != 0 && a.status&statusRDRF != 0
	if a.control&controlTxMask == controlTxIRQ && a.status&statusTDRE != 0 {
		irq = true
	}
	if irq {
		a.status |= statusIRQ
	} else {
		a.status &^= statusIRQ
	}
}

// IRQ reports the level of the active-low interrupt output; false means asserted.
func (a *ACIA) IRQ() bool {
	return a.status&statusIRQ == 0
}
