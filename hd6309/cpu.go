package hd6309

import "fmt"

// CPU emulates the Hitachi HD6309, a superset of the Motorola MC6809.
// References:
//   Motorola MC6809 Programming Manual (M6809PM/AD)
//   HD6309 Technical Reference, Chris Burke

// Interrupt and reset vectors.
const (
	vectorSWI3  uint16 = 0xFFF2
	vectorSWI2  uint16 = 0xFFF4
	vectorFIRQ  uint16 = 0xFFF6
	vectorIRQ   uint16 = 0xFFF8
	vectorSWI   uint16 = 0xFFFA
	vectorNMI   uint16 = 0xFFFC
	vectorReset uint16 = 0xFFFE
)

// Bus is the address space seen by the CPU.
// Each call addresses exactly one byte; implementations must not call back into the CPU.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, data byte)
}

// Pin is an active-low input line. An unbound pin floats high.
type Pin struct {
	level func() bool
}

// Bind connects the pin to a source that reports the line level, true meaning high.
func (p *Pin) Bind(level func() bool) { p.level = level }

// High reports the current line level.
func (p *Pin) High() bool {
	if p.level == nil {
		return true
	}
	return p.level()
}

// State is the run state of the interrupt controller.
type State int

const (
	Running State = iota
	WaitingForAnyInterrupt
	WaitingForUnmaskedInterrupt
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case WaitingForAnyInterrupt:
		return "sync"
	case WaitingForUnmaskedInterrupt:
		return "cwai"
	}
	return "unknown"
}

// Trace describes an executed instruction.
type Trace struct {
	PC       uint16
	Cycles   uint64 // cycles spent by the instruction
	Mnemonic string
	Operand  string
}

func (t Trace) String() string {
	return formatTrace(t)
}

// Hooks are optional callbacks around each executed instruction.
type Hooks struct {
	PreExec  func(Registers)
	PostExec func(Trace)
}

type CPU struct {
	reg          Registers
	cycles       uint64
	state        State
	nmiPrevious  bool
	bus          Bus
	instructions [3][256]instruction
	cur          decoded // instruction being executed
	hooks        Hooks

	NMI  Pin
	FIRQ Pin
	IRQ  Pin
}

// New creates a CPU attached to bus. Reset must be called before Tick.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus, nmiPrevious: true}
	c.instructions = c.createInstructions()
	return c
}

// SetHooks installs tracing hooks. A zero Hooks disables tracing.
func (c *CPU) SetHooks(h Hooks) { c.hooks = h }

// Registers returns a copy of the register file.
func (c *CPU) Registers() Registers { return c.reg }

// SetRegisters replaces the register file.
func (c *CPU) SetRegisters(r Registers) { c.reg = r }

// Cycles returns the number of cycles elapsed since reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// State returns whether the CPU runs or waits for an interrupt.
func (c *CPU) State() State { return c.state }

// Reset does the power-on sequence. U and S keep their values.
func (c *CPU) Reset() {
	c.cycles = 0
	c.reg.DP = 0
	c.reg.D = 0
	c.reg.W = 0
	c.reg.X = 0
	c.reg.Y = 0
	c.reg.MD = 0
	c.reg.CC = FlagI | FlagF
	c.state = Running
	c.nmiPrevious = true
	c.reg.PC = c.read16(vectorReset)
}

// Tick advances the CPU by one controller step, which executes at most one instruction.
// The returned error is fatal.
func (c *CPU) Tick() error {
	c.cycles++

	nmi, firq, irq := c.NMI.High(), c.FIRQ.High(), c.IRQ.High()
	nmiTriggered := !nmi && c.nmiPrevious
	c.nmiPrevious = nmi

	if c.state == WaitingForAnyInterrupt {
		if !nmiTriggered && firq && irq {
			return nil
		}
		c.state = Running
	}

	switch {
	case nmiTriggered:
		c.serviceNMI()
	case !firq && !c.reg.CC.Has(FlagF):
		c.serviceFIRQ()
	case !irq && !c.reg.CC.Has(FlagI):
		c.serviceIRQ()
	case c.state == WaitingForUnmaskedInterrupt:
		return nil
	}
	c.state = Running

	if err := c.step(); err != nil {
		return err
	}
	c.cycles--
	return nil
}

// step fetches, decodes and executes one instruction.
func (c *CPU) step() error {
	if c.hooks.PreExec != nil {
		c.hooks.PreExec(c.reg)
	}
	start := c.cycles
	c.cur = decoded{pc: c.reg.PC}
	c.cur.opcode = uint16(c.fetch())
	if c.cur.opcode == 0x10 || c.cur.opcode == 0x11 {
		c.cur.opcode = c.cur.opcode<<8 | uint16(c.fetch())
	}
	c.cur.mode = modeOf(c.cur.opcode)
	inst := c.lookup(c.cur.opcode)
	c.cur.mnemonic = inst.mnemonic
	if err := inst.execute(); err != nil {
		return fmt.Errorf("%04X: opcode %X: %w", c.cur.pc, c.cur.opcode, err)
	}
	if c.hooks.PostExec != nil {
		c.hooks.PostExec(Trace{
			PC:       c.cur.pc,
			Cycles:   c.cycles - start,
			Mnemonic: c.cur.mnemonic,
			Operand:  c.disassembleOperand(),
		})
	}
	return nil
}

// serviceNMI enters the NMI handler. The context is already stacked after CWAI.
func (c *CPU) serviceNMI() {
	if c.state != WaitingForUnmaskedInterrupt {
		c.reg.CC.Set(FlagE, true)
		c.push(&c.reg.S, c.reg.U, 0xFF)
	}
	c.reg.CC |= FlagF | FlagI
	c.reg.PC = c.read16(vectorNMI)
}

// serviceFIRQ enters the FIRQ handler. Only CC and PC are stacked unless
// the FIRQ mode bit asks for the entire state.
func (c *CPU) serviceFIRQ() {
	if c.state != WaitingForUnmaskedInterrupt {
		if c.reg.MD&MDFIRQMode != 0 {
			c.reg.CC.Set(FlagE, true)
			c.push(&c.reg.S, c.reg.U, 0xFF)
		} else {
			c.reg.CC.Set(FlagE, false)
			c.push(&c.reg.S, c.reg.U, 0x81)
		}
	}
	c.reg.CC |= FlagF | FlagI
	c.reg.PC = c.read16(vectorFIRQ)
}

func (c *CPU) serviceIRQ() {
	if c.state != WaitingForUnmaskedInterrupt {
		c.reg.CC.Set(FlagE, true)
		c.push(&c.reg.S, c.reg.U, 0xFF)
	}
	c.reg.CC |= FlagF | FlagI
	c.reg.PC = c.read16(vectorIRQ)
}

func (c *CPU) read(address uint16) byte {
	return c.bus.Read(address)
}

func (c *CPU) write(address uint16, data byte) {
	c.bus.Write(address, data)
}

// read16 reads a big-endian word.
func (c *CPU) read16(address uint16) uint16 {
	h := c.bus.Read(address)
	l := c.bus.Read(address + 1)
	return uint16(h)<<8 | uint16(l)
}

// write16 writes a big-endian word.
func (c *CPU) write16(address uint16, data uint16) {
	c.bus.Write(address, byte(data>>8))
	c.bus.Write(address+1, byte(data))
}

// fetch reads the byte at PC and advances PC.
func (c *CPU) fetch() byte {
	x := c.read(c.reg.PC)
	c.reg.PC++
	return x
}

// fetch16 reads the big-endian word at PC and advances PC.
func (c *CPU) fetch16() uint16 {
	h := c.fetch()
	l := c.fetch()
	return uint16(h)<<8 | uint16(l)
}

// pushByte pre-decrements sp and stores x.
func (c *CPU) pushByte(sp *uint16, x byte) {
	*sp--
	c.write(*sp, x)
}

// pushWord stores the low byte first so the word reads big-endian upwards.
func (c *CPU) pushWord(sp *uint16, x uint16) {
	c.pushByte(sp, byte(x))
	c.pushByte(sp, byte(x>>8))
}

// pullByte loads a byte and post-increments sp.
func (c *CPU) pullByte(sp *uint16) byte {
	x := c.read(*sp)
	*sp++
	return x
}

func (c *CPU) pullWord(sp *uint16) uint16 {
	h := c.pullByte(sp)
	l := c.pullByte(sp)
	return uint16(h)<<8 | uint16(l)
}

// push stores the registers selected by mask onto the stack sp.
// other is the opposite stack pointer, stacked for bit 6.
// Order from bit 7 down: PC, other stack, Y, X, DP, B, A, CC.
func (c *CPU) push(sp *uint16, other uint16, mask byte) {
	if mask&0x80 != 0 {
		c.pushWord(sp, c.reg.PC)
	}
	if mask&0x40 != 0 {
		c.pushWord(sp, other)
	}
	if mask&0x20 != 0 {
		c.pushWord(sp, c.reg.Y)
	}
	if mask&0x10 != 0 {
		c.pushWord(sp, c.reg.X)
	}
	if mask&0x08 != 0 {
		c.pushByte(sp, c.reg.DP)
	}
	if mask&0x04 != 0 {
		c.pushByte(sp, c.reg.B())
	}
	if mask&0x02 != 0 {
		c.pushByte(sp, c.reg.A())
	}
	if mask&0x01 != 0 {
		c.pushByte(sp, byte(c.reg.CC))
	}
}

// pull is the inverse of push.
func (c *CPU) pull(sp *uint16, other *uint16, mask byte) {
	if mask&0x01 != 0 {
		c.reg.CC = CC(c.pullByte(sp))
	}
	if mask&0x02 != 0 {
		c.reg.SetA(c.pullByte(sp))
	}
	if mask&0x04 != 0 {
		c.reg.SetB(c.pullByte(sp))
	}
	if mask&0x08 != 0 {
		c.reg.DP = c.pullByte(sp)
	}
	if mask&0x10 != 0 {
		c.reg.X = c.pullWord(sp)
	}
	if mask&0x20 != 0 {
		c.reg.Y = c.pullWord(sp)
	}
	if mask&0x40 != 0 {
		*other = c.pullWord(sp)
	}
	if mask&0x80 != 0 {
		c.reg.PC = c.pullWord(sp)
	}
}
