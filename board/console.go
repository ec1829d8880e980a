package board

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/jyane/j6309/hd6309"
)

const (
	// checkInterval is the number of steps between cancellation checks.
	checkInterval = 4096
	// idleSleep is how long Run yields while the CPU waits for an interrupt.
	idleSleep = time.Millisecond
)

// Config describes the machine memory map and its peripherals.
type Config struct {
	RAMSize  int    // power of two, mapped at 0
	ROMBase  uint16 // ROM runs from here to 0xFFFF
	ACIABase uint16
	ACIAMask uint16
	DiskBase uint16
	DiskMask uint16
	Disks    [MaxDisks]string // image paths, empty for no drive
	Serial   Serial           // nil gives a BufferSerial
}

// DefaultConfig returns the reference machine: 32K RAM, 16K ROM, an ACIA at
// 0xA000 and a disk controller at 0xA008 with disk1.img as drive 0.
func DefaultConfig() Config {
	return Config{
		RAMSize:  0x8000,
		ROMBase:  0xC000,
		ACIABase: 0xA000,
		ACIAMask: 0xFFFE,
		DiskBase: 0xA008,
		DiskMask: 0xFFF8,
		Disks:    [MaxDisks]string{"disk1.img", ""},
	}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Console is a complete HD6309 machine.
type Console struct {
	CPU    *hd6309.CPU
	Bus    *Bus
	RAM    *RAM
	ROM    *ROM
	ACIA   *ACIA
	Disks  *DiskController
	Serial Serial

	halted atomic.Bool
}

// NewConsole wires the machine described by cfg. The CPU is not reset until Reset or Load.
func NewConsole(cfg Config) (*Console, error) {
	if !isPowerOfTwo(cfg.RAMSize) || cfg.RAMSize > 0x10000 {
		return nil, fmt.Errorf("RAM size 0x%x is not a power of two up to 64K", cfg.RAMSize)
	}
	romSize := 0x10000 - int(cfg.ROMBase)
	if !isPowerOfTwo(romSize) {
		return nil, fmt.Errorf("ROM base 0x%04x does not give a power of two size", cfg.ROMBase)
	}
	if cfg.Serial == nil {
		cfg.Serial = NewBufferSerial()
	}
	disks, err := NewDiskController(cfg.Disks[:]...)
	if err != nil {
		return nil, err
	}
	c := &Console{
		Bus:    NewBus(),
		RAM:    NewRAM(cfg.RAMSize),
		ROM:    NewROM(cfg.ROMBase),
		ACIA:   NewACIA(cfg.Serial),
		Disks:  disks,
		Serial: cfg.Serial,
	}
	attachments := []struct {
		name       string
		dev        Device
		base, mask uint16
	}{
		{"RAM", c.RAM, 0, uint16(^(cfg.RAMSize - 1))},
		{"ROM", c.ROM, cfg.ROMBase, uint16(^(romSize - 1))},
		{"ACIA", c.ACIA, cfg.ACIABase, cfg.ACIAMask},
		{"disk controller", c.Disks, cfg.DiskBase, cfg.DiskMask},
	}
	for _, a := range attachments {
		if err := c.Bus.Attach(a.dev, a.base, a.mask); err != nil {
			disks.Close()
			return nil, fmt.Errorf("failed to attach %s: %w", a.name, err)
		}
	}
	c.CPU = hd6309.New(c.Bus)
	c.CPU.FIRQ.Bind(c.ACIA.IRQ)
	return c, nil
}

// Load programs the ROM from a firmware image and resets the CPU.
func (c *Console) Load(path string) error {
	if err := c.ROM.Load(path); err != nil {
		return err
	}
	c.Reset()
	return nil
}

// Reset resets the CPU and clears a pending halt.
func (c *Console) Reset() {
	glog.Infof("Reset, vector=0x%02x%02x", c.Bus.Read(0xFFFE), c.Bus.Read(0xFFFF))
	c.halted.Store(false)
	c.CPU.Reset()
}

// Step advances the peripherals and then the CPU by one controller step.
func (c *Console) Step() error {
	c.Bus.Tick()
	return c.CPU.Tick()
}

// Halt asks Run to return. It is safe to call from any goroutine.
func (c *Console) Halt() { c.halted.Store(true) }

// Halted reports whether Halt was called since the last reset.
func (c *Console) Halted() bool { return c.halted.Load() }

// Run steps the machine until it is halted, ctx is done or the CPU fails.
// A halt returns nil.
func (c *Console) Run(ctx context.Context) error {
	for n := 0; ; n++ {
		if n%checkInterval == 0 {
			if c.halted.Load() {
				glog.Infof("Halted at PC=0x%04x after %d cycles", c.CPU.Registers().PC, c.CPU.Cycles())
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if c.CPU.State() != hd6309.Running {
				time.Sleep(idleSleep)
			}
		}
		if err := c.Step(); err != nil {
			return err
		}
	}
}

// Trace switches instruction tracing to the log on or off.
func (c *Console) Trace(on bool) {
	if !on {
		c.CPU.SetHooks(hd6309.Hooks{})
		return
	}
	c.CPU.SetHooks(hd6309.Hooks{
		PreExec: func(r hd6309.Registers) {
			glog.Info(r.String())
		},
		PostExec: func(t hd6309.Trace) {
			glog.Info(t.String())
		},
	})
}

// Close releases the disk images.
func (c *Console) Close() error {
	return c.Disks.Close()
}
