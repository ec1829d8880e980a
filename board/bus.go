package board

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
)

var (
	// ErrOverlap is returned when an attachment claims addresses of another one.
	ErrOverlap = errors.New("address range overlaps an attached device")
	// ErrBadBase is returned when a base has bits outside its mask.
	ErrBadBase = errors.New("base address has bits outside the mask")
)

// Device is a memory-mapped peripheral. Offsets are relative to the attachment base.
type Device interface {
	Read(offset uint16) byte
	Write(offset uint16, data byte)
}

// Ticker is a device that does work on every CPU step.
type Ticker interface {
	Tick()
}

type attachment struct {
	dev  Device
	base uint16
	mask uint16
}

func (a attachment) claims(address uint16) bool {
	return address&a.mask == a.base
}

// Bus routes CPU accesses to attached devices.
// Memory map of the reference machine (see DefaultConfig)
// 0x0000 - 0x7FFF	RAM
// 0xA000 - 0xA001	ACIA
// 0xA008 - 0xA00F	Disk controller
// 0xC000 - 0xFFFF	ROM
type Bus struct {
	attachments []attachment
}

// NewBus creates an empty bus. Every address reads 0xFF until something is attached.
func NewBus() *Bus {
	return &Bus{}
}

// Attach maps dev at every address where address&mask == base.
// The device sees address&^mask as its offset.
func (b *Bus) Attach(dev Device, base, mask uint16) error {
	if base&^mask != 0 {
		return fmt.Errorf("%w: base=0x%04x, mask=0x%04x", ErrBadBase, base, mask)
	}
	for _, a := range b.attachments {
		// Two ranges share an address unless they disagree on a bit both decode.
		if (a.base^base)&a.mask&mask == 0 {
			return fmt.Errorf("%w: base=0x%04x, mask=0x%04x collides with base=0x%04x, mask=0x%04x",
				ErrOverlap, base, mask, a.base, a.mask)
		}
	}
	b.attachments = append(b.attachments, attachment{dev, base, mask})
	return nil
}

func (b *Bus) find(address uint16) (attachment, bool) {
	for _, a := range b.attachments {
		if a.claims(address) {
			return a, true
		}
	}
	return attachment{}, false
}

// Read reads a byte.
func (b *Bus) Read(address uint16) byte {
	a, ok := b.find(address)
	if !ok {
		glog.V(1).Infof("Unmapped bus read: address=0x%04x", address)
		return 0xFF
	}
	return a.dev.Read(address &^ a.mask)
}

// Write writes a byte.
func (b *Bus) Write(address uint16, data byte) {
	a, ok := b.find(address)
	if !ok {
		glog.V(1).Infof("Unmapped bus write: address=0x%04x, data=0x%02x", address, data)
		return
	}
	a.dev.Write(address&^a.mask, data)
}

// Tick advances every attached device that keeps time.
func (b *Bus) Tick() {
	for _, a := range b.attachments {
		if t, ok := a.dev.(Ticker); ok {
			t.Tick()
		}
	}
}
