package board

import "github.com/golang/glog"

type RAM struct {
	data []byte
}

// NewRAM creates a zeroed RAM of size bytes.
func NewRAM(size int) *RAM {
	return &RAM{data: make([]byte, size)}
}

// Read reads data
func (r *RAM) Read(offset uint16) byte {
	return r.data[int(offset)%len(r.data)]
}

// Write writes data
func (r *RAM) Write(offset uint16, x byte) {
	r.data[int(offset)%len(r.data)] = x
}

// ROM is read-only memory starting at base. Unprogrammed bytes read 0xFF.
type ROM struct {
	base uint16
	data []byte
}

// NewROM creates an erased ROM covering base up to the end of the address space.
func NewROM(base uint16) *ROM {
	r := &ROM{base: base, data: make([]byte, 0x10000-int(base))}
	r.erase()
	return r
}

func (r *ROM) erase() {
	for i := range r.data {
		r.data[i] = 0xFF
	}
}

// Base returns the first address covered by the ROM.
func (r *ROM) Base() uint16 { return r.base }

// Size returns the ROM size in bytes.
func (r *ROM) Size() int { return len(r.data) }

// Read reads data
func (r *ROM) Read(offset uint16) byte {
	return r.data[int(offset)%len(r.data)]
}

// Write is ignored.
func (r *ROM) Write(offset uint16, x byte) {
	glog.V(1).Infof("Write to ROM ignored: address=0x%04x, data=0x%02x", int(r.base)+int(offset), x)
}

// program stores x at an absolute address, dropping bytes outside the ROM.
func (r *ROM) program(address int, x byte) {
	if address < int(r.base) || address >= int(r.base)+len(r.data) {
		return
	}
	r.data[address-int(r.base)] = x
}
