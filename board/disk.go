package board

import (
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/golang/glog"
)

const (
	MaxDisks   = 2
	SectorSize = 512
)

// Task file registers.
const (
	regData    = 0 // read/write
	regError   = 1 // read
	regFeature = 1 // write
	regSecCnt  = 2
	regLBA0    = 3 // bits 0-7
	regLBA1    = 4 // bits 8-15
	regLBA2    = 5 // bits 16-23
	regLBA3    = 6 // bits 24-27, bit 4 selects the drive
	regStatus  = 7 // read
	regCommand = 7 // write
)

// Commands.
const (
	cmdReset       byte = 0x04
	cmdReadSectors byte = 0x20
	cmdReadRetry   byte = 0x21
	cmdWrite       byte = 0x30
	cmdDiagnostic  byte = 0x90
	cmdIdentify    byte = 0xEC
	cmdSetFeatures byte = 0xEF
)

// Status register bits.
const (
	srERR byte = 0x01
	srDRQ byte = 0x08
	srDSC byte = 0x10
	srRDY byte = 0x40
	srBSY byte = 0x80
)

// Error register bits.
const (
	errABRT byte = 0x04
	errIDNF byte = 0x10
)

const (
	featureEnable8Bit  byte = 0x01
	featureDisable8Bit byte = 0x81
	driveSelect        byte = 0x10
	diagnosticPassed   byte = 0x01
)

type transfer int

const (
	idle transfer = iota
	reading
	writing
)

// disk is a memory-mapped image file.
type disk struct {
	path    string
	file    *os.File
	data    mmap.MMap
	sectors int
}

// openDisk maps path read/write. A missing file yields a nil disk.
func openDisk(path string) (*disk, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		glog.Warningf("Disk image %s not found", path)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sectors := int(info.Size() / SectorSize)
	if sectors == 0 {
		glog.Warningf("Disk image %s is smaller than a sector", path)
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	m, err := mmap.MapRegion(f, sectors*SectorSize, mmap.RDWR, 0, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to map %s: %w", path, err)
	}
	glog.Infof("Disk image %s attached, %d sectors", path, sectors)
	return &disk{path, f, m, sectors}, nil
}

func (d *disk) close() error {
	if err := d.data.Flush(); err != nil {
		return err
	}
	if err := d.data.Unmap(); err != nil {
		return err
	}
	return d.file.Close()
}

func (d *disk) sector(lba int) []byte {
	return d.data[lba*SectorSize : (lba+1)*SectorSize]
}

// DiskController emulates a CompactFlash card in ATA task-file mode with up to
// two drives. Transfers are byte wide through the data register.
type DiskController struct {
	disks [MaxDisks]*disk

	features byte
	secCnt   byte
	lba      [4]byte
	status   byte
	err      byte
	eightBit bool

	mode      transfer
	active    *disk
	buffer    [SectorSize]byte
	index     int
	current   int // sector being transferred
	remaining int // sectors left including current
}

// NewDiskController opens the images at paths as drive 0 and 1.
// Empty paths and missing files leave the drive absent.
func NewDiskController(paths ...string) (*DiskController, error) {
	if len(paths) > MaxDisks {
		return nil, fmt.Errorf("at most %d disks, got %d", MaxDisks, len(paths))
	}
	c := &DiskController{status: srRDY | srDSC}
	for i, p := range paths {
		if p == "" {
			continue
		}
		d, err := openDisk(p)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.disks[i] = d
	}
	return c, nil
}

// Close flushes and unmaps every disk image.
func (c *DiskController) Close() error {
	var first error
	for i, d := range c.disks {
		if d == nil {
			continue
		}
		if err := d.close(); err != nil && first == nil {
			first = fmt.Errorf("failed to close %s: %w", d.path, err)
		}
		c.disks[i] = nil
	}
	return first
}

// Sectors returns the size of a drive in sectors, 0 when absent.
func (c *DiskController) Sectors(drive int) int {
	if drive < 0 || drive >= MaxDisks || c.disks[drive] == nil {
		return 0
	}
	return c.disks[drive].sectors
}

// EightBit reports whether 8-bit transfers were enabled with SET FEATURES.
func (c *DiskController) EightBit() bool { return c.eightBit }

func (c *DiskController) drive() *disk {
	if c.lba[3]&driveSelect != 0 {
		return c.disks[1]
	}
	return c.disks[0]
}

func (c *DiskController) address() int {
	return int(c.lba[0]) | int(c.lba[1])<<8 | int(c.lba[2])<<16 | int(c.lba[3]&0x0F)<<24
}

// count returns the requested number of sectors, where 0 means 256.
func (c *DiskController) count() int {
	if c.secCnt == 0 {
		return 256
	}
	return int(c.secCnt)
}

// Read reads a register.
func (c *DiskController) Read(offset uint16) byte {
	switch offset & 0x07 {
	case regData:
		return c.readData()
	case regError:
		return c.err
	case regSecCnt:
		return c.secCnt
	case regLBA0, regLBA1, regLBA2, regLBA3:
		return c.lba[offset&0x07-regLBA0]
	default:
		return c.status
	}
}

// Write writes a register.
func (c *DiskController) Write(offset uint16, data byte) {
	switch offset & 0x07 {
	case regData:
		c.writeData(data)
	case regFeature:
		c.features = data
	case regSecCnt:
		c.secCnt = data
	case regLBA0, regLBA1, regLBA2, regLBA3:
		c.lba[offset&0x07-regLBA0] = data
	default:
		c.command(data)
	}
}

func (c *DiskController) command(cmd byte) {
	c.status = srRDY | srDSC
	c.err = 0
	c.mode = idle
	switch cmd {
	case cmdReset:
		c.index, c.remaining = 0, 0
	case cmdReadSectors, cmdReadRetry:
		if c.start() {
			c.mode = reading
			copy(c.buffer[:], c.active.sector(c.current))
			c.status |= srDRQ
		}
	case cmdWrite:
		if c.start() {
			c.mode = writing
			c.status |= srDRQ
		}
	case cmdDiagnostic:
		c.err = diagnosticPassed
	case cmdIdentify:
		d := c.drive()
		if d == nil {
			c.abort(errABRT)
			return
		}
		c.identify(d)
		c.index, c.remaining = 0, 1
		c.mode = reading
		c.status |= srDRQ
	case cmdSetFeatures:
		switch c.features {
		case featureEnable8Bit:
			c.eightBit = true
		case featureDisable8Bit:
			c.eightBit = false
		default:
			c.abort(errABRT)
		}
	default:
		glog.V(1).Infof("Unknown disk command: 0x%02x", cmd)
		c.abort(errABRT)
	}
}

// start checks the addressed range for a sector transfer.
func (c *DiskController) start() bool {
	d := c.drive()
	if d == nil {
		c.abort(errABRT)
		return false
	}
	lba, n := c.address(), c.count()
	if lba+n > d.sectors {
		c.abort(errIDNF)
		return false
	}
	c.active = d
	c.current, c.remaining, c.index = lba, n, 0
	return true
}

func (c *DiskController) abort(e byte) {
	c.err |= e
	c.status |= srERR
	c.status &^= srDRQ
}

func (c *DiskController) readData() byte {
	if c.mode != reading {
		return 0xFF
	}
	x := c.buffer[c.index]
	c.index++
	if c.index == SectorSize {
		c.index = 0
		c.remaining--
		c.current++
		if c.remaining == 0 {
			c.finish()
		} else {
			copy(c.buffer[:], c.active.sector(c.current))
		}
	}
	return x
}

func (c *DiskController) writeData(x byte) {
	if c.mode != writing {
		return
	}
	c.buffer[c.index] = x
	c.index++
	if c.index == SectorSize {
		copy(c.active.sector(c.current), c.buffer[:])
		c.index = 0
		c.remaining--
		c.current++
		if c.remaining == 0 {
			c.finish()
		}
	}
}

func (c *DiskController) finish() {
	c.mode = idle
	c.active = nil
	c.status &^= srDRQ
}

// identify fills the buffer with IDENTIFY DEVICE data. Words are little-endian,
// strings hold two characters per word with the first in the high byte.
func (c *DiskController) identify(d *disk) {
	c.buffer = [SectorSize]byte{}
	const heads, perTrack = 16, 63
	cylinders := d.sectors / (heads * perTrack)
	if cylinders > 0xFFFF {
		cylinders = 0xFFFF
	}
	c.putWord(0, 0x848A) // CompactFlash signature
	c.putWord(1, cylinders)
	c.putWord(3, heads)
	c.putWord(6, perTrack)
	c.putWord(7, d.sectors>>16)
	c.putWord(8, d.sectors)
	c.putString(10, 20, fmt.Sprintf("J6309-%d", d.sectors))
	c.putString(23, 8, "1.0")
	c.putString(27, 40, "J6309 VIRTUAL CF CARD")
	c.putWord(47, 1)
	c.putWord(49, 0x0200) // LBA supported
	c.putWord(60, d.sectors)
	c.putWord(61, d.sectors>>16)
}

func (c *DiskController) putWord(word, x int) {
	c.buffer[word*2] = byte(x)
	c.buffer[word*2+1] = byte(x >> 8)
}

func (c *DiskController) putString(word, n int, s string) {
	for i := 0; i < n; i++ {
		x := byte(' ')
		if i < len(s) {
			x = s[i]
		}
		c.buffer[(word*2+i)^1] = x
	}
}
