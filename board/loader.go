package board

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

// ErrImageFormat is returned for a firmware image that cannot be decoded.
var ErrImageFormat = errors.New("invalid firmware image")

const (
	ihexData byte = 0x00
	ihexEOF  byte = 0x01

	decbPreamble  byte = 0x00
	decbPostamble byte = 0xFF
)

// Load programs the ROM from a firmware image file.
// The format is chosen by extension: .ihex or .hex for Intel HEX, .decb for a
// Disk Extended Color BASIC binary, .bin for a raw image placed at the ROM base.
// A file without extension is accepted as Intel HEX when it starts with ':'.
func (r *ROM) Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".ihex", ".hex":
		err = r.LoadIntelHex(bytes.NewReader(b))
	case ".decb":
		err = r.LoadDECB(bytes.NewReader(b))
	case ".bin":
		err = r.LoadBinary(b)
	case "":
		if len(b) == 0 || b[0] != ':' {
			return fmt.Errorf("%w: can't determine file format of %s", ErrImageFormat, path)
		}
		err = r.LoadIntelHex(bytes.NewReader(b))
	default:
		return fmt.Errorf("%w: can't determine file format of %s", ErrImageFormat, path)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	glog.Infof("Loaded %s into ROM at 0x%04x", path, r.base)
	return nil
}

// LoadIntelHex programs data records until the end-of-file record.
// Bytes addressed outside the ROM are dropped.
func (r *ROM) LoadIntelHex(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text[0] != ':' {
			return fmt.Errorf("%w: line %d: missing start code", ErrImageFormat, line)
		}
		rec, err := hex.DecodeString(text[1:])
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrImageFormat, line, err)
		}
		if len(rec) < 5 || len(rec) != int(rec[0])+5 {
			return fmt.Errorf("%w: line %d: bad record length", ErrImageFormat, line)
		}
		var sum byte
		for _, x := range rec {
			sum += x
		}
		if sum != 0 {
			return fmt.Errorf("%w: line %d: checksum mismatch", ErrImageFormat, line)
		}
		address := int(rec[1])<<8 | int(rec[2])
		switch rec[3] {
		case ihexData:
			for i, x := range rec[4 : len(rec)-1] {
				r.program((address+i)&0xFFFF, x)
			}
		case ihexEOF:
			return nil
		default:
			glog.V(1).Infof("Intel HEX record type 0x%02x ignored at line %d", rec[3], line)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%w: missing end-of-file record", ErrImageFormat)
}

// LoadDECB programs the preamble blocks of a DECB binary until the postamble.
// Each block is 0x00, a big-endian length, a big-endian address, then the data.
func (r *ROM) LoadDECB(in io.Reader) error {
	br := bufio.NewReader(in)
	for {
		kind, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: missing postamble", ErrImageFormat)
			}
			return err
		}
		switch kind {
		case decbPostamble:
			return nil
		case decbPreamble:
		default:
			return fmt.Errorf("%w: unknown block type 0x%02x", ErrImageFormat, kind)
		}
		var head [4]byte
		if _, err := io.ReadFull(br, head[:]); err != nil {
			return fmt.Errorf("%w: truncated block header", ErrImageFormat)
		}
		length := int(head[0])<<8 | int(head[1])
		address := int(head[2])<<8 | int(head[3])
		data := make([]byte, length)
		if _, err := io.ReadFull(br, data); err != nil {
			return fmt.Errorf("%w: truncated block at 0x%04x", ErrImageFormat, address)
		}
		for i, x := range data {
			r.program((address+i)&0xFFFF, x)
		}
	}
}

// LoadBinary copies a raw image to the start of the ROM.
func (r *ROM) LoadBinary(b []byte) error {
	if len(b) > len(r.data) {
		return fmt.Errorf("%w: %d bytes do not fit in a %d byte ROM", ErrImageFormat, len(b), len(r.data))
	}
	copy(r.data, b)
	return nil
}
