package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/golang/glog"
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const (
	// pollTimeout is the input wait in milliseconds between cancellation checks.
	pollTimeout = 10
	inputBuffer = 256
)

// Terminal connects the ACIA to the host terminal. The input side runs in Pump,
// which owns the reader; Poll and Read are called from the machine loop.
type Terminal struct {
	in   io.Reader
	fd   int // -1 when in is not a file
	out  io.Writer
	msg  io.Writer
	halt func()

	tty      bool
	saved    syscall.Termios
	attached syscall.Termios

	filter  escapeFilter
	input   chan byte
	pending byte
	ready   bool
}

// New creates a terminal reading in and writing machine output to out.
// Escape help and prompts go to msg. halt is called for the ~. escape.
func New(in io.Reader, out, msg io.Writer, halt func()) *Terminal {
	t := &Terminal{in: in, fd: -1, out: out, msg: msg, halt: halt, input: make(chan byte, inputBuffer)}
	if f, ok := in.(*os.File); ok {
		t.fd = int(f.Fd())
	}
	return t
}

// Setup switches a tty to raw input: no line editing, signals or echo, and no
// CR/LF translation in either direction. Other inputs are left alone.
func (t *Terminal) Setup() error {
	if t.fd < 0 || !term.IsTerminal(t.fd) {
		glog.Warningf("Input is not a terminal, line discipline unchanged")
		return nil
	}
	if err := termios.Tcgetattr(uintptr(t.fd), &t.saved); err != nil {
		return fmt.Errorf("failed to read terminal attributes: %w", err)
	}
	t.attached = t.saved
	t.attached.Lflag &^= syscall.ICANON | syscall.ISIG | syscall.ECHO
	t.attached.Lflag |= syscall.ECHOE
	t.attached.Iflag &^= syscall.ICRNL
	t.attached.Oflag &^= syscall.ONLCR
	if err := termios.Tcsetattr(uintptr(t.fd), termios.TCIFLUSH, &t.attached); err != nil {
		return fmt.Errorf("failed to set terminal attributes: %w", err)
	}
	t.tty = true
	return nil
}

// Restore puts back the attributes Setup found.
func (t *Terminal) Restore() error {
	if !t.tty {
		return nil
	}
	t.tty = false
	return termios.Tcsetattr(uintptr(t.fd), termios.TCIFLUSH, &t.saved)
}

// Poll reports whether a byte is waiting.
func (t *Terminal) Poll() bool {
	if t.ready {
		return true
	}
	select {
	case ch := <-t.input:
		t.pending, t.ready = ch, true
	default:
	}
	return t.ready
}

// Read returns the byte Poll found.
func (t *Terminal) Read() byte {
	t.ready = false
	return t.pending
}

// Write sends a byte from the machine to the terminal.
func (t *Terminal) Write(data byte) {
	if _, err := t.out.Write([]byte{data}); err != nil {
		glog.Warningf("Terminal write failed: %v", err)
	}
}

// wait blocks until the input is readable or ctx is done.
func (t *Terminal) wait(ctx context.Context) error {
	if t.fd < 0 {
		return ctx.Err()
	}
	fds := []unix.PollFd{{Fd: int32(t.fd), Events: unix.POLLIN}}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := unix.Poll(fds, pollTimeout)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
	}
}

// readByte reads one byte of raw input.
func (t *Terminal) readByte(ctx context.Context) (byte, error) {
	if err := t.wait(ctx); err != nil {
		return 0, err
	}
	var b [1]byte
	for {
		n, err := t.in.Read(b[:])
		if n == 1 {
			return b[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// send hands a byte to the machine, waiting while the buffer is full.
func (t *Terminal) send(ctx context.Context, ch byte) error {
	select {
	case t.input <- ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pump moves input to the machine until ctx is done or the input ends.
// End of input returns nil.
func (t *Terminal) Pump(ctx context.Context) error {
	for {
		ch, err := t.readByte(ctx)
		if err == io.EOF {
			glog.Infof("Terminal input closed")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		ok, a := t.filter.filter(ch)
		if ok {
			if err := t.send(ctx, ch); err != nil {
				return nil
			}
		}
		switch a {
		case halt:
			t.halt()
			return nil
		case help:
			fmt.Fprint(t.msg, helpText)
		case insert:
			if err := t.insertFile(ctx); err != nil {
				fmt.Fprintf(t.msg, "\r\n%v\r\n", err)
			}
		}
	}
}

// readLine reads a filename typed at the prompt.
func (t *Terminal) readLine(ctx context.Context) (string, error) {
	var b strings.Builder
	for {
		ch, err := t.readByte(ctx)
		if err != nil {
			return "", err
		}
		if ch == '\n' || ch == '\r' {
			return b.String(), nil
		}
		b.WriteByte(ch)
	}
}

// insertFile prompts for a host file and feeds its contents to the machine
// with newlines turned into carriage returns.
func (t *Terminal) insertFile(ctx context.Context) error {
	if t.tty {
		if err := termios.Tcsetattr(uintptr(t.fd), termios.TCIFLUSH, &t.saved); err != nil {
			return err
		}
	}
	fmt.Fprint(t.msg, "File: ")
	name, err := t.readLine(ctx)
	if t.tty {
		if err := termios.Tcsetattr(uintptr(t.fd), termios.TCIFLUSH, &t.attached); err != nil {
			return err
		}
	}
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	r := bufio.NewReader(f)
	for {
		ch, err := r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if ch == '\n' {
			ch = '\r'
		}
		if err := t.send(ctx, ch); err != nil {
			return err
		}
	}
}
