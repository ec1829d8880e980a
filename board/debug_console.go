package board

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Code-Hex/dd"
	"github.com/bradleyjkemp/memviz"

	"github.com/jyane/j6309/hd6309"
)

// DebugConsole drives a Console from line commands read from in.
// commands:
//   s, step [n]:
//     execute n steps, 1 by default.
//   c, continue:
//     run until a breakpoint or a halt.
//   p, print [cpu|stack|mem <addr> [n]]:
//     print machine state.
//   br, breakpoint <addr>:
//     set a break point.
//   send <text>:
//     queue text and a carriage return on the serial input.
//   dump:
//     dump the registers as Go syntax.
//   memviz <file>:
//     write a Graphviz view of the registers to file.
//   t, trace:
//     toggle instruction tracing.
//   r, reset:
//     reset.
//   q, quit:
//     quit.
type DebugConsole struct {
	*Console
	in          *bufio.Reader
	out         io.Writer
	breakpoints []uint16
	trace       bool
	last        string
	steps       uint64
}

// NewDebugConsole attaches a monitor to c. It replaces the CPU hooks.
func NewDebugConsole(c *Console, in io.Reader, out io.Writer) *DebugConsole {
	d := &DebugConsole{Console: c, in: bufio.NewReader(in), out: out}
	d.installHooks()
	return d
}

func (d *DebugConsole) installHooks() {
	d.CPU.SetHooks(hd6309.Hooks{
		PostExec: func(t hd6309.Trace) {
			d.last = t.String()
			if d.trace {
				fmt.Fprintln(d.out, d.last)
			}
		},
	})
}

func (d *DebugConsole) step() error {
	d.steps++
	if err := d.Step(); err != nil {
		return cpuError{err}
	}
	return nil
}

func (d *DebugConsole) basePrint() {
	r := d.CPU.Registers()
	fmt.Fprintln(d.out, "--------------------------------------------------")
	fmt.Fprintf(d.out, "Executed steps: %d, cycles: %d, state: %v\n", d.steps, d.CPU.Cycles(), d.CPU.State())
	fmt.Fprintln(d.out, "Last: "+d.last)
	fmt.Fprintln(d.out, "CPU:  "+r.String())
}

func (d *DebugConsole) printCPU() {
	r := d.CPU.Registers()
	fmt.Fprintln(d.out, r.String())
	fmt.Fprintf(d.out, "E:%02X F:%02X W:%04X Q:%08X MD:%02X\n", r.E(), r.F(), r.W.Word(), r.Q(), byte(r.MD))
	fmt.Fprintf(d.out, "NMI:%v FIRQ:%v IRQ:%v\n", d.CPU.NMI.High(), d.CPU.FIRQ.High(), d.CPU.IRQ.High())
}

// printMemory prints n bytes from address, read through the bus.
func (d *DebugConsole) printMemory(address uint16, n int) {
	for i := 0; i < n; i++ {
		a := address + uint16(i)
		if i%16 == 0 {
			if i > 0 {
				fmt.Fprintln(d.out)
			}
			fmt.Fprintf(d.out, "%04X:", a)
		}
		fmt.Fprintf(d.out, " %02X", d.Bus.Read(a))
	}
	fmt.Fprintln(d.out)
}

func (d *DebugConsole) printCommand(args []string) error {
	if len(args) < 2 {
		d.basePrint()
		return nil
	}
	switch args[1] {
	case "c", "cpu":
		d.printCPU()
	case "s", "stack":
		d.printMemory(d.CPU.Registers().S, 32)
	case "m", "mem":
		if len(args) < 3 {
			return errors.New("usage: p mem <addr> [n]")
		}
		address, err := parseAddress(args[2])
		if err != nil {
			return err
		}
		n := 16
		if len(args) > 3 {
			if n, err = strconv.Atoi(args[3]); err != nil || n <= 0 {
				return fmt.Errorf("bad length %q", args[3])
			}
		}
		d.printMemory(address, n)
	default:
		return fmt.Errorf("unknown print target %q", args[1])
	}
	return nil
}

// parseAddress accepts 1234, 0x1234 and $1234, all hexadecimal.
func parseAddress(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "0x"), "$")
	x, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("bad address %q", s)
	}
	return uint16(x), nil
}

func (d *DebugConsole) checkBreak() bool {
	pc := d.CPU.Registers().PC
	for _, b := range d.breakpoints {
		if b == pc {
			fmt.Fprintf(d.out, "Break at: 0x%04x\n", b)
			return true
		}
	}
	return false
}

func (d *DebugConsole) stepCommand(args []string) error {
	n := 1
	if len(args) > 1 {
		var err error
		if n, err = strconv.Atoi(args[1]); err != nil || n <= 0 {
			return fmt.Errorf("bad step count %q", args[1])
		}
	}
	for i := 0; i < n; i++ {
		if err := d.step(); err != nil {
			return err
		}
		if d.checkBreak() {
			break
		}
	}
	return nil
}

func (d *DebugConsole) continueCommand() error {
	for !d.Halted() {
		if err := d.step(); err != nil {
			return err
		}
		if d.checkBreak() {
			return nil
		}
	}
	return nil
}

func (d *DebugConsole) breakPointCommand(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: br <addr>")
	}
	address, err := parseAddress(args[1])
	if err != nil {
		return err
	}
	d.breakpoints = append(d.breakpoints, address)
	return nil
}

func (d *DebugConsole) sendCommand(line string) error {
	s, ok := d.Serial.(*BufferSerial)
	if !ok {
		return errors.New("the serial endpoint does not take queued input")
	}
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "send"))
	s.Send([]byte(text + "\r"))
	return nil
}

func (d *DebugConsole) memvizCommand(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: memviz <file>")
	}
	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer f.Close()
	r := d.CPU.Registers()
	memviz.Map(f, &r)
	return nil
}

// flushSerial prints what the machine transmitted since the last command.
func (d *DebugConsole) flushSerial() {
	if s, ok := d.Serial.(*BufferSerial); ok {
		if out := s.TakeOutput(); out != "" {
			fmt.Fprintf(d.out, "Serial: %q\n", out)
		}
	}
}

// Execute runs one command line. quit is true after a quit command.
// A non-nil error comes from the CPU and is fatal.
func (d *DebugConsole) Execute(line string) (quit bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	var cmdErr error
	switch args[0] {
	case "p", "print":
		cmdErr = d.printCommand(args)
	case "s", "step":
		if cmdErr = d.stepCommand(args); cmdErr == nil {
			d.basePrint()
		}
	case "c", "continue":
		if cmdErr = d.continueCommand(); cmdErr == nil {
			d.basePrint()
		}
	case "br", "breakpoint":
		cmdErr = d.breakPointCommand(args)
	case "send":
		cmdErr = d.sendCommand(line)
	case "dump":
		fmt.Fprintln(d.out, dd.Dump(d.CPU.Registers()))
	case "memviz":
		cmdErr = d.memvizCommand(args)
	case "t", "trace":
		d.trace = !d.trace
		fmt.Fprintf(d.out, "Trace: %v\n", d.trace)
	case "r", "reset":
		d.Reset()
	case "q", "quit":
		fmt.Fprintln(d.out, "Quitting.")
		return true, nil
	default:
		fmt.Fprintf(d.out, "Unknown command %s\n", args[0])
	}
	d.flushSerial()
	var cpuErr cpuError
	if errors.As(cmdErr, &cpuErr) {
		d.basePrint() // Print data before it dies.
		return true, cpuErr.err
	}
	if cmdErr != nil {
		fmt.Fprintln(d.out, cmdErr)
	}
	return false, nil
}

// cpuError marks a fatal error from the CPU among command errors.
type cpuError struct{ err error }

func (e cpuError) Error() string { return e.err.Error() }
func (e cpuError) Unwrap() error { return e.err }

// Run reads and executes commands until quit, end of input or a CPU failure.
func (d *DebugConsole) Run() error {
	for {
		fmt.Fprintf(d.out, "Debugger mode, 'q' to quit \n>> ")
		line, err := d.in.ReadString('\n')
		if line != "" {
			quit, cmdErr := d.Execute(line)
			if cmdErr != nil || quit {
				return cmdErr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
