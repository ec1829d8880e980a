// Package script automates a board.Console with Lua for headless firmware tests.
//
// Functions available to scripts:
//
//	step([n])           execute n steps, 1 by default
//	run(n [, text])     execute up to n steps, stopping early once the serial
//	                    output contains text; returns whether it was seen
//	reg(name)           read a register: a b d e f w q x y u s pc dp cc md
//	setreg(name, value) write a register
//	peek(addr)          read a byte through the bus
//	poke(addr, value)   write a byte through the bus
//	pin(name, high)     drive the nmi, firq or irq input
//	send(text)          queue text on the serial input
//	output()            everything transmitted on the serial line so far
//	cycles()            cycles since reset
//	reset()             reset the CPU
package script

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
	lua "github.com/yuin/gopher-lua"

	"github.com/jyane/j6309/board"
	"github.com/jyane/j6309/hd6309"
)

// Runner executes Lua scripts against a console.
type Runner struct {
	console *board.Console
	serial  *board.BufferSerial // nil when the console talks to something else
	L       *lua.LState
}

// New creates a runner for c. Close releases the interpreter.
func New(c *board.Console) *Runner {
	r := &Runner{console: c, L: lua.NewState()}
	r.serial, _ = c.Serial.(*board.BufferSerial)
	for name, fn := range map[string]lua.LGFunction{
		"step":   r.step,
		"run":    r.run,
		"reg":    r.reg,
		"setreg": r.setreg,
		"peek":   r.peek,
		"poke":   r.poke,
		"pin":    r.pin,
		"send":   r.send,
		"output": r.output,
		"cycles": r.cycles,
		"reset":  r.reset,
	} {
		r.L.SetGlobal(name, r.L.NewFunction(fn))
	}
	return r
}

// Close releases the interpreter.
func (r *Runner) Close() { r.L.Close() }

// DoFile runs a script file.
func (r *Runner) DoFile(path string) error {
	glog.Infof("Running script %s", path)
	if err := r.L.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

// DoString runs a script held in memory.
func (r *Runner) DoString(src string) error {
	return r.L.DoString(src)
}

// stepN runs n machine steps, raising a Lua error on a CPU failure.
func (r *Runner) stepN(L *lua.LState, n int) {
	for i := 0; i < n; i++ {
		if err := r.console.Step(); err != nil {
			L.RaiseError("%v", err)
		}
	}
}

func (r *Runner) step(L *lua.LState) int {
	r.stepN(L, L.OptInt(1, 1))
	return 0
}

func (r *Runner) run(L *lua.LState) int {
	n := L.CheckInt(1)
	text := L.OptString(2, "")
	if text != "" && r.serial == nil {
		L.RaiseError("run: serial output is not captured")
	}
	for i := 0; i < n; i++ {
		if text != "" && strings.Contains(r.serial.Output(), text) {
			L.Push(lua.LTrue)
			return 1
		}
		if r.console.Halted() {
			break
		}
		r.stepN(L, 1)
	}
	L.Push(lua.LBool(text != "" && strings.Contains(r.serial.Output(), text)))
	return 1
}

func (r *Runner) reg(L *lua.LState) int {
	regs := r.console.CPU.Registers()
	var x uint32
	switch name := strings.ToLower(L.CheckString(1)); name {
	case "a":
		x = uint32(regs.A())
	case "b":
		x = uint32(regs.B())
	case "d":
		x = uint32(regs.D.Word())
	case "e":
		x = uint32(regs.E())
	case "f":
		x = uint32(regs.F())
	case "w":
		x = uint32(regs.W.Word())
	case "q":
		x = regs.Q()
	case "x":
		x = uint32(regs.X)
	case "y":
		x = uint32(regs.Y)
	case "u":
		x = uint32(regs.U)
	case "s":
		x = uint32(regs.S)
	case "pc":
		x = uint32(regs.PC)
	case "dp":
		x = uint32(regs.DP)
	case "cc":
		x = uint32(regs.CC)
	case "md":
		x = uint32(regs.MD)
	default:
		L.ArgError(1, "unknown register "+name)
	}
	L.Push(lua.LNumber(x))
	return 1
}

func (r *Runner) setreg(L *lua.LState) int {
	regs := r.console.CPU.Registers()
	v := L.CheckInt(2)
	switch name := strings.ToLower(L.CheckString(1)); name {
	case "a":
		regs.SetA(byte(v))
	case "b":
		regs.SetB(byte(v))
	case "d":
		regs.D.SetWord(uint16(v))
	case "e":
		regs.SetE(byte(v))
	case "f":
		regs.SetF(byte(v))
	case "w":
		regs.W.SetWord(uint16(v))
	case "q":
		regs.SetQ(uint32(v))
	case "x":
		regs.X = uint16(v)
	case "y":
		regs.Y = uint16(v)
	case "u":
		regs.U = uint16(v)
	case "s":
		regs.S = uint16(v)
	case "pc":
		regs.PC = uint16(v)
	case "dp":
		regs.DP = byte(v)
	case "cc":
		regs.CC = hd6309.CC(v)
	case "md":
		regs.MD = hd6309.MD(v)
	default:
		L.ArgError(1, "unknown register "+name)
	}
	r.console.CPU.SetRegisters(regs)
	return 0
}

func (r *Runner) peek(L *lua.LState) int {
	L.Push(lua.LNumber(r.console.Bus.Read(uint16(L.CheckInt(1)))))
	return 1
}

func (r *Runner) poke(L *lua.LState) int {
	r.console.Bus.Write(uint16(L.CheckInt(1)), byte(L.CheckInt(2)))
	return 0
}

// pin rebinds an interrupt input to a level held by the script.
func (r *Runner) pin(L *lua.LState) int {
	var p *hd6309.Pin
	switch name := strings.ToLower(L.CheckString(1)); name {
	case "nmi":
		p = &r.console.CPU.NMI
	case "firq":
		p = &r.console.CPU.FIRQ
	case "irq":
		p = &r.console.CPU.IRQ
	default:
		L.ArgError(1, "unknown pin "+name)
	}
	high := L.CheckBool(2)
	p.Bind(func() bool { return high })
	return 0
}

func (r *Runner) send(L *lua.LState) int {
	if r.serial == nil {
		L.RaiseError("send: serial input is not scripted")
	}
	r.serial.Send([]byte(L.CheckString(1)))
	return 0
}

func (r *Runner) output(L *lua.LState) int {
	if r.serial == nil {
		L.RaiseError("output: serial output is not captured")
	}
	L.Push(lua.LString(r.serial.Output()))
	return 1
}

func (r *Runner) cycles(L *lua.LState) int {
	L.Push(lua.LNumber(r.console.CPU.Cycles()))
	return 1
}

func (r *Runner) reset(L *lua.LState) int {
	r.console.Reset()
	return 0
}
