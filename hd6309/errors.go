package hd6309

import "errors"

// Fatal conditions. They mean the instruction stream could not be decoded
// into anything the processor defines, so the simulation has to stop.
var (
	ErrInvalidRegisterSelector = errors.New("invalid register selector")
	ErrInvalidIndexedOperand   = errors.New("invalid indexed operand")
	ErrInvalidRegisterClassMix = errors.New("register class mismatch")
	ErrInvalidAddressingMode   = errors.New("invalid addressing mode")
)
