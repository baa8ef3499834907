package cpu

import (
	"errors"
	"fmt"
)

var (
	ErrStackUnderflow = errors.New("stack underflow: return with empty stack")
	ErrROMTooLarge    = errors.New("program too large for memory")
)

// UnknownOpcodeError reports an instruction word that decodes to no
// known family.
type UnknownOpcodeError struct {
	Raw uint16
	PC  uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown instruction %04X at 0x%03X", e.Raw, e.PC)
}

// AddressError reports a memory access outside the 4 KiB address space.
type AddressError struct {
	Addr uint16
	PC   uint16
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("memory access out of range: 0x%04X (pc 0x%03X)", e.Addr, e.PC)
}
