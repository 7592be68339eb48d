package codegen

import (
	"fmt"

	"hackvm/pkg/vm"
)

// Fixed memory map of the target machine.
const (
	PointerBase = 3
	TempBase    = 5
	TempSize    = 8
	StackBase   = 256

	// MaxConstant is the largest value an A-instruction can load.
	MaxConstant = 0x7FFF
)

var baseRegisters = map[vm.Segment]string{
	vm.Argument: "ARG",
	vm.Local:    "LCL",
	vm.This:     "THIS",
	vm.That:     "THAT",
}

// StaticSymbol names static variable index of unit.
func StaticSymbol(unit string, index uint16) string {
	return fmt.Sprintf("%s.%d", unit, index)
}

// fixedAddress resolves the segments that live at an absolute location or
// a named variable.
func fixedAddress(unit string, seg vm.Segment, index uint16) (string, error) {
	switch seg {
	case vm.Pointer:
		if index > 1 {
			return "", errorf(ErrUnaddressable, "pointer index %d out of range 0..1", index)
		}
		return fmt.Sprint(PointerBase + index), nil
	case vm.Temp:
		if index >= TempSize {
			return "", errorf(ErrUnaddressable, "temp index %d out of range 0..%d", index, TempSize-1)
		}
		return fmt.Sprint(TempBase + index), nil
	case vm.Static:
		return StaticSymbol(unit, index), nil
	}
	return "", errorf(ErrUnaddressable, "no fixed address for segment %s", seg)
}

func genPush(c *code, unit string, seg vm.Segment, index uint16) error {
	switch seg {
	case vm.Constant:
		if index > MaxConstant {
			return errorf(ErrUnaddressable, "constant %d does not fit in 15 bits", index)
		}
		c.line("@%d", index)
		c.line("D=A")
	case vm.Argument, vm.Local, vm.This, vm.That:
		c.line("@%d", index)
		c.line("D=A")
		c.line("@%s", baseRegisters[seg])
		c.line("A=D+M")
		c.line("D=M")
	case vm.Pointer, vm.Temp, vm.Static:
		addr, err := fixedAddress(unit, seg, index)
		if err != nil {
			return err
		}
		c.line("@%s", addr)
		c.line("D=M")
	default:
		return errorf(ErrUnaddressable, "unable to address segment for push: %s", seg)
	}
	c.pushD()
	return nil
}

func genPop(c *code, unit string, seg vm.Segment, index uint16) error {
	switch seg {
	case vm.Argument, vm.Local, vm.This, vm.That:
		// D = base+index, then D = address+value; A and M are recovered by
		// subtracting the popped value, so no scratch register is needed.
		c.line("@%s", baseRegisters[seg])
		c.line("D=M")
		c.line("@%d", index)
		c.line("D=D+A")
		c.line("@SP")
		c.line("AM=M-1")
		c.line("D=D+M")
		c.line("A=D-M")
		c.line("M=D-A")
	case vm.Pointer, vm.Temp, vm.Static:
		addr, err := fixedAddress(unit, seg, index)
		if err != nil {
			return err
		}
		c.popD()
		c.line("@%s", addr)
		c.line("M=D")
	default:
		return errorf(ErrUnaddressable, "unable to address segment for pop: %s", seg)
	}
	return nil
}
