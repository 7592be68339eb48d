package cpu

import (
	"fmt"
)

// Memory map.
const (
	ROMSize      = 32768
	RAMSize      = 32768
	MaxAddress   = 0x7FFF
	ScreenBase   = 16384
	ScreenWords  = 8192
	KeyboardAddr = 24576
)

// Bits of a C-instruction.
const (
	cBit    uint16 = 0x8000
	aBit    uint16 = 0x1000
	compPos        = 6
	destPos        = 3

	destA uint16 = 0b100
	destD uint16 = 0b010
	destM uint16 = 0b001

	jumpLT uint16 = 0b100
	jumpEQ uint16 = 0b010
	jumpGT uint16 = 0b001
)

// CPU is a Hack computer: a program in ROM, a data RAM with the screen and
// keyboard mapped into it, and the A, D and PC registers.
type CPU struct {
	A  uint16
	D  uint16
	PC uint16

	RAM [RAMSize]uint16
	ROM []uint16

	// Halted is set when the program runs off the end of ROM or enters the
	// conventional end loop "(END) @END 0;JMP".
	Halted bool

	Cycles uint64
}

func NewCPU() *CPU {
	return &CPU{}
}

// Load copies program into ROM and resets the registers. RAM is kept so
// callers can preset it.
func (c *CPU) Load(program []uint16) error {
	if len(program) > ROMSize {
		return fmt.Errorf("program too large for ROM: %d words > %d words", len(program), ROMSize)
	}
	c.ROM = append(c.ROM[:0], program...)
	c.Reset()
	return nil
}

// Reset restarts execution at ROM address 0.
func (c *CPU) Reset() {
	c.A, c.D, c.PC = 0, 0, 0
	c.Halted = false
	c.Cycles = 0
}

// SetKey places a key code in the keyboard register; 0 means no key.
func (c *CPU) SetKey(code uint16) {
	c.RAM[KeyboardAddr] = code
}

func (c *CPU) read(addr uint16) uint16 {
	if int(addr) >= RAMSize {
		return 0
	}
	return c.RAM[addr]
}

func (c *CPU) write(addr uint16, val uint16) {
	if int(addr) >= RAMSize || addr == KeyboardAddr {
		return
	}
	c.RAM[addr] = val
}

// ALU computes the Hack ALU function selected by the six control bits
// zx nx zy ny f no (most significant first) and reports zr and ng.
func ALU(x, y uint16, control uint16) (out uint16, zr, ng bool) {
	if control&0b100000 != 0 {
		x = 0
	}
	if control&0b010000 != 0 {
		x = ^x
	}
	if control&0b001000 != 0 {
		y = 0
	}
	if control&0b000100 != 0 {
		y = ^y
	}
	if control&0b000010 != 0 {
		out = x + y
	} else {
		out = x & y
	}
	if control&0b000001 != 0 {
		out = ^out
	}
	return out, out == 0, out&0x8000 != 0
}

func (c *CPU) Step() {
	if c.Halted {
		return
	}
	if int(c.PC) >= len(c.ROM) {
		c.Halted = true
		return
	}

	instr := c.ROM[c.PC]
	c.Cycles++

	if instr&cBit == 0 {
		c.A = instr
		c.PC++
		return
	}

	y := c.A
	if instr&aBit != 0 {
		y = c.read(c.A)
	}
	out, zr, ng := ALU(c.D, y, (instr>>compPos)&0x3F)

	dest := (instr >> destPos) & 0b111
	addr := c.A
	if dest&destM != 0 {
		c.write(addr, out)
	}
	if dest&destA != 0 {
		c.A = out
	}
	if dest&destD != 0 {
		c.D = out
	}

	jump := instr & 0b111
	taken := (jump&jumpLT != 0 && ng) ||
		(jump&jumpEQ != 0 && zr) ||
		(jump&jumpGT != 0 && !zr && !ng)

	if !taken {
		c.PC++
		return
	}

	// An unconditional jump back to the A-instruction that loaded its
	// target can never make progress.
	if jump == 0b111 && c.PC > 0 && c.A == c.PC-1 && c.ROM[c.PC-1] == c.PC-1 {
		c.Halted = true
	}
	c.PC = c.A
}

func (c *CPU) Run() {
	for !c.Halted {
		c.Step()
	}
}

// RunSteps executes at most n instructions and reports whether the program
// halted.
func (c *CPU) RunSteps(n int) bool {
	for i := 0; i < n && !c.Halted; i++ {
		c.Step()
	}
	return c.Halted
}

// EncodeC assembles a C-instruction from its comp (a-bit included), dest
// and jump fields.
func EncodeC(comp, dest, jump uint16) uint16 {
	return 0b111<<13 | (comp&0x7F)<<compPos | (dest&0b111)<<destPos | jump&0b111
}

// Stack returns the words between base and the stack pointer RAM[0] as
// signed values.
func (c *CPU) Stack(base uint16) []int16 {
	sp := c.RAM[0]
	if sp < base || int(sp) > RAMSize {
		return nil
	}
	out := make([]int16, 0, sp-base)
	for addr := base; addr < sp; addr++ {
		out = append(out, int16(c.RAM[addr]))
	}
	return out
}

// Word returns RAM[addr] as a signed value.
func (c *CPU) Word(addr uint16) int16 {
	return int16(c.read(addr))
}
