package cpu

import (
	"testing"
)

// Comp fields (a-bit first) used by the hand-assembled programs below.
const (
	compZero    uint16 = 0b0101010
	compOne     uint16 = 0b0111111
	compNegOne  uint16 = 0b0111010
	compD       uint16 = 0b0001100
	compA       uint16 = 0b0110000
	compM       uint16 = 0b1110000
	compNotD    uint16 = 0b0001101
	compNegD    uint16 = 0b0001111
	compDPlusA  uint16 = 0b0000010
	compDPlusM  uint16 = 0b1000010
	compDMinusA uint16 = 0b0010011
	compAMinusD uint16 = 0b0000111
	compMMinus1 uint16 = 0b1110010
	compDAndA   uint16 = 0b0000000
	compDOrA    uint16 = 0b0010101

	dM   uint16 = 0b001
	dD   uint16 = 0b010
	dA   uint16 = 0b100
	dAM  uint16 = 0b101
	jJGT uint16 = 0b001
	jJEQ uint16 = 0b010
	jJLT uint16 = 0b100
	jJNE uint16 = 0b101
	jJMP uint16 = 0b111
)

// load returns a CPU with the given words in ROM.
func load(t *testing.T, words ...uint16) *CPU {
	t.Helper()
	c := NewCPU()
	if err := c.Load(words); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func TestEncodeC(t *testing.T) {
	tests := []struct {
		name             string
		comp, dest, jump uint16
		want             uint16
	}{
		{"D=A", compA, dD, 0, 0b1110110000010000},
		{"AM=M-1", compMMinus1, dAM, 0, 0b1111110010101000},
		{"0;JMP", compZero, 0, jJMP, 0b1110101010000111},
		{"D;JNE", compD, 0, jJNE, 0b1110001100000101},
	}
	for _, tt := range tests {
		if got := EncodeC(tt.comp, tt.dest, tt.jump); got != tt.want {
			t.Errorf("EncodeC(%s) = %016b; want %016b", tt.name, got, tt.want)
		}
	}
}

func TestALU(t *testing.T) {
	const x, y = 7, 3
	tests := []struct {
		name string
		comp uint16
		want int16
	}{
		{"0", compZero, 0},
		{"1", compOne, 1},
		{"-1", compNegOne, -1},
		{"D", compD, x},
		{"A", compA, y},
		{"!D", compNotD, ^int16(x)},
		{"-D", compNegD, -x},
		{"D+A", compDPlusA, x + y},
		{"D-A", compDMinusA, x - y},
		{"A-D", compAMinusD, y - x},
		{"D&A", compDAndA, x & y},
		{"D|A", compDOrA, x | y},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, zr, ng := ALU(x, y, tt.comp&0x3F)
			if int16(out) != tt.want {
				t.Errorf("ALU %s = %d; want %d", tt.name, int16(out), tt.want)
			}
			if zr != (tt.want == 0) {
				t.Errorf("ALU %s zr = %v", tt.name, zr)
			}
			if ng != (tt.want < 0) {
				t.Errorf("ALU %s ng = %v", tt.name, ng)
			}
		})
	}
}

func TestStep_AInstructionAndMemory(t *testing.T) {
	// @100 D=A @7 M=D D=D+M
	c := load(t,
		100,
		EncodeC(compA, dD, 0),
		7,
		EncodeC(compD, dM, 0),
		EncodeC(compDPlusM, dD, 0),
	)
	c.Run()

	if !c.Halted {
		t.Fatal("expected halt after running off ROM")
	}
	if c.RAM[7] != 100 {
		t.Errorf("RAM[7] = %d; want 100", c.RAM[7])
	}
	if c.D != 200 {
		t.Errorf("D = %d; want 200", c.D)
	}
	if c.Cycles != 5 {
		t.Errorf("Cycles = %d; want 5", c.Cycles)
	}
}

func TestStep_MWriteUsesOldA(t *testing.T) {
	// @SP AM=M-1 : M is written at the address A held before the
	// instruction, then A takes the result.
	c := load(t,
		0,
		EncodeC(compMMinus1, dAM, 0),
	)
	c.RAM[0] = 258
	c.RAM[257] = 42
	c.Run()

	if c.RAM[0] != 257 {
		t.Errorf("RAM[0] = %d; want 257", c.RAM[0])
	}
	if c.A != 257 {
		t.Errorf("A = %d; want 257", c.A)
	}
	if c.RAM[257] != 42 {
		t.Errorf("RAM[257] = %d; want 42 (untouched)", c.RAM[257])
	}
}

func TestStep_Jumps(t *testing.T) {
	tests := []struct {
		name  string
		d     int16
		jump  uint16
		taken bool
	}{
		{"JGT positive", 5, jJGT, true},
		{"JGT zero", 0, jJGT, false},
		{"JEQ zero", 0, jJEQ, true},
		{"JEQ negative", -1, jJEQ, false},
		{"JLT negative", -1, jJLT, true},
		{"JLT positive", 1, jJLT, false},
		{"JNE negative", -3, jJNE, true},
		{"JNE zero", 0, jJNE, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// @10 D;jump
			c := load(t, 10, EncodeC(compD, 0, tt.jump))
			c.D = uint16(tt.d)
			c.Step()
			c.Step()
			want := uint16(2)
			if tt.taken {
				want = 10
			}
			if c.PC != want {
				t.Errorf("PC = %d; want %d", c.PC, want)
			}
		})
	}
}

func TestStep_HaltsOnEndLoop(t *testing.T) {
	// @3 D=A @2 0;JMP  -> the loop at 2/3 is the END idiom.
	c := load(t,
		3,
		EncodeC(compA, dD, 0),
		2,
		EncodeC(compZero, 0, jJMP),
	)
	if halted := c.RunSteps(100); !halted {
		t.Fatal("expected end loop to halt")
	}
	if c.PC != 2 {
		t.Errorf("PC = %d; want 2", c.PC)
	}
	if c.Cycles != 4 {
		t.Errorf("Cycles = %d; want 4", c.Cycles)
	}
}

func TestRunSteps_Limit(t *testing.T) {
	// (LOOP) @0 M=M+1 @0 0;JMP : a busy loop whose A-instruction is not
	// the jump target's own address is only stopped by the limit.
	c := load(t,
		0,
		EncodeC(0b1110111, dM, 0),
		0,
		EncodeC(compZero, 0, jJMP),
	)
	if halted := c.RunSteps(40); halted {
		t.Fatal("busy loop should not halt")
	}
	if c.RAM[0] != 10 {
		t.Errorf("RAM[0] = %d; want 10", c.RAM[0])
	}
}

func TestKeyboardIsReadOnly(t *testing.T) {
	// @KBD M=-1 ; D=M
	c := load(t,
		KeyboardAddr,
		EncodeC(compNegOne, dM, 0),
		EncodeC(compM, dD, 0),
	)
	c.SetKey('K')
	c.Run()
	if c.D != 'K' {
		t.Errorf("D = %d; want %d", c.D, 'K')
	}
}

func TestLoad_TooLarge(t *testing.T) {
	c := NewCPU()
	if err := c.Load(make([]uint16, ROMSize+1)); err == nil {
		t.Error("expected error for oversized program")
	}
}

func TestStack(t *testing.T) {
	c := NewCPU()
	c.RAM[0] = 259
	c.RAM[256] = 7
	c.RAM[257] = 0xFFFF
	c.RAM[258] = 8

	got := c.Stack(256)
	want := []int16{7, -1, 8}
	if len(got) != len(want) {
		t.Fatalf("Stack = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Stack[%d] = %d; want %d", i, got[i], want[i])
		}
	}

	c.RAM[0] = 100
	if s := c.Stack(256); s != nil {
		t.Errorf("Stack below base = %v; want nil", s)
	}
}
