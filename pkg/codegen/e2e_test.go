package codegen_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hackvm/pkg/asm"
	"hackvm/pkg/codegen"
	"hackvm/pkg/cpu"
	"hackvm/pkg/vm"
)

const maxSteps = 200000

// Segment pointers preset for programs that run without the bootstrap.
var presetPointers = map[uint16]uint16{
	0: 256,  // SP
	1: 300,  // LCL
	2: 400,  // ARG
	3: 3000, // THIS
	4: 3010, // THAT
}

type machine struct {
	*cpu.CPU
	symbols map[string]uint16
}

// runUnits translates, assembles and executes the units until the program
// halts.
func runUnits(t *testing.T, units ...vm.Unit) *machine {
	t.Helper()

	cmds, err := vm.ParseUnits(units)
	require.NoError(t, err)

	out, err := codegen.Generate(cmds, codegen.Options{Comments: true})
	require.NoError(t, err)

	a := asm.NewAssembler()
	program, _, err := a.Assemble(strings.Join(out.Lines, "\n"))
	require.NoError(t, err)

	c := cpu.NewCPU()
	require.NoError(t, c.Load(program))
	if !out.Bootstrap {
		for addr, v := range presetPointers {
			c.RAM[addr] = v
		}
	}
	require.True(t, c.RunSteps(maxSteps), "program did not halt within %d steps", maxSteps)

	return &machine{CPU: c, symbols: a.Symbols()}
}

func run(t *testing.T, src string) *machine {
	t.Helper()
	return runUnits(t, vm.Unit{Name: "Main", Source: src})
}

func (m *machine) stack() []int16 { return m.Stack(codegen.StackBase) }

func TestE2E_Add(t *testing.T) {
	m := run(t, "push constant 7\npush constant 8\nadd")
	require.Equal(t, []int16{15}, m.stack())
	require.Equal(t, uint16(257), m.RAM[0])
}

func TestE2E_ArithmeticOperandOrder(t *testing.T) {
	tests := []struct {
		a, b int
		op   string
		want int16
	}{
		{10, 3, "add", 13},
		{10, 3, "sub", 7},
		{3, 10, "sub", -7},
		{12, 10, "and", 8},
		{12, 10, "or", 14},
		{0, 0, "add", 0},
		{32767, 1, "add", -32768},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d %s %d", tt.a, tt.op, tt.b), func(t *testing.T) {
			m := run(t, fmt.Sprintf("push constant %d\npush constant %d\n%s", tt.a, tt.b, tt.op))
			require.Equal(t, []int16{tt.want}, m.stack())
		})
	}
}

func TestE2E_Unary(t *testing.T) {
	m := run(t, "push constant 5\nneg\npush constant 0\nnot\npush constant 21845\nnot")
	require.Equal(t, []int16{-5, -1, -21846}, m.stack())
}

func TestE2E_Comparisons(t *testing.T) {
	tests := []struct {
		a, b string
		op   string
		want int16
	}{
		{"5", "3", "gt", -1},
		{"3", "5", "gt", 0},
		{"4", "4", "gt", 0},
		{"3", "5", "lt", -1},
		{"5", "3", "lt", 0},
		{"4", "4", "lt", 0},
		{"4", "4", "eq", -1},
		{"4", "5", "eq", 0},
		{"-2", "1", "gt", 0},
		{"-2", "1", "lt", -1},
		{"1", "-2", "gt", -1},
		{"-3", "-3", "eq", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+" "+tt.op+" "+tt.b, func(t *testing.T) {
			src := pushInt(tt.a) + pushInt(tt.b) + tt.op
			m := run(t, src)
			require.Equal(t, []int16{tt.want}, m.stack())
		})
	}
}

// pushInt pushes a possibly negative literal.
func pushInt(s string) string {
	if strings.HasPrefix(s, "-") {
		return "push constant " + s[1:] + "\nneg\n"
	}
	return "push constant " + s + "\n"
}

func TestE2E_DynamicSegmentRoundTrip(t *testing.T) {
	tests := []struct {
		segment string
		addr    uint16
	}{
		{"local", 302},
		{"argument", 402},
		{"this", 3002},
		{"that", 3012},
	}
	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			m := run(t, fmt.Sprintf("push constant 123\npop %[1]s 2\npush %[1]s 2\npop %[1]s 2\npush %[1]s 2", tt.segment))
			require.Equal(t, uint16(123), m.RAM[tt.addr])
			require.Equal(t, []int16{123}, m.stack())
		})
	}
}

func TestE2E_FixedSegments(t *testing.T) {
	m := run(t, `
push constant 3030
pop pointer 1
push constant 9
pop that 0
push constant 77
pop temp 7
push constant 5
pop static 2
push static 2
push temp 7
push pointer 1
`)
	require.Equal(t, uint16(3030), m.RAM[4])
	require.Equal(t, uint16(9), m.RAM[3030])
	require.Equal(t, uint16(77), m.RAM[codegen.TempBase+7])
	require.Equal(t, uint16(5), m.RAM[m.symbols["Main.2"]])
	require.Equal(t, []int16{5, 77, 3030}, m.stack())
}

func TestE2E_StaticsAreNamespacedPerUnit(t *testing.T) {
	m := runUnits(t,
		vm.Unit{Name: "A", Source: "push constant 1\npop static 0"},
		vm.Unit{Name: "B", Source: "push constant 2\npop static 0\npush static 0"},
	)
	require.Equal(t, uint16(1), m.RAM[m.symbols["A.0"]])
	require.Equal(t, uint16(2), m.RAM[m.symbols["B.0"]])
	require.NotEqual(t, m.symbols["A.0"], m.symbols["B.0"])
}

func TestE2E_Branching(t *testing.T) {
	// Sum 1..10 into local 0.
	m := run(t, `
push constant 0
pop local 0
push constant 10
pop local 1
label LOOP
push local 1
push constant 0
eq
if-goto DONE
push local 0
push local 1
add
pop local 0
push local 1
push constant 1
sub
pop local 1
goto LOOP
label DONE
push local 0
`)
	require.Equal(t, []int16{55}, m.stack())
}

func TestE2E_CallReturnRoundTrip(t *testing.T) {
	m := run(t, `
push constant 99
push constant 7
push constant 8
call Foo.add 2
label END
goto END
function Foo.add 1
push argument 0
push argument 1
add
pop local 0
push local 0
push local 0
add
return
`)
	require.Equal(t, []int16{99, 30}, m.stack())
	for addr, want := range presetPointers {
		if addr == 0 {
			continue
		}
		require.Equal(t, want, m.RAM[addr], "pointer RAM[%d] not restored", addr)
	}
}

func TestE2E_ReturnRestoresCallerPointers(t *testing.T) {
	m := run(t, `
push constant 5
call Foo.clobber 1
label END
goto END
function Foo.clobber 2
push constant 5000
pop pointer 0
push constant 6000
pop pointer 1
push argument 0
pop this 0
push argument 0
pop that 0
push constant 1
pop local 0
push constant 2
pop local 1
push this 0
return
`)
	require.Equal(t, []int16{5}, m.stack())
	require.Equal(t, uint16(5), m.RAM[5000])
	require.Equal(t, uint16(5), m.RAM[6000])
	for addr, want := range presetPointers {
		if addr == 0 {
			continue
		}
		require.Equal(t, want, m.RAM[addr], "pointer RAM[%d] not restored", addr)
	}
}

func TestE2E_FooScenario(t *testing.T) {
	m := run(t, `
push constant 10
call Foo 1
label END
goto END
function Foo 2
push argument 0
return
`)
	require.Equal(t, []int16{10}, m.stack())
	require.Equal(t, uint16(300), m.RAM[1])
	require.Equal(t, uint16(400), m.RAM[2])
}

func TestE2E_RecursionWithEarlyReturn(t *testing.T) {
	m := run(t, `
push constant 10
call Fib.fib 1
label END
goto END
function Fib.fib 0
push argument 0
push constant 2
lt
if-goto BASE
push argument 0
push constant 1
sub
call Fib.fib 1
push argument 0
push constant 2
sub
call Fib.fib 1
add
return
label BASE
push argument 0
return
`)
	require.Equal(t, []int16{55}, m.stack())
}

func TestE2E_Bootstrap(t *testing.T) {
	m := runUnits(t,
		vm.Unit{Name: "Math", Source: `
function Math.double 0
push argument 0
push argument 0
add
return`},
		vm.Unit{Name: "Sys", Source: `
function Sys.init 0
push constant 21
call Math.double 1
pop static 0
label HALT
goto HALT`},
	)
	require.Equal(t, uint16(42), m.RAM[m.symbols["Sys.0"]])
	// Inside Sys.init: one frame above the stack base, no locals left.
	require.Equal(t, uint16(codegen.StackBase+5), m.RAM[0])
	require.Equal(t, uint16(codegen.StackBase+5), m.RAM[1])
}

func TestE2E_BootstrapParksWhenEntryReturns(t *testing.T) {
	m := run(t, "function Sys.init 0\npush constant 1\nreturn")
	require.Equal(t, uint16(257), m.RAM[0])
	require.Equal(t, int16(1), m.Word(256))
	require.Equal(t, int16(-1), m.Word(1))
	require.Equal(t, int16(-4), m.Word(4))
}

func TestE2E_UserLabelsDoNotShadowGeneratedLabels(t *testing.T) {
	m := run(t, `
push constant 3
call Main.f 1
label END
goto END
function Main.f 0
push argument 0
call Main.g 1
label ret.7
return
function Main.g 0
push argument 0
push constant 1
add
return
`)
	require.Equal(t, []int16{4}, m.stack())
}

func TestE2E_FunctionNamesDoNotShadowGeneratedLabels(t *testing.T) {
	m := runUnits(t, vm.Unit{Name: "Sys", Source: `function Sys.init 0
push constant 5
push constant 5
eq
pop static 1
call BOOTSTRAP 0
pop static 0
label HALT
goto HALT
function BOOTSTRAP 0
label ret
push constant 5
return
function COMP_TRUE_Sys.3 0
push constant 0
return`})
	require.Equal(t, uint16(5), m.RAM[m.symbols["Sys.0"]])
	require.Equal(t, int16(-1), m.Word(m.symbols["Sys.1"]))
}
