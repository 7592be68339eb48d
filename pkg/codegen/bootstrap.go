package codegen

import "hackvm/pkg/vm"

const (
	// EntryFunction is called by the bootstrap when the program defines it.
	EntryFunction = "Sys.init"

	bootstrapReturn = "BOOTSTRAP" + generatedSep + "ret"
)

// Sentinel pointer values for the frame that has no caller.
var bootstrapPointers = []struct {
	reg   string
	value int
}{
	{"LCL", -1},
	{"ARG", -2},
	{"THIS", -3},
	{"THAT", -4},
}

// HasEntryFunction reports whether cmds declare EntryFunction.
func HasEntryFunction(cmds []vm.SourceCommand) bool {
	for _, sc := range cmds {
		if f, ok := sc.Command.(vm.Function); ok && f.Name == EntryFunction {
			return true
		}
	}
	return false
}

// Bootstrap returns the prologue that initialises SP and the segment
// pointers and calls EntryFunction. Should it return, the machine parks in
// a loop on the return label.
func Bootstrap() []string {
	c := &code{}
	c.line("@%d", StackBase)
	c.line("D=A")
	c.line("@SP")
	c.line("M=D")
	for _, p := range bootstrapPointers {
		c.line("@%d", -p.value)
		c.line("D=-A")
		c.line("@%s", p.reg)
		c.line("M=D")
	}
	// EntryFunction is a valid constant name, so the call cannot fail.
	_ = genCall(c, EntryFunction, 0, bootstrapReturn)
	c.line("@%s", bootstrapReturn)
	c.line("0;JMP")
	return c.lines
}
