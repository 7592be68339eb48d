package codegen

// frameSize is the number of words Call pushes before jumping:
// return address, LCL, ARG, THIS, THAT.
const frameSize = 5

// savedRegisters in the order Call pushes them. Return restores them in
// reverse.
var savedRegisters = []string{"LCL", "ARG", "THIS", "THAT"}

// ReturnLabel names the return site of the call on line within scope.
func ReturnLabel(scope string, line int) string {
	return generatedLabel(scope, "ret", line)
}

func genCall(c *code, name string, nargs uint16, returnLabel string) error {
	if err := checkName("function name", name); err != nil {
		return err
	}

	c.line("@%s", returnLabel)
	c.line("D=A")
	c.pushD()
	for _, reg := range savedRegisters {
		c.line("@%s", reg)
		c.line("D=M")
		c.pushD()
	}

	// ARG = SP - nargs - 5
	c.line("@SP")
	c.line("D=M")
	c.line("@%d", int(nargs)+frameSize)
	c.line("D=D-A")
	c.line("@ARG")
	c.line("M=D")

	// LCL = SP
	c.line("@SP")
	c.line("D=M")
	c.line("@LCL")
	c.line("M=D")

	c.line("@%s", name)
	c.line("0;JMP")
	c.label(returnLabel)
	return nil
}

// genFunction declares the entry point and zeroes nvars local slots.
func genFunction(c *code, name string, nvars uint16) error {
	if err := checkName("function name", name); err != nil {
		return err
	}
	c.label(name)
	for i := uint16(0); i < nvars; i++ {
		c.line("D=0")
		c.pushD()
	}
	return nil
}

// genReturn tears down the frame addressed by LCL. R13 holds the frame
// cursor and R14 the return address.
func genReturn(c *code) {
	// frame = LCL
	c.line("@LCL")
	c.line("D=M")
	c.line("@R13")
	c.line("M=D")

	// ret = *(frame - 5), read before *ARG is overwritten: with no
	// arguments both are the same word.
	c.line("@%d", frameSize)
	c.line("A=D-A")
	c.line("D=M")
	c.line("@R14")
	c.line("M=D")

	// *ARG = pop()
	c.popD()
	c.line("@ARG")
	c.line("A=M")
	c.line("M=D")

	// SP = ARG + 1
	c.line("@ARG")
	c.line("D=M+1")
	c.line("@SP")
	c.line("M=D")

	for i := len(savedRegisters) - 1; i >= 0; i-- {
		c.line("@R13")
		c.line("AM=M-1")
		c.line("D=M")
		c.line("@%s", savedRegisters[i])
		c.line("M=D")
	}

	c.line("@R14")
	c.line("A=M")
	c.line("0;JMP")
}
