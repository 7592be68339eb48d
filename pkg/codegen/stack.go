package codegen

import (
	"fmt"
	"strings"
)

// code accumulates the lines emitted for one command.
type code struct {
	lines []string
}

func (c *code) line(format string, args ...any) {
	if len(args) == 0 {
		c.lines = append(c.lines, format)
		return
	}
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func (c *code) label(name string) {
	c.line("(%s)", name)
}

func (c *code) String() string {
	return strings.Join(c.lines, "\n")
}

// popD moves the top of the stack into D.
func (c *code) popD() {
	c.line("@SP")
	c.line("AM=M-1")
	c.line("D=M")
}

// pushD pushes D onto the stack. D is preserved.
func (c *code) pushD() {
	c.line("@SP")
	c.line("A=M")
	c.line("M=D")
	c.line("@SP")
	c.line("M=M+1")
}

// loadTop decrements SP and leaves A addressing the new top, so M is the
// left operand of a binary operation.
func (c *code) loadTop() {
	c.line("@SP")
	c.line("AM=M-1")
}
