package codegen

import (
	"hackvm/pkg/vm"
)

// binaryExprs combine D (right operand) with M (left operand, in place).
var binaryExprs = map[vm.Op]string{
	vm.Add: "D+M",
	vm.Sub: "M-D",
	vm.And: "D&M",
	vm.Or:  "D|M",
}

var unaryExprs = map[vm.Op]string{
	vm.Neg: "-D",
	vm.Not: "!D",
}

// comparisonJumps jump when the comparison holds for D = right - left.
// x > y is tested as y - x < 0, hence gt uses JLT and lt uses JGT.
var comparisonJumps = map[vm.Op]string{
	vm.Eq: "JEQ",
	vm.Gt: "JLT",
	vm.Lt: "JGT",
}

func genArithmetic(c *code, unit string, line int, op vm.Op) error {
	if expr, ok := binaryExprs[op]; ok {
		c.popD()
		c.loadTop()
		c.line("D=%s", expr)
		c.pushD()
		return nil
	}
	if expr, ok := unaryExprs[op]; ok {
		c.popD()
		c.line("D=%s", expr)
		c.pushD()
		return nil
	}
	if jump, ok := comparisonJumps[op]; ok {
		genComparison(c, unit, line, jump)
		return nil
	}
	return errorf(ErrNotImplemented, "unknown operation %s", op)
}

// ComparisonLabels returns the branch-taken and join labels of the
// comparison on line of unit.
func ComparisonLabels(unit string, line int) (isTrue, end string) {
	return generatedLabel(unit, "COMP_TRUE", line), generatedLabel(unit, "COMP_END", line)
}

// genComparison leaves -1 (true) or 0 (false) on the stack in place of
// the two operands.
func genComparison(c *code, unit string, line int, jump string) {
	isTrue, end := ComparisonLabels(unit, line)

	c.popD()
	c.loadTop()
	c.line("D=D-M")
	c.line("@%s", isTrue)
	c.line("D;%s", jump)
	c.line("D=0")
	c.line("@%s", end)
	c.line("0;JMP")
	c.label(isTrue)
	c.line("D=-1")
	c.label(end)
	c.pushD()
}
