// Package vm models the stack-machine language consumed by the translator:
// memory segments, the closed set of commands, and the source positions
// attached to each parsed command.
//
// Pipeline: VM source → Parse → []SourceCommand → codegen
package vm

import "fmt"

// Segment identifies a logical memory region addressed by push and pop.
type Segment int

const (
	Argument Segment = iota // based on ARG
	Local                   // based on LCL
	This                    // based on THIS
	That                    // based on THAT
	Pointer                 // THIS/THAT registers themselves
	Temp                    // fixed 8-word window
	Static                  // per-unit named variables
	Constant                // immediate values, push only
)

var segmentNames = [...]string{
	Argument: "argument",
	Local:    "local",
	This:     "this",
	That:     "that",
	Pointer:  "pointer",
	Temp:     "temp",
	Static:   "static",
	Constant: "constant",
}

func (s Segment) String() string {
	if s >= 0 && int(s) < len(segmentNames) {
		return segmentNames[s]
	}
	return fmt.Sprintf("Segment(%d)", int(s))
}

// Dynamic reports whether the segment's base address lives in a pointer
// register rather than at a fixed location.
func (s Segment) Dynamic() bool {
	switch s {
	case Argument, Local, This, That:
		return true
	}
	return false
}

// ParseSegment maps a segment keyword to its Segment.
func ParseSegment(name string) (Segment, error) {
	for i, n := range segmentNames {
		if n == name {
			return Segment(i), nil
		}
	}
	return 0, fmt.Errorf("unknown segment name %q", name)
}

// Op is an arithmetic, logical or comparison operation on the stack top.
type Op int

const (
	Add Op = iota
	Sub
	Neg
	Eq
	Gt
	Lt
	And
	Or
	Not
)

var opNames = [...]string{
	Add: "add",
	Sub: "sub",
	Neg: "neg",
	Eq:  "eq",
	Gt:  "gt",
	Lt:  "lt",
	And: "and",
	Or:  "or",
	Not: "not",
}

func (o Op) String() string {
	if o >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Unary reports whether the operation consumes a single operand.
func (o Op) Unary() bool { return o == Neg || o == Not }

// Comparison reports whether the operation yields a boolean.
func (o Op) Comparison() bool { return o == Eq || o == Gt || o == Lt }

// Command is one VM instruction. The set of implementations is closed:
// Push, Pop, Arithmetic, Label, Goto, IfGoto, Function, Call, Return.
type Command interface {
	fmt.Stringer
	command()
}

type Push struct {
	Segment Segment
	Index   uint16
}

type Pop struct {
	Segment Segment
	Index   uint16
}

type Arithmetic struct {
	Op Op
}

type Label struct {
	Name string
}

type Goto struct {
	Name string
}

type IfGoto struct {
	Name string
}

type Function struct {
	Name  string
	NVars uint16
}

type Call struct {
	Name  string
	NArgs uint16
}

type Return struct{}

func (Push) command()       {}
func (Pop) command()        {}
func (Arithmetic) command() {}
func (Label) command()      {}
func (Goto) command()       {}
func (IfGoto) command()     {}
func (Function) command()   {}
func (Call) command()       {}
func (Return) command()     {}

func (c Push) String() string       { return fmt.Sprintf("push %s %d", c.Segment, c.Index) }
func (c Pop) String() string        { return fmt.Sprintf("pop %s %d", c.Segment, c.Index) }
func (c Arithmetic) String() string { return c.Op.String() }
func (c Label) String() string      { return "label " + c.Name }
func (c Goto) String() string       { return "goto " + c.Name }
func (c IfGoto) String() string     { return "if-goto " + c.Name }
func (c Function) String() string   { return fmt.Sprintf("function %s %d", c.Name, c.NVars) }
func (c Call) String() string       { return fmt.Sprintf("call %s %d", c.Name, c.NArgs) }
func (Return) String() string       { return "return" }

// SourceCommand is a Command together with where it came from.
// Line is 0-based and unique within Unit.
type SourceCommand struct {
	Command Command
	Unit    string
	Line    int
	Source  string
}

func (sc SourceCommand) String() string {
	return fmt.Sprintf("%s[%d]: %s", sc.Unit, sc.Line, sc.Source)
}

// Unit is the text of one translation unit. Name is the source file's base
// name without extension and namespaces static variables.
type Unit struct {
	Name   string
	Source string
}
