// Package codegen translates VM commands into Hack assembly.
//
// Every command maps to a fixed instruction sequence built from two stack
// primitives (pop into D, push D). Labels that the generator invents are
// derived from the unit name, source line and enclosing function, so the
// output is deterministic and units can simply be concatenated.
package codegen

import (
	"fmt"

	"hackvm/pkg/vm"
)

// Level selects which commands the generator accepts.
type Level int

const (
	// LevelStack accepts push, pop and arithmetic/logic/comparison.
	LevelStack Level = iota + 1
	// LevelBranching adds label, goto and if-goto.
	LevelBranching
	// LevelFunctions adds function, call, return and the bootstrap.
	LevelFunctions
)

var levelNames = map[Level]string{
	LevelStack:     "stack",
	LevelBranching: "branching",
	LevelFunctions: "functions",
}

func (l Level) String() string {
	if n, ok := levelNames[l]; ok {
		return n
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel maps a level name ("stack", "branching", "functions").
func ParseLevel(name string) (Level, error) {
	for l, n := range levelNames {
		if n == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown protocol level %q", name)
}

type Options struct {
	// Comments precedes each command's code with "// unit[line]: source".
	Comments bool
	// Level defaults to LevelFunctions.
	Level Level
}

func (o Options) level() Level {
	if o.Level == 0 {
		return LevelFunctions
	}
	return o.Level
}

// Output is a translated program.
type Output struct {
	Lines     []string
	Warnings  []Warning
	Bootstrap bool
}

// Generator translates commands one at a time, tracking the enclosing
// function scope between calls.
type Generator struct {
	opts     Options
	scope    scope
	warnings []Warning
}

func NewGenerator(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Scope returns the name labels are currently qualified with.
func (g *Generator) Scope() string { return g.scope.top() }

// Warnings returns the diagnostics gathered so far.
func (g *Generator) Warnings() []Warning { return g.warnings }

// Translate returns the lines for one command. Commands must be supplied
// in program order.
func (g *Generator) Translate(sc vm.SourceCommand) ([]string, error) {
	if sc.Unit != g.scope.unit {
		if err := checkName("unit name", sc.Unit); err != nil {
			return nil, wrap(sc, err)
		}
		g.scope.reset(sc.Unit)
	}

	c := &code{}
	if g.opts.Comments {
		c.line("// %s", sc)
	}
	if err := g.dispatch(c, sc); err != nil {
		return nil, wrap(sc, err)
	}
	return c.lines, nil
}

func (g *Generator) require(level Level, cmd vm.Command) error {
	if g.opts.level() < level {
		return errorf(ErrNotImplemented, "%q needs protocol level %s (have %s)", cmd, level, g.opts.level())
	}
	return nil
}

func (g *Generator) dispatch(c *code, sc vm.SourceCommand) error {
	if _, ok := sc.Command.(vm.Function); !ok && g.opts.level() >= LevelFunctions {
		g.scope.reopen()
	}

	switch cmd := sc.Command.(type) {
	case vm.Push:
		return genPush(c, sc.Unit, cmd.Segment, cmd.Index)

	case vm.Pop:
		return genPop(c, sc.Unit, cmd.Segment, cmd.Index)

	case vm.Arithmetic:
		return genArithmetic(c, sc.Unit, sc.Line, cmd.Op)

	case vm.Label:
		if err := g.require(LevelBranching, cmd); err != nil {
			return err
		}
		return genLabel(c, g.scope.top(), cmd.Name)

	case vm.Goto:
		if err := g.require(LevelBranching, cmd); err != nil {
			return err
		}
		return genGoto(c, g.scope.top(), cmd.Name)

	case vm.IfGoto:
		if err := g.require(LevelBranching, cmd); err != nil {
			return err
		}
		return genIfGoto(c, g.scope.top(), cmd.Name)

	case vm.Function:
		if err := g.require(LevelFunctions, cmd); err != nil {
			return err
		}
		if err := genFunction(c, cmd.Name, cmd.NVars); err != nil {
			return err
		}
		g.scope.enterFunction(cmd.Name)
		return nil

	case vm.Call:
		if err := g.require(LevelFunctions, cmd); err != nil {
			return err
		}
		return genCall(c, cmd.Name, cmd.NArgs, ReturnLabel(g.scope.top(), sc.Line))

	case vm.Return:
		if err := g.require(LevelFunctions, cmd); err != nil {
			return err
		}
		genReturn(c)
		if !g.scope.leaveFunction() {
			g.warnings = append(g.warnings, Warning{
				Unit:   sc.Unit,
				Line:   sc.Line,
				Source: sc.Source,
				Msg:    "return outside any function",
			})
		}
		return nil
	}

	return errorf(ErrNotImplemented, "unsupported command %T", sc.Command)
}

// Generate translates a whole program. When the program defines
// EntryFunction and the level allows functions, the bootstrap comes first.
// The first failing command aborts the translation.
func Generate(cmds []vm.SourceCommand, opts Options) (*Output, error) {
	g := NewGenerator(opts)
	out := &Output{}

	if opts.level() >= LevelFunctions && HasEntryFunction(cmds) {
		out.Bootstrap = true
		if opts.Comments {
			out.Lines = append(out.Lines, "// bootstrap")
		}
		out.Lines = append(out.Lines, Bootstrap()...)
	}

	for _, sc := range cmds {
		lines, err := g.Translate(sc)
		if err != nil {
			return nil, err
		}
		out.Lines = append(out.Lines, lines...)
	}
	out.Warnings = g.Warnings()
	return out, nil
}
