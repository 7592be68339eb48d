// Package repl provides an interactive VM-to-Hack translator.
//
// Each input line is parsed as one VM command and its Hack assembly is
// printed immediately. The function scope carries over between lines, so
// a session behaves like one translation unit typed in order.
//
// Lines starting with a dot are session commands:
//
//	.scope     print the name labels are qualified with
//	.warnings  print the diagnostics gathered so far
//	.reset     start a new unit
//	.quit      leave the REPL
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"hackvm/pkg/codegen"
	"hackvm/pkg/vm"
)

var errQuit = errors.New("quit")

var interrupted = make(chan os.Signal, 1)

// Session translates commands one line at a time.
type Session struct {
	unit string
	opts codegen.Options
	gen  *codegen.Generator
	line int
}

func NewSession(unit string, opts codegen.Options) *Session {
	return &Session{unit: unit, opts: opts, gen: codegen.NewGenerator(opts)}
}

// Eval handles one input line. It returns the lines to print; blank and
// comment-only input yields nothing.
func (s *Session) Eval(input string) ([]string, error) {
	defer func() { s.line++ }()

	text := strings.TrimSpace(input)
	if strings.HasPrefix(text, ".") {
		return s.meta(text)
	}
	if i := strings.Index(text, "//"); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	if text == "" {
		return nil, nil
	}

	sc, err := vm.ParseLine(s.unit, s.line, text)
	if err != nil {
		return nil, err
	}
	return s.gen.Translate(sc)
}

func (s *Session) meta(cmd string) ([]string, error) {
	switch cmd {
	case ".scope":
		return []string{s.gen.Scope()}, nil
	case ".warnings":
		var out []string
		for _, w := range s.gen.Warnings() {
			out = append(out, w.String())
		}
		return out, nil
	case ".reset":
		s.gen = codegen.NewGenerator(s.opts)
		s.line = -1
		return nil, nil
	case ".quit", ".exit":
		return nil, errQuit
	}
	return nil, fmt.Errorf("unknown session command %q", cmd)
}

// REPL runs an interactive session on the terminal, or reads commands from
// a pipe when stdin is not a terminal.
func REPL(unit string, opts codegen.Options) {
	signal.Notify(interrupted, os.Interrupt)
	defer signal.Stop(interrupted)

	s := NewSession(unit, opts)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		if err := Run(s, os.Stdin, os.Stdout, os.Stderr); err != nil {
			PrintError(err)
		}
		return
	}

	rl, err := readline.New("vm> ")
	if err != nil {
		PrintError(err)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println(err)
			continue
		}
		if err != nil {
			break
		}
		if err := rep(s, line, os.Stdout, os.Stderr); err != nil {
			break
		}
	}
	fmt.Println()
}

// Run reads commands from in until EOF, a quit command or SIGINT. Per-line
// errors go to errOut and do not stop the session.
func Run(s *Session, in io.Reader, out, errOut io.Writer) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case <-interrupted:
			return nil
		default:
		}
		if err := rep(s, sc.Text(), out, errOut); err != nil {
			return nil
		}
	}
	return sc.Err()
}

// rep evaluates and prints one line. It only returns an error when the
// session should end.
func rep(s *Session, line string, out, errOut io.Writer) error {
	lines, err := s.Eval(line)
	if err == errQuit {
		return err
	}
	if err != nil {
		fmt.Fprintln(errOut, err)
		return nil
	}
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
	return nil
}

// PrintError prints err to stderr.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, err)
}
