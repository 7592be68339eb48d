package vm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Error is a parse failure on one source line.
type Error struct {
	Unit   string
	Line   int
	Source string
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at %s[%d] (%s): %s", e.Unit, e.Line, e.Source, e.Msg)
}

// ErrorList collects every parse error of a translation run.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

func (l ErrorList) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].Unit != l[j].Unit {
			return l[i].Unit < l[j].Unit
		}
		return l[i].Line < l[j].Line
	})
}

// Err returns nil for an empty list so callers can return it directly.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

var arithmeticOps = map[string]Op{
	"add": Add,
	"sub": Sub,
	"neg": Neg,
	"eq":  Eq,
	"gt":  Gt,
	"lt":  Lt,
	"and": And,
	"or":  Or,
	"not": Not,
}

// Parse turns one unit's source into commands. Blank and comment-only lines
// are skipped; every malformed line is reported.
func Parse(unit, source string) ([]SourceCommand, error) {
	var (
		cmds []SourceCommand
		errs ErrorList
	)
	for i, raw := range strings.Split(source, "\n") {
		code := stripComment(raw)
		if code == "" {
			continue
		}
		cmd, err := ParseLine(unit, i, code)
		if err != nil {
			errs = append(errs, err.(*Error))
			continue
		}
		cmds = append(cmds, cmd)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return cmds, nil
}

// ParseUnits parses every unit and concatenates the commands in unit order.
// Errors from all units are gathered first; if there are any, no commands
// are returned.
func ParseUnits(units []Unit) ([]SourceCommand, error) {
	var (
		all  []SourceCommand
		errs ErrorList
	)
	for _, u := range units {
		cmds, err := Parse(u.Name, u.Source)
		if err != nil {
			errs = append(errs, err.(ErrorList)...)
			continue
		}
		all = append(all, cmds...)
	}
	if len(errs) > 0 {
		errs.Sort()
		return nil, errs
	}
	return all, nil
}

// ParseLine parses a single line with comments already removed.
// The returned error, if any, is an *Error.
func ParseLine(unit string, line int, code string) (SourceCommand, error) {
	code = strings.TrimSpace(code)
	sc := SourceCommand{Unit: unit, Line: line, Source: code}
	fail := func(format string, args ...any) (SourceCommand, error) {
		return SourceCommand{}, &Error{Unit: unit, Line: line, Source: code, Msg: fmt.Sprintf(format, args...)}
	}

	fields := strings.Fields(code)
	if len(fields) == 0 {
		return fail("empty command")
	}
	keyword, args := fields[0], fields[1:]

	if op, ok := arithmeticOps[keyword]; ok {
		if len(args) != 0 {
			return fail("%s takes no arguments", keyword)
		}
		sc.Command = Arithmetic{Op: op}
		return sc, nil
	}

	switch keyword {
	case "push", "pop":
		if len(args) != 2 {
			return fail("%s expected format '%s <segment> <index>'", keyword, keyword)
		}
		seg, err := ParseSegment(args[0])
		if err != nil {
			return fail("%v", err)
		}
		idx, err := parseNumber(args[1])
		if err != nil {
			return fail("error parsing index: %v", err)
		}
		if keyword == "push" {
			sc.Command = Push{Segment: seg, Index: idx}
			return sc, nil
		}
		if seg == Constant {
			return fail("cannot pop to the constant segment")
		}
		sc.Command = Pop{Segment: seg, Index: idx}

	case "label", "goto", "if-goto":
		if len(args) != 1 {
			return fail("%s expected format '%s <symbol>'", keyword, keyword)
		}
		if !IsSymbol(args[0]) {
			return fail("invalid symbol %q", args[0])
		}
		if strings.Contains(args[0], "$") {
			return fail("symbol %q may not contain '$'", args[0])
		}
		switch keyword {
		case "label":
			sc.Command = Label{Name: args[0]}
		case "goto":
			sc.Command = Goto{Name: args[0]}
		default:
			sc.Command = IfGoto{Name: args[0]}
		}

	case "function", "call":
		if len(args) != 2 {
			return fail("%s expected format '%s <name> <count>'", keyword, keyword)
		}
		if !IsSymbol(args[0]) {
			return fail("invalid function name %q", args[0])
		}
		if strings.Contains(args[0], "$") {
			return fail("function name %q may not contain '$'", args[0])
		}
		n, err := parseNumber(args[1])
		if err != nil {
			return fail("error parsing count: %v", err)
		}
		if keyword == "function" {
			sc.Command = Function{Name: args[0], NVars: n}
		} else {
			sc.Command = Call{Name: args[0], NArgs: n}
		}

	case "return":
		if len(args) != 0 {
			return fail("return takes no arguments")
		}
		sc.Command = Return{}

	default:
		return fail("unknown command %q", keyword)
	}
	return sc, nil
}

func parseNumber(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok {
			return 0, fmt.Errorf("%q: %v", s, ne.Err)
		}
		return 0, err
	}
	return uint16(n), nil
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// IsSymbol reports whether s can be used as a Hack assembly symbol:
// letters, digits, '_', '.', '$' and ':', not starting with a digit.
func IsSymbol(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
		if unicode.IsDigit(r) {
			if i == 0 {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !strings.ContainsRune("_.$:", r) {
			return false
		}
	}
	return true
}
