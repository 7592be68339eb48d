package codegen

// scope tracks the enclosing function names while the orchestrator walks
// a unit. Functions do not nest in the VM language, so the stack holds at
// most one function above the unit entry.
type scope struct {
	unit     string
	names    []string
	returned string // function closed by the last Return, if any
}

func (s *scope) reset(unit string) {
	s.unit = unit
	s.names = s.names[:0]
	s.returned = ""
}

// top is the innermost scope name, or the unit name outside any function.
func (s *scope) top() string {
	if len(s.names) == 0 {
		return s.unit
	}
	return s.names[len(s.names)-1]
}

func (s *scope) open() bool { return len(s.names) > 0 }

func (s *scope) enterFunction(name string) {
	s.names = append(s.names[:0], name)
	s.returned = ""
}

// leaveFunction pops the current function. It reports false when no
// function was open.
func (s *scope) leaveFunction() bool {
	if len(s.names) == 0 {
		return false
	}
	s.returned = s.names[len(s.names)-1]
	s.names = s.names[:len(s.names)-1]
	return true
}

// reopen restores the function closed by the last Return: code following
// an early return still belongs to that function.
func (s *scope) reopen() {
	if len(s.names) == 0 && s.returned != "" {
		s.names = append(s.names, s.returned)
		s.returned = ""
	}
}
