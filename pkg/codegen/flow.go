package codegen

import (
	"fmt"
	"strings"
)

// generatedSep joins the owner of an invented label to its kind. Names in
// source may not contain '$', so neither user labels nor function names
// can spell it.
const generatedSep = "$$"

func generatedLabel(owner, kind string, line int) string {
	return fmt.Sprintf("%s%s%s.%d", owner, generatedSep, kind, line)
}

// ScopedLabel qualifies a user label with its enclosing function (or unit)
// so equal names in different functions never collide.
func ScopedLabel(scope, name string) string {
	return scope + "$" + name
}

func checkName(what, name string) error {
	if name == "" {
		return errorf(ErrMalformedLabel, "empty %s", what)
	}
	if strings.Contains(name, "$") {
		return errorf(ErrMalformedLabel, "%s %q: '$' is reserved for generated labels", what, name)
	}
	return nil
}

func checkLabel(name string) error { return checkName("label", name) }

func genLabel(c *code, scope, name string) error {
	if err := checkLabel(name); err != nil {
		return err
	}
	c.label(ScopedLabel(scope, name))
	return nil
}

func genGoto(c *code, scope, name string) error {
	if err := checkLabel(name); err != nil {
		return err
	}
	c.line("@%s", ScopedLabel(scope, name))
	c.line("0;JMP")
	return nil
}

// genIfGoto jumps when the popped value is non-zero.
func genIfGoto(c *code, scope, name string) error {
	if err := checkLabel(name); err != nil {
		return err
	}
	c.popD()
	c.line("@%s", ScopedLabel(scope, name))
	c.line("D;JNE")
	return nil
}
