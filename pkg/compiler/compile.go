package compiler

import (
	"fmt"
	"os"
	"strings"

	"hackvm/pkg/asm"
	"hackvm/pkg/codegen"
	"hackvm/pkg/utils"
	"hackvm/pkg/vm"
)

// SourceExt is the extension of VM translation units.
const SourceExt = ".vm"

// Result holds every stage of a translation.
type Result struct {
	Units    []vm.Unit
	Commands []vm.SourceCommand
	Output   *codegen.Output

	// Assembly is Output.Lines joined with newlines and terminated by one.
	Assembly string

	// Program and SourceMap are set by Compile only.
	Program   []uint16
	SourceMap map[uint16]int
}

// LoadUnits reads a .vm file, or every .vm file of a directory in name
// order.
func LoadUnits(path string) ([]vm.Unit, error) {
	files, _, err := utils.ListSources(path, SourceExt)
	if err != nil {
		return nil, err
	}

	units := make([]vm.Unit, 0, len(files))
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", f, err)
		}
		units = append(units, vm.Unit{Name: utils.UnitName(f), Source: string(src)})
	}
	return units, nil
}

// Translate parses units and generates assembly. Parse errors of all units
// are reported together as a vm.ErrorList; codegen stops at the first
// *codegen.Error.
func Translate(units []vm.Unit, opts codegen.Options) (*Result, error) {
	cmds, err := vm.ParseUnits(units)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	out, err := codegen.Generate(cmds, opts)
	if err != nil {
		return nil, fmt.Errorf("codegen error: %w", err)
	}

	return &Result{
		Units:    units,
		Commands: cmds,
		Output:   out,
		Assembly: strings.Join(out.Lines, "\n") + "\n",
	}, nil
}

// Compile translates units and assembles the result.
func Compile(units []vm.Unit, opts codegen.Options) (*Result, error) {
	res, err := Translate(units, opts)
	if err != nil {
		return nil, err
	}

	program, sourceMap, err := asm.Assemble(res.Assembly)
	if err != nil {
		return res, fmt.Errorf("assembly error: %w", err)
	}
	res.Program = program
	res.SourceMap = sourceMap
	return res, nil
}

// CompilePath loads the units at path and compiles them.
func CompilePath(path string, opts codegen.Options) (*Result, error) {
	units, err := LoadUnits(path)
	if err != nil {
		return nil, err
	}
	return Compile(units, opts)
}
