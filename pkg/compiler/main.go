// Package compiler drives the whole tool chain for a VM program: it loads
// translation units from disk, parses them, generates Hack assembly and
// assembles it into machine words.
//
// Pipeline: .vm files → LoadUnits → vm.ParseUnits → codegen.Generate → asm.Assemble
package compiler
