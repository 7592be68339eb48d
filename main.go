//go:build !js

// Command hackvm translates VM programs into Hack assembly.
//
//	hackvm [flags] <file.vm | directory>
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"

	"hackvm/pkg/asm"
	"hackvm/pkg/codegen"
	"hackvm/pkg/compiler"
	"hackvm/pkg/cpu"
	"hackvm/pkg/utils"
	"hackvm/pkg/vm"
)

func main() {
	log.SetPrefix("hackvm: ")
	log.SetFlags(0)

	inPath := flag.String("in", "", "input .vm file or directory (or pass it as the only argument)")
	outPath := flag.String("out", "", "output .asm path (default: next to the input)")
	comments := flag.Bool("comments", true, "annotate the output with the source of each command")
	levelName := flag.String("level", "functions", "protocol level: stack, branching or functions")
	writeHack := flag.Bool("hack", false, "also assemble and write a .hack file")
	comparePath := flag.String("compare", "", "diff the output against an expected .asm file")
	dump := flag.Bool("dump", false, "dump the parsed commands")
	runProgram := flag.Bool("run", false, "run the program on the Hack emulator")
	maxSteps := flag.Int("steps", 10_000_000, "instruction limit for -run")
	flag.Parse()

	if *inPath == "" && flag.NArg() == 1 {
		*inPath = flag.Arg(0)
	}
	if *inPath == "" || flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "nothing to do: provide a .vm file or a directory of .vm files")
		flag.Usage()
		os.Exit(2)
	}

	level, err := codegen.ParseLevel(*levelName)
	if err != nil {
		log.Fatal(err)
	}
	opts := codegen.Options{Comments: *comments, Level: level}

	units, err := compiler.LoadUnits(*inPath)
	if err != nil {
		log.Fatal(err)
	}

	res, err := compiler.Translate(units, opts)
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
	for _, w := range res.Output.Warnings {
		log.Print(w)
	}

	if *dump {
		spew.Fdump(os.Stdout, res.Commands)
	}

	_, isDir, err := utils.ListSources(*inPath, compiler.SourceExt)
	if err != nil {
		log.Fatal(err)
	}
	output := *outPath
	if output == "" {
		output = utils.DefaultOutputPath(*inPath, isDir, ".asm")
	}
	if err := os.WriteFile(output, []byte(res.Assembly), 0o644); err != nil {
		log.Fatalf("failed to write %q: %v", output, err)
	}
	fmt.Printf("translated %d units, %d lines -> %s\n", len(units), len(res.Output.Lines), output)

	var program []uint16
	if *writeHack || *runProgram {
		program, _, err = asm.Assemble(res.Assembly)
		if err != nil {
			log.Fatalf("assembly failed: %v", err)
		}
	}
	if *writeHack {
		hackPath := utils.DefaultOutputPath(output, false, ".hack")
		if err := os.WriteFile(hackPath, []byte(asm.FormatHack(program)), 0o644); err != nil {
			log.Fatalf("failed to write %q: %v", hackPath, err)
		}
		fmt.Printf("assembled %d words -> %s\n", len(program), hackPath)
	}

	if *comparePath != "" {
		same, err := compareOutput(*comparePath, output, res.Assembly)
		if err != nil {
			log.Fatal(err)
		}
		if !same {
			os.Exit(1)
		}
	}

	if *runProgram {
		if err := runHack(program, *maxSteps, !res.Output.Bootstrap); err != nil {
			log.Fatalf("run failed: %v", err)
		}
	}
}

// reportError prints every parse error, or the single codegen error.
func reportError(err error) {
	var list vm.ErrorList
	if errors.As(err, &list) {
		for _, e := range list {
			log.Print(e)
		}
		log.Printf("%d parse errors, nothing written", len(list))
		return
	}
	log.Print(err)
}

// normalize drops comments and blank lines so annotated and plain
// assembly compare equal.
func normalize(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func compareOutput(expectedPath, outputName, got string) (bool, error) {
	want, err := os.ReadFile(expectedPath)
	if err != nil {
		return false, err
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(normalize(string(want))),
		B:        difflib.SplitLines(normalize(got)),
		FromFile: expectedPath,
		ToFile:   outputName,
		Context:  3,
	})
	if err != nil {
		return false, err
	}
	if diff == "" {
		fmt.Printf("output matches %s\n", expectedPath)
		return true, nil
	}
	fmt.Print(diff)
	return false, nil
}

// runHack executes program and prints the machine state. Programs without
// a bootstrap get the segment pointers a test harness would set.
func runHack(program []uint16, maxSteps int, presetPointers bool) error {
	vm := cpu.NewCPU()
	if err := vm.Load(program); err != nil {
		return err
	}
	if presetPointers {
		vm.RAM[0] = codegen.StackBase
		vm.RAM[1] = 300
		vm.RAM[2] = 400
		vm.RAM[3] = 3000
		vm.RAM[4] = 3010
	}

	halted := vm.RunSteps(maxSteps)
	if !halted {
		fmt.Printf("stopped after %d steps without halting\n", maxSteps)
	}

	fmt.Printf(
		"run complete: PC=%d A=%d D=%d SP=%d LCL=%d ARG=%d THIS=%d THAT=%d cycles=%d\n",
		vm.PC,
		vm.A,
		int16(vm.D),
		vm.RAM[0],
		vm.Word(1),
		vm.Word(2),
		vm.Word(3),
		vm.Word(4),
		vm.Cycles,
	)
	fmt.Printf("stack: %v\n", vm.Stack(codegen.StackBase))
	return nil
}
