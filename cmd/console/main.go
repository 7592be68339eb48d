// Command console translates a VM program, runs it headless on the Hack
// emulator and reports the final machine state.
//
//	console [flags] <file.vm | directory>
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"hackvm/pkg/codegen"
	"hackvm/pkg/compiler"
	"hackvm/pkg/cpu"
	"hackvm/pkg/utils"
)

func main() {
	log.SetPrefix("console: ")
	log.SetFlags(0)

	showAsm := flag.Bool("show-asm", false, "print the generated assembly")
	maxSteps := flag.Int("steps", 50_000_000, "instruction limit")
	snapshotPath := flag.String("snapshot", "", "write the final machine state to this zip file")
	restorePath := flag.String("restore", "", "resume from a snapshot instead of compiling")
	screenshotPath := flag.String("screenshot", "", "write the final screen to this PNG file")
	flag.Parse()

	var vm *cpu.CPU
	if *restorePath != "" {
		vm = cpu.NewCPU()
		if err := vm.RestoreFromFile(*restorePath); err != nil {
			log.Fatalf("restore failed: %v", err)
		}
		fmt.Printf("restored %s at PC=%d\n", *restorePath, vm.PC)
	} else {
		if flag.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "usage: console [flags] <file.vm | directory>")
			flag.PrintDefaults()
			os.Exit(2)
		}
		vm = load(flag.Arg(0), *showAsm)
	}

	start := time.Now()
	halted := vm.RunSteps(*maxSteps)
	elapsed := time.Since(start)

	status := "halted"
	if !halted {
		status = "step limit reached"
	}
	fmt.Printf("%s after %d cycles in %v\n", status, vm.Cycles, elapsed.Round(time.Millisecond))
	fmt.Printf("PC=%d A=%d D=%d\n", vm.PC, vm.A, int16(vm.D))
	fmt.Printf("SP=%d LCL=%d ARG=%d THIS=%d THAT=%d\n",
		vm.RAM[0], vm.Word(1), vm.Word(2), vm.Word(3), vm.Word(4))
	fmt.Printf("stack: %v\n", vm.Stack(codegen.StackBase))

	if *snapshotPath != "" {
		if err := vm.SnapshotToFile(*snapshotPath); err != nil {
			log.Fatalf("snapshot failed: %v", err)
		}
		fmt.Printf("snapshot -> %s\n", *snapshotPath)
	}
	if *screenshotPath != "" {
		if err := vm.SaveScreenshot(*screenshotPath); err != nil {
			log.Fatalf("screenshot failed: %v", err)
		}
		fmt.Printf("screenshot -> %s\n", *screenshotPath)
	}
}

// load compiles the program at path into a fresh CPU. Programs without
// Sys.init get the segment pointers the course test scripts use.
func load(path string, showAsm bool) *cpu.CPU {
	fullPath, baseDir, err := utils.GetPathInfo(path)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Compiling:", fullPath)
	fmt.Println("Base directory:", baseDir)

	res, err := compiler.CompilePath(fullPath, codegen.Options{Comments: showAsm})
	if err != nil {
		log.Fatalf("compilation failed: %v", err)
	}
	for _, w := range res.Output.Warnings {
		log.Print(w)
	}
	if showAsm {
		fmt.Print("Generated assembly:\n", res.Assembly)
	}

	vm := cpu.NewCPU()
	if err := vm.Load(res.Program); err != nil {
		log.Fatal(err)
	}
	if !res.Output.Bootstrap {
		vm.RAM[0] = codegen.StackBase
		vm.RAM[1] = 300
		vm.RAM[2] = 400
		vm.RAM[3] = 3000
		vm.RAM[4] = 3010
	}
	return vm
}
