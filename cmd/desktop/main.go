// Command desktop runs a VM program on the Hack emulator in a window, with
// the screen memory map drawn live and the keyboard wired to KBD.
//
//	desktop [flags] <file.vm | directory>
//
// Ctrl+P pauses, Ctrl+S writes a snapshot and Ctrl+G a screenshot.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"hackvm/pkg/codegen"
	"hackvm/pkg/compiler"
	"hackvm/pkg/cpu"
	"hackvm/pkg/utils"
)

const statusHeight = 16

var statusFace = text.NewGoXFace(basicfont.Face7x13)

type Game struct {
	vm            *cpu.CPU
	screenImg     *ebiten.Image // reused 512×256 canvas
	stepsPerFrame int
	paused        bool
	lastChar      rune
	message       string
	snapshotPath  string
	screenPath    string
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		g.handleShortcuts()
		g.vm.SetKey(0)
	} else {
		chars := ebiten.AppendInputChars(nil)
		if len(chars) > 0 {
			g.lastChar = chars[len(chars)-1]
		}
		g.vm.SetKey(resolveKey(inpututil.AppendPressedKeys(nil), g.lastChar))
		if g.vm.RAM[cpu.KeyboardAddr] == 0 {
			g.lastChar = 0
		}
	}

	if !g.paused {
		g.step()
	}
	return nil
}

// step runs one frame's worth of instructions.
func (g *Game) step() {
	g.vm.RunSteps(g.stepsPerFrame)
}

func (g *Game) handleShortcuts() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.paused = !g.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		if err := g.vm.SnapshotToFile(g.snapshotPath); err != nil {
			g.message = err.Error()
		} else {
			g.message = "snapshot -> " + g.snapshotPath
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		if err := g.vm.SaveScreenshot(g.screenPath); err != nil {
			g.message = err.Error()
		} else {
			g.message = "screenshot -> " + g.screenPath
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(cpu.ScreenWidth, cpu.ScreenHeight)
	}
	g.screenImg.WritePixels(g.vm.GetFramebufferRGBA())
	screen.DrawImage(g.screenImg, nil)

	op := &text.DrawOptions{}
	op.GeoM.Translate(4, cpu.ScreenHeight+2)
	op.ColorScale.ScaleWithColor(color.RGBA{0xC0, 0xC0, 0xC0, 0xFF})
	text.Draw(screen, g.status(), statusFace, op)

	if g.paused {
		ebitenutil.DebugPrintAt(screen, "PAUSED", cpu.ScreenWidth-48, 0)
	}
}

func (g *Game) status() string {
	state := "running"
	switch {
	case g.vm.Halted:
		state = "halted"
	case g.paused:
		state = "paused"
	}
	s := fmt.Sprintf("%s  PC=%d SP=%d KBD=%d cycles=%d", state, g.vm.PC, g.vm.RAM[0], g.vm.RAM[cpu.KeyboardAddr], g.vm.Cycles)
	if g.message != "" {
		s += "  " + g.message
	}
	return s
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.ScreenWidth, cpu.ScreenHeight + statusHeight
}

func main() {
	log.SetPrefix("desktop: ")
	log.SetFlags(0)

	showAsm := flag.Bool("show-asm", false, "print the generated assembly")
	steps := flag.Int("steps-per-frame", 100_000, "instructions executed per frame")
	restorePath := flag.String("restore", "", "resume from a snapshot instead of compiling")
	snapshotPath := flag.String("snapshot", "hackvm_snapshot.zip", "file written by Ctrl+S")
	screenPath := flag.String("screenshot", "hackvm_screen.png", "file written by Ctrl+G")
	flag.Parse()

	vm := cpu.NewCPU()
	title := "Hack"
	switch {
	case *restorePath != "":
		if err := vm.RestoreFromFile(*restorePath); err != nil {
			log.Fatalf("restore failed: %v", err)
		}
		title += " - " + *restorePath
	case flag.NArg() == 1:
		fullPath, _, err := utils.GetPathInfo(flag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		res, err := compiler.CompilePath(fullPath, codegen.Options{Comments: *showAsm})
		if err != nil {
			log.Fatalf("compilation failed: %v", err)
		}
		if *showAsm {
			fmt.Print("Generated assembly:\n", res.Assembly)
		}
		if err := vm.Load(res.Program); err != nil {
			log.Fatal(err)
		}
		if !res.Output.Bootstrap {
			vm.RAM[0] = codegen.StackBase
		}
		title += " - " + utils.UnitName(fullPath)
	default:
		fmt.Fprintln(os.Stderr, "usage: desktop [flags] <file.vm | directory>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cpu.ScreenWidth*2, (cpu.ScreenHeight+statusHeight)*2)
	ebiten.SetWindowTitle(title)

	game := &Game{
		vm:            vm,
		stepsPerFrame: *steps,
		snapshotPath:  *snapshotPath,
		screenPath:    *screenPath,
	}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
