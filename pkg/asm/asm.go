// Package asm assembles Hack assembly text into 16-bit machine words.
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"hackvm/pkg/cpu"
)

// VariableBase is the RAM address given to the first variable symbol.
const VariableBase = 16

var predefinedSymbols = map[string]uint16{
	"SP":     0,
	"LCL":    1,
	"ARG":    2,
	"THIS":   3,
	"THAT":   4,
	"SCREEN": cpu.ScreenBase,
	"KBD":    cpu.KeyboardAddr,
}

func init() {
	for i := uint16(0); i < 16; i++ {
		predefinedSymbols[fmt.Sprintf("R%d", i)] = i
	}
}

var destCodes = map[string]uint16{
	"":    0b000,
	"M":   0b001,
	"D":   0b010,
	"MD":  0b011,
	"DM":  0b011,
	"A":   0b100,
	"AM":  0b101,
	"MA":  0b101,
	"AD":  0b110,
	"DA":  0b110,
	"AMD": 0b111,
	"ADM": 0b111,
}

var jumpCodes = map[string]uint16{
	"":    0b000,
	"JGT": 0b001,
	"JEQ": 0b010,
	"JGE": 0b011,
	"JLT": 0b100,
	"JNE": 0b101,
	"JLE": 0b110,
	"JMP": 0b111,
}

// compCodes hold the a-bit and the six ALU control bits, written with A as
// the y operand. The M forms set the a-bit.
var compCodes = map[string]uint16{
	"0":   0b0101010,
	"1":   0b0111111,
	"-1":  0b0111010,
	"D":   0b0001100,
	"A":   0b0110000,
	"!D":  0b0001101,
	"!A":  0b0110001,
	"-D":  0b0001111,
	"-A":  0b0110011,
	"D+1": 0b0011111,
	"A+1": 0b0110111,
	"D-1": 0b0001110,
	"A-1": 0b0110010,
	"D+A": 0b0000010,
	"D-A": 0b0010011,
	"A-D": 0b0000111,
	"D&A": 0b0000000,
	"D|A": 0b0010101,
}

// commutative spellings accepted in addition to the canonical ones.
var compAliases = map[string]string{
	"1+D": "D+1",
	"1+A": "A+1",
	"A+D": "D+A",
	"A&D": "D&A",
	"A|D": "D|A",
}

func init() {
	for k, v := range compCodes {
		if strings.Contains(k, "A") {
			compCodes[strings.ReplaceAll(k, "A", "M")] = v | 1<<6
		}
	}
	for alias, canon := range compAliases {
		compCodes[alias] = compCodes[canon]
		m := strings.ReplaceAll(alias, "A", "M")
		if m != alias {
			compCodes[m] = compCodes[strings.ReplaceAll(canon, "A", "M")]
		}
	}
}

type Assembler struct {
	symbols map[string]uint16
	nextVar uint16
}

type parsedLine struct {
	lineNo int
	label  string
	// address holds the operand of an A-instruction.
	address string
	isA     bool
	dest    string
	comp    string
	jump    string
}

func NewAssembler() *Assembler {
	a := &Assembler{
		symbols: make(map[string]uint16, len(predefinedSymbols)),
		nextVar: VariableBase,
	}
	for k, v := range predefinedSymbols {
		a.symbols[k] = v
	}
	return a
}

// Assemble translates code and returns the program and a map from ROM
// address to 1-based source line.
func Assemble(code string) ([]uint16, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]uint16, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	parsed, err := a.pass1(lines)
	if err != nil {
		return nil, nil, err
	}

	return a.pass2(parsed)
}

// Symbols returns the resolved symbol table after Assemble.
func (a *Assembler) Symbols() map[string]uint16 {
	return a.symbols
}

// pass1 parses every line and binds labels to ROM addresses.
func (a *Assembler) pass1(lines []string) ([]parsedLine, error) {
	var (
		address uint32
		parsed  []parsedLine
	)

	for i, raw := range lines {
		lineNo := i + 1
		p, ok, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if p.label != "" {
			if _, exists := a.symbols[p.label]; exists {
				return nil, fmt.Errorf("duplicate label '%s' on line %d", p.label, lineNo)
			}
			a.symbols[p.label] = uint16(address)
			continue
		}

		if address >= cpu.ROMSize {
			return nil, fmt.Errorf("program too large near line %d", lineNo)
		}
		address++
		parsed = append(parsed, p)
	}

	return parsed, nil
}

func (a *Assembler) pass2(parsed []parsedLine) ([]uint16, map[uint16]int, error) {
	program := make([]uint16, 0, len(parsed))
	sourceMap := make(map[uint16]int, len(parsed))

	for _, p := range parsed {
		sourceMap[uint16(len(program))] = p.lineNo

		if p.isA {
			val, err := a.resolve(p.address, p.lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, val)
			continue
		}

		instr, err := encodeC(p)
		if err != nil {
			return nil, nil, err
		}
		program = append(program, instr)
	}

	return program, sourceMap, nil
}

// resolve turns an A-instruction operand into a value, allocating a new
// variable for unknown symbols.
func (a *Assembler) resolve(token string, lineNo int) (uint16, error) {
	if token[0] >= '0' && token[0] <= '9' {
		value, err := strconv.ParseUint(token, 10, 16)
		if err != nil || value > cpu.MaxAddress {
			return 0, fmt.Errorf("invalid constant on line %d: %s", lineNo, token)
		}
		return uint16(value), nil
	}

	if !isSymbol(token) {
		return 0, fmt.Errorf("invalid symbol '%s' on line %d", token, lineNo)
	}
	if addr, ok := a.symbols[token]; ok {
		return addr, nil
	}
	if a.nextVar >= cpu.ScreenBase {
		return 0, fmt.Errorf("out of variable space at '%s' on line %d", token, lineNo)
	}
	addr := a.nextVar
	a.symbols[token] = addr
	a.nextVar++
	return addr, nil
}

func encodeC(p parsedLine) (uint16, error) {
	dest, ok := destCodes[p.dest]
	if !ok {
		return 0, fmt.Errorf("invalid dest '%s' on line %d", p.dest, p.lineNo)
	}
	comp, ok := compCodes[p.comp]
	if !ok {
		return 0, fmt.Errorf("invalid comp '%s' on line %d", p.comp, p.lineNo)
	}
	jump, ok := jumpCodes[p.jump]
	if !ok {
		return 0, fmt.Errorf("invalid jump '%s' on line %d", p.jump, p.lineNo)
	}
	return cpu.EncodeC(comp, dest, jump), nil
}

// parseLine reports ok=false for blank and comment-only lines.
func parseLine(raw string, lineNo int) (parsedLine, bool, error) {
	p := parsedLine{lineNo: lineNo}

	line := stripComments(raw)
	line = strings.Join(strings.Fields(line), "")
	if line == "" {
		return p, false, nil
	}

	switch {
	case strings.HasPrefix(line, "("):
		if !strings.HasSuffix(line, ")") {
			return p, false, fmt.Errorf("unterminated label on line %d", lineNo)
		}
		label := line[1 : len(line)-1]
		if !isSymbol(label) {
			return p, false, fmt.Errorf("invalid label '%s' on line %d", label, lineNo)
		}
		p.label = label

	case strings.HasPrefix(line, "@"):
		if len(line) == 1 {
			return p, false, fmt.Errorf("missing address on line %d", lineNo)
		}
		p.isA = true
		p.address = line[1:]

	default:
		rest := line
		if eq := strings.IndexByte(rest, '='); eq >= 0 {
			p.dest = rest[:eq]
			rest = rest[eq+1:]
		}
		if semi := strings.IndexByte(rest, ';'); semi >= 0 {
			p.jump = rest[semi+1:]
			rest = rest[:semi]
		}
		p.comp = rest
	}

	return p, true, nil
}

func stripComments(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}

func isSymbol(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && unicode.IsDigit(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("_.$:", r) {
			return false
		}
	}

	return true
}

// FormatHack renders a program in the textual .hack format: one
// 16-character binary word per line.
func FormatHack(program []uint16) string {
	var b strings.Builder
	for _, w := range program {
		fmt.Fprintf(&b, "%016b\n", w)
	}
	return b.String()
}

// ParseHack reads the textual .hack format.
func ParseHack(text string) ([]uint16, error) {
	var program []uint16
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if len(line) != 16 {
			return nil, fmt.Errorf("line %d: expected 16 binary digits, got %q", i+1, line)
		}
		w, err := strconv.ParseUint(line, 2, 16)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", i+1, err)
		}
		program = append(program, uint16(w))
	}
	return program, nil
}
