// Package asm assembles and disassembles programs for the 8-bit target
// described by package cpu.
//
// Source syntax, one instruction per line:
//
//	label:  LDA #$01      ; immediate
//	        STA $0012     ; absolute
//	        BNE label     ; relative, distance computed from the label
//	        .ORG $FD      ; move to an address, zero filling
//	        .STRING "hi"  ; bytes plus a null terminator
//	        .BYTE $00
package asm

import (
	"fmt"
	"go6502c/pkg/cpu"
	"strconv"
	"strings"
	"unicode"
)

// opcodes maps mnemonic and addressing mode to the opcode byte.
var opcodes = buildOpcodeTable()

type opKey struct {
	mnemonic string
	mode     cpu.Mode
}

func buildOpcodeTable() map[opKey]byte {
	table := make(map[opKey]byte)
	for op := 0; op < cpu.MemorySize; op++ {
		if in, ok := cpu.Lookup(byte(op)); ok {
			table[opKey{in.Mnemonic, in.Mode}] = in.Opcode
		}
	}
	return table
}

type Assembler struct {
	labels map[string]int
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]int),
	}
}

// Assemble translates source into a program image. The returned source map
// gives the source line for the address of every emitted instruction.
func Assemble(code string) ([]byte, map[int]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]byte, map[int]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

func (a *Assembler) pass1(lines []string) error {
	address := 0

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			if address >= cpu.MemorySize {
				return fmt.Errorf("label '%s' on line %d points past addressable memory", lbl, lineNo)
			}
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = address
		}

		if p.mnemonic == "" {
			continue
		}

		length := 0
		switch p.mnemonic {
		case ".STRING":
			if len(p.operands) != 1 {
				return fmt.Errorf(".STRING expects exactly one string operand on line %d", lineNo)
			}
			length = len(p.operands[0]) + 1
		case ".BYTE":
			length = len(p.operands)
		case ".ORG":
			target, err := parseNumber(p.operands[0])
			if err != nil {
				return fmt.Errorf("invalid .ORG value on line %d: %s", lineNo, p.operands[0])
			}
			if target < address {
				return fmt.Errorf("cannot move origin backward on line %d", lineNo)
			}
			address = target
			continue
		default:
			mode, err := operandMode(p.mnemonic, p.operands)
			if err != nil {
				return fmt.Errorf("%v on line %d", err, lineNo)
			}
			length = 1 + mode.OperandBytes()
		}

		if address+length > cpu.MemorySize {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
		address += length
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]byte, map[int]int, error) {
	program := make([]byte, 0, cpu.MemorySize)
	sourceMap := make(map[int]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		switch p.mnemonic {
		case ".STRING":
			program = append(program, p.operands[0]...)
			program = append(program, 0x00)
			continue

		case ".BYTE":
			for _, op := range p.operands {
				v, err := parseByte(op, lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, v)
			}
			continue

		case ".ORG":
			target, _ := parseNumber(p.operands[0])
			if padding := target - len(program); padding > 0 {
				program = append(program, make([]byte, padding)...)
			}
			continue
		}

		sourceMap[len(program)] = lineNo

		mode, err := operandMode(p.mnemonic, p.operands)
		if err != nil {
			return nil, nil, fmt.Errorf("%v on line %d", err, lineNo)
		}
		program = append(program, opcodes[opKey{p.mnemonic, mode}])

		switch mode {
		case cpu.Immediate:
			v, err := parseByte(strings.TrimPrefix(p.operands[0], "#"), lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, v)

		case cpu.Absolute:
			addr, err := a.parseAddress(p.operands[0], lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, byte(addr&0xFF), byte(addr>>8))

		case cpu.Relative:
			dist, err := a.parseDistance(p.operands[0], len(program)-1, lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, dist)
		}
	}

	return program, sourceMap, nil
}

// operandMode picks the addressing mode from the operand syntax and checks
// the mnemonic supports it.
func operandMode(mnemonic string, ops []string) (cpu.Mode, error) {
	var mode cpu.Mode
	switch {
	case len(ops) == 0:
		mode = cpu.Implied
	case len(ops) > 1:
		return 0, fmt.Errorf("%s expects at most 1 operand", mnemonic)
	case strings.HasPrefix(ops[0], "#"):
		mode = cpu.Immediate
	case mnemonic == "BNE":
		mode = cpu.Relative
	default:
		mode = cpu.Absolute
	}
	if _, ok := opcodes[opKey{mnemonic, mode}]; !ok {
		if !knownMnemonic(mnemonic) {
			return 0, fmt.Errorf("unknown instruction %s", mnemonic)
		}
		return 0, fmt.Errorf("%s does not support %s addressing", mnemonic, mode)
	}
	return mode, nil
}

func knownMnemonic(mnemonic string) bool {
	for k := range opcodes {
		if k.mnemonic == mnemonic {
			return true
		}
	}
	return false
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	// .STRING keeps its quoted operand verbatim, spaces included.
	if idx := strings.Index(strings.ToUpper(raw), ".STRING"); idx != -1 {
		if colonIdx := strings.Index(raw[:idx], ":"); colonIdx != -1 {
			label := strings.TrimSpace(raw[:colonIdx])
			if label != "" {
				p.labels = append(p.labels, label)
			}
		}
		opening := strings.Index(raw, "\"")
		closing := strings.LastIndex(raw, "\"")
		if opening == -1 || opening == closing {
			return p, fmt.Errorf("invalid string literal on line %d", lineNo)
		}
		p.mnemonic = ".STRING"
		p.operands = []string{raw[opening+1 : closing]}
		return p, nil
	}

	line := strings.TrimSpace(stripComments(raw))
	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}
		label := strings.TrimSpace(line[:colon])
		if !isIdentifier(label) {
			return p, fmt.Errorf("invalid label '%s' on line %d", label, lineNo)
		}
		p.labels = append(p.labels, label)
		line = strings.TrimSpace(line[colon+1:])
	}

	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	p.operands = fields[1:]

	if p.mnemonic == ".ORG" && len(p.operands) != 1 {
		return p, fmt.Errorf(".ORG expects exactly one operand on line %d", lineNo)
	}

	return p, nil
}

func stripComments(line string) string {
	if semicolon := strings.Index(line, ";"); semicolon >= 0 {
		return line[:semicolon]
	}
	return line
}

// parseNumber accepts $hex, 0x hex or decimal.
func parseNumber(token string) (int, error) {
	if strings.HasPrefix(token, "$") {
		token = "0x" + token[1:]
	}
	v, err := strconv.ParseUint(token, 0, 32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func parseByte(token string, lineNo int) (byte, error) {
	v, err := parseNumber(token)
	if err != nil {
		return 0, fmt.Errorf("invalid byte '%s' on line %d", token, lineNo)
	}
	if v > 0xFF {
		return 0, fmt.Errorf("byte out of range on line %d: %s", lineNo, token)
	}
	return byte(v), nil
}

func (a *Assembler) parseAddress(token string, lineNo int) (int, error) {
	if v, err := parseNumber(token); err == nil {
		if v >= cpu.MemorySize {
			return 0, fmt.Errorf("address out of range on line %d: %s", lineNo, token)
		}
		return v, nil
	}
	return a.resolveLabel(token, lineNo)
}

// parseDistance returns the BNE distance byte for the instruction at pc.
// A number is taken as the raw distance, a label as the branch target.
func (a *Assembler) parseDistance(token string, pc, lineNo int) (byte, error) {
	if v, err := parseNumber(token); err == nil {
		if v > 0xFF {
			return 0, fmt.Errorf("branch distance out of range on line %d: %s", lineNo, token)
		}
		return byte(v), nil
	}
	target, err := a.resolveLabel(token, lineNo)
	if err != nil {
		return 0, err
	}
	return byte((target - (pc + 2) + cpu.MemorySize) % cpu.MemorySize), nil
}

func (a *Assembler) resolveLabel(token string, lineNo int) (int, error) {
	if addr, ok := a.labels[normalizeLabel(token)]; ok {
		return addr, nil
	}
	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}
	return 0, fmt.Errorf("invalid operand '%s' on line %d", token, lineNo)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
