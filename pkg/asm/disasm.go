package asm

import (
	"fmt"
	"go6502c/pkg/cpu"
	"strings"
)

// Line is one decoded instruction or data byte.
type Line struct {
	Addr  int
	Bytes []byte
	Text  string
}

func (l Line) String() string {
	hex := make([]string, len(l.Bytes))
	for i, b := range l.Bytes {
		hex[i] = fmt.Sprintf("%02X", b)
	}
	return fmt.Sprintf("%04X  %-9s %s", l.Addr, strings.Join(hex, " "), l.Text)
}

// Layout marks the regions of a program image.
type Layout struct {
	CodeEnd   int // first byte after code
	StaticEnd int // first byte after static variables
	Heap      int // lowest heap byte
}

// Disassemble decodes code[0:end]. Bytes that are not opcodes, or whose
// operands run past end, are listed as .BYTE.
func Disassemble(code []byte, end int) []Line {
	if end > len(code) {
		end = len(code)
	}
	var out []Line
	for pc := 0; pc < end; {
		in, ok := cpu.Lookup(code[pc])
		if !ok || pc+in.Length() > end {
			out = append(out, Line{Addr: pc, Bytes: code[pc : pc+1], Text: fmt.Sprintf(".BYTE $%02X", code[pc])})
			pc++
			continue
		}
		raw := code[pc : pc+in.Length()]
		out = append(out, Line{Addr: pc, Bytes: raw, Text: formatInstruction(in, pc, raw)})
		pc += in.Length()
	}
	return out
}

func formatInstruction(in cpu.Instruction, pc int, raw []byte) string {
	switch in.Mode {
	case cpu.Immediate:
		return fmt.Sprintf("%s #$%02X", in.Mnemonic, raw[1])
	case cpu.Absolute:
		return fmt.Sprintf("%s $%04X", in.Mnemonic, int(raw[1])|int(raw[2])<<8)
	case cpu.Relative:
		return fmt.Sprintf("%s $%02X      ; -> $%02X", in.Mnemonic, raw[1], cpu.BranchTarget(pc, raw[1]))
	}
	return in.Mnemonic
}

// Listing renders a full image: code as instructions, then the static
// variables and the heap strings.
func Listing(image []byte, layout Layout) string {
	var sb strings.Builder

	sb.WriteString("; code\n")
	for _, l := range Disassemble(image, layout.CodeEnd) {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}

	if layout.StaticEnd > layout.CodeEnd {
		sb.WriteString("; static\n")
		for addr := layout.CodeEnd; addr < layout.StaticEnd && addr < len(image); addr++ {
			fmt.Fprintf(&sb, "%04X  %02X\n", addr, image[addr])
		}
	}

	if layout.Heap < len(image) {
		sb.WriteString("; heap\n")
		start := layout.Heap
		for addr := layout.Heap; addr < len(image); addr++ {
			if image[addr] != 0x00 {
				continue
			}
			fmt.Fprintf(&sb, "%04X  .STRING %q\n", start, string(image[start:addr]))
			start = addr + 1
		}
	}

	return sb.String()
}
