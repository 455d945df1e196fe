// Package cpu describes the 8-bit, accumulator based target machine: its
// opcodes, addressing modes and system calls. Programs are a single 256
// byte page; code starts at 0x00.
package cpu

import "fmt"

// MemorySize is the size of the whole address space in bytes.
const MemorySize = 256

const (
	OpBRK    byte = 0x00 // break: end of program
	OpADC    byte = 0x6D // add with carry, absolute
	OpSTA    byte = 0x8D // store accumulator, absolute
	OpLDYImm byte = 0xA0 // load Y, immediate
	OpLDXImm byte = 0xA2 // load X, immediate
	OpLDAImm byte = 0xA9 // load accumulator, immediate
	OpLDY    byte = 0xAC // load Y, absolute
	OpLDA    byte = 0xAD // load accumulator, absolute
	OpLDX    byte = 0xAE // load X, absolute
	OpBNE    byte = 0xD0 // branch if Z clear, relative
	OpCPX    byte = 0xEC // compare X with memory, sets Z
	OpNOP    byte = 0xEA
	OpSYS    byte = 0xFF // system call, mode in X
)

// System call modes, loaded into X before OpSYS.
const (
	SysPrintInt    byte = 0x01 // print the value in Y
	SysPrintString byte = 0x02 // print the null-terminated string at address Y
)

// Mode is an operand addressing mode.
type Mode int

const (
	Implied   Mode = iota // no operand
	Immediate             // one literal byte
	Absolute              // two address bytes, low then high
	Relative              // one signed-by-wraparound branch distance
)

func (m Mode) String() string {
	switch m {
	case Implied:
		return "implied"
	case Immediate:
		return "immediate"
	case Absolute:
		return "absolute"
	case Relative:
		return "relative"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// OperandBytes is the number of bytes that follow the opcode.
func (m Mode) OperandBytes() int {
	switch m {
	case Immediate, Relative:
		return 1
	case Absolute:
		return 2
	}
	return 0
}

// Instruction describes one opcode.
type Instruction struct {
	Opcode   byte
	Mnemonic string
	Mode     Mode
}

// Length is the encoded size of the instruction in bytes.
func (i Instruction) Length() int {
	return 1 + i.Mode.OperandBytes()
}

var instructions = map[byte]Instruction{
	OpBRK:    {OpBRK, "BRK", Implied},
	OpADC:    {OpADC, "ADC", Absolute},
	OpSTA:    {OpSTA, "STA", Absolute},
	OpLDYImm: {OpLDYImm, "LDY", Immediate},
	OpLDXImm: {OpLDXImm, "LDX", Immediate},
	OpLDAImm: {OpLDAImm, "LDA", Immediate},
	OpLDY:    {OpLDY, "LDY", Absolute},
	OpLDA:    {OpLDA, "LDA", Absolute},
	OpLDX:    {OpLDX, "LDX", Absolute},
	OpBNE:    {OpBNE, "BNE", Relative},
	OpCPX:    {OpCPX, "CPX", Absolute},
	OpNOP:    {OpNOP, "NOP", Implied},
	OpSYS:    {OpSYS, "SYS", Implied},
}

// Lookup returns the instruction for an opcode byte.
func Lookup(op byte) (Instruction, bool) {
	in, ok := instructions[op]
	return in, ok
}

// BranchTarget returns the address a BNE at pc with the given distance lands
// on. Distances wrap around the page, so a branch backwards is encoded as
// MemorySize minus the distance.
func BranchTarget(pc int, distance byte) int {
	return (pc + 2 + int(distance)) % MemorySize
}
