package compiler

import (
	"fmt"
	"strings"

	"go6502c/pkg/cpu"
	"go6502c/pkg/grid"
)

// CellKind says what an image cell currently holds.
type CellKind int

const (
	CellByte CellKind = iota // a resolved byte
	CellTemp                 // placeholder for a temp table address
	CellJump                 // placeholder for a jump table distance
)

// Cell is one byte of the assembly image, or a placeholder awaiting back-patching.
type Cell struct {
	Kind  CellKind
	Value byte
	Ref   int // temp or jump table index for placeholders
}

func (c Cell) String() string {
	switch c.Kind {
	case CellTemp:
		return fmt.Sprintf("T%d", c.Ref)
	case CellJump:
		return fmt.Sprintf("J%d", c.Ref)
	}
	return fmt.Sprintf("%02X", c.Value)
}

// Image is the 256 byte program: code from 0x00 up, static variables right
// after the code, string literals from the top of memory down.
type Image struct {
	Cells [cpu.MemorySize]Cell

	CodeEnd   int // first byte after the code; static variables start here
	StaticEnd int // first byte after the static variables
	Heap      int // lowest heap byte; MemorySize when the heap is empty
}

// Bytes returns the image as raw bytes. Unresolved placeholders read as 0.
func (im *Image) Bytes() []byte {
	out := make([]byte, len(im.Cells))
	for i, c := range im.Cells {
		if c.Kind == CellByte {
			out[i] = c.Value
		}
	}
	return out
}

// Hex returns every cell as a two character uppercase hex string
// (or its placeholder name when unresolved).
func (im *Image) Hex() []string {
	out := make([]string, len(im.Cells))
	for i, c := range im.Cells {
		out[i] = c.String()
	}
	return out
}

// Unresolved counts the placeholder cells still in the image.
func (im *Image) Unresolved() int {
	n := 0
	for _, c := range im.Cells {
		if c.Kind != CellByte {
			n++
		}
	}
	return n
}

// String renders the image as rows of sixteen cells.
func (im *Image) String() string {
	var sb strings.Builder
	for i, h := range im.Hex() {
		x, _ := grid.GetGridCoords(i, 16)
		if x > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(h)
		if x == 15 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// TempEntry is a static storage slot: a declared variable or an
// intermediate value. Its address is known only after the code length is.
type TempEntry struct {
	Name    string // "T" + index
	Var     string // variable name, empty for intermediates
	Scope   int    // declaring scope of Var, -1 for intermediates
	Offset  int    // offset from the end of code
	Address int    // resolved address, -1 until back-patched
}

// JumpEntry is a branch whose distance is filled in once the target is emitted.
type JumpEntry struct {
	Name     string // "J" + index
	Distance int    // -1 until known
}

// jumpPatch remembers where the distance of a forward branch is measured from.
type jumpPatch struct {
	jump  int
	start int
}
