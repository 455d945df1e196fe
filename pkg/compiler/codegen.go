package compiler

import (
	"fmt"
	"strings"

	"go6502c/pkg/cpu"
)

// CodeGen walks an analyzed AST and emits machine code into a 256 byte image.
// Addresses of static slots and branch distances are emitted as placeholders
// and patched by ResolveJumpEntries.
type CodeGen struct {
	ast *AST
	an  *Analysis
	log *Log

	image  Image
	cursor int // next free code byte
	heap   int // lowest used heap byte

	temps   []TempEntry
	jumps   []JumpEntry
	strings map[string]int // literal -> heap address

	err error // first fatal error; later emission is a no-op
}

func NewCodeGen(ast *AST, an *Analysis, log *Log) *CodeGen {
	g := &CodeGen{
		ast:     ast,
		an:      an,
		log:     log,
		heap:    cpu.MemorySize,
		strings: make(map[string]int),
	}
	g.image.Heap = cpu.MemorySize
	return g
}

func (g *CodeGen) fail(kind ErrorKind, line int, format string, args ...any) {
	if g.err != nil {
		return
	}
	err := newError(CategoryCodeGenerator, kind, line, format, args...)
	g.log.Error(CategoryCodeGenerator, "%s", err.Msg)
	g.err = err
}

// Image returns the image built so far.
func (g *CodeGen) Image() *Image { return &g.image }

// Temps returns the temp table.
func (g *CodeGen) Temps() []TempEntry { return g.temps }

// Jumps returns the jump table.
func (g *CodeGen) Jumps() []JumpEntry { return g.jumps }

// Emission

func (g *CodeGen) put(c Cell) {
	if g.err != nil {
		return
	}
	if g.cursor >= g.heap {
		g.fail(ErrStaticOverflow, 0, "Code at 0x%02X clashes with heap space starting at 0x%02X.", g.cursor, g.heap)
		return
	}
	g.image.Cells[g.cursor] = c
	g.cursor++
}

func (g *CodeGen) emit(bs ...byte) {
	for _, b := range bs {
		g.put(Cell{Kind: CellByte, Value: b})
	}
}

// emitAddr emits a two byte absolute address referring to temp t.
func (g *CodeGen) emitAddr(t int) {
	g.put(Cell{Kind: CellTemp, Ref: t})
	g.put(Cell{Kind: CellByte, Value: 0x00})
}

func (g *CodeGen) ldaImm(v byte) { g.emit(cpu.OpLDAImm, v) }
func (g *CodeGen) ldxImm(v byte) { g.emit(cpu.OpLDXImm, v) }
func (g *CodeGen) ldyImm(v byte) { g.emit(cpu.OpLDYImm, v) }
func (g *CodeGen) lda(t int)     { g.emit(cpu.OpLDA); g.emitAddr(t) }
func (g *CodeGen) ldx(t int)     { g.emit(cpu.OpLDX); g.emitAddr(t) }
func (g *CodeGen) ldy(t int)     { g.emit(cpu.OpLDY); g.emitAddr(t) }
func (g *CodeGen) sta(t int)     { g.emit(cpu.OpSTA); g.emitAddr(t) }
func (g *CodeGen) adc(t int)     { g.emit(cpu.OpADC); g.emitAddr(t) }
func (g *CodeGen) cpx(t int)     { g.emit(cpu.OpCPX); g.emitAddr(t) }
func (g *CodeGen) sys()          { g.emit(cpu.OpSYS) }

func (g *CodeGen) bne(j int) {
	g.emit(cpu.OpBNE)
	g.put(Cell{Kind: CellJump, Ref: j})
}

// Tables

func (g *CodeGen) newTemp() int {
	t := len(g.temps)
	g.temps = append(g.temps, TempEntry{Name: fmt.Sprintf("T%d", t), Scope: -1, Offset: t, Address: -1})
	return t
}

func (g *CodeGen) newVarTemp(name string, scope int) int {
	t := g.newTemp()
	g.temps[t].Var = name
	g.temps[t].Scope = scope
	g.log.Trace(CategoryCodeGenerator, "Inserting %s into temp table for id %s at scope %d", g.temps[t].Name, name, scope)
	return t
}

// varTemp finds the slot of the variable an identifier leaf resolved to.
func (g *CodeGen) varTemp(id NodeID) int {
	tok := g.ast.Node(id).Token
	entry, ok := g.an.Symbol(id)
	if !ok {
		g.fail(ErrUnresolvedTemp, tok.Line, "Id %s on line %d has no symbol table entry.", tok.Lexeme, tok.Line)
		return 0
	}
	for i, t := range g.temps {
		if t.Var == entry.Name && t.Scope == entry.Scope {
			return i
		}
	}
	g.fail(ErrUnresolvedTemp, tok.Line, "Id %s at scope %d was not found in the temp table.", entry.Name, entry.Scope)
	return 0
}

func (g *CodeGen) newJump() int {
	j := len(g.jumps)
	g.jumps = append(g.jumps, JumpEntry{Name: fmt.Sprintf("J%d", j), Distance: -1})
	return j
}

func (g *CodeGen) patch(p jumpPatch) {
	g.setJump(p.jump, g.cursor-p.start)
}

func (g *CodeGen) setJump(j, distance int) {
	g.jumps[j].Distance = distance
	g.log.Trace(CategoryCodeGenerator, "Jump %s distance is %d", g.jumps[j].Name, distance)
}

// allocString stores a null terminated literal at the top of the heap and
// returns its address. Identical literals share storage.
func (g *CodeGen) allocString(s string, line int) byte {
	if addr, ok := g.strings[s]; ok {
		return byte(addr)
	}
	addr := g.heap - (len(s) + 1)
	if addr < g.cursor {
		g.fail(ErrHeapOverflow, line, "Heap overflow on line %d: string \"%s\" needs %d bytes but only %d are free.",
			line, s, len(s)+1, g.heap-g.cursor)
		return 0
	}
	for i := 0; i < len(s); i++ {
		g.image.Cells[addr+i] = Cell{Kind: CellByte, Value: s[i]}
	}
	g.image.Cells[addr+len(s)] = Cell{Kind: CellByte, Value: 0x00}
	g.heap = addr
	g.image.Heap = addr
	g.strings[s] = addr
	g.log.Trace(CategoryCodeGenerator, "Allocated string \"%s\" on the heap at 0x%02X", s, addr)
	return byte(addr)
}

// Traversal

// Generate emits the code for the whole program followed by BRK.
func (g *CodeGen) Generate() error {
	g.log.Info(CategoryCodeGenerator, "Performing Code Generation")
	if g.ast.Root() == NoNode {
		return internalError("generate: empty AST")
	}
	g.genStatement(g.ast.Root())
	g.emit(cpu.OpBRK)
	if g.err != nil {
		g.log.summary(CategoryCodeGenerator)
		return g.err
	}
	g.image.CodeEnd = g.cursor
	return nil
}

func (g *CodeGen) genStatement(id NodeID) {
	if g.err != nil {
		return
	}
	n := g.ast.Node(id)
	g.log.Trace(CategoryCodeGenerator, "Generating code for %s on line %d", n.Kind, g.ast.Line(id))

	switch n.Kind {
	case ASTBlock:
		for _, c := range n.Children {
			g.genStatement(c)
		}

	case ASTVarDecl:
		idLeaf := n.Children[1]
		entry, ok := g.an.Symbol(idLeaf)
		if !ok {
			tok := g.ast.Node(idLeaf).Token
			g.fail(ErrUnresolvedTemp, tok.Line, "Declaration of %s on line %d was not analyzed.", tok.Lexeme, tok.Line)
			return
		}
		t := g.newVarTemp(entry.Name, entry.Scope)
		g.ldaImm(0)
		g.sta(t)

	case ASTAssign:
		target := g.varTemp(n.Children[0])
		g.genLoadA(n.Children[1])
		g.sta(target)

	case ASTPrint:
		g.genPrint(n.Children[0])

	case ASTIf:
		g.genIf(n.Children[0], n.Children[1])

	case ASTWhile:
		g.genWhile(n.Children[0], n.Children[1])

	default:
		g.fail(ErrInternal, g.ast.Line(id), "%s is not a statement", n.Kind)
	}
}

func digitValue(tok Token) byte {
	return tok.Lexeme[0] - '0'
}

func boolValue(tok Token) byte {
	if tok.Type == TRUE {
		return 1
	}
	return 0
}

// genLoadA leaves the value of an expression in the accumulator.
func (g *CodeGen) genLoadA(id NodeID) {
	n := g.ast.Node(id)
	switch n.Kind {
	case ASTDigit:
		g.ldaImm(digitValue(n.Token))
	case ASTBoolLit:
		g.ldaImm(boolValue(n.Token))
	case ASTString:
		g.ldaImm(g.allocString(n.Token.Lexeme, n.Token.Line))
	case ASTIdent:
		g.lda(g.varTemp(id))
	case ASTAdd:
		g.lda(g.genAdd(id))
	case ASTEqual, ASTNotEqual:
		g.lda(g.genCompare(id))
	default:
		g.fail(ErrInternal, g.ast.Line(id), "%s is not an expression", n.Kind)
	}
}

// genOperand returns a temp holding the value of an expression.
func (g *CodeGen) genOperand(id NodeID) int {
	n := g.ast.Node(id)
	switch n.Kind {
	case ASTDigit, ASTBoolLit:
		t := g.newTemp()
		g.genLoadA(id)
		g.sta(t)
		return t
	case ASTIdent:
		return g.varTemp(id)
	case ASTAdd:
		return g.genAdd(id)
	case ASTEqual, ASTNotEqual:
		return g.genCompare(id)
	case ASTString:
		g.fail(ErrUnsupportedOperand, n.Token.Line,
			"String literal \"%s\" on line %d cannot be used as an operand; only ints, booleans and ids can be compared.",
			n.Token.Lexeme, n.Token.Line)
		return 0
	}
	g.fail(ErrInternal, g.ast.Line(id), "%s is not an operand", n.Kind)
	return 0
}

// collectAddends emits the operands of a (right nested) addition.
func (g *CodeGen) collectAddends(id NodeID, out []int) []int {
	for _, c := range g.ast.Children(id) {
		if g.ast.Kind(c) == ASTAdd {
			out = g.collectAddends(c, out)
			continue
		}
		out = append(out, g.genOperand(c))
	}
	return out
}

// genAdd sums every operand into a new temp and returns it.
func (g *CodeGen) genAdd(id NodeID) int {
	addends := g.collectAddends(id, nil)
	g.ldaImm(0)
	for _, t := range addends {
		g.adc(t)
	}
	sum := g.newTemp()
	g.sta(sum)
	return sum
}

// genCompare evaluates == or != into a new temp holding 1 or 0.
func (g *CodeGen) genCompare(id NodeID) int {
	children := g.ast.Children(id)
	left := g.genOperand(children[0])
	right := g.genOperand(children[1])

	var whenDiffer, whenEqual byte = 0, 1
	if g.ast.Kind(id) == ASTNotEqual {
		whenDiffer, whenEqual = 1, 0
	}

	res := g.newTemp()
	g.ldaImm(whenDiffer)
	g.sta(res)
	g.ldx(left)
	g.cpx(right)
	j := g.newJump()
	g.bne(j)
	p := jumpPatch{jump: j, start: g.cursor}
	g.ldaImm(whenEqual)
	g.sta(res)
	g.patch(p)
	return res
}

// genAlwaysBranch emits a BNE on jump j that is always taken: X holds 0
// and is compared with a freshly stored 1.
func (g *CodeGen) genAlwaysBranch(j int) {
	one := g.newTemp()
	g.ldaImm(1)
	g.sta(one)
	g.ldxImm(0)
	g.cpx(one)
	g.bne(j)
}

// genSkipUnless emits a branch taken when cond is false. It returns false
// when no branch is needed because cond is the literal true.
func (g *CodeGen) genSkipUnless(cond NodeID) (int, bool) {
	n := g.ast.Node(cond)
	switch n.Kind {
	case ASTBoolLit:
		if n.Token.Type == TRUE {
			return 0, false
		}
		j := g.newJump()
		g.genAlwaysBranch(j)
		return j, true
	case ASTEqual, ASTNotEqual, ASTIdent:
		res := g.genOperand(cond)
		g.ldxImm(1)
		g.cpx(res)
		j := g.newJump()
		g.bne(j)
		return j, true
	}
	g.fail(ErrInternal, g.ast.Line(cond), "%s is not a condition", n.Kind)
	return 0, false
}

func (g *CodeGen) genIf(cond, body NodeID) {
	j, ok := g.genSkipUnless(cond)
	p := jumpPatch{jump: j, start: g.cursor}
	g.genStatement(body)
	if ok {
		g.patch(p)
	}
}

func (g *CodeGen) genWhile(cond, body NodeID) {
	loopStart := g.cursor
	j, ok := g.genSkipUnless(cond)
	p := jumpPatch{jump: j, start: g.cursor}
	g.genStatement(body)

	back := g.newJump()
	g.genAlwaysBranch(back)
	// Branches wrap around the page, so jumping back d bytes is a forward
	// jump of MemorySize - d.
	g.setJump(back, cpu.MemorySize-(g.cursor-loopStart))

	if ok {
		g.patch(p)
	}
}

func (g *CodeGen) genPrint(id NodeID) {
	n := g.ast.Node(id)
	switch n.Kind {
	case ASTAdd:
		g.ldy(g.genAdd(id))
		g.ldxImm(cpu.SysPrintInt)
	case ASTEqual, ASTNotEqual:
		g.ldy(g.genCompare(id))
		g.ldxImm(cpu.SysPrintInt)
	case ASTDigit:
		g.ldyImm(digitValue(n.Token))
		g.ldxImm(cpu.SysPrintInt)
	case ASTBoolLit:
		g.ldyImm(boolValue(n.Token))
		g.ldxImm(cpu.SysPrintInt)
	case ASTString:
		g.ldyImm(g.allocString(n.Token.Lexeme, n.Token.Line))
		g.ldxImm(cpu.SysPrintString)
	case ASTIdent:
		mode := cpu.SysPrintInt
		if e, ok := g.an.Symbol(id); ok && e.Type == TypeString {
			mode = cpu.SysPrintString
		}
		g.ldy(g.varTemp(id))
		g.ldxImm(mode)
	default:
		g.fail(ErrInternal, g.ast.Line(id), "cannot print %s", n.Kind)
		return
	}
	g.sys()
}

// Back-patching

// ResolveJumpEntries places the static slots right after the code and
// overwrites every placeholder with its address or branch distance.
func (g *CodeGen) ResolveJumpEntries() error {
	if g.err != nil {
		return g.err
	}
	static := g.image.CodeEnd
	cells := &g.image.Cells

	for i := 0; i < static; i++ {
		switch c := cells[i]; c.Kind {
		case CellTemp:
			e := &g.temps[c.Ref]
			addr := static + e.Offset
			if addr >= g.heap {
				g.fail(ErrStaticOverflow, 0, "Static space clashing with heap space: %s needs 0x%02X but the heap starts at 0x%02X.",
					e.Name, addr, g.heap)
				g.log.summary(CategoryCodeGenerator)
				return g.err
			}
			if e.Address < 0 {
				e.Address = addr
				g.log.Trace(CategoryCodeGenerator, "Backpatching %s to 0x%02X", e.Name, addr)
			}
			cells[i] = Cell{Kind: CellByte, Value: byte(addr)}
			if i+1 < len(cells) {
				cells[i+1] = Cell{Kind: CellByte, Value: 0x00}
			}
			i++

		case CellJump:
			e := g.jumps[c.Ref]
			if e.Distance < 0 || e.Distance >= cpu.MemorySize {
				g.fail(ErrUnresolvedJump, 0, "Jump %s has no valid distance (%d).", e.Name, e.Distance)
				g.log.summary(CategoryCodeGenerator)
				return g.err
			}
			cells[i] = Cell{Kind: CellByte, Value: byte(e.Distance)}
		}
	}

	g.image.StaticEnd = static + len(g.temps)
	g.log.Info(CategoryCodeGenerator, "Code Generation Complete: %d code bytes, %d static bytes, %d heap bytes",
		static, len(g.temps), cpu.MemorySize-g.heap)
	g.log.summary(CategoryCodeGenerator)
	return nil
}

// TempTableString renders the temp and jump tables.
func (g *CodeGen) TempTableString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-5s %-4s %-6s %-7s %s\n", "Temp", "Var", "Scope", "Offset", "Address")
	for _, t := range g.temps {
		addr := "--"
		if t.Address >= 0 {
			addr = fmt.Sprintf("%02X", t.Address)
		}
		v := t.Var
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(&sb, "%-5s %-4s %-6d %-7d %s\n", t.Name, v, t.Scope, t.Offset, addr)
	}
	fmt.Fprintf(&sb, "%-5s %s\n", "Jump", "Distance")
	for _, j := range g.jumps {
		fmt.Fprintf(&sb, "%-5s %d\n", j.Name, j.Distance)
	}
	return sb.String()
}

// Generate emits and back-patches the image for an analyzed AST.
func Generate(ast *AST, an *Analysis, log *Log) (*CodeGen, error) {
	g := NewCodeGen(ast, an, log)
	if err := g.Generate(); err != nil {
		return g, err
	}
	if err := g.ResolveJumpEntries(); err != nil {
		return g, err
	}
	return g, nil
}
