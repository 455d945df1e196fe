package compiler

import "fmt"

// Analysis is the result of semantic analysis: the scope tree, collected
// warnings, and per-node annotations of the AST it was run on.
type Analysis struct {
	Symbols  *SymbolTable
	Warnings []string

	types     []Type
	slots     [][2]Type
	bindings  map[NodeID]*SymbolEntry
	useScopes map[NodeID]int
}

// Symbol returns the entry an identifier leaf resolved to.
func (a *Analysis) Symbol(id NodeID) (*SymbolEntry, bool) {
	e, ok := a.bindings[id]
	return e, ok
}

// UseScope returns the lexical scope an identifier leaf appeared in, or -1.
func (a *Analysis) UseScope(id NodeID) int {
	if sc, ok := a.useScopes[id]; ok {
		return sc
	}
	return -1
}

// TypeOf returns the synthesized type of a node, TypeNone when it has none.
func (a *Analysis) TypeOf(id NodeID) Type {
	if int(id) < 0 || int(id) >= len(a.types) {
		return TypeNone
	}
	return a.types[id]
}

// Slots returns the left and right sibling types recorded on a branch.
func (a *Analysis) Slots(id NodeID) (Type, Type) {
	if int(id) < 0 || int(id) >= len(a.slots) {
		return TypeNone, TypeNone
	}
	return a.slots[id][0], a.slots[id][1]
}

// Analyzer performs scope resolution and type checking over one AST.
type Analyzer struct {
	ast *AST
	log *Log
	res *Analysis
}

func NewAnalyzer(ast *AST, log *Log) *Analyzer {
	return &Analyzer{
		ast: ast,
		log: log,
		res: &Analysis{
			Symbols:   NewSymbolTable(),
			types:     make([]Type, ast.Len()),
			slots:     make([][2]Type, ast.Len()),
			bindings:  make(map[NodeID]*SymbolEntry),
			useScopes: make(map[NodeID]int),
		},
	}
}

func (a *Analyzer) fail(kind ErrorKind, line int, format string, args ...any) error {
	err := newError(CategorySemanticAnalysis, kind, line, format, args...)
	a.log.Error(CategorySemanticAnalysis, "%s", err.Msg)
	return err
}

func (a *Analyzer) warn(format string, args ...any) {
	a.res.Warnings = append(a.res.Warnings, fmt.Sprintf(format, args...))
	a.log.Warn(CategorySemanticAnalysis, format, args...)
}

// Analyze builds the symbol table and type checks the tree. The returned
// Analysis is never nil; on error it holds everything gathered so far,
// including all warnings.
func (a *Analyzer) Analyze() (*Analysis, error) {
	a.log.Info(CategorySemanticAnalysis, "Performing Semantic Analysis")
	defer a.log.summary(CategorySemanticAnalysis)

	if a.ast.Root() == NoNode {
		return a.res, internalError("analyze: empty AST")
	}

	if err := a.resolve(a.ast.Root()); err != nil {
		return a.res, err
	}
	a.reportUnused()

	if err := a.check(a.ast.Root()); err != nil {
		return a.res, err
	}

	a.log.Info(CategorySemanticAnalysis, "Semantic Analysis Complete")
	return a.res, nil
}

// resolve is the scope and symbol pass.
func (a *Analyzer) resolve(id NodeID) error {
	n := a.ast.Node(id)
	syms := a.res.Symbols

	switch n.Kind {
	case ASTBlock:
		sc := syms.OpenScope()
		a.log.Trace(CategorySemanticAnalysis, "Opening scope %d", sc.ID)
		for _, c := range n.Children {
			if err := a.resolve(c); err != nil {
				return err
			}
		}
		a.log.Trace(CategorySemanticAnalysis, "Closing scope %d", sc.ID)
		syms.CloseScope()
		return nil

	case ASTVarDecl:
		if len(n.Children) != 2 {
			return internalError("analyze: declaration with %d children", len(n.Children))
		}
		typeTok := a.ast.Node(n.Children[0]).Token
		idLeaf := n.Children[1]
		idTok := a.ast.Node(idLeaf).Token

		entry, ok := syms.Declare(idTok.Lexeme, typeOfKeyword(typeTok.Type), idTok.Line)
		if !ok {
			return a.fail(ErrDuplicateDeclaration, idTok.Line,
				"Duplicate declaration of id %s on line %d; it was already declared on line %d in scope %d.",
				idTok.Lexeme, idTok.Line, entry.Line, entry.Scope)
		}
		a.log.Info(CategorySemanticAnalysis, "Inserting id %s from line %d into symbol table at scope %d",
			idTok.Lexeme, idTok.Line, entry.Scope)
		a.res.bindings[idLeaf] = entry
		a.res.useScopes[idLeaf] = entry.Scope
		return nil

	case ASTAssign:
		if len(n.Children) != 2 {
			return internalError("analyze: assignment with %d children", len(n.Children))
		}
		// The value is read before the target is written.
		if err := a.resolve(n.Children[1]); err != nil {
			return err
		}
		return a.use(n.Children[0], true)

	case ASTIdent:
		return a.use(id, false)
	}

	for _, c := range n.Children {
		if err := a.resolve(c); err != nil {
			return err
		}
	}
	return nil
}

// use resolves one identifier occurrence through the scope chain.
func (a *Analyzer) use(id NodeID, assign bool) error {
	tok := a.ast.Node(id).Token
	syms := a.res.Symbols

	a.log.Trace(CategorySemanticAnalysis, "Checking if id %s is in the symbol table", tok.Lexeme)
	entry, ok := syms.Lookup(tok.Lexeme)
	if !ok {
		return a.fail(ErrUndeclared, tok.Line,
			"The id %s on line %d was used before being declared.", tok.Lexeme, tok.Line)
	}
	a.log.Trace(CategorySemanticAnalysis, "The id %s at the scope level %d was in the symbol table", tok.Lexeme, entry.Scope)

	entry.References++
	if assign {
		entry.Initialized = true
	} else if !entry.Initialized {
		a.warn("The id %s on line %d was used before being initialized.", tok.Lexeme, tok.Line)
	}

	a.res.bindings[id] = entry
	a.res.useScopes[id] = syms.Current().ID
	return nil
}

func (a *Analyzer) reportUnused() {
	for _, e := range a.res.Symbols.Entries() {
		if e.References == 0 {
			a.warn("The id %s declared on line %d in scope %d was declared but never used.", e.Name, e.Line, e.Scope)
		}
	}
}

// leafType derives a leaf's type from its token.
func (a *Analyzer) leafType(id NodeID) Type {
	n := a.ast.Node(id)
	switch n.Kind {
	case ASTTypeName:
		return typeOfKeyword(n.Token.Type)
	case ASTIdent:
		if e, ok := a.res.bindings[id]; ok {
			return e.Type
		}
	case ASTDigit:
		return TypeInt
	case ASTString:
		return TypeString
	case ASTBoolLit:
		return TypeBoolean
	}
	return TypeNone
}

// propagate fills the first empty sibling slot of parent with t.
// Blocks do not collect types.
func (a *Analyzer) propagate(parent NodeID, t Type) error {
	if parent == NoNode || a.ast.Kind(parent) == ASTBlock {
		return nil
	}
	s := &a.res.slots[parent]
	switch {
	case s[0] == TypeNone:
		s[0] = t
	case s[1] == TypeNone:
		s[1] = t
	default:
		return internalError("analyze: %s on line %d has more than two typed children",
			a.ast.Kind(parent), a.ast.Line(parent))
	}
	return nil
}

// check is the bottom-up type synthesis pass.
func (a *Analyzer) check(id NodeID) error {
	n := a.ast.Node(id)

	if n.Leaf {
		t := a.leafType(id)
		if t == TypeNone {
			return nil
		}
		a.res.types[id] = t
		return a.propagate(n.Parent, t)
	}

	for _, c := range n.Children {
		if err := a.check(c); err != nil {
			return err
		}
	}
	if n.Kind == ASTBlock {
		return nil
	}

	left, right := a.res.slots[id][0], a.res.slots[id][1]
	line := a.ast.Line(id)

	var t Type
	switch {
	case left != TypeNone && right != TypeNone:
		a.log.Trace(CategorySemanticAnalysis, "Checking if %s is type compatible with %s on line %d.", left, right, line)
		if left != right {
			return a.fail(ErrTypeMismatch, line,
				"Type mismatch on line %d: %s with the type %s on the LHS does not match the type %s on the RHS of the expression.",
				line, a.ast.Label(n.Children[0]), left, right)
		}
		t = left
	case left != TypeNone:
		t = left
	default:
		return nil
	}

	a.log.Trace(CategorySemanticAnalysis, "Setting type of %s to %s.", n.Kind, t)
	a.res.types[id] = t

	if n.Parent == NoNode || a.ast.Kind(n.Parent) == ASTBlock {
		return nil
	}
	up := t
	if n.Kind == ASTEqual || n.Kind == ASTNotEqual {
		up = TypeBoolean
	}
	a.log.Trace(CategorySemanticAnalysis, "Propagating the type %s on line %d up to the parent %s.", up, line, a.ast.Kind(n.Parent))
	return a.propagate(n.Parent, up)
}

// Analyze runs semantic analysis with a fresh symbol table.
func Analyze(ast *AST, log *Log) (*Analysis, error) {
	return NewAnalyzer(ast, log).Analyze()
}
