package compiler

import (
	"fmt"
	"strings"
)

// ASTKind names an abstract syntax tree node.
type ASTKind int

const (
	// Branches
	ASTBlock ASTKind = iota
	ASTVarDecl
	ASTAssign
	ASTPrint
	ASTIf
	ASTWhile
	ASTAdd
	ASTEqual
	ASTNotEqual

	// Leaves
	ASTTypeName // int, string, boolean
	ASTIdent    // a
	ASTDigit    // 7
	ASTString   // "ab" reduced to one leaf
	ASTBoolLit  // true, false
)

var astKindNames = [...]string{
	ASTBlock:    "BLOCK",
	ASTVarDecl:  "Variable Declaration",
	ASTAssign:   "Assignment Statement",
	ASTPrint:    "Print Statement",
	ASTIf:       "If Statement",
	ASTWhile:    "While Statement",
	ASTAdd:      "Add",
	ASTEqual:    "Equal",
	ASTNotEqual: "Not Equal",
	ASTTypeName: "Type",
	ASTIdent:    "Id",
	ASTDigit:    "Digit",
	ASTString:   "String Expression",
	ASTBoolLit:  "Boolean",
}

func (k ASTKind) String() string {
	if int(k) >= 0 && int(k) < len(astKindNames) {
		return astKindNames[k]
	}
	return fmt.Sprintf("ASTKind(%d)", int(k))
}

// AST is the reduced tree handed to semantic analysis and code generation.
// Its root is the program's outermost BLOCK.
type AST = Tree[ASTKind]

// reducer folds a CST into an AST, keeping only semantically meaningful nodes.
type reducer struct {
	cst *CST
	ast *AST
}

func internalError(format string, args ...any) error {
	return newError(CategorySemanticAnalysis, ErrInternal, 0, format, args...)
}

// Reduce converts a CST produced by Parse into an AST. A CST of the wrong
// shape is a parser bug and is reported as ErrInternal.
func Reduce(cst *CST) (*AST, error) {
	r := &reducer{cst: cst, ast: newTree[ASTKind]()}
	if cst == nil || cst.Root() == NoNode || cst.Kind(cst.Root()) != CSTProgram {
		return nil, internalError("reduce: CST has no Program root")
	}
	if err := r.reduceChildren(cst.Root()); err != nil {
		return nil, err
	}
	return r.ast, nil
}

func (r *reducer) reduceChildren(id NodeID) error {
	for _, c := range r.cst.Children(id) {
		if err := r.reduce(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *reducer) branch(kind ASTKind, id NodeID) error {
	r.ast.AddBranch(kind)
	defer r.ast.EndChildren()
	return r.reduceChildren(id)
}

func (r *reducer) reduce(id NodeID) error {
	n := r.cst.Node(id)

	switch n.Kind {
	case CSTTerminal:
		return r.terminal(n.Token)

	case CSTBlock:
		return r.branch(ASTBlock, id)
	case CSTVarDecl:
		return r.branch(ASTVarDecl, id)
	case CSTAssignmentStatement:
		return r.branch(ASTAssign, id)
	case CSTPrintStatement:
		return r.branch(ASTPrint, id)
	case CSTIfStatement:
		return r.branch(ASTIf, id)
	case CSTWhileStatement:
		return r.branch(ASTWhile, id)

	case CSTProgram, CSTStatementList, CSTStatement, CSTExpr:
		return r.reduceChildren(id)

	case CSTIntExpr:
		if r.hasChildOfType(id, PLUS) {
			return r.branch(ASTAdd, id)
		}
		return r.reduceChildren(id)

	case CSTStringExpr:
		return r.stringExpr(id)

	case CSTBooleanExpr:
		switch {
		case r.hasChildOfType(id, DOUBLE_EQUALS):
			return r.branch(ASTEqual, id)
		case r.hasChildOfType(id, NOT_EQUALS):
			return r.branch(ASTNotEqual, id)
		}
		return r.reduceChildren(id)

	case CSTCharList:
		return internalError("reduce: Char List outside a String Expression")
	}
	return internalError("reduce: unknown CST node %s", n.Kind)
}

// hasChildOfType scans the direct children of id for a terminal of type tt.
func (r *reducer) hasChildOfType(id NodeID, tt TokenType) bool {
	for _, c := range r.cst.Children(id) {
		n := r.cst.Node(c)
		if n.Leaf && n.Token.Type == tt {
			return true
		}
	}
	return false
}

// terminal copies meaningful leaves and drops punctuation and keywords.
func (r *reducer) terminal(tok Token) error {
	switch tok.Type {
	case ID:
		r.ast.AddLeaf(ASTIdent, tok)
	case DIGIT:
		r.ast.AddLeaf(ASTDigit, tok)
	case TRUE, FALSE:
		r.ast.AddLeaf(ASTBoolLit, tok)
	case INT, STRING, BOOLEAN:
		r.ast.AddLeaf(ASTTypeName, tok)
	case LBRACE, RBRACE, LPAREN, RPAREN, QUOTE, PRINT, WHILE, IF, EOF,
		PLUS, SINGLE_EQUALS, DOUBLE_EQUALS, NOT_EQUALS:
	default:
		return internalError("reduce: unexpected terminal %s '%s' on line %d", tok.Type, tok.Lexeme, tok.Line)
	}
	return nil
}

// stringExpr folds '"' CharList '"' into a single ASTString leaf.
func (r *reducer) stringExpr(id NodeID) error {
	var (
		sb   strings.Builder
		line int
	)
	for _, c := range r.cst.Children(id) {
		n := r.cst.Node(c)
		if n.Leaf {
			if n.Token.Type == QUOTE && line == 0 {
				line = n.Token.Line
			}
			continue
		}
		if n.Kind != CSTCharList {
			return internalError("reduce: String Expression contains %s", n.Kind)
		}
		for _, ch := range r.cst.Children(c) {
			sb.WriteString(r.cst.Node(ch).Token.Lexeme)
		}
	}
	r.ast.AddLeaf(ASTString, Token{Type: STRING_EXPRESSION, Lexeme: sb.String(), Line: line})
	return nil
}
