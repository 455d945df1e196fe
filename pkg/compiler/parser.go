package compiler

import (
	"fmt"
	"strings"
)

// CSTKind names the grammar rule a concrete syntax tree node came from.
type CSTKind int

const (
	CSTTerminal CSTKind = iota // leaf holding a consumed token
	CSTProgram
	CSTBlock
	CSTStatementList
	CSTStatement
	CSTPrintStatement
	CSTAssignmentStatement
	CSTVarDecl
	CSTWhileStatement
	CSTIfStatement
	CSTExpr
	CSTIntExpr
	CSTStringExpr
	CSTBooleanExpr
	CSTCharList
)

var cstKindNames = [...]string{
	CSTTerminal:            "Terminal",
	CSTProgram:             "Program",
	CSTBlock:               "Block",
	CSTStatementList:       "Statement List",
	CSTStatement:           "Statement",
	CSTPrintStatement:      "Print Statement",
	CSTAssignmentStatement: "Assignment Statement",
	CSTVarDecl:             "Variable Declaration",
	CSTWhileStatement:      "While Statement",
	CSTIfStatement:         "If Statement",
	CSTExpr:                "Expression",
	CSTIntExpr:             "Int Expression",
	CSTStringExpr:          "String Expression",
	CSTBooleanExpr:         "Boolean Expression",
	CSTCharList:            "Char List",
}

func (k CSTKind) String() string {
	if int(k) >= 0 && int(k) < len(cstKindNames) {
		return cstKindNames[k]
	}
	return fmt.Sprintf("CSTKind(%d)", int(k))
}

// CST is the concrete syntax tree: one branch per grammar rule invocation
// and one leaf per consumed token.
type CST = Tree[CSTKind]

// Parser is a predictive recursive-descent recognizer that builds a CST
// while it consumes the token stream.
//
// Grammar:
//
//	Program         ::= Block EOF
//	Block           ::= '{' StatementList '}'
//	StatementList   ::= Statement StatementList | ε
//	Statement       ::= PrintStatement | AssignmentStatement | VarDecl
//	                  | WhileStatement | IfStatement | Block
//	PrintStatement  ::= 'print' '(' Expr ')'
//	AssignmentStatement ::= Id '=' Expr
//	VarDecl         ::= Type Id
//	WhileStatement  ::= 'while' BooleanExpr Block
//	IfStatement     ::= 'if' BooleanExpr Block
//	Expr            ::= IntExpr | StringExpr | BooleanExpr | Id
//	IntExpr         ::= digit ('+' Expr)?
//	StringExpr      ::= '"' CharList '"'
//	BooleanExpr     ::= '(' Expr boolop Expr ')' | 'true' | 'false'
//	CharList        ::= (char | space)*
type Parser struct {
	tokens      []Token
	pos         int
	cst         *CST
	log         *Log
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string, log *Log) *Parser {
	return &Parser{
		tokens:      tokens,
		cst:         newTree[CSTKind](),
		log:         log,
		sourceLines: strings.Split(rawSource, "\n"),
	}
}

// fmtError builds a parse error carrying the source line where tok appears.
func (p *Parser) fmtError(kind ErrorKind, tok Token, format string, args ...any) error {
	err := newError(CategoryParser, kind, tok.Line, format, args...)
	lineIdx := tok.Line - 1 // Lines are 1-based
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		err.Snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}
	p.log.Error(CategoryParser, "%s", err.Msg)
	p.log.summary(CategoryParser)
	return err
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF, Lexeme: "$"}
	}
	return p.tokens[p.pos]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token as a CST leaf if it matches tt,
// otherwise it returns an error naming what was found.
func (p *Parser) expect(tt TokenType) error {
	tok := p.peek()
	p.log.Trace(CategoryParser, "Expecting %s", tt)
	if tok.Type != tt {
		return p.fmtError(ErrUnexpectedToken, tok,
			"Found '%s' (%s), expected %s on line %d.", tok.Lexeme, tok.Type, tt.describe(), tok.Line)
	}
	p.advance()
	p.cst.AddLeaf(CSTTerminal, tok)
	return nil
}

// terminal consumes the current token as a CST leaf without checking its type.
func (p *Parser) terminal() {
	p.cst.AddLeaf(CSTTerminal, p.advance())
}

func (p *Parser) enter(kind CSTKind) {
	p.log.Trace(CategoryParser, "Parsing %s", kind)
	p.cst.AddBranch(kind)
}

func (p *Parser) leave() {
	p.cst.EndChildren()
}

// Parse recognises the whole token stream and returns the CST.
func (p *Parser) Parse() (*CST, error) {
	p.log.Info(CategoryParser, "Performing Parsing")
	if err := p.parseProgram(); err != nil {
		return nil, err
	}
	p.log.Info(CategoryParser, "Parsing Complete")
	p.log.summary(CategoryParser)
	return p.cst, nil
}

// CST returns the tree built so far, which is partial after a failed Parse.
func (p *Parser) CST() *CST { return p.cst }

func (p *Parser) parseProgram() error {
	p.enter(CSTProgram)
	defer p.leave()
	if err := p.parseBlock(); err != nil {
		return err
	}
	return p.expect(EOF)
}

func (p *Parser) parseBlock() error {
	p.enter(CSTBlock)
	defer p.leave()
	if err := p.expect(LBRACE); err != nil {
		return err
	}
	if err := p.parseStatementList(); err != nil {
		return err
	}
	return p.expect(RBRACE)
}

// startsStatement reports whether tt is in FIRST(Statement).
func startsStatement(tt TokenType) bool {
	switch tt {
	case PRINT, ID, INT, STRING, BOOLEAN, WHILE, IF, LBRACE:
		return true
	}
	return false
}

func (p *Parser) parseStatementList() error {
	// Outside FIRST(Statement) the list is empty; Block then expects '}'.
	if !startsStatement(p.peek().Type) {
		return nil
	}
	p.enter(CSTStatementList)
	defer p.leave()
	if err := p.parseStatement(); err != nil {
		return err
	}
	return p.parseStatementList()
}

func (p *Parser) parseStatement() error {
	tok := p.peek()
	if !startsStatement(tok.Type) {
		return p.fmtError(ErrNotStatement, tok, "'%s' on line %d is not the beginning of a statement.", tok.Lexeme, tok.Line)
	}

	p.enter(CSTStatement)
	defer p.leave()

	switch {
	case tok.Type == PRINT:
		return p.parsePrintStatement()
	case tok.Type == ID:
		return p.parseAssignmentStatement()
	case tok.Type.IsType():
		return p.parseVarDecl()
	case tok.Type == WHILE:
		return p.parseWhileStatement()
	case tok.Type == IF:
		return p.parseIfStatement()
	default:
		return p.parseBlock()
	}
}

func (p *Parser) parsePrintStatement() error {
	p.enter(CSTPrintStatement)
	defer p.leave()
	if err := p.expect(PRINT); err != nil {
		return err
	}
	if err := p.expect(LPAREN); err != nil {
		return err
	}
	if err := p.parseExpr(); err != nil {
		return err
	}
	return p.expect(RPAREN)
}

func (p *Parser) parseAssignmentStatement() error {
	p.enter(CSTAssignmentStatement)
	defer p.leave()
	if err := p.expect(ID); err != nil {
		return err
	}
	if err := p.expect(SINGLE_EQUALS); err != nil {
		return err
	}
	return p.parseExpr()
}

func (p *Parser) parseVarDecl() error {
	p.enter(CSTVarDecl)
	defer p.leave()
	if err := p.parseType(); err != nil {
		return err
	}
	return p.expect(ID)
}

func (p *Parser) parseType() error {
	tok := p.peek()
	if !tok.Type.IsType() {
		return p.fmtError(ErrUnexpectedToken, tok,
			"Found '%s' (%s), expected %s on line %d.", tok.Lexeme, tok.Type, INT.describe(), tok.Line)
	}
	p.terminal()
	return nil
}

func (p *Parser) parseWhileStatement() error {
	p.enter(CSTWhileStatement)
	defer p.leave()
	if err := p.expect(WHILE); err != nil {
		return err
	}
	if err := p.parseBooleanExpr(); err != nil {
		return err
	}
	return p.parseBlock()
}

func (p *Parser) parseIfStatement() error {
	p.enter(CSTIfStatement)
	defer p.leave()
	if err := p.expect(IF); err != nil {
		return err
	}
	if err := p.parseBooleanExpr(); err != nil {
		return err
	}
	return p.parseBlock()
}

func (p *Parser) parseExpr() error {
	tok := p.peek()
	switch tok.Type {
	case DIGIT, QUOTE, LPAREN, TRUE, FALSE, ID:
	default:
		return p.fmtError(ErrBadExpression, tok,
			"Found '%s' (%s), expected an expression on line %d.", tok.Lexeme, tok.Type, tok.Line)
	}

	p.enter(CSTExpr)
	defer p.leave()

	switch tok.Type {
	case DIGIT:
		return p.parseIntExpr()
	case QUOTE:
		return p.parseStringExpr()
	case ID:
		return p.expect(ID)
	default:
		return p.parseBooleanExpr()
	}
}

func (p *Parser) parseIntExpr() error {
	p.enter(CSTIntExpr)
	defer p.leave()
	if err := p.expect(DIGIT); err != nil {
		return err
	}
	if p.peek().Type != PLUS {
		return nil
	}
	p.terminal()
	return p.parseExpr()
}

func (p *Parser) parseStringExpr() error {
	p.enter(CSTStringExpr)
	defer p.leave()
	if err := p.expect(QUOTE); err != nil {
		return err
	}
	p.parseCharList()
	return p.expect(QUOTE)
}

func (p *Parser) parseCharList() {
	p.enter(CSTCharList)
	defer p.leave()
	for t := p.peek().Type; t == CHAR || t == WHITESPACE; t = p.peek().Type {
		p.terminal()
	}
}

func (p *Parser) parseBooleanExpr() error {
	p.enter(CSTBooleanExpr)
	defer p.leave()

	tok := p.peek()
	switch tok.Type {
	case TRUE, FALSE:
		p.terminal()
		return nil
	case LPAREN:
	default:
		return p.fmtError(ErrUnexpectedToken, tok,
			"Found '%s' (%s), expected '(' or a boolean literal on line %d.", tok.Lexeme, tok.Type, tok.Line)
	}

	p.terminal()
	if err := p.parseExpr(); err != nil {
		return err
	}
	if err := p.parseBoolOp(); err != nil {
		return err
	}
	if err := p.parseExpr(); err != nil {
		return err
	}
	return p.expect(RPAREN)
}

func (p *Parser) parseBoolOp() error {
	tok := p.peek()
	if tok.Type != DOUBLE_EQUALS && tok.Type != NOT_EQUALS {
		return p.fmtError(ErrBadBoolOp, tok,
			"Found '%s' (%s), expected %s on line %d.", tok.Lexeme, tok.Type, DOUBLE_EQUALS.describe(), tok.Line)
	}
	p.terminal()
	return nil
}

// Parse builds the CST for an already lexed token stream.
func Parse(tokens []Token, src string, log *Log) (*CST, error) {
	return NewParser(tokens, src, log).Parse()
}

// ParseSource lexes and parses src, returning the tokens alongside the CST.
func ParseSource(src string, log *Log) ([]Token, *CST, error) {
	tokens, err := Lex(src, log)
	if err != nil {
		return tokens, nil, err
	}
	cst, err := Parse(tokens, src, log)
	return tokens, cst, err
}
