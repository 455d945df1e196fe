package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	NO_MATCH TokenType = iota // fragment matched nothing

	// Delimiters
	LBRACE // {
	RBRACE // }
	LPAREN // (
	RPAREN // )
	QUOTE  // "

	// Keywords
	PRINT // "print"
	WHILE // "while"
	IF    // "if"

	EOF // $

	// Literals
	DIGIT // single digit 0-9
	ID    // single lowercase letter
	CHAR  // letter inside a string literal

	PLUS // +

	// Types
	INT     // "int"
	STRING  // "string"
	BOOLEAN // "boolean"

	// Assignment / comparison
	SINGLE_EQUALS // =
	DOUBLE_EQUALS // ==
	NOT_EQUALS    // !=
	EXCLAMATION   // ! (only legal as the first half of !=)

	FALSE // "false"
	TRUE  // "true"

	WHITESPACE // space inside a string literal

	STRING_EXPRESSION // reduced string literal, only created by the AST reducer
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	NO_MATCH:          "T_NO_MATCH",
	LBRACE:            "T_LBRACE",
	RBRACE:            "T_RBRACE",
	LPAREN:            "T_LPAREN",
	RPAREN:            "T_RPAREN",
	QUOTE:             "T_QUOTE",
	PRINT:             "T_PRINT",
	WHILE:             "T_WHILE",
	IF:                "T_IF",
	EOF:               "T_EOF",
	DIGIT:             "T_DIGIT",
	ID:                "T_ID",
	CHAR:              "T_CHAR",
	PLUS:              "T_PLUS",
	INT:               "T_INT",
	STRING:            "T_STRING",
	BOOLEAN:           "T_BOOLEAN",
	SINGLE_EQUALS:     "T_SINGLE_EQUALS",
	DOUBLE_EQUALS:     "T_DOUBLE_EQUALS",
	NOT_EQUALS:        "T_NOT_EQUALS",
	EXCLAMATION:       "T_EXCLAMATION_POINT",
	FALSE:             "T_FALSE",
	TRUE:              "T_TRUE",
	WHITESPACE:        "T_WHITE_SPACE",
	STRING_EXPRESSION: "T_STRING_EXPRESSION",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// describe is the human form used in parse errors.
func (tt TokenType) describe() string {
	switch tt {
	case LBRACE:
		return "'{'"
	case RBRACE:
		return "'}'"
	case LPAREN:
		return "'('"
	case RPAREN:
		return "')'"
	case QUOTE:
		return `'"'`
	case PRINT:
		return "'print'"
	case WHILE:
		return "'while'"
	case IF:
		return "'if'"
	case EOF:
		return "'$'"
	case DIGIT:
		return "a digit"
	case ID:
		return "an identifier"
	case CHAR:
		return "a character"
	case PLUS:
		return "'+'"
	case INT, STRING, BOOLEAN:
		return "a type (int, string or boolean)"
	case SINGLE_EQUALS:
		return "'='"
	case DOUBLE_EQUALS, NOT_EQUALS:
		return "a boolean operator (== or !=)"
	case TRUE, FALSE:
		return "a boolean literal"
	}
	return tt.String()
}

// IsType reports whether tt is one of the type keywords.
func (tt TokenType) IsType() bool {
	return tt == INT || tt == STRING || tt == BOOLEAN
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-20s %-10q  line %d", t.Type, t.Lexeme, t.Line)
}
