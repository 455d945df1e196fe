package compiler

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fatal compilation error.
type ErrorKind int

const (
	ErrInternal ErrorKind = iota

	// Lexer
	ErrEmptyInput
	ErrMalformedFragment
	ErrDigitInString
	ErrNewlineInString
	ErrIllegalStringChar
	ErrDanglingExclamation
	ErrInputAfterEOF

	// Parser
	ErrUnexpectedToken
	ErrNotStatement
	ErrBadBoolOp
	ErrBadExpression

	// Semantic analysis
	ErrDuplicateDeclaration
	ErrUndeclared
	ErrTypeMismatch

	// Code generation
	ErrHeapOverflow
	ErrStaticOverflow
	ErrUnresolvedTemp
	ErrUnresolvedJump
	ErrUnsupportedOperand
)

var errorKindNames = [...]string{
	ErrInternal:             "internal",
	ErrEmptyInput:           "empty input",
	ErrMalformedFragment:    "malformed fragment",
	ErrDigitInString:        "digit in string",
	ErrNewlineInString:      "newline in string",
	ErrIllegalStringChar:    "illegal string character",
	ErrDanglingExclamation:  "dangling exclamation",
	ErrInputAfterEOF:        "input after EOF",
	ErrUnexpectedToken:      "unexpected token",
	ErrNotStatement:         "not a statement",
	ErrBadBoolOp:            "bad boolean operator",
	ErrBadExpression:        "bad expression",
	ErrDuplicateDeclaration: "duplicate declaration",
	ErrUndeclared:           "undeclared identifier",
	ErrTypeMismatch:         "type mismatch",
	ErrHeapOverflow:         "heap overflow",
	ErrStaticOverflow:       "static overflow",
	ErrUnresolvedTemp:       "unresolved temp entry",
	ErrUnresolvedJump:       "unresolved jump entry",
	ErrUnsupportedOperand:   "unsupported operand",
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the fatal error returned by every pipeline stage.
type Error struct {
	Stage   Category
	Kind    ErrorKind
	Line    int    // 1-based; 0 when no line applies
	Msg     string
	Snippet string // trimmed source line, when known
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	if e.Snippet != "" {
		msg += "\n  |> " + e.Snippet
	}
	return msg
}

func newError(stage Category, kind ErrorKind, line int, format string, args ...any) *Error {
	return &Error{Stage: stage, Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the ErrorKind of err, or ErrInternal when err is not an *Error.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ErrInternal
}

// StageOf returns the stage that raised err, or 0 when err is not an *Error.
func StageOf(err error) Category {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Stage
	}
	return 0
}
