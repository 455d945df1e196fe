// Package compiler provides the lexer, parser, semantic analyzer and code
// generator for a small brace-block teaching language that targets the
// 256 byte image of the 8-bit machine in package cpu.
//
// Pipeline: source → Lex → Parse (CST) → Reduce (AST) → Analyze → Generate → Image
package compiler
