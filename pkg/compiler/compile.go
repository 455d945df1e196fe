package compiler

import "io"

// Options configures one compilation.
type Options struct {
	// Verbose echoes trace entries as well as regular ones.
	Verbose bool
	// Echo, when set, receives every log entry as it is recorded.
	Echo io.Writer
}

// Result holds the output of every stage that ran. After a failed
// compilation the fields of the stages that completed are still set.
type Result struct {
	Tokens   []Token
	CST      *CST
	AST      *AST
	Analysis *Analysis
	Image    *Image
	Temps    []TempEntry
	Jumps    []JumpEntry
	Log      *Log

	gen *CodeGen
}

// TempTable renders the temp and jump tables, or "" if generation never ran.
func (r *Result) TempTable() string {
	if r.gen == nil {
		return ""
	}
	return r.gen.TempTableString()
}

// Compile runs the whole pipeline on src with a fresh log and symbol table.
// The first fatal error stops it.
func Compile(src string, opts Options) (*Result, error) {
	log := NewLog()
	log.Echo = opts.Echo
	log.EchoVerbose = opts.Verbose
	res := &Result{Log: log}

	tokens, err := Lex(src, log)
	res.Tokens = tokens
	if err != nil {
		return res, err
	}

	p := NewParser(tokens, src, log)
	cst, err := p.Parse()
	res.CST = p.CST()
	if err != nil {
		return res, err
	}

	ast, err := Reduce(cst)
	if err != nil {
		log.Error(CategorySemanticAnalysis, "%v", err)
		return res, err
	}
	res.AST = ast

	an, err := Analyze(ast, log)
	res.Analysis = an
	if err != nil {
		return res, err
	}

	gen, err := Generate(ast, an, log)
	res.gen = gen
	res.Image = gen.Image()
	res.Temps = gen.Temps()
	res.Jumps = gen.Jumps()
	return res, err
}
