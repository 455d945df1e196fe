//go:build !js

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go6502c/pkg/asm"
	"go6502c/pkg/compiler"
	"go6502c/pkg/utils"
)

type dumpFlags struct {
	tokens, cst, ast, symbols, temps, listing bool
}

func main() {
	inPath := flag.String("in", "", "input source file path (.asm files are assembled)")
	outPath := flag.String("out", "", "output image file path (default: input with .bin extension)")
	verbose := flag.Bool("verbose", false, "echo trace log entries to stderr")
	var dump dumpFlags
	flag.BoolVar(&dump.tokens, "tokens", false, "print the token stream")
	flag.BoolVar(&dump.cst, "cst", false, "print the concrete syntax tree")
	flag.BoolVar(&dump.ast, "ast", false, "print the abstract syntax tree")
	flag.BoolVar(&dump.symbols, "symbols", false, "print the symbol table")
	flag.BoolVar(&dump.temps, "temps", false, "print the temp and jump tables")
	flag.BoolVar(&dump.listing, "listing", false, "print a disassembly of the image")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in <file>")
		flag.Usage()
		os.Exit(2)
	}

	source, fullPath, err := utils.ReadSource(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
		os.Exit(1)
	}

	var code []byte
	if strings.HasSuffix(fullPath, ".asm") {
		code, _, err = asm.Assemble(source)
		if err != nil {
			fmt.Fprintf(os.Stderr, "assembly failed: %v\n", err)
			os.Exit(1)
		}
		if dump.listing {
			printListing(os.Stdout, code, asm.Layout{CodeEnd: len(code), StaticEnd: len(code), Heap: len(code)})
		}
	} else {
		code, err = compile(os.Stdout, source, *verbose, dump)
		if err != nil {
			fmt.Fprintf(os.Stderr, "compilation failed: %v\n", err)
			os.Exit(1)
		}
	}

	output := *outPath
	if output == "" {
		output = utils.DefaultOutputPath(*inPath)
	}
	if err := writeBinary(output, code); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write image file %q: %v\n", output, err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d bytes -> %s\n", len(code), output)
}

// compile runs the pipeline and prints the requested stage dumps to w.
// Dumps of stages that completed are printed even when a later one fails.
func compile(w io.Writer, source string, verbose bool, dump dumpFlags) ([]byte, error) {
	res, err := compiler.Compile(source, compiler.Options{Verbose: verbose, Echo: os.Stderr})

	if dump.tokens {
		for _, tok := range res.Tokens {
			fmt.Fprintln(w, tok)
		}
	}
	if dump.cst && res.CST != nil {
		fmt.Fprint(w, res.CST)
	}
	if dump.ast && res.AST != nil {
		fmt.Fprint(w, res.AST)
	}
	if dump.symbols && res.Analysis != nil {
		fmt.Fprint(w, res.Analysis.Symbols)
	}
	if dump.temps {
		fmt.Fprint(w, res.TempTable())
	}
	if err != nil {
		return nil, err
	}

	img := res.Image
	if dump.listing {
		printListing(w, img.Bytes(), asm.Layout{CodeEnd: img.CodeEnd, StaticEnd: img.StaticEnd, Heap: img.Heap})
	}
	return img.Bytes(), nil
}

func printListing(w io.Writer, code []byte, layout asm.Layout) {
	fmt.Fprint(w, asm.Listing(code, layout))
}

func writeBinary(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
