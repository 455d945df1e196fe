package main

import (
	"fmt"
	"os"

	"go6502c/pkg/asm"
	"go6502c/pkg/compiler"
	"go6502c/pkg/utils"
)

const testSource = `{
	int a
	a = 4
	int b
	b = 2 + a
	if (b != a) {
		print("diff")
	}
} $`

func main() {
	src := testSource
	if len(os.Args) > 1 {
		data, _, err := utils.ReadSource(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = data
	}

	fmt.Printf("Source:\n%s\n\n", src)

	res, err := compiler.Compile(src, compiler.Options{})

	fmt.Printf("Tokens (%d)\n", len(res.Tokens))
	for _, tok := range res.Tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	if res.CST != nil {
		fmt.Println("CST")
		fmt.Print(res.CST)
		fmt.Println()
	}
	if res.AST != nil {
		fmt.Println("AST")
		fmt.Print(res.AST)
		fmt.Println()
	}
	if res.Analysis != nil {
		fmt.Println("Symbols")
		fmt.Print(res.Analysis.Symbols)
		fmt.Println()
	}
	if t := res.TempTable(); t != "" {
		fmt.Println("Temps and jumps")
		fmt.Print(t)
		fmt.Println()
	}

	fmt.Println("Log")
	for _, e := range res.Log.Entries() {
		fmt.Println(" ", e)
	}
	fmt.Println()

	if err != nil {
		fmt.Fprintln(os.Stderr, "compile error:", err)
		os.Exit(1)
	}

	img := res.Image
	fmt.Println("Listing")
	fmt.Print(asm.Listing(img.Bytes(), asm.Layout{CodeEnd: img.CodeEnd, StaticEnd: img.StaticEnd, Heap: img.Heap}))
	fmt.Println()
	fmt.Println("Image")
	fmt.Print(img)
}
