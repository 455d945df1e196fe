package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"go6502c/pkg/compiler"
)

const prompt = "> "

// session is the console state carried between programs.
type session struct {
	out     io.Writer
	verbose bool
	log     []compiler.Entry // entries of the last run, drained before the next
}

// run compiles one program and prints its log followed by the image.
func (s *session) run(name, src string) {
	res, err := compiler.Compile(src, compiler.Options{Verbose: s.verbose})
	s.log = res.Log.Drain()

	if name != "" {
		fmt.Fprintf(s.out, "== %s\n", name)
	}
	for _, e := range s.log {
		if e.Verbose && !s.verbose {
			continue
		}
		fmt.Fprintln(s.out, e)
	}
	if err != nil {
		fmt.Fprintln(s.out, "compile error:", err)
		return
	}
	fmt.Fprint(s.out, res.Image)
}

// command handles a ':' line. It reports false for unknown commands.
func (s *session) command(line string) bool {
	switch strings.TrimSpace(line) {
	case ":verbose":
		s.verbose = !s.verbose
		fmt.Fprintf(s.out, "verbose %t\n", s.verbose)
	case ":samples":
		for _, sample := range compiler.Samples {
			s.run(sample.Name, sample.Code)
		}
	default:
		return false
	}
	return true
}

// serve reads programs from in. A program ends at the line containing '$'.
func (s *session) serve(in io.Reader) error {
	sc := bufio.NewScanner(in)
	var buf strings.Builder

	fmt.Fprint(s.out, prompt)
	for sc.Scan() {
		line := sc.Text()
		if buf.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			if !s.command(line) {
				fmt.Fprintf(s.out, "unknown command %s\n", strings.TrimSpace(line))
			}
			fmt.Fprint(s.out, prompt)
			continue
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		if strings.Contains(line, "$") {
			s.run("", strings.TrimRight(buf.String(), "\n"))
			buf.Reset()
			fmt.Fprint(s.out, prompt)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(buf.String()) != "" {
		s.run("", buf.String())
	}
	return nil
}

func main() {
	s := &session{out: os.Stdout}
	if len(os.Args) > 1 && os.Args[1] == "--verbose" {
		s.verbose = true
	}
	if err := s.serve(os.Stdin); err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
}
