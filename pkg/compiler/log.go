package compiler

import (
	"fmt"
	"io"
)

// Severity of a log entry.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityInfo
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Category names the pipeline stage that produced an entry or error.
type Category int

const (
	CategoryLexer Category = iota + 1
	CategoryParser
	CategorySemanticAnalysis
	CategoryCodeGenerator
)

func (c Category) String() string {
	switch c {
	case CategoryLexer:
		return "Lexer"
	case CategoryParser:
		return "Parser"
	case CategorySemanticAnalysis:
		return "Semantic Analysis"
	case CategoryCodeGenerator:
		return "Code Generator"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Entry is one record in the compilation log.
type Entry struct {
	Message  string
	Severity Severity
	Category Category
	Verbose  bool // trace output, hidden unless verbose display is on
}

func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Severity, e.Message)
}

// Log is the append-only message sink of a single compilation.
// A nil *Log discards everything.
type Log struct {
	entries []Entry

	// Echo, when set, receives every entry as it is added.
	// EchoVerbose controls whether verbose entries are echoed too.
	Echo        io.Writer
	EchoVerbose bool
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) add(sev Severity, cat Category, verbose bool, format string, args ...any) {
	if l == nil {
		return
	}
	e := Entry{
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
		Category: cat,
		Verbose:  verbose,
	}
	l.entries = append(l.entries, e)
	if l.Echo != nil && (!verbose || l.EchoVerbose) {
		fmt.Fprintln(l.Echo, e)
	}
}

func (l *Log) Info(cat Category, format string, args ...any) {
	l.add(SeverityInfo, cat, false, format, args...)
}

// Trace records a verbose info line.
func (l *Log) Trace(cat Category, format string, args ...any) {
	l.add(SeverityInfo, cat, true, format, args...)
}

func (l *Log) Warn(cat Category, format string, args ...any) {
	l.add(SeverityWarning, cat, false, format, args...)
}

func (l *Log) Error(cat Category, format string, args ...any) {
	l.add(SeverityError, cat, false, format, args...)
}

// Entries returns a copy of all entries in insertion order.
func (l *Log) Entries() []Entry {
	if l == nil {
		return nil
	}
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Filter returns the entries a viewer should show; verbose entries are
// included only when verbose is true.
func (l *Log) Filter(verbose bool) []Entry {
	if l == nil {
		return nil
	}
	var out []Entry
	for _, e := range l.entries {
		if e.Verbose && !verbose {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Count returns the number of entries with the given severity and category.
func (l *Log) Count(sev Severity, cat Category) int {
	if l == nil {
		return 0
	}
	n := 0
	for _, e := range l.entries {
		if e.Severity == sev && e.Category == cat {
			n++
		}
	}
	return n
}

// Drain returns all entries and empties the log.
func (l *Log) Drain() []Entry {
	if l == nil {
		return nil
	}
	out := l.entries
	l.entries = nil
	return out
}

func (l *Log) Reset() {
	if l != nil {
		l.entries = nil
	}
}

// summary logs the "<stage> produced N error(s) and M warning(s)." line.
func (l *Log) summary(cat Category) {
	l.Info(cat, "%s produced %d error(s) and %d warning(s).",
		cat, l.Count(SeverityError, cat), l.Count(SeverityWarning, cat))
}
