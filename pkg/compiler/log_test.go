package compiler

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogCounts(t *testing.T) {
	log := NewLog()
	log.Info(CategoryLexer, "start")
	log.Trace(CategoryLexer, "token %d", 1)
	log.Warn(CategoryLexer, "careful")
	log.Error(CategoryParser, "bad")
	log.Error(CategoryParser, "worse")

	if got := log.Count(SeverityError, CategoryParser); got != 2 {
		t.Errorf("parser errors = %d", got)
	}
	if got := log.Count(SeverityInfo, CategoryLexer); got != 2 {
		t.Errorf("lexer infos = %d", got)
	}
	if got := len(log.Filter(false)); got != 4 {
		t.Errorf("non-verbose entries = %d", got)
	}
	if got := len(log.Filter(true)); got != 5 {
		t.Errorf("all entries = %d", got)
	}

	e := log.Entries()[2]
	if e.String() != "[Lexer] WARNING: careful" {
		t.Errorf("entry = %q", e)
	}
}

func TestLogDrain(t *testing.T) {
	log := NewLog()
	log.Info(CategoryCodeGenerator, "one")
	if got := log.Drain(); len(got) != 1 {
		t.Fatalf("drained %d entries", len(got))
	}
	if len(log.Entries()) != 0 {
		t.Error("log not empty after Drain")
	}
	log.Info(CategoryCodeGenerator, "two")
	log.Reset()
	if len(log.Entries()) != 0 {
		t.Error("log not empty after Reset")
	}
}

func TestLogEcho(t *testing.T) {
	var buf bytes.Buffer
	log := &Log{Echo: &buf}
	log.Info(CategorySemanticAnalysis, "shown")
	log.Trace(CategorySemanticAnalysis, "hidden")
	if got := buf.String(); got != "[Semantic Analysis] INFO: shown\n" {
		t.Errorf("echo = %q", got)
	}

	buf.Reset()
	log.EchoVerbose = true
	log.Trace(CategorySemanticAnalysis, "now shown")
	if !strings.Contains(buf.String(), "now shown") {
		t.Errorf("verbose echo = %q", buf.String())
	}
}

func TestNilLog(t *testing.T) {
	var log *Log
	log.Info(CategoryLexer, "ignored")
	log.summary(CategoryLexer)
	if log.Entries() != nil || log.Drain() != nil || log.Count(SeverityInfo, CategoryLexer) != 0 {
		t.Error("nil log recorded something")
	}
	log.Reset()
}

func TestStageSummary(t *testing.T) {
	log := NewLog()
	if _, err := Lex("{}", log); err != nil {
		t.Fatal(err)
	}
	entries := log.Entries()
	last := entries[len(entries)-1]
	if last.Message != "Lexer produced 0 error(s) and 1 warning(s)." {
		t.Errorf("summary = %q", last.Message)
	}
}
