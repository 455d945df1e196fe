package compiler

import (
	"reflect"
	"strings"
	"testing"
)

func analyzeSource(t *testing.T, src string, log *Log) (*AST, *Analysis, error) {
	t.Helper()
	_, cst, err := ParseSource(src, log)
	if err != nil {
		t.Fatalf("parse %q failed: %v", src, err)
	}
	ast, err := Reduce(cst)
	if err != nil {
		t.Fatalf("reduce failed: %v", err)
	}
	an, err := Analyze(ast, log)
	return ast, an, err
}

func TestAnalyzeCleanProgram(t *testing.T) {
	log := NewLog()
	_, an, err := analyzeSource(t, "{int a\na = 4\n\nint b\nb = 2 + a\n} $", log)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(an.Warnings) != 0 {
		t.Errorf("warnings = %v", an.Warnings)
	}
	if n := log.Count(SeverityError, CategorySemanticAnalysis); n != 0 {
		t.Errorf("%d semantic errors logged", n)
	}

	a, ok := an.Symbols.Root().Entry("a")
	if !ok {
		t.Fatal("a not in scope 0")
	}
	if a.Type != TypeInt || a.Line != 1 || a.References != 2 || !a.Initialized {
		t.Errorf("a = %+v", a)
	}
	b, _ := an.Symbols.Root().Entry("b")
	if b.References != 1 || !b.Initialized {
		t.Errorf("b = %+v", b)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind ErrorKind
		line int
		msg  string
	}{
		{
			"duplicate in same scope",
			"{int a\nint a\n} $",
			ErrDuplicateDeclaration, 2,
			"Duplicate declaration of id a on line 2",
		},
		{
			"undeclared",
			"{a = 1} $",
			ErrUndeclared, 1,
			"The id a on line 1 was used before being declared.",
		},
		{
			"declared in a sibling scope",
			"{{int a}\n{a = 1}} $",
			ErrUndeclared, 2,
			"used before being declared",
		},
		{
			"int assigned to boolean",
			"{int a\nboolean b\nb = a\n} $",
			ErrTypeMismatch, 3,
			"b with the type boolean on the LHS does not match the type int",
		},
		{
			"string assigned to int",
			"{int a\na = \"x\"} $",
			ErrTypeMismatch, 2,
			"does not match the type string",
		},
		{
			"int compared with boolean",
			"{if (1 == true) {}} $",
			ErrTypeMismatch, 1,
			"Type mismatch on line 1",
		},
		{
			"used before a later declaration",
			"{int a\na = 1 + b\nstring b} $",
			ErrUndeclared, 2,
			"The id b on line 2",
		},
		{
			"comparison assigned to int",
			"{int a\na = (1 == 1)} $",
			ErrTypeMismatch, 2,
			"does not match the type boolean",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log := NewLog()
			_, an, err := analyzeSource(t, tc.src, log)
			if err == nil {
				t.Fatalf("Analyze(%q) succeeded", tc.src)
			}
			if an == nil {
				t.Fatal("Analyze returned a nil Analysis on error")
			}
			ce, ok := err.(*Error)
			if !ok {
				t.Fatalf("error %T is not *Error", err)
			}
			if ce.Kind != tc.kind || ce.Stage != CategorySemanticAnalysis {
				t.Errorf("error = %s/%s, want %s", ce.Stage, ce.Kind, tc.kind)
			}
			if ce.Line != tc.line {
				t.Errorf("line = %d, want %d", ce.Line, tc.line)
			}
			if !strings.Contains(ce.Msg, tc.msg) {
				t.Errorf("message %q does not contain %q", ce.Msg, tc.msg)
			}
			if n := log.Count(SeverityError, CategorySemanticAnalysis); n != 1 {
				t.Errorf("%d semantic errors logged, want 1", n)
			}
		})
	}
}

func TestAnalyzeWarnings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			"declared but never used",
			"{int a} $",
			[]string{"The id a declared on line 1 in scope 0 was declared but never used."},
		},
		{
			"used before initialized",
			"{int a\nprint(a)} $",
			[]string{"The id a on line 2 was used before being initialized."},
		},
		{
			"self assignment reads before it writes",
			"{int a\na = a} $",
			[]string{"The id a on line 2 was used before being initialized."},
		},
		{
			"nested scope unused",
			"{int a\na = 1\nprint(a)\n{string a}} $",
			[]string{"The id a declared on line 4 in scope 1 was declared but never used."},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log := NewLog()
			_, an, err := analyzeSource(t, tc.src, log)
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}
			if !reflect.DeepEqual(an.Warnings, tc.want) {
				t.Errorf("warnings = %q, want %q", an.Warnings, tc.want)
			}
			if n := log.Count(SeverityWarning, CategorySemanticAnalysis); n != len(tc.want) {
				t.Errorf("%d warnings logged, want %d", n, len(tc.want))
			}
		})
	}
}

// Warnings gathered by scope resolution survive a later type error.
func TestAnalyzeWarningsSurviveTypeError(t *testing.T) {
	_, an, err := analyzeSource(t, "{int a\nint c\nboolean b\nb = a\n} $", nil)
	if KindOf(err) != ErrTypeMismatch {
		t.Fatalf("err = %v, want type mismatch", err)
	}
	want := []string{
		"The id a on line 4 was used before being initialized.",
		"The id c declared on line 2 in scope 0 was declared but never used.",
	}
	if !reflect.DeepEqual(an.Warnings, want) {
		t.Errorf("warnings = %q, want %q", an.Warnings, want)
	}
}

func TestAnalyzeShadowing(t *testing.T) {
	ast, an, err := analyzeSource(t, "{int a\na = 1\n{string a\na = \"x\"\nprint(a)}\nprint(a)} $", nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	var scopes []int
	ast.Walk(func(id NodeID, _ int) {
		if ast.Kind(id) == ASTIdent {
			e, ok := an.Symbol(id)
			if !ok {
				t.Errorf("ident %d unbound", id)
				return
			}
			scopes = append(scopes, e.Scope)
		}
	}, nil)
	// decl a, a = 1, decl a, a = "x", print(a), print(a)
	want := []int{0, 0, 1, 1, 1, 0}
	if !reflect.DeepEqual(scopes, want) {
		t.Errorf("binding scopes = %v, want %v", scopes, want)
	}
}

func TestAnalyzeTypes(t *testing.T) {
	ast, an, err := analyzeSource(t, "{boolean b\nb = (1 == 2)\nprint(b)} $", nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	ast.Walk(func(id NodeID, _ int) {
		switch ast.Kind(id) {
		case ASTEqual:
			if got := an.TypeOf(id); got != TypeInt {
				t.Errorf("Equal node type = %s, want int", got)
			}
		case ASTAssign:
			l, r := an.Slots(id)
			if l != TypeBoolean || r != TypeBoolean {
				t.Errorf("Assign slots = %s, %s", l, r)
			}
		case ASTBlock:
			if got := an.TypeOf(id); got != TypeNone {
				t.Errorf("Block typed as %s", got)
			}
		}
	}, nil)
}

func TestAnalyzeProperties(t *testing.T) {
	for _, s := range Samples {
		if s.Fails {
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			ast, an, err := analyzeSource(t, s.Code, nil)
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}

			// A use always binds to its own scope or an enclosing one.
			ast.Walk(func(id NodeID, _ int) {
				if ast.Kind(id) != ASTIdent {
					return
				}
				e, _ := an.Symbol(id)
				if !an.Symbols.IsAncestor(e.Scope, an.UseScope(id)) {
					t.Errorf("%s bound to scope %d from scope %d", e.Name, e.Scope, an.UseScope(id))
				}
			}, nil)

			// Filled slot pairs agree.
			for id := 0; id < ast.Len(); id++ {
				l, r := an.Slots(NodeID(id))
				if l != TypeNone && r != TypeNone && l != r {
					t.Errorf("node %d slots %s/%s", id, l, r)
				}
			}

			// Fresh runs agree.
			_, again, err := analyzeSource(t, s.Code, nil)
			if err != nil {
				t.Fatal(err)
			}
			if an.Symbols.String() != again.Symbols.String() || !reflect.DeepEqual(an.Warnings, again.Warnings) {
				t.Error("second analysis differs")
			}
		})
	}
}
