package compiler

import (
	"reflect"
	"testing"
)

func TestTreeBuild(t *testing.T) {
	tr := newTree[ASTKind]()
	root := tr.AddBranch(ASTBlock)
	decl := tr.AddBranch(ASTVarDecl)
	tr.AddLeaf(ASTTypeName, Token{Type: INT, Lexeme: "int", Line: 2})
	id := tr.AddLeaf(ASTIdent, Token{Type: ID, Lexeme: "a", Line: 2})
	tr.EndChildren()
	tr.AddBranch(ASTBlock)
	tr.EndChildren()
	tr.EndChildren()

	if tr.Root() != root || tr.Len() != 5 {
		t.Fatalf("root %d len %d", tr.Root(), tr.Len())
	}
	if tr.Parent(root) != NoNode || tr.Parent(id) != decl {
		t.Error("parent links wrong")
	}
	if got := tr.Children(root); !reflect.DeepEqual(got, []NodeID{decl, 4}) {
		t.Errorf("root children = %v", got)
	}
	if tr.Label(id) != "a" || tr.Label(decl) != "Variable Declaration" {
		t.Errorf("labels = %q %q", tr.Label(id), tr.Label(decl))
	}
	if tr.Line(root) != 2 || tr.Line(4) != 0 {
		t.Errorf("lines = %d %d", tr.Line(root), tr.Line(4))
	}

	want := "<BLOCK>\n-<Variable Declaration>\n--[int]\n--[a]\n-<BLOCK>\n"
	if got := tr.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestTreeWalkOrder(t *testing.T) {
	ast := mustReduce(t, "{print(1)}$")
	var pre, post []string
	ast.Walk(
		func(id NodeID, _ int) { pre = append(pre, ast.Label(id)) },
		func(id NodeID, _ int) { post = append(post, ast.Label(id)) },
	)
	if !reflect.DeepEqual(pre, []string{"BLOCK", "Print Statement", "1"}) {
		t.Errorf("pre = %v", pre)
	}
	if !reflect.DeepEqual(post, []string{"1", "Print Statement", "BLOCK"}) {
		t.Errorf("post = %v", post)
	}
}

func TestEmptyTree(t *testing.T) {
	tr := newTree[CSTKind]()
	if tr.String() != "" {
		t.Errorf("empty tree renders %q", tr.String())
	}
	tr.EndChildren()
}
