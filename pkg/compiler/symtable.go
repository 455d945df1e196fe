package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the semantic type of a variable or expression.
type Type int

const (
	TypeNone Type = iota
	TypeInt
	TypeString
	TypeBoolean
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	case TypeBoolean:
		return "boolean"
	}
	return "none"
}

// typeOfKeyword maps a type keyword token to its Type.
func typeOfKeyword(tt TokenType) Type {
	switch tt {
	case INT:
		return TypeInt
	case STRING:
		return TypeString
	case BOOLEAN:
		return TypeBoolean
	}
	return TypeNone
}

// SymbolEntry is one declared variable.
type SymbolEntry struct {
	Name        string
	Type        Type
	Line        int // line of the declaration
	Scope       int // id of the declaring scope
	References  int
	Initialized bool
}

// Scope is one node of the scope tree. Parent and children are scope ids
// owned by the SymbolTable.
type Scope struct {
	ID       int
	Parent   int // -1 for the root
	Children []int

	entries map[string]*SymbolEntry
	order   []string // declaration order
}

// Entry returns the symbol declared directly in this scope.
func (s *Scope) Entry(name string) (*SymbolEntry, bool) {
	e, ok := s.entries[name]
	return e, ok
}

// Entries returns the symbols of this scope in declaration order.
func (s *Scope) Entries() []*SymbolEntry {
	out := make([]*SymbolEntry, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.entries[name])
	}
	return out
}

// SymbolTable is the scope tree of one program. The outermost block is
// scope 0; nested blocks are numbered in the order they are opened.
type SymbolTable struct {
	scopes  []*Scope
	current int // -1 before the first block is opened
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{current: -1}
}

// OpenScope creates a child of the current scope and makes it current.
func (s *SymbolTable) OpenScope() *Scope {
	sc := &Scope{
		ID:      len(s.scopes),
		Parent:  s.current,
		entries: make(map[string]*SymbolEntry),
	}
	s.scopes = append(s.scopes, sc)
	if s.current >= 0 {
		parent := s.scopes[s.current]
		parent.Children = append(parent.Children, sc.ID)
	}
	s.current = sc.ID
	return sc
}

// CloseScope returns to the parent of the current scope.
func (s *SymbolTable) CloseScope() {
	if s.current >= 0 {
		s.current = s.scopes[s.current].Parent
	}
}

// Current returns the innermost open scope, or nil outside any block.
func (s *SymbolTable) Current() *Scope {
	if s.current < 0 {
		return nil
	}
	return s.scopes[s.current]
}

// Scope returns the scope with the given id.
func (s *SymbolTable) Scope(id int) *Scope {
	if id < 0 || id >= len(s.scopes) {
		return nil
	}
	return s.scopes[id]
}

// Root returns scope 0.
func (s *SymbolTable) Root() *Scope { return s.Scope(0) }

// Scopes returns every scope in id order.
func (s *SymbolTable) Scopes() []*Scope { return s.scopes }

// Declare adds name to the current scope. If the name is already declared in
// that scope the existing entry is returned with ok == false.
func (s *SymbolTable) Declare(name string, typ Type, line int) (*SymbolEntry, bool) {
	sc := s.Current()
	if sc == nil {
		panic("Declare called outside any scope")
	}
	if e, exists := sc.entries[name]; exists {
		return e, false
	}
	e := &SymbolEntry{Name: name, Type: typ, Line: line, Scope: sc.ID}
	sc.entries[name] = e
	sc.order = append(sc.order, name)
	return e, true
}

// Lookup searches the current scope and then each ancestor for name.
func (s *SymbolTable) Lookup(name string) (*SymbolEntry, bool) {
	for id := s.current; id >= 0; id = s.scopes[id].Parent {
		if e, ok := s.scopes[id].entries[name]; ok {
			return e, true
		}
	}
	return nil, false
}

// IsAncestor reports whether scope anc is id itself or one of its ancestors.
func (s *SymbolTable) IsAncestor(anc, id int) bool {
	for ; id >= 0; id = s.scopes[id].Parent {
		if id == anc {
			return true
		}
	}
	return false
}

// Entries returns every symbol ordered by scope, then name.
func (s *SymbolTable) Entries() []*SymbolEntry {
	var out []*SymbolEntry
	for _, sc := range s.scopes {
		out = append(out, sc.Entries()...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Scope != out[j].Scope {
			return out[i].Scope < out[j].Scope
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	if len(s.scopes) == 0 {
		sb.WriteString("Symbols: (empty)\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "%-6s %-8s %-6s %-5s %-4s %s\n", "Name", "Type", "Scope", "Line", "Refs", "Initialized")
	for _, e := range s.Entries() {
		fmt.Fprintf(&sb, "%-6s %-8s %-6d %-5d %-4d %t\n", e.Name, e.Type, e.Scope, e.Line, e.References, e.Initialized)
	}
	return sb.String()
}
