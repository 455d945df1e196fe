package compiler

import (
	"fmt"
	"strings"
)

// NodeID indexes a node inside its Tree. Parent and child links are
// stored as indices so trees never hold pointer cycles.
type NodeID int

// NoNode is the parent of the root.
const NoNode NodeID = -1

// Node is one CST or AST node. K is the node kind enum of the tree level.
type Node[K fmt.Stringer] struct {
	Kind     K
	Token    Token // set on leaves only
	Leaf     bool
	Parent   NodeID
	Children []NodeID
}

// Tree is an arena of nodes built top-down with AddBranch/AddLeaf/EndChildren.
type Tree[K fmt.Stringer] struct {
	nodes []Node[K]
	root  NodeID
	cur   NodeID
}

func newTree[K fmt.Stringer]() *Tree[K] {
	return &Tree[K]{root: NoNode, cur: NoNode}
}

func (t *Tree[K]) add(n Node[K]) NodeID {
	id := NodeID(len(t.nodes))
	if t.root == NoNode {
		t.root = id
		n.Parent = NoNode
	} else {
		n.Parent = t.cur
		t.nodes[t.cur].Children = append(t.nodes[t.cur].Children, id)
	}
	t.nodes = append(t.nodes, n)
	return id
}

// AddBranch appends an interior node under the current node and makes it current.
func (t *Tree[K]) AddBranch(kind K) NodeID {
	id := t.add(Node[K]{Kind: kind})
	t.cur = id
	return id
}

// AddLeaf appends a leaf carrying tok under the current node.
func (t *Tree[K]) AddLeaf(kind K, tok Token) NodeID {
	return t.add(Node[K]{Kind: kind, Token: tok, Leaf: true})
}

// EndChildren closes the current branch and moves focus back to its parent.
func (t *Tree[K]) EndChildren() {
	if t.cur == NoNode {
		return
	}
	if p := t.nodes[t.cur].Parent; p != NoNode {
		t.cur = p
	}
}

func (t *Tree[K]) Root() NodeID { return t.root }

func (t *Tree[K]) Len() int { return len(t.nodes) }

// Node returns the node with the given id.
func (t *Tree[K]) Node(id NodeID) *Node[K] { return &t.nodes[id] }

func (t *Tree[K]) Kind(id NodeID) K { return t.nodes[id].Kind }

func (t *Tree[K]) Children(id NodeID) []NodeID { return t.nodes[id].Children }

func (t *Tree[K]) Parent(id NodeID) NodeID { return t.nodes[id].Parent }

// Label is the display name of a node: the lexeme for leaves, the kind otherwise.
func (t *Tree[K]) Label(id NodeID) string {
	n := &t.nodes[id]
	if n.Leaf {
		return n.Token.Lexeme
	}
	return n.Kind.String()
}

// Line returns the source line of the first leaf at or under id, or 0.
func (t *Tree[K]) Line(id NodeID) int {
	n := &t.nodes[id]
	if n.Leaf {
		return n.Token.Line
	}
	for _, c := range n.Children {
		if line := t.Line(c); line > 0 {
			return line
		}
	}
	return 0
}

// Walk visits every node depth first, calling pre before and post after
// the children of a node. Either callback may be nil.
func (t *Tree[K]) Walk(pre, post func(id NodeID, depth int)) {
	if t.root == NoNode {
		return
	}
	var walk func(id NodeID, depth int)
	walk = func(id NodeID, depth int) {
		if pre != nil {
			pre(id, depth)
		}
		for _, c := range t.nodes[id].Children {
			walk(c, depth+1)
		}
		if post != nil {
			post(id, depth)
		}
	}
	walk(t.root, 0)
}

// String renders the tree one node per line, indented with '-' per depth;
// branches print as <Label> and leaves as [lexeme].
func (t *Tree[K]) String() string {
	var sb strings.Builder
	t.Walk(func(id NodeID, depth int) {
		sb.WriteString(strings.Repeat("-", depth))
		n := &t.nodes[id]
		if n.Leaf {
			fmt.Fprintf(&sb, "[%s]\n", n.Token.Lexeme)
		} else {
			fmt.Fprintf(&sb, "<%s>\n", n.Kind)
		}
	}, nil)
	return sb.String()
}
