// Package modgraph builds the intra-package dependency graph that drives
// reload planning.
//
// Starting from a root module, it extracts from-import clauses, resolves them
// to module identities confined to one package boundary, and records forward
// "depends on" edges. Imports outside the boundary become opaque externals;
// imports that cannot be located as source are dropped with a warning.
package modgraph

import (
	"fmt"
	"strings"

	"pyreload/internal/pypath"
)

// Identity is the canonical reference to a package-internal module.
// Two clauses resolving to the same dotted path yield equal identities.
type Identity struct {
	Dotted string        `json:"dotted"`
	Source pypath.Source `json:"source"`
}

// Node is a vertex in the dependency graph.
type Node struct {
	Identity Identity `json:"identity"`

	// Deps are the dotted paths this module depends on, restricted to
	// in-boundary modules, deduplicated, in first-seen order.
	Deps []string `json:"deps"`

	// Index is the discovery index assigned during graph traversal;
	// it is the stable tie-breaker for scheduling.
	Index int `json:"index"`

	depSet map[string]bool
}

func (n *Node) addDep(dotted string) {
	if n.depSet == nil {
		n.depSet = make(map[string]bool)
	}
	if n.depSet[dotted] {
		return
	}
	n.depSet[dotted] = true
	n.Deps = append(n.Deps, dotted)
}

// External records an import that resolved outside the package boundary.
// Externals never become graph nodes and are never expanded.
type External struct {
	Dotted       string `json:"dotted"`
	ImportedFrom string `json:"importedFrom"`
	Line         int    `json:"line"`
}

// Unresolved records an in-boundary import whose source could not be
// located. The edge is dropped; the reload proceeds.
type Unresolved struct {
	Dotted       string `json:"dotted"`
	ImportedFrom string `json:"importedFrom"`
	Line         int    `json:"line"`
}

// Graph is the dependency graph for one reload request. It is rebuilt from
// scratch on every request; nothing is cached across calls.
type Graph struct {
	Root     string          `json:"root"`
	Boundary pypath.Boundary `json:"boundary"`

	// Nodes maps dotted path to node. Every dotted path referenced by any
	// node's Deps is itself a key here.
	Nodes map[string]*Node `json:"nodes"`

	// Order lists dotted paths in discovery order.
	Order []string `json:"order"`

	Externals  []External   `json:"externals,omitempty"`
	Unresolved []Unresolved `json:"unresolved,omitempty"`
}

// NewGraph creates an empty graph for the given root and boundary.
func NewGraph(root string, boundary pypath.Boundary) *Graph {
	return &Graph{
		Root:     root,
		Boundary: boundary,
		Nodes:    make(map[string]*Node),
	}
}

// Add inserts a node for id if absent and returns it.
func (g *Graph) Add(id Identity) *Node {
	if node, ok := g.Nodes[id.Dotted]; ok {
		return node
	}
	node := &Node{Identity: id, Index: len(g.Order)}
	g.Nodes[id.Dotted] = node
	g.Order = append(g.Order, id.Dotted)
	return node
}

// Node returns the node for dotted, if present.
func (g *Graph) Node(dotted string) (*Node, bool) {
	node, ok := g.Nodes[dotted]
	return node, ok
}

// Len returns the number of modules in the graph.
func (g *Graph) Len() int {
	return len(g.Order)
}

// Edges returns all (from, to) dependency pairs in discovery order.
func (g *Graph) Edges() [][2]string {
	var edges [][2]string
	for _, dotted := range g.Order {
		for _, dep := range g.Nodes[dotted].Deps {
			edges = append(edges, [2]string{dotted, dep})
		}
	}
	return edges
}

// DOT exports Graphviz DOT text.
func (g *Graph) DOT() string {
	var b strings.Builder
	b.WriteString("digraph pyreload {\n")
	b.WriteString("  rankdir=LR;\n")

	aliases := make(map[string]string, len(g.Order))
	for i, dotted := range g.Order {
		alias := fmt.Sprintf("n%d", i)
		aliases[dotted] = alias
		label := escapeLabel(dotted)
		if dotted == g.Root {
			b.WriteString(fmt.Sprintf("  %s [label=\"%s\" shape=box];\n", alias, label))
		} else {
			b.WriteString(fmt.Sprintf("  %s [label=\"%s\"];\n", alias, label))
		}
	}
	for _, edge := range g.Edges() {
		b.WriteString(fmt.Sprintf("  %s -> %s;\n", aliases[edge[0]], aliases[edge[1]]))
	}
	b.WriteString("}\n")
	return b.String()
}

// Mermaid exports Mermaid graph text.
func (g *Graph) Mermaid() string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	aliases := make(map[string]string, len(g.Order))
	for i, dotted := range g.Order {
		alias := fmt.Sprintf("n%d", i)
		aliases[dotted] = alias
		b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", alias, escapeLabel(dotted)))
	}
	for _, edge := range g.Edges() {
		b.WriteString(fmt.Sprintf("    %s --> %s\n", aliases[edge[0]], aliases[edge[1]]))
	}
	return b.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}
