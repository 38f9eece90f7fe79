// Package pyast provides tree-sitter based extraction of from-import
// declarations from Python source.
package pyast

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parser wraps tree-sitter for Python parsing.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new tree-sitter parser configured for Python.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p}
}

// Parse parses source code and returns the AST root node.
func (p *Parser) Parse(ctx context.Context, source []byte) (*sitter.Node, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return tree.RootNode(), nil
}

// findNodes finds all nodes of the given type in the AST.
func findNodes(root *sitter.Node, nodeType string) []*sitter.Node {
	var result []*sitter.Node

	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if node.Type() == nodeType {
			result = append(result, node)
		}
		for i := uint32(0); i < node.ChildCount(); i++ {
			walk(node.Child(int(i)))
		}
	}

	walk(root)
	return result
}

// firstErrorLine returns the 1-indexed line of the first error node, or 0.
func firstErrorLine(root *sitter.Node) int {
	var line int

	var walk func(*sitter.Node) bool
	walk = func(node *sitter.Node) bool {
		if node == nil {
			return false
		}
		if node.Type() == "ERROR" || node.IsMissing() {
			line = int(node.StartPoint().Row) + 1
			return true
		}
		for i := uint32(0); i < node.ChildCount(); i++ {
			if walk(node.Child(int(i))) {
				return true
			}
		}
		return false
	}

	walk(root)
	return line
}

func text(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
