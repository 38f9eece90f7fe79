package pyast

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	rlerrors "pyreload/internal/errors"
)

// ImportedName is one name bound by a from-import statement, with its alias
// when an "as" clause is present.
type ImportedName struct {
	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`
}

// ImportClause is one "from X import Y" declaration found in a module.
//
// Exactly one of the absolute form (Level == 0, Module != "") or the relative
// form (Level > 0) holds. Wildcard and Names are mutually exclusive.
type ImportClause struct {
	// Level counts leading dots: 0 is absolute, N > 0 means N package
	// levels up from the importing module.
	Level int `json:"level"`

	// Module is the dotted path following the dots; empty for
	// "from . import y".
	Module string `json:"module"`

	// Names are the imported names in declaration order. Empty when
	// Wildcard is set.
	Names []ImportedName `json:"names,omitempty"`

	// Wildcard marks "from X import *".
	Wildcard bool `json:"wildcard,omitempty"`

	// Line is the 1-indexed source line of the statement.
	Line int `json:"line"`
}

// Relative reports whether the clause uses relative-import form.
func (c ImportClause) Relative() bool {
	return c.Level > 0
}

// ExtractClauses parses source and returns every from-import declaration in
// it, top-level and nested scopes alike, in textual order.
//
// Bare "import X" statements are deliberately not extracted: restoring the
// parent-namespace attribute bindings they install is out of scope for the
// reloader. A source that does not parse yields a PARSE_ERROR; the caller
// attributes it to the module being analyzed.
func (p *Parser) ExtractClauses(ctx context.Context, source []byte) ([]ImportClause, error) {
	root, err := p.Parse(ctx, source)
	if err != nil {
		return nil, rlerrors.New(rlerrors.ParseFailed, "parsing source", err)
	}
	if root.HasError() {
		return nil, rlerrors.New(rlerrors.ParseFailed,
			fmt.Sprintf("syntax error near line %d", firstErrorLine(root)), nil)
	}

	stmts := findNodes(root, "import_from_statement")
	clauses := make([]ImportClause, 0, len(stmts))
	for _, stmt := range stmts {
		if clause, ok := extractClause(stmt, source); ok {
			clauses = append(clauses, clause)
		}
	}
	return clauses, nil
}

// extractClause converts one import_from_statement node into an ImportClause.
//
// Grammar shape: the first named child is the from-clause (a dotted_name for
// absolute imports, a relative_import for dotted prefixes); the remaining
// named children are the imported names or a wildcard_import.
func extractClause(node *sitter.Node, source []byte) (ImportClause, bool) {
	clause := ImportClause{Line: int(node.StartPoint().Row) + 1}

	count := int(node.NamedChildCount())
	if count == 0 {
		return clause, false
	}

	first := node.NamedChild(0)
	switch first.Type() {
	case "dotted_name":
		clause.Module = text(first, source)
	case "relative_import":
		for i := 0; i < int(first.NamedChildCount()); i++ {
			child := first.NamedChild(i)
			switch child.Type() {
			case "import_prefix":
				clause.Level = len(text(child, source))
			case "dotted_name":
				clause.Module = text(child, source)
			}
		}
		if clause.Level == 0 {
			return clause, false
		}
	default:
		return clause, false
	}

	for i := 1; i < count; i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "wildcard_import":
			clause.Wildcard = true
			clause.Names = nil
			return clause, true
		case "dotted_name":
			clause.Names = append(clause.Names, ImportedName{Name: text(child, source)})
		case "aliased_import":
			imported := ImportedName{}
			if name := child.ChildByFieldName("name"); name != nil {
				imported.Name = text(name, source)
			}
			if alias := child.ChildByFieldName("alias"); alias != nil {
				imported.Alias = text(alias, source)
			}
			clause.Names = append(clause.Names, imported)
		}
	}

	return clause, true
}
