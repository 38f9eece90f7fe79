package modgraph

import (
	"context"
	"fmt"
	"os"

	rlerrors "pyreload/internal/errors"
	"pyreload/internal/logging"
	"pyreload/internal/pyast"
)

// Builder discovers every in-boundary module reachable from a root via
// declared from-imports.
type Builder struct {
	parser   *pyast.Parser
	resolver *Resolver
	logger   *logging.Logger

	// MaxSourceBytes rejects module files larger than this before parsing.
	// Zero means no limit.
	MaxSourceBytes int
}

// NewBuilder creates a builder using the given resolver.
func NewBuilder(resolver *Resolver, logger *logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Builder{
		parser:   pyast.NewParser(),
		resolver: resolver,
		logger:   logger,
	}
}

// Build runs breadth-first discovery from root and returns the complete
// graph. A module that fails to parse aborts the build: a module that cannot
// be analyzed cannot be safely scheduled.
//
// The builder only reads source; it never mutates host state.
func (b *Builder) Build(ctx context.Context, root Identity) (*Graph, error) {
	graph := NewGraph(root.Dotted, b.resolver.boundary)
	graph.Add(root)

	queue := []Identity{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		clauses, err := b.extract(ctx, current)
		if err != nil {
			return nil, err
		}

		node := graph.Nodes[current.Dotted]
		for _, clause := range clauses {
			for _, res := range b.resolver.Resolve(current, clause) {
				switch res.Class {
				case ClassExternal:
					graph.Externals = append(graph.Externals, External{
						Dotted:       res.Dotted,
						ImportedFrom: current.Dotted,
						Line:         clause.Line,
					})
				case ClassUnresolvable:
					graph.Unresolved = append(graph.Unresolved, Unresolved{
						Dotted:       res.Dotted,
						ImportedFrom: current.Dotted,
						Line:         clause.Line,
					})
					b.logger.Warn("Dropping unresolvable import", map[string]interface{}{
						"module": current.Dotted,
						"target": res.Dotted,
						"line":   clause.Line,
					})
				case ClassInternal:
					if res.Dotted == current.Dotted {
						// A module does not depend on itself.
						continue
					}
					_, seen := graph.Node(res.Dotted)
					node.addDep(res.Dotted)
					if !seen {
						graph.Add(res.Identity)
						queue = append(queue, res.Identity)
					}
				}
			}
		}

		b.logger.Debug("Discovered module", map[string]interface{}{
			"module": current.Dotted,
			"deps":   len(node.Deps),
		})
	}

	return graph, nil
}

func (b *Builder) extract(ctx context.Context, id Identity) ([]pyast.ImportClause, error) {
	source, err := os.ReadFile(id.Source.Path)
	if err != nil {
		return nil, rlerrors.NewModule(rlerrors.SourceNotFound, id.Dotted, "reading source", err)
	}
	if b.MaxSourceBytes > 0 && len(source) > b.MaxSourceBytes {
		return nil, rlerrors.NewModule(rlerrors.ParseFailed, id.Dotted,
			fmt.Sprintf("source exceeds %d byte scan limit", b.MaxSourceBytes), nil)
	}

	clauses, err := b.parser.ExtractClauses(ctx, source)
	if err != nil {
		return nil, rlerrors.NewModule(rlerrors.ParseFailed, id.Dotted, "analyzing source", err)
	}
	return clauses, nil
}
