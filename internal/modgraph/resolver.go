package modgraph

import (
	"strings"

	"pyreload/internal/pyast"
	"pyreload/internal/pypath"
)

// Class is the resolution outcome for one dependency candidate.
type Class int

const (
	// ClassInternal marks an in-boundary module with discoverable source.
	ClassInternal Class = iota
	// ClassExternal marks a module outside the boundary or on the skip
	// list; recorded for diagnostics, never expanded.
	ClassExternal
	// ClassUnresolvable marks an in-boundary dotted path with no
	// discoverable source; the edge is dropped with a warning.
	ClassUnresolvable
)

// Resolution is one resolved dependency candidate of a clause.
type Resolution struct {
	Class    Class
	Dotted   string
	Identity Identity // populated when Class == ClassInternal
}

// Resolver turns import clauses into module identities. All module lookup
// goes through the injected locator so the resolver stays pure and testable
// without a live interpreter.
type Resolver struct {
	locator  pypath.Locator
	boundary pypath.Boundary
	skip     map[string]bool
}

// NewResolver creates a resolver confined to boundary. Dotted paths in skip
// are classified external regardless of location.
func NewResolver(locator pypath.Locator, boundary pypath.Boundary, skip []string) *Resolver {
	skipSet := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipSet[s] = true
	}
	return &Resolver{locator: locator, boundary: boundary, skip: skipSet}
}

// Resolve maps one clause of the importer to its dependency candidates.
//
// The from-module itself is always a candidate. Each explicitly imported
// name that locates as a submodule of the from-module is a candidate too:
// "from package import submodule" must reload the submodule, not just the
// package initializer. Wildcard clauses only establish the from-module edge.
func (r *Resolver) Resolve(importer Identity, clause pyast.ImportClause) []Resolution {
	base, ok := r.baseDotted(importer, clause)
	if !ok {
		return []Resolution{{Class: ClassUnresolvable, Dotted: relativeDisplay(clause)}}
	}

	resolutions := []Resolution{r.classify(base)}

	if clause.Wildcard {
		return resolutions
	}
	// Submodule candidates only make sense under an in-boundary base.
	if resolutions[0].Class == ClassExternal {
		return resolutions
	}

	for _, name := range clause.Names {
		candidate := base + "." + name.Name
		if !r.boundary.Contains(candidate) || r.skip[candidate] {
			continue
		}
		if src, err := r.locator.Locate(candidate); err == nil {
			resolutions = append(resolutions, Resolution{
				Class:    ClassInternal,
				Dotted:   candidate,
				Identity: Identity{Dotted: candidate, Source: src},
			})
		}
		// Names that do not locate are plain attributes, not modules.
	}

	return resolutions
}

// baseDotted computes the absolute dotted path of the clause's from-module.
//
// Relative clauses trim one trailing segment of the importer's dotted path
// per level beyond the importer's own package context: a package initializer
// already names its package, so it trims one segment fewer than a plain
// module does.
func (r *Resolver) baseDotted(importer Identity, clause pyast.ImportClause) (string, bool) {
	if !clause.Relative() {
		return clause.Module, clause.Module != ""
	}

	trim := clause.Level
	if importer.Source.IsPackage {
		trim--
	}

	segments := strings.Split(importer.Dotted, ".")
	if trim >= len(segments) {
		// Relative import escaping past the top-level package.
		return "", false
	}
	base := strings.Join(segments[:len(segments)-trim], ".")

	if clause.Module != "" {
		base += "." + clause.Module
	}
	return base, true
}

func (r *Resolver) classify(dotted string) Resolution {
	if r.skip[dotted] || !r.boundary.Contains(dotted) {
		return Resolution{Class: ClassExternal, Dotted: dotted}
	}
	src, err := r.locator.Locate(dotted)
	if err != nil {
		return Resolution{Class: ClassUnresolvable, Dotted: dotted}
	}
	return Resolution{
		Class:    ClassInternal,
		Dotted:   dotted,
		Identity: Identity{Dotted: dotted, Source: src},
	}
}

// relativeDisplay renders a broken relative clause for diagnostics.
func relativeDisplay(clause pyast.ImportClause) string {
	return strings.Repeat(".", clause.Level) + clause.Module
}
