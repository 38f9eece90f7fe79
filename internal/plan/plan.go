// Package plan computes the reload order for a dependency graph.
//
// The scheduler condenses the graph into strongly-connected components,
// orders the condensation so a dependency component always precedes its
// dependents, and emits genuine import cycles twice: the first pass gives
// every member its final executed state at least once, the second lets any
// member that observed a partner mid-initialization re-bind against the
// partner's final state. This mirrors how the interpreter resolves circular
// imports at first load by handing out partially-initialized modules.
package plan

import (
	"sort"

	"pyreload/internal/modgraph"
)

// Plan is the ordered reload schedule for one request.
type Plan struct {
	Root string `json:"root" yaml:"root"`

	// Modules is the execution order. Members of a multi-module cycle
	// appear exactly twice, in the same relative order both times.
	Modules []string `json:"modules" yaml:"modules"`

	// Cycles lists every multi-member strongly-connected component, each
	// in discovery order. Empty for acyclic graphs.
	Cycles [][]string `json:"cycles,omitempty" yaml:"cycles,omitempty"`
}

// Steps returns the number of re-executions the plan performs.
func (p *Plan) Steps() int {
	return len(p.Modules)
}

// Compute derives the reload plan for g. The result is deterministic for a
// given graph: ties between independent components are broken by the
// discovery index recorded during graph traversal.
func Compute(g *modgraph.Graph) *Plan {
	components := stronglyConnected(g)

	// Component membership lookup and per-component rank (the smallest
	// member discovery index, used as the stable tie-breaker).
	compOf := make(map[string]int, len(g.Order))
	rank := make([]int, len(components))
	for i, members := range components {
		rank[i] = g.Nodes[members[0]].Index
		for _, m := range members {
			compOf[m] = i
			if idx := g.Nodes[m].Index; idx < rank[i] {
				rank[i] = idx
			}
		}
	}

	// Condensation: dependents[d] lists components that depend on d;
	// indegree counts distinct dependencies per component.
	dependents := make([][]int, len(components))
	indegree := make([]int, len(components))
	seen := make(map[[2]int]bool)
	for _, dotted := range g.Order {
		from := compOf[dotted]
		for _, dep := range g.Nodes[dotted].Deps {
			to := compOf[dep]
			if from == to {
				continue
			}
			key := [2]int{from, to}
			if seen[key] {
				continue
			}
			seen[key] = true
			dependents[to] = append(dependents[to], from)
			indegree[from]++
		}
	}

	// Kahn over the condensation, always taking the ready component with
	// the smallest rank. Dependencies drain before dependents, so the
	// root's component is necessarily last.
	var ready []int
	for i := range components {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	p := &Plan{Root: g.Root}
	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			if rank[ready[i]] < rank[ready[best]] {
				best = i
			}
		}
		comp := ready[best]
		ready = append(ready[:best], ready[best+1:]...)

		members := components[comp]
		p.Modules = append(p.Modules, members...)
		if len(members) > 1 {
			// Two-pass convergence for genuine import cycles.
			p.Modules = append(p.Modules, members...)
			p.Cycles = append(p.Cycles, members)
		}

		for _, dependent := range dependents[comp] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	return p
}

// stronglyConnected runs Tarjan's algorithm over the forward-edge graph and
// returns the components with members sorted by discovery index.
func stronglyConnected(g *modgraph.Graph) [][]string {
	type frame struct {
		index   int
		lowlink int
		onStack bool
	}

	frames := make(map[string]*frame, len(g.Order))
	var stack []string
	var components [][]string
	next := 0

	var strongconnect func(v string)
	strongconnect = func(v string) {
		fv := &frame{index: next, lowlink: next}
		next++
		frames[v] = fv
		stack = append(stack, v)
		fv.onStack = true

		for _, w := range g.Nodes[v].Deps {
			fw, visited := frames[w]
			if !visited {
				strongconnect(w)
				if fl := frames[w].lowlink; fl < fv.lowlink {
					fv.lowlink = fl
				}
			} else if fw.onStack {
				if fw.index < fv.lowlink {
					fv.lowlink = fw.index
				}
			}
		}

		if fv.lowlink == fv.index {
			var members []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				frames[w].onStack = false
				members = append(members, w)
				if w == v {
					break
				}
			}
			sort.Slice(members, func(i, j int) bool {
				return g.Nodes[members[i]].Index < g.Nodes[members[j]].Index
			})
			components = append(components, members)
		}
	}

	for _, v := range g.Order {
		if _, visited := frames[v]; !visited {
			strongconnect(v)
		}
	}

	return components
}
