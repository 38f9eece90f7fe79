package plan

import (
	"reflect"
	"testing"

	"pyreload/internal/modgraph"
)

// testGraph builds a graph directly: order is discovery order, edges maps
// each module to its dependencies.
func testGraph(order []string, edges map[string][]string) *modgraph.Graph {
	g := modgraph.NewGraph(order[0], "")
	for _, dotted := range order {
		g.Add(modgraph.Identity{Dotted: dotted})
	}
	for dotted, deps := range edges {
		g.Nodes[dotted].Deps = deps
	}
	return g
}

func TestComputeSingleModule(t *testing.T) {
	p := Compute(testGraph([]string{"pkg.m"}, nil))

	if !reflect.DeepEqual(p.Modules, []string{"pkg.m"}) {
		t.Errorf("Modules = %v, want [pkg.m]", p.Modules)
	}
	if len(p.Cycles) != 0 {
		t.Errorf("Cycles = %v, want none", p.Cycles)
	}
}

func TestComputeLinearChain(t *testing.T) {
	// a depends on b depends on c: deepest dependency reloads first.
	g := testGraph([]string{"pkg.a", "pkg.b", "pkg.c"}, map[string][]string{
		"pkg.a": {"pkg.b"},
		"pkg.b": {"pkg.c"},
	})
	p := Compute(g)

	want := []string{"pkg.c", "pkg.b", "pkg.a"}
	if !reflect.DeepEqual(p.Modules, want) {
		t.Errorf("Modules = %v, want %v", p.Modules, want)
	}
}

func TestComputeDiamond(t *testing.T) {
	// a -> b, a -> c, b -> d, c -> d. Each module appears exactly once and
	// every dependency precedes its dependents.
	g := testGraph([]string{"pkg.a", "pkg.b", "pkg.c", "pkg.d"}, map[string][]string{
		"pkg.a": {"pkg.b", "pkg.c"},
		"pkg.b": {"pkg.d"},
		"pkg.c": {"pkg.d"},
	})
	p := Compute(g)

	if len(p.Modules) != 4 {
		t.Fatalf("Modules = %v, want 4 entries", p.Modules)
	}
	pos := positions(p.Modules)
	if pos["pkg.d"] != 0 {
		t.Errorf("pkg.d at %d, want first", pos["pkg.d"])
	}
	if pos["pkg.a"] != 3 {
		t.Errorf("root at %d, want last", pos["pkg.a"])
	}
	if pos["pkg.b"] > pos["pkg.c"] {
		t.Errorf("tie broken against discovery order: %v", p.Modules)
	}
}

func TestComputeTwoModuleCycle(t *testing.T) {
	// root -> a <-> b. Cycle members run twice, same relative order.
	g := testGraph([]string{"pkg.root", "pkg.a", "pkg.b"}, map[string][]string{
		"pkg.root": {"pkg.a"},
		"pkg.a":    {"pkg.b"},
		"pkg.b":    {"pkg.a"},
	})
	p := Compute(g)

	want := []string{"pkg.a", "pkg.b", "pkg.a", "pkg.b", "pkg.root"}
	if !reflect.DeepEqual(p.Modules, want) {
		t.Errorf("Modules = %v, want %v", p.Modules, want)
	}
	if len(p.Cycles) != 1 || !reflect.DeepEqual(p.Cycles[0], []string{"pkg.a", "pkg.b"}) {
		t.Errorf("Cycles = %v, want [[pkg.a pkg.b]]", p.Cycles)
	}
}

func TestComputeRootInsideCycle(t *testing.T) {
	// The root itself participates in the cycle; the whole component runs
	// twice and nothing follows it.
	g := testGraph([]string{"pkg.a", "pkg.b"}, map[string][]string{
		"pkg.a": {"pkg.b"},
		"pkg.b": {"pkg.a"},
	})
	p := Compute(g)

	want := []string{"pkg.a", "pkg.b", "pkg.a", "pkg.b"}
	if !reflect.DeepEqual(p.Modules, want) {
		t.Errorf("Modules = %v, want %v", p.Modules, want)
	}
}

func TestComputeCycleDependenciesFirst(t *testing.T) {
	// A leaf the cycle depends on precedes every cycle member occurrence;
	// a dependent of the cycle follows both passes.
	g := testGraph([]string{"pkg.root", "pkg.a", "pkg.b", "pkg.leaf"}, map[string][]string{
		"pkg.root": {"pkg.a"},
		"pkg.a":    {"pkg.b"},
		"pkg.b":    {"pkg.a", "pkg.leaf"},
	})
	p := Compute(g)

	want := []string{"pkg.leaf", "pkg.a", "pkg.b", "pkg.a", "pkg.b", "pkg.root"}
	if !reflect.DeepEqual(p.Modules, want) {
		t.Errorf("Modules = %v, want %v", p.Modules, want)
	}
}

func TestComputeIndependentBranchesStable(t *testing.T) {
	// Two independent dependency branches order by discovery index.
	g := testGraph([]string{"pkg.root", "pkg.b", "pkg.c"}, map[string][]string{
		"pkg.root": {"pkg.b", "pkg.c"},
	})

	p1 := Compute(g)
	p2 := Compute(g)

	want := []string{"pkg.b", "pkg.c", "pkg.root"}
	if !reflect.DeepEqual(p1.Modules, want) {
		t.Errorf("Modules = %v, want %v", p1.Modules, want)
	}
	if !reflect.DeepEqual(p1.Modules, p2.Modules) {
		t.Errorf("plan not deterministic: %v vs %v", p1.Modules, p2.Modules)
	}
}

func TestComputeThreeModuleCycle(t *testing.T) {
	g := testGraph([]string{"pkg.a", "pkg.b", "pkg.c"}, map[string][]string{
		"pkg.a": {"pkg.b"},
		"pkg.b": {"pkg.c"},
		"pkg.c": {"pkg.a"},
	})
	p := Compute(g)

	if p.Steps() != 6 {
		t.Fatalf("Steps = %d, want 6 (three members, two passes)", p.Steps())
	}
	first := p.Modules[:3]
	second := p.Modules[3:]
	if !reflect.DeepEqual(first, second) {
		t.Errorf("passes differ: %v vs %v", first, second)
	}
	if !reflect.DeepEqual(first, []string{"pkg.a", "pkg.b", "pkg.c"}) {
		t.Errorf("pass order = %v, want discovery order", first)
	}
}

func TestComputeRootAlwaysLast(t *testing.T) {
	g := testGraph([]string{"pkg.root", "pkg.a", "pkg.b", "pkg.c", "pkg.d"}, map[string][]string{
		"pkg.root": {"pkg.a", "pkg.c"},
		"pkg.a":    {"pkg.b"},
		"pkg.c":    {"pkg.d"},
		"pkg.d":    {"pkg.b"},
	})
	p := Compute(g)

	if last := p.Modules[len(p.Modules)-1]; last != "pkg.root" {
		t.Errorf("last module = %q, want pkg.root", last)
	}
}

func positions(modules []string) map[string]int {
	pos := make(map[string]int, len(modules))
	for i, m := range modules {
		if _, ok := pos[m]; !ok {
			pos[m] = i
		}
	}
	return pos
}
