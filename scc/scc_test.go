package scc

import "testing"

func TestCondenseSimpleDAG(t *testing.T) {
	nodes := []string{"A", "B", "C"}
	edges := map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {},
	}
	res := Condense(nodes, edges, func(k string) bool { return k == "A" })

	if len(res.Components) != 3 {
		t.Fatalf("expected 3 singleton components, got %d: %+v", len(res.Components), res.Components)
	}
	if len(res.RootComponents) != 1 {
		t.Fatalf("expected exactly one root component, got %+v", res.RootComponents)
	}
}

func TestCondenseCycleAndSelfLoop(t *testing.T) {
	nodes := []string{"A", "B", "C"}
	edges := map[string][]string{
		"A": {"A", "B"}, // self-loop plus edge into the cycle
		"B": {"C"},
		"C": {"B"},
	}
	res := Condense(nodes, edges, func(k string) bool { return k == "A" })

	if len(res.Components) != 2 {
		t.Fatalf("expected A alone and {B,C} merged, got %d: %+v", len(res.Components), res.Components)
	}

	var aComp, bcComp *Component[string]
	for id := range res.Components {
		c := res.Components[id]
		if len(c.Keys) == 1 && c.Keys[0] == "A" {
			cc := c
			aComp = &cc
		}
		if len(c.Keys) == 2 {
			cc := c
			bcComp = &cc
		}
	}
	if aComp == nil || bcComp == nil {
		t.Fatalf("expected to find both components, got %+v", res.Components)
	}
	if len(aComp.Dependencies) != 1 {
		t.Fatalf("expected A's component to depend on exactly the {B,C} component (self-loop excluded), got %+v", aComp.Dependencies)
	}
	if len(bcComp.Dependencies) != 0 {
		t.Fatalf("expected {B,C} to have no outbound component dependencies, got %+v", bcComp.Dependencies)
	}
}

func TestCondenseEveryNodeInExactlyOneComponent(t *testing.T) {
	nodes := []string{"A", "B", "C", "D"}
	edges := map[string][]string{
		"A": {"B", "C"},
		"B": {"D"},
		"C": {"D"},
		"D": {},
	}
	res := Condense(nodes, edges, func(k string) bool { return k == "A" })

	seen := map[string]int{}
	for id, c := range res.Components {
		for _, k := range c.Keys {
			seen[k] = id
		}
	}
	if len(seen) != len(nodes) {
		t.Fatalf("expected every node represented exactly once, got %+v", seen)
	}
}
