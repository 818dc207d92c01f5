package graph

import "sort"

// Project performs reachability from local roots, drops unreachable nodes
// and their incident links, densely renumbers the survivors in (name,
// version) lexicographic order, and sorts links by (source, target).
func (g *Graph) Project() PublicGraph {
	reachable := g.reachableFromLocals()

	kept := make([]*InternalNode, 0, len(reachable))
	for id := range reachable {
		kept = append(kept, g.nodes[id])
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Name != kept[j].Name {
			return kept[i].Name < kept[j].Name
		}
		return kept[i].Version < kept[j].Version
	})

	remap := make(map[int]int, len(kept))
	nodes := make([]PublicNode, len(kept))
	for newID, n := range kept {
		remap[n.ID] = newID
		nodes[newID] = PublicNode{ID: newID, Name: n.Name, Version: n.Version}
	}

	var links []PublicLink
	for oldSource := range reachable {
		for target := range g.forward[oldSource] {
			if _, ok := reachable[target]; !ok {
				continue
			}
			links = append(links, PublicLink{
				SourceID: remap[oldSource],
				TargetID: remap[target],
			})
		}
	}
	sort.Slice(links, func(i, j int) bool {
		if links[i].SourceID != links[j].SourceID {
			return links[i].SourceID < links[j].SourceID
		}
		return links[i].TargetID < links[j].TargetID
	})

	return PublicGraph{Nodes: nodes, Links: links}
}

func (g *Graph) reachableFromLocals() map[int]struct{} {
	reachable := make(map[int]struct{})
	var stack []int
	for _, n := range g.nodes {
		if n.IsLocal {
			stack = append(stack, n.ID)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := reachable[id]; seen {
			continue
		}
		reachable[id] = struct{}{}
		for target := range g.forward[id] {
			if _, seen := reachable[target]; !seen {
				stack = append(stack, target)
			}
		}
	}
	return reachable
}
