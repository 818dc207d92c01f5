package graph

import "sort"

// Graph is the mutable, in-memory dependency graph. It is built by a single
// resolver pass and is not safe for concurrent use: the resolver that owns
// it is expected to be single-threaded, per its own design.
type Graph struct {
	nodes   []*InternalNode
	forward map[int]map[int]struct{}
	reverse map[int]map[int]struct{}
	pending map[int][]PendingPeerLink

	base  baseTrie
	names nameTrie
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		forward: make(map[int]map[int]struct{}),
		reverse: make(map[int]map[int]struct{}),
		pending: make(map[int][]PendingPeerLink),
		base:    newBaseTrie(),
		names:   newNameTrie(),
	}
}

// AddNode creates the base node (empty PeerDeps) for (name, version) and
// returns its id. A second call for an already-present (name, version)
// returns the existing base node's id rather than creating a colliding
// second base node; the spec leaves this case undefined, and returning the
// existing id is what preserves the "at most one base node" invariant.
func (g *Graph) AddNode(name, version string, isLocal bool) int {
	if id, ok := g.base.Get(name, version); ok {
		return id
	}

	id := len(g.nodes)
	n := &InternalNode{
		ID:       id,
		Name:     name,
		Version:  version,
		IsLocal:  isLocal,
		PeerDeps: map[string]int{},
	}
	g.nodes = append(g.nodes, n)
	g.forward[id] = map[int]struct{}{}
	g.reverse[id] = map[int]struct{}{}
	g.base.Insert(name, version, id)
	g.names.Add(name, id)
	return id
}

// GetBaseNode returns the unique node with empty PeerDeps for (name,
// version), if any.
func (g *Graph) GetBaseNode(name, version string) (int, bool) {
	return g.base.Get(name, version)
}

// Node returns the internal node for id. It panics if id is out of range,
// mirroring the arena-with-integer-ids model: callers never hold an id for
// a node that hasn't been created.
func (g *Graph) Node(id int) *InternalNode {
	return g.nodes[id]
}

// Len returns the number of nodes ever created (including virtualized
// duplicates).
func (g *Graph) Len() int {
	return len(g.nodes)
}

// AddLink performs an idempotent set insertion of source->target into both
// the forward and reverse indices.
func (g *Graph) AddLink(source, target int) {
	if g.forward[source] == nil {
		g.forward[source] = map[int]struct{}{}
	}
	if g.reverse[target] == nil {
		g.reverse[target] = map[int]struct{}{}
	}
	g.forward[source][target] = struct{}{}
	g.reverse[target][source] = struct{}{}
}

// HasLink reports whether source->target is currently present.
func (g *Graph) HasLink(source, target int) bool {
	_, ok := g.forward[source][target]
	return ok
}

// ForwardChildren returns the targets of source's outbound links, sorted by
// id for deterministic iteration.
func (g *Graph) ForwardChildren(source int) []int {
	return sortedKeys(g.forward[source])
}

// ReverseParents returns the sources of target's inbound links, sorted by
// id for deterministic iteration.
func (g *Graph) ReverseParents(target int) []int {
	return sortedKeys(g.reverse[target])
}

func sortedKeys(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// AddPeerLink appends an unresolved peer dependency to source's pending
// list.
func (g *Graph) AddPeerLink(source int, targetName, targetRange string, optional bool) {
	g.pending[source] = append(g.pending[source], PendingPeerLink{
		Source:      source,
		TargetName:  targetName,
		TargetRange: targetRange,
		Optional:    optional,
	})
}

// HasPeerLink reports whether id has any unresolved peer dependencies.
func (g *Graph) HasPeerLink(id int) bool {
	return len(g.pending[id]) > 0
}

// PendingOf returns a copy of id's pending peer-link list.
func (g *Graph) PendingOf(id int) []PendingPeerLink {
	src := g.pending[id]
	out := make([]PendingPeerLink, len(src))
	copy(out, src)
	return out
}

// PeerLinks enumerates every (parent, source, targetName, targetRange,
// optional) tuple where source has pending peer links and parent is a
// reverse-neighbor of source. Peer links belonging to local nodes are
// excluded: locals never propagate peers upward.
func (g *Graph) PeerLinks() []EnrichedPeerLink {
	var out []EnrichedPeerLink
	for _, n := range g.nodes {
		if n.IsLocal {
			continue
		}
		pending := g.pending[n.ID]
		if len(pending) == 0 {
			continue
		}
		for _, parent := range g.ReverseParents(n.ID) {
			for _, p := range pending {
				out = append(out, EnrichedPeerLink{Parent: parent, PendingPeerLink: p})
			}
		}
	}
	return out
}

// FindVirtual returns an existing node sharing source's (name, version)
// whose PeerDeps equals source's PeerDeps plus the fulfilled entry, if one
// already exists. This is the dedup step that keeps peer-dep virtualization
// from blowing up combinatorially.
func (g *Graph) FindVirtual(source int, fulfilledName string, fulfilledTarget int) (int, bool) {
	src := g.nodes[source]
	want := make(map[string]int, len(src.PeerDeps)+1)
	for k, v := range src.PeerDeps {
		want[k] = v
	}
	want[fulfilledName] = fulfilledTarget

	for _, candidate := range g.names.Get(src.Name) {
		n := g.nodes[candidate]
		if n.Version != src.Version {
			continue
		}
		if peerDepsEqual(n.PeerDeps, want) {
			return candidate, true
		}
	}
	return 0, false
}

func peerDepsEqual(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// CreateVirtual clones source into a new node whose PeerDeps is augmented
// with fulfilledName -> fulfilledTarget. All of source's outbound links are
// duplicated onto the new node, a new link to fulfilledTarget is added, and
// source's pending peer links are copied over minus any entry for
// fulfilledName (that peer is now resolved).
func (g *Graph) CreateVirtual(source int, fulfilledName string, fulfilledTarget int) int {
	src := g.nodes[source]

	peerDeps := make(map[string]int, len(src.PeerDeps)+1)
	for k, v := range src.PeerDeps {
		peerDeps[k] = v
	}
	peerDeps[fulfilledName] = fulfilledTarget

	id := len(g.nodes)
	n := &InternalNode{
		ID:       id,
		Name:     src.Name,
		Version:  src.Version,
		IsLocal:  src.IsLocal,
		PeerDeps: peerDeps,
	}
	g.nodes = append(g.nodes, n)
	g.forward[id] = map[int]struct{}{}
	g.reverse[id] = map[int]struct{}{}
	g.names.Add(src.Name, id)
	// Deliberately not registered in g.base: a node with non-empty PeerDeps
	// is never a base node.

	for _, target := range g.ForwardChildren(source) {
		g.AddLink(id, target)
	}
	g.AddLink(id, fulfilledTarget)

	for _, p := range g.pending[source] {
		if p.TargetName == fulfilledName {
			continue
		}
		g.pending[id] = append(g.pending[id], PendingPeerLink{
			Source:      id,
			TargetName:  p.TargetName,
			TargetRange: p.TargetRange,
			Optional:    p.Optional,
		})
	}

	return id
}

// Rewire removes the link parent->oldChild and inserts parent->newChild.
func (g *Graph) Rewire(parent, oldChild, newChild int) {
	if g.forward[parent] != nil {
		delete(g.forward[parent], oldChild)
	}
	if g.reverse[oldChild] != nil {
		delete(g.reverse[oldChild], parent)
	}
	g.AddLink(parent, newChild)
}
