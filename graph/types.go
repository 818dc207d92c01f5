// Package graph implements the mutable, virtualizing dependency graph that
// the resolver builds and projects. A Graph is created empty, mutated only
// during a single resolve pass, and then projected once into the public
// shape described by PublicGraph.
package graph

// InternalNode is a single node in the mutable graph. Two nodes may share
// the same (Name, Version) but differ in PeerDeps; such nodes are "virtual"
// duplicates of one another. The node with an empty PeerDeps map is the
// "base" node for that (Name, Version).
type InternalNode struct {
	ID       int
	Name     string
	Version  string
	IsLocal  bool
	PeerDeps map[string]int // peer name -> resolved provider node id
}

// InternalLink is a directed edge from Source to Target. Links are stored in
// a set, so inserting the same link twice is a no-op.
type InternalLink struct {
	Source int
	Target int
}

// PendingPeerLink is an unresolved peer dependency attached to Source: it
// says Source wants something named TargetName satisfying TargetRange,
// optionally.
type PendingPeerLink struct {
	Source      int
	TargetName  string
	TargetRange string
	Optional    bool
}

// EnrichedPeerLink is a PendingPeerLink together with the parent node that
// would propagate it upward, as produced by Graph.PeerLinks.
type EnrichedPeerLink struct {
	Parent int
	PendingPeerLink
}

// PublicNode is a node in the projected, public graph shape.
type PublicNode struct {
	ID      int
	Name    string
	Version string
}

// PublicLink is an edge in the projected, public graph shape.
type PublicLink struct {
	SourceID int
	TargetID int
}

// PublicGraph is the resolver's output: a dense, lexicographically sorted,
// reachability-pruned view of the internal graph.
type PublicGraph struct {
	Nodes []PublicNode
	Links []PublicLink
}
