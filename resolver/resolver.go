package resolver

import (
	"fmt"
	"log"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/midgard-pm/core/graph"
)

// Options controls a single resolve pass.
type Options struct {
	// FailOnMissingPeer makes an unresolvable, non-optional peer dependency
	// a fatal error. Defaults to true in DefaultOptions; the zero value is
	// "don't fail", so callers that build Options by hand must opt in
	// explicitly, matching the spec's "default true" framed as a knob the
	// caller can turn off.
	FailOnMissingPeer bool

	// Logger receives peer-dependency warnings (range mismatches, abandoned
	// watchdog entries, unmet optional peers, and unmet required peers when
	// FailOnMissingPeer is off). A nil Logger discards them.
	Logger *log.Logger
}

// DefaultOptions returns the spec's documented defaults.
func DefaultOptions() Options {
	return Options{FailOnMissingPeer: true}
}

func (o Options) logf(format string, args ...interface{}) {
	if o.Logger == nil {
		return
	}
	o.Logger.Printf(format, args...)
}

// nameVersion identifies a manifest's base node by its declared name and
// version, the key Resolve uses to find the node for a resolved dependency.
type nameVersion struct{ name, version string }

// Resolve builds the dependency graph for manifests under resolutions and
// returns its projection. It performs no I/O and runs single-threaded.
func Resolve(manifests []PackageManifest, resolutions ResolutionMap, opts Options) (graph.PublicGraph, error) {
	g := graph.New()

	nodeOf := make(map[nameVersion]int, len(manifests))

	// Phase 1: base nodes.
	for _, m := range manifests {
		id := g.AddNode(m.Name, m.Version, m.IsLocal)
		nodeOf[nameVersion{m.Name, m.Version}] = id
	}

	// Phase 2: regular dependencies.
	for _, m := range manifests {
		source := nodeOf[nameVersion{m.Name, m.Version}]
		for name, rng := range m.Dependencies {
			version, err := requireResolved(resolutions, m, name, rng)
			if err != nil {
				return graph.PublicGraph{}, err
			}
			targetID, err := requireManifestNode(nodeOf, m, name, version, rng)
			if err != nil {
				return graph.PublicGraph{}, err
			}
			g.AddLink(source, targetID)
		}
	}

	// Phase 3: dev dependencies, local manifests only.
	for _, m := range manifests {
		if !m.IsLocal {
			continue
		}
		source := nodeOf[nameVersion{m.Name, m.Version}]
		for name, rng := range m.DevDependencies {
			version, err := requireResolved(resolutions, m, name, rng)
			if err != nil {
				return graph.PublicGraph{}, err
			}
			targetID, err := requireManifestNode(nodeOf, m, name, version, rng)
			if err != nil {
				return graph.PublicGraph{}, err
			}
			g.AddLink(source, targetID)
		}
	}

	// Phase 4: optional dependencies. A missing resolution entry is still
	// fatal (same lookup as phase 2); a missing target *node* is silently
	// skipped instead.
	for _, m := range manifests {
		source := nodeOf[nameVersion{m.Name, m.Version}]
		for name, rng := range m.OptionalDependencies {
			version, err := requireResolved(resolutions, m, name, rng)
			if err != nil {
				return graph.PublicGraph{}, err
			}
			targetID, ok := nodeOf[nameVersion{name, version}]
			if !ok {
				continue
			}
			g.AddLink(source, targetID)
		}
	}

	// Phase 5: combined peer-dependency map, registered as pending links.
	for _, m := range manifests {
		source := nodeOf[nameVersion{m.Name, m.Version}]
		combined := make(map[string]string, len(m.PeerDependenciesMeta)+len(m.PeerDependencies))
		for name := range m.PeerDependenciesMeta {
			combined[name] = "*"
		}
		for name, rng := range m.PeerDependencies {
			combined[name] = rng
		}
		for name, rng := range combined {
			optional := m.PeerDependenciesMeta[name].Optional
			g.AddPeerLink(source, name, rng, optional)
		}
	}

	if err := resolvePeers(g, opts); err != nil {
		return graph.PublicGraph{}, err
	}

	return g.Project(), nil
}

// requireResolved looks up the concrete version for (name, rng) in the
// resolution map; a missing entry is always fatal, regardless of which
// dependency kind is asking.
func requireResolved(resolutions ResolutionMap, m PackageManifest, name, rng string) (string, error) {
	version, ok := resolutions.lookup(name, rng)
	if !ok {
		return "", errors.WithStack(&missingResolutionError{
			sourceName: m.Name, sourceVersion: m.Version,
			depName: name, depRange: rng,
		})
	}
	return version, nil
}

// requireManifestNode looks up the base node created for a resolved
// (name, version) pair. Unlike phase 4's optional dependencies, a regular or
// dev dependency that resolves to a version with no corresponding manifest
// is a fatal inconsistency, not something to skip.
func requireManifestNode(nodeOf map[nameVersion]int, m PackageManifest, name, version, rng string) (int, error) {
	id, ok := nodeOf[nameVersion{name, version}]
	if !ok {
		return 0, errors.WithStack(&missingManifestError{
			sourceName: m.Name, sourceVersion: m.Version,
			depName: name, depVersion: version, depRange: rng,
		})
	}
	return id, nil
}

type peerResolution int

const (
	peerIgnored peerResolution = iota
	peerRetryLater
	peerFailed
	peerConcrete
)

// resolvePeers runs the fixed-point loop over all pending peer links.
func resolvePeers(g *graph.Graph, opts Options) error {
	queue := g.PeerLinks()
	watchdog := len(queue) + 1

	for len(queue) > 0 && watchdog > 0 {
		item := queue[0]
		queue = queue[1:]

		if !g.HasLink(item.Parent, item.Source) {
			watchdog = len(queue) + 1
			continue
		}

		kind, providerID, err := resolveProvider(g, item, opts)
		if err != nil {
			return err
		}

		switch kind {
		case peerIgnored, peerFailed:
			continue
		case peerRetryLater:
			queue = append(queue, item)
			watchdog--
			continue
		case peerConcrete:
			warnIfRangeMismatch(g, item, providerID, opts)

			chosen, existed := g.FindVirtual(item.Source, item.TargetName, providerID)
			if !existed {
				chosen = g.CreateVirtual(item.Source, item.TargetName, providerID)
				for _, p := range g.PendingOf(chosen) {
					queue = append(queue, graph.EnrichedPeerLink{
						Parent:          item.Parent,
						PendingPeerLink: graph.PendingPeerLink{Source: chosen, TargetName: p.TargetName, TargetRange: p.TargetRange, Optional: p.Optional},
					})
				}
				for _, child := range g.ForwardChildren(chosen) {
					for _, p := range g.PendingOf(child) {
						queue = append(queue, graph.EnrichedPeerLink{
							Parent:          chosen,
							PendingPeerLink: graph.PendingPeerLink{Source: child, TargetName: p.TargetName, TargetRange: p.TargetRange, Optional: p.Optional},
						})
					}
				}
			}

			g.Rewire(item.Parent, item.Source, chosen)
			watchdog = len(queue) + 1
		}
	}

	if watchdog == 0 {
		for _, item := range queue {
			opts.logf("[WARNING] unmet peer dependency %q of %s (parent: %s) (abandoned after watchdog expiry)",
				item.TargetName, nodeLabel(g, item.Source), nodeLabel(g, item.Parent))
		}
	}

	return nil
}

// resolveProvider implements the provider-search order from the design:
// a regular sibling wins, then a match among the parent's own children (or
// the parent itself), then "ignored" for optional misses, then a retry if
// the parent itself is still mid-virtualization, then a hard failure.
func resolveProvider(g *graph.Graph, item graph.EnrichedPeerLink, opts Options) (peerResolution, int, error) {
	src := g.Node(item.Source)
	parent := g.Node(item.Parent)

	for _, child := range g.ForwardChildren(item.Source) {
		if g.Node(child).Name == item.TargetName {
			return peerIgnored, 0, nil
		}
	}

	candidates := append([]int{}, g.ForwardChildren(item.Parent)...)
	candidates = append(candidates, item.Parent)
	for _, c := range candidates {
		if g.Node(c).Name == item.TargetName {
			return peerConcrete, c, nil
		}
	}

	if item.Optional {
		opts.logf("[WARNING] unmet optional peer dependency %q of %s (parent: %s)",
			item.TargetName, nodeLabel(g, item.Source), nodeLabel(g, item.Parent))
		return peerIgnored, 0, nil
	}

	if g.HasPeerLink(item.Parent) {
		return peerRetryLater, 0, nil
	}

	if opts.FailOnMissingPeer {
		return peerFailed, 0, errors.WithStack(&unmetPeerError{
			peerName:      item.TargetName,
			sourceName:    src.Name, sourceVersion: src.Version,
			parentName: parent.Name, parentVersion: parent.Version,
		})
	}
	opts.logf("[WARNING] unmet peer dependency %q of %s (parent: %s)",
		item.TargetName, nodeLabel(g, item.Source), nodeLabel(g, item.Parent))
	return peerFailed, 0, nil
}

func warnIfRangeMismatch(g *graph.Graph, item graph.EnrichedPeerLink, providerID int, opts Options) {
	if item.TargetRange == "" || item.TargetRange == "*" {
		return
	}
	constraint, err := semver.NewConstraint(item.TargetRange)
	if err != nil {
		return
	}
	provider := g.Node(providerID)
	version, err := semver.NewVersion(provider.Version)
	if err != nil {
		return
	}
	if constraint.Check(version) {
		return
	}
	src := g.Node(item.Source)
	parent := g.Node(item.Parent)
	opts.logf("[WARNING] unmatching peer dependency, %s in %s@%s (parent: %s@%s) was resolved to version %s which does not satisfy the given range: %s",
		item.TargetName, src.Name, src.Version, parent.Name, parent.Version, provider.Version, item.TargetRange)
}

func nodeLabel(g *graph.Graph, id int) string {
	n := g.Node(id)
	return fmt.Sprintf("%s@%s", n.Name, n.Version)
}
