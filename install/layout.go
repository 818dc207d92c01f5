package install

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Install materializes g under store: every non-keep-in-place node is
// copied into its own directory, link targets are exposed under the
// source's node_modules by name, target bins are shimmed into the
// source's node_modules/.bin, and each node's lifecycle scripts run once
// the node itself and everything it depends on are fully laid out.
//
// A keep-in-place node is installed at its existing Location instead of
// being copied, with its own node_modules purged first so virtualized
// dependencies aren't shadowed by a stale local install.
func Install(ctx context.Context, g Graph, store string, opts Options) error {
	if err := validate(g, store, opts); err != nil {
		return err
	}

	lock, err := acquireStoreLock(store)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := lock.Release(); rerr != nil {
			opts.logf("install: releasing store lock: %v", rerr)
		}
	}()

	byKey := make(map[string]Node, len(g.Nodes))
	destinations := make(map[string]string, len(g.Nodes))
	isRoot := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		byKey[n.Key] = n
		isRoot[n.Key] = n.KeepInPlace
		if n.KeepInPlace {
			destinations[n.Key] = n.Location
		} else {
			destinations[n.Key] = filepath.Join(store, flattenKey(n.Key))
		}
	}

	lim := newLimiter()

	// Scanning (and, for keep-in-place nodes, purging) happens per node
	// under the general concurrency limiter, but the file copies themselves
	// are collected into one action list and run through a single shared
	// pool sized to the total file count, not one pool per node.
	perNode, err := collect(ctx, lim, g.Nodes, func(n Node) ([]copyAction, error) {
		if n.KeepInPlace {
			return nil, purgeNodeModules(n.Location)
		}
		return scanNode(n.Location, destinations[n.Key], opts.FilesToExclude)
	})
	if err != nil {
		return errors.Wrap(err, "laying out package content")
	}
	var actions []copyAction
	for _, a := range perNode {
		actions = append(actions, a...)
	}
	if err := runCopyActions(ctx, actions, opts.workersLimit()); err != nil {
		return errors.Wrap(err, "copying package content")
	}

	if err := run(ctx, lim, g.Links, func(l Link) error {
		target := byKey[l.Target]
		linkPath := filepath.Join(destinations[l.Source], "node_modules", target.Name)
		if err := linkModules(linkPath, destinations[l.Target]); err != nil {
			return err
		}
		for bin, relPath := range target.Bins {
			shimPath := filepath.Join(destinations[l.Source], "node_modules", ".bin", bin)
			if err := installBin(shimPath, filepath.Join(destinations[l.Target], relPath)); err != nil {
				return errors.Wrapf(err, "installing bin %q for %s", bin, l.Source)
			}
		}
		return nil
	}); err != nil {
		return errors.Wrap(err, "linking dependencies")
	}

	if err := run(ctx, lim, selfLinkNodes(g, byKey), func(n Node) error {
		linkPath := filepath.Join(destinations[n.Key], "node_modules", n.Name)
		return linkModules(linkPath, destinations[n.Key])
	}); err != nil {
		return errors.Wrap(err, "linking package self-references")
	}

	if err := runScripts(ctx, g, destinations, isRoot, opts); err != nil {
		return errors.Wrap(err, "running lifecycle scripts")
	}

	return nil
}

// selfLinkNodes returns every node that needs an implicit self-link, i.e.
// dest/node_modules/<own name> -> dest, because no explicit link from that
// node already exposes a target under its own name.
func selfLinkNodes(g Graph, byKey map[string]Node) []Node {
	hasOwnNameLink := make(map[string]bool, len(g.Nodes))
	for _, l := range g.Links {
		if byKey[l.Target].Name == byKey[l.Source].Name {
			hasOwnNameLink[l.Source] = true
		}
	}

	var out []Node
	for _, n := range g.Nodes {
		if !hasOwnNameLink[n.Key] {
			out = append(out, n)
		}
	}
	return out
}

// flattenKey turns a node key into a single path segment so scoped names
// (which contain a slash) don't create nested directories inside store.
func flattenKey(key string) string {
	return strings.ReplaceAll(key, "/", "+")
}
