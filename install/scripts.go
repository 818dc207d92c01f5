package install

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/midgard-pm/core/scc"
)

// ScriptRunner executes a package's lifecycle command. The exact means of
// invocation is an external collaborator per the design; this interface is
// the seam a caller can replace, with defaultScriptRunner providing a real
// implementation so the package is usable standalone.
type ScriptRunner interface {
	Run(ctx context.Context, destination, command string) error
}

type packageJSON struct {
	Scripts map[string]string `json:"scripts"`
}

type defaultScriptRunner struct{}

func (defaultScriptRunner) Run(ctx context.Context, destination, command string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}
	cmd.Dir = destination
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running %q in %s", command, destination)
	}
	return nil
}

// runScripts walks the SCC condensation of the final on-disk graph (self
// links included) and runs each package's install/postinstall scripts,
// never starting a component before every component it depends on has
// finished. Concurrency within a component is unordered.
func runScripts(ctx context.Context, g Graph, destinations map[string]string, isRoot map[string]bool, opts Options) error {
	nodeByKey := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeByKey[n.Key] = n
	}

	edges := make(map[string][]string, len(g.Nodes))
	for _, n := range g.Nodes {
		edges[n.Key] = append(edges[n.Key], n.Key) // self-link, per the design
	}
	for _, l := range g.Links {
		edges[l.Source] = append(edges[l.Source], l.Target)
	}

	keys := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		keys = append(keys, n.Key)
	}

	condensed := scc.Condense(keys, edges, func(k string) bool { return isRoot[k] })

	done := make(map[int]chan struct{}, len(condensed.Components))
	for id := range condensed.Components {
		done[id] = make(chan struct{})
	}

	g2, ctx := errgroup.WithContext(ctx)
	for id, comp := range condensed.Components {
		id, comp := id, comp
		g2.Go(func() error {
			defer close(done[id])
			for _, depID := range comp.Dependencies {
				select {
				case <-done[depID]:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			members, memberCtx := errgroup.WithContext(ctx)
			for _, key := range comp.Keys {
				key := key
				members.Go(func() error {
					return runNodeScripts(memberCtx, nodeByKey[key], destinations[key], opts)
				})
			}
			return members.Wait()
		})
	}
	return g2.Wait()
}

// runNodeScripts runs a single package's install then postinstall script,
// in that order, when package.json declares them and a destination exists.
func runNodeScripts(ctx context.Context, n Node, destination string, opts Options) error {
	manifestPath := filepath.Join(destination, "package.json")
	data, err := os.ReadFile(manifestPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading %s", manifestPath)
	}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return errors.Wrapf(err, "parsing %s", manifestPath)
	}

	runner := opts.scriptRunner()
	for _, scriptName := range []string{"install", "postinstall"} {
		command, ok := pkg.Scripts[scriptName]
		if !ok || command == "" {
			continue
		}
		if err := runner.Run(ctx, destination, command); err != nil {
			return errors.Wrapf(err, "%s script for %s", scriptName, n.Key)
		}
	}
	return nil
}
