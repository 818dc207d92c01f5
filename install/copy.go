// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package install

import (
	"context"
	"os"
	"path/filepath"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
	"github.com/termie/go-shutil"
	"golang.org/x/sync/errgroup"
)

// copyAction is a single file to copy, discovered by the scan phase and
// executed by the worker pool.
type copyAction struct {
	src, dest string
}

// scanNode creates dest and, if location exists, walks it into a flat list
// of pending copy actions (subdirectories are created eagerly here; only
// file copies are deferred). A nonexistent location is treated as empty.
// The caller is expected to pool scanNode's output across every node and
// run it through a single shared runCopyActions call, so overall copy
// concurrency is bounded once by file count rather than once per node.
func scanNode(location, dest string, exclude map[string]struct{}) ([]copyAction, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating destination %s", dest)
	}

	if _, err := os.Stat(location); os.IsNotExist(err) {
		return nil, nil
	}

	actions, err := scanCopyActions(location, dest, exclude)
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", location)
	}
	return actions, nil
}

// runCopyActions executes every action in actions through a single pool of
// workers sized min(workersLimit, len(actions)), mirroring the design's
// "one pool, sized to file count, partitioned across workers" copy engine.
func runCopyActions(ctx context.Context, actions []copyAction, workersLimit int) error {
	if len(actions) == 0 {
		return nil
	}

	workers := workersLimit
	if workers > len(actions) {
		workers = len(actions)
	}
	if workers < 1 {
		workers = 1
	}

	slices := partition(actions, workers)

	g, ctx := errgroup.WithContext(ctx)
	for _, slice := range slices {
		slice := slice
		g.Go(func() error {
			for _, a := range slice {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				if err := shutil.Copy(a.src, a.dest, false); err != nil {
					return errors.Wrapf(err, "copying %s to %s", a.src, a.dest)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func scanCopyActions(location, dest string, exclude map[string]struct{}) ([]copyAction, error) {
	var actions []copyAction

	err := godirwalk.Walk(location, &godirwalk.Options{
		Unsorted: false,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			rel, err := filepath.Rel(location, osPathname)
			if err != nil {
				return err
			}
			if rel == "." {
				return nil
			}
			if filepath.ToSlash(rel) == filepath.Base(rel) && !de.IsDir() {
				// top-level file entry; only files are excludable, not
				// directories, so a top-level dir is always copied.
				if _, excluded := exclude[de.Name()]; excluded {
					return nil
				}
			}

			destPath := filepath.Join(dest, rel)
			if de.IsDir() {
				return os.MkdirAll(destPath, 0o755)
			}
			actions = append(actions, copyAction{src: osPathname, dest: destPath})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return actions, nil
}

func partition(actions []copyAction, workers int) [][]copyAction {
	out := make([][]copyAction, workers)
	for i, a := range actions {
		w := i % workers
		out[w] = append(out[w], a)
	}
	return out
}
