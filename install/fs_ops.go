package install

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// limiter bounds the number of in-flight filesystem operations fanned out
// across a single Install call, independent of the file-copy worker pool.
type limiter struct {
	sem *semaphore.Weighted
}

func newLimiter() *limiter {
	return &limiter{sem: semaphore.NewWeighted(generalConcurrencyLimit)}
}

func (l *limiter) do(ctx context.Context, fn func() error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)
	return fn()
}

// run executes fn(item) for every item under the limiter, stopping at the
// first error.
func run[T any](ctx context.Context, l *limiter, items []T, fn func(T) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, item := range items {
		item := item
		g.Go(func() error {
			return l.do(ctx, func() error { return fn(item) })
		})
	}
	return g.Wait()
}

// collect is run's counterpart for fan-out steps that each produce a
// result, preserving input order in the returned slice.
func collect[T, R any](ctx context.Context, l *limiter, items []T, fn func(T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	g, ctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			return l.do(ctx, func() error {
				r, err := fn(item)
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// linkModules creates (or replaces) a symlink at linkPath pointing at
// target, making intermediate directories as needed.
func linkModules(linkPath, target string) error {
	if err := os.MkdirAll(filepath.Dir(linkPath), 0o755); err != nil {
		return errors.Wrapf(err, "creating parent of %s", linkPath)
	}
	if _, err := os.Lstat(linkPath); err == nil {
		if err := os.Remove(linkPath); err != nil {
			return errors.Wrapf(err, "removing existing entry at %s", linkPath)
		}
	}
	if err := os.Symlink(target, linkPath); err != nil {
		return errors.Wrapf(err, "linking %s to %s", linkPath, target)
	}
	return nil
}

// purgeNodeModules removes a nested node_modules directory so a
// keep-in-place package is re-virtualized instead of resolving against its
// own on-disk copy.
func purgeNodeModules(location string) error {
	nm := filepath.Join(location, "node_modules")
	if _, err := os.Stat(nm); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(nm); err != nil {
		return errors.Wrapf(err, "purging %s", nm)
	}
	return nil
}
