// Package install validates a dependency graph against a set of on-disk
// package locations, materializes it under a store directory with symlinks
// and bin shims, and runs lifecycle scripts in dependency order.
package install

import (
	"log"
	"os"
	"runtime"
	"strconv"
)

// Node is one package to be installed: a caller-supplied unique Key, its
// package Name, the absolute Location of its already-fetched content, and
// the bin scripts it exposes.
type Node struct {
	Key         string
	Name        string
	Location    string
	KeepInPlace bool
	Bins        map[string]string // bin name -> path relative to Location
}

// Link is a directed dependency edge between two node keys.
type Link struct {
	Source string
	Target string
}

// Graph is the installer's input shape: nodes keyed by a caller-supplied
// identifier, plus the links between them.
type Graph struct {
	Nodes []Node
	Links []Link
}

// Options configures a single Install call.
type Options struct {
	// FilesToExclude holds basenames of top-level files to skip when
	// copying a node's Location into the store. A top-level directory whose
	// name is in the set is still copied.
	FilesToExclude map[string]struct{}

	// IgnoreBinConflicts, when true, allows two different link targets
	// under one source to expose the same bin name; an unspecified shim
	// wins. When false (the default), such a conflict is a validation
	// error.
	IgnoreBinConflicts bool

	// WorkersLimit caps the file-copy worker pool. Zero means "read
	// WORKERS_LIMIT from the environment, falling back to NumCPU".
	WorkersLimit int

	// Logger receives non-fatal diagnostics. A nil Logger discards them.
	Logger *log.Logger

	// ScriptRunner executes a package's lifecycle script. A nil value uses
	// defaultScriptRunner.
	ScriptRunner ScriptRunner
}

func (o Options) logf(format string, args ...interface{}) {
	if o.Logger == nil {
		return
	}
	o.Logger.Printf(format, args...)
}

func (o Options) workersLimit() int {
	if o.WorkersLimit > 0 {
		return o.WorkersLimit
	}
	if v, ok := os.LookupEnv("WORKERS_LIMIT"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}

func (o Options) scriptRunner() ScriptRunner {
	if o.ScriptRunner != nil {
		return o.ScriptRunner
	}
	return defaultScriptRunner{}
}

// generalConcurrencyLimit bounds the number of in-flight mkdir/symlink/shim
// operations, per the design's "general concurrency limiter ~300".
const generalConcurrencyLimit = 300
