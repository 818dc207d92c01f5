package install

import (
	"os"
	"path/filepath"
)

// installBin writes a shim at shimPath that invokes targetExecutable, if
// that executable actually exists. A missing bin path is skipped silently,
// per the design.
func installBin(shimPath, targetExecutable string) error {
	if fi, err := os.Stat(targetExecutable); err != nil || fi.IsDir() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(shimPath), 0o755); err != nil {
		return err
	}
	return writeShim(shimPath, targetExecutable)
}
