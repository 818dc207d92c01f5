//go:build !windows

package install

import "os"

// writeShim creates a POSIX shell wrapper that execs targetExecutable with
// the shim's own arguments, matching how real package managers install
// node_modules/.bin entries.
func writeShim(shimPath, targetExecutable string) error {
	content := "#!/bin/sh\nexec \"" + targetExecutable + "\" \"$@\"\n"
	return os.WriteFile(shimPath, []byte(content), 0o755)
}
