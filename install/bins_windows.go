// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package install

import "os"

// writeShim creates a .cmd wrapper that forwards to targetExecutable,
// matching how npm/yarn install bin shims on Windows.
func writeShim(shimPath, targetExecutable string) error {
	content := "@\"" + targetExecutable + "\" %*\r\n"
	return os.WriteFile(shimPath+".cmd", []byte(content), 0o644)
}
