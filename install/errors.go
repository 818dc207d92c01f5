package install

import "fmt"

// Each of these mirrors the teacher's errors.go pattern: a small struct
// whose Error() method renders fixed, caller-matched text. Unlike the
// teacher's solver errors, these strings are a stable public contract, so
// no part of them may drift from the literal text given to callers.

type errLocationNotAbsolute struct{ path string }

func (e *errLocationNotAbsolute) Error() string {
	return fmt.Sprintf("Location is not an absolute path: %q", e.path)
}

type errLocationNotDir struct{ path string }

func (e *errLocationNotDir) Error() string {
	return fmt.Sprintf("Location is not a directory: %q", e.path)
}

type errLocationNotExist struct{ path string }

func (e *errLocationNotExist) Error() string {
	return fmt.Sprintf("Location does not exist: %q", e.path)
}

type errLocationNotEmpty struct{ path string }

func (e *errLocationNotEmpty) Error() string {
	return fmt.Sprintf("Location is not an empty directory: %q", e.path)
}

type errDuplicateKey struct{ key string }

func (e *errDuplicateKey) Error() string {
	return fmt.Sprintf("Multiple nodes have the following key: %q", e.key)
}

type errNodeLocationNotAbsolute struct{ path string }

func (e *errNodeLocationNotAbsolute) Error() string {
	return fmt.Sprintf("Location of a node is not absolute: %q", e.path)
}

type errNodeLocationNotDir struct{ path string }

func (e *errNodeLocationNotDir) Error() string {
	return fmt.Sprintf("Location of a node is not a directory: %q", e.path)
}

type errInvalidPackageName struct{ name string }

func (e *errInvalidPackageName) Error() string {
	return fmt.Sprintf("Package name invalid: %q", e.name)
}

type errInvalidLinkSource struct{ key string }

func (e *errInvalidLinkSource) Error() string {
	return fmt.Sprintf("Invalid link source: %q", e.key)
}

type errInvalidLinkTarget struct{ key string }

func (e *errInvalidLinkTarget) Error() string {
	return fmt.Sprintf("Invalid link target: %q", e.key)
}

type errDuplicateDepName struct{ source, name string }

func (e *errDuplicateDepName) Error() string {
	return fmt.Sprintf("Package %q depends on multiple packages called %q", e.source, e.name)
}

type errInvalidBinName struct{ key, bin string }

func (e *errInvalidBinName) Error() string {
	return fmt.Sprintf("Package %q exposes a bin script with an invalid name: %q", e.key, e.bin)
}

type errBinConflict struct {
	bin, source string
}

func (e *errBinConflict) Error() string {
	return fmt.Sprintf("Several different scripts called %q need to be installed at the same location (%s).", e.bin, e.source)
}
