package resolver

import "fmt"

// missingResolutionError fires when a manifest declares a regular
// dependency for which the resolution map has no concrete version.
type missingResolutionError struct {
	sourceName, sourceVersion string
	depName, depRange         string
}

func (e *missingResolutionError) Error() string {
	return fmt.Sprintf("no resolution found for %s@%s (required by %s@%s)",
		e.depName, e.depRange, e.sourceName, e.sourceVersion)
}

// missingManifestError fires when a regular or dev dependency resolves to a
// concrete (name, version) pair that the resolution map vouches for, but no
// manifest node was ever created for it.
type missingManifestError struct {
	sourceName, sourceVersion     string
	depName, depVersion, depRange string
}

func (e *missingManifestError) Error() string {
	return fmt.Sprintf("resolved %s@%s (range %s, required by %s@%s) has no manifest",
		e.depName, e.depVersion, e.depRange, e.sourceName, e.sourceVersion)
}

// unmetPeerError fires when a non-optional peer dependency cannot be
// resolved and FailOnMissingPeer is set.
type unmetPeerError struct {
	peerName                    string
	sourceName, sourceVersion   string
	parentName, parentVersion   string
}

func (e *unmetPeerError) Error() string {
	return fmt.Sprintf("unmet peer dependency %q required by %s@%s (parent: %s@%s)",
		e.peerName, e.sourceName, e.sourceVersion, e.parentName, e.parentVersion)
}
