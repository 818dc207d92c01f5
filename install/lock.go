package install

import (
	"github.com/pkg/errors"
	"github.com/theckman/go-flock"
)

// storeLock serializes concurrent installs into the same store directory.
// The distilled spec assumes one caller per store; in practice nothing
// stops two installer invocations from targeting the same directory, so an
// advisory file lock closes that gap the way the teacher's own vendored
// go-flock dependency exists to do.
type storeLock struct {
	f *flock.Flock
}

// acquireStoreLock locks a file next to store (not inside it), so the
// lock's own existence never trips the "store must be empty" validation.
func acquireStoreLock(store string) (*storeLock, error) {
	f := flock.NewFlock(store + ".install.lock")
	locked, err := f.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, "acquiring store lock")
	}
	if !locked {
		return nil, errors.Errorf("store %s is locked by another install", store)
	}
	return &storeLock{f: f}, nil
}

func (l *storeLock) Release() error {
	return l.f.Unlock()
}
