package cli

import (
	"fmt"

	"github.com/gofrs/flock"
)

// lockDatabase takes an exclusive lock next to the SQLite file so that two
// maintenance commands never migrate or seed the same database at once.
func lockDatabase(dbPath string) (func(), error) {
	if dbPath == "" || dbPath == ":memory:" {
		return func() {}, nil
	}
	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another pmapi command is already working on %s", dbPath)
	}
	return func() { _ = lock.Unlock() }, nil
}
