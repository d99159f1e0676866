// Package firstlaunch records whether the application has run before in a
// user-data profile.
package firstlaunch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// MarkerName is the file whose presence means the app has launched before.
const MarkerName = ".electron-util--has-app-launched"

// maxAttempts bounds the create loop: one try, plus one retry after
// creating a missing user-data directory.
const maxAttempts = 2

// Tracker detects the first launch for one user-data directory.
type Tracker struct {
	userDataDir string
}

// New creates a tracker rooted at userDataDir.
func New(userDataDir string) *Tracker {
	return &Tracker{userDataDir: userDataDir}
}

// MarkerPath returns the path of the launch marker.
func (t *Tracker) MarkerPath() string {
	return filepath.Join(t.userDataDir, MarkerName)
}

// IsFirstLaunch reports true the first time it is called for a user-data
// directory and false forever after, including in later processes. The
// marker is created on the first call; a missing directory is created once.
func (t *Tracker) IsFirstLaunch() (bool, error) {
	checkFile := t.MarkerPath()

	for attempt := 1; ; attempt++ {
		if _, err := os.Stat(checkFile); err == nil {
			return false, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("failed to check launch marker %s: %w", checkFile, err)
		}

		f, err := os.OpenFile(checkFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			if err := f.Close(); err != nil {
				return false, fmt.Errorf("failed to write launch marker %s: %w", checkFile, err)
			}
			return true, nil
		}

		switch {
		case errors.Is(err, fs.ErrExist):
			// Another process created it between the stat and the create.
			return false, nil
		case errors.Is(err, fs.ErrNotExist) && attempt < maxAttempts:
			if err := os.MkdirAll(t.userDataDir, 0755); err != nil {
				return false, fmt.Errorf("failed to create user data directory %s: %w", t.userDataDir, err)
			}
		default:
			return false, fmt.Errorf("failed to create launch marker %s: %w", checkFile, err)
		}
	}
}
