package utils

import (
	"os"
	"time"

	"github.com/pkg/errors"
)

func IsIn(s string, arr []string) bool {
	for _, x := range arr {
		if s == x {
			return true
		}
	}
	return false
}

// ParseUTCTime parses a string-represented time of the format 2006-01-02T15:04:05Z07:00
func ParseUTCTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FileExists reports whether a regular file exists at path. A missing file is
// not an error; anything else os.Stat complains about is.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, errors.Wrapf(err, "could not stat %s", path)
	}
	if info.IsDir() {
		return false, errors.Errorf("%s is a directory, expected a file", path)
	}
	return true, nil
}
