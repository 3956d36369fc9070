package core

import (
	"errors"
	"os"
)

// Closers closes in reverse order of registration and joins every error.
type Closers []func() error

func (c *Closers) Add(closer func() error) {
	*c = append(*c, closer)
}

func (c Closers) Close() error {
	var multiErr error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			multiErr = errors.Join(multiErr, err)
		}
	}
	return multiErr
}

// https://stackoverflow.com/a/12518877
func FileExists(filePath string) (bool, error) {
	if _, err := os.Stat(filePath); err == nil {
		return true, nil
	} else if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else {
		return false, err
	}
}
