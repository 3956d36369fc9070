package core

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestClosers(t *testing.T) {
	var order []int
	errA, errB := errors.New("a"), errors.New("b")

	var c Closers
	c.Add(func() error { order = append(order, 1); return errA })
	c.Add(func() error { order = append(order, 2); return nil })
	c.Add(func() error { order = append(order, 3); return errB })

	err := c.Close()
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Close() = %v, want both errors", err)
	}
	if len(order) != 3 || order[0] != 3 || order[2] != 1 {
		t.Errorf("close order = %v, want reverse", order)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()

	if ok, err := FileExists(dir); err != nil || !ok {
		t.Errorf("FileExists(dir) = %v, %v", ok, err)
	}
	if ok, err := FileExists(filepath.Join(dir, "missing")); err != nil || ok {
		t.Errorf("FileExists(missing) = %v, %v", ok, err)
	}
}
