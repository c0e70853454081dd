//go:build !linux && !darwin

package mmap

import (
	"io"
	"os"
)

// mapFile reads the file into memory on platforms without mmap.
func mapFile(f *os.File, length int) ([]byte, error) {
	data := make([]byte, length)
	_, err := f.ReadAt(data, 0)
	if err == io.EOF {
		err = nil
	}
	return data, err
}

func munmap([]byte) error { return nil }

func madvise([]byte, int) error { return nil }

// Memory advice flags
const (
	MadvSequential = 0
	MadvWillneed   = 0
)
