//go:build linux

package mmap

import (
	"os"
	"syscall"
)

// mapFile maps the first length bytes of f copy-on-write.
func mapFile(f *os.File, length int) ([]byte, error) {
	return syscall.Mmap(int(f.Fd()), 0, length, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_PRIVATE)
}

func munmap(b []byte) error {
	return syscall.Munmap(b)
}

func madvise(b []byte, advice int) error {
	return syscall.Madvise(b, advice)
}

// Memory advice flags
const (
	MadvSequential = syscall.MADV_SEQUENTIAL
	MadvWillneed   = syscall.MADV_WILLNEED
)
