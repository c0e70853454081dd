//go:build darwin

package mmap

import (
	"os"
	"syscall"
	"unsafe"
)

// mapFile maps the first length bytes of f copy-on-write.
func mapFile(f *os.File, length int) ([]byte, error) {
	return syscall.Mmap(int(f.Fd()), 0, length, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_PRIVATE)
}

func munmap(b []byte) error {
	return syscall.Munmap(b)
}

// madvise has no syscall wrapper on darwin.
func madvise(b []byte, advice int) error {
	_, _, err := syscall.Syscall(syscall.SYS_MADVISE, uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)), uintptr(advice))
	if err != 0 {
		return err
	}
	return nil
}

// Memory advice flags
const (
	MadvSequential = 2
	MadvWillneed   = 3
)
