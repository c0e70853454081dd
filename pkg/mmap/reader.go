// Package mmap provides private memory-mapped files, the backing store of
// raw data views. Mappings are copy-on-write: the memory may be modified but
// changes never reach the file.
package mmap

import (
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/logger"
)

// Reader is a copy-on-write memory mapping of a whole file.
type Reader struct {
	path     string
	file     *os.File
	data     []byte
	pageSize int

	bytesRead int64
	pagesRead int64

	mu sync.RWMutex
}

// NewReader maps filename into memory.
func NewReader(filename string) (*Reader, error) {
	file, err := os.Open(filename) //nolint:gosec // G304: path comes from the caller
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open file")
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to stat file")
	}
	if stat.Size() == 0 {
		file.Close()
		return nil, errors.Newf(errors.ErrorTypeFile, "%s is empty", filename)
	}
	if int64(int(stat.Size())) != stat.Size() {
		file.Close()
		return nil, errors.Newf(errors.ErrorTypeRange, "%s is too large to map", filename)
	}

	data, err := mapFile(file, int(stat.Size()))
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to mmap file")
	}

	if err := madvise(data, MadvSequential); err != nil {
		logger.Debug("madvise failed", zap.String("file", filename), zap.Error(err))
	}

	return &Reader{
		path:     filename,
		file:     file,
		data:     data,
		pageSize: os.Getpagesize(),
	}, nil
}

// Path returns the mapped file name.
func (r *Reader) Path() string { return r.path }

// Len returns the mapped size in bytes, 0 after Close.
func (r *Reader) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// ReadAll returns the entire mapping. The slice is only valid until Close.
func (r *Reader) ReadAll() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefetchRange(0, int64(len(r.data)))
	r.account(int64(len(r.data)))
	return r.data
}

// ReadRange returns length bytes starting at offset, truncated at the end of
// the file. The slice is only valid until Close.
func (r *Reader) ReadRange(offset, length int64) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := int64(len(r.data))
	if offset < 0 || offset >= size {
		return nil, errors.Newf(errors.ErrorTypeRange, "offset %d out of range [0, %d)", offset, size)
	}
	end := min(offset+length, size)

	r.prefetchRange(offset, end)
	r.account(end - offset)
	return r.data[offset:end], nil
}

func (r *Reader) account(n int64) {
	r.bytesRead += n
	r.pagesRead += (n + int64(r.pageSize) - 1) / int64(r.pageSize)
}

// prefetchRange advises the kernel to page in [start, end).
func (r *Reader) prefetchRange(start, end int64) {
	page := int64(r.pageSize)
	startPage := (start / page) * page
	endPage := min(((end+page-1)/page)*page, int64(len(r.data)))
	if endPage <= startPage {
		return
	}
	_ = madvise(r.data[startPage:endPage], MadvWillneed)
}

// Close unmaps the file and closes it. Closing twice is a no-op.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.data != nil {
		err = munmap(r.data)
		r.data = nil
	}
	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.file = nil
	}
	return err
}

// Stats returns how many bytes and pages were handed out.
func (r *Reader) Stats() (bytesRead, pagesRead int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bytesRead, r.pagesRead
}
