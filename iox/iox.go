// Package iox provides I/O helpers for resource cleanup and chunked reads.
package iox

import (
	"errors"
	"io"
)

// DefaultChunkSize is the read size used when ReadChunks is given zero.
const DefaultChunkSize = 32 * 1024

// DiscardClose closes c and discards the error.
// Use in defer statements where close errors are unactionable:
//
//	defer iox.DiscardClose(f)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc returns a cleanup function that closes c, for t.Cleanup:
//
//	t.Cleanup(iox.CloseFunc(sink))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// DiscardErr calls fn and discards the returned error.
//
//	defer iox.DiscardErr(w.Flush)
func DiscardErr(fn func() error) { _ = fn() }

// ReadChunks reads r until EOF and passes every non-empty read to fn,
// in order, exactly as the reader returned it. The slice is reused
// between calls; fn must copy anything it keeps.
// Returns nil at EOF and the read error otherwise.
func ReadChunks(r io.Reader, size int, fn func(chunk []byte)) error {
	if size <= 0 {
		size = DefaultChunkSize
	}
	buf := make([]byte, size)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			fn(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
