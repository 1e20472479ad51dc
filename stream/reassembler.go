package stream

import "bytes"

// Reassembler accumulates raw output chunks and extracts complete Modules.
//
// A module ends at whichever comes first after its marker: the next module
// marker or the document close tag. Bytes before the first marker carry no
// records and are discarded. Extracted ranges are removed from the buffer so
// nothing is scanned twice.
//
// Extraction depends only on the bytes written, never on how they were
// chunked. A Reassembler is not safe for concurrent use.
type Reassembler struct {
	buf    []byte
	closed bool
}

// NewReassembler creates an empty Reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{}
}

// Write appends a chunk to the accumulation buffer.
// The chunk is copied; the caller keeps ownership.
func (r *Reassembler) Write(chunk []byte) {
	r.buf = append(r.buf, chunk...)
}

// Extract returns every Module whose closing boundary is already buffered.
// An empty result with Done() == false means more bytes are needed.
func (r *Reassembler) Extract() []Module {
	var modules []Module
	for {
		start := bytes.Index(r.buf, moduleMarker)
		if start < 0 {
			return modules
		}
		if start > 0 {
			r.compact(start)
		}

		end, next := r.boundary()
		if end < 0 {
			return modules
		}

		modules = append(modules, newModule(r.buf[:end]))
		r.compact(next)
	}
}

// boundary locates the end of the module at the head of the buffer.
// end is the exclusive end of the module bytes; next is where the
// following data starts. Both are -1 when no boundary is buffered yet.
func (r *Reassembler) boundary() (end, next int) {
	body := r.buf[len(moduleMarker):]

	nextMarker := bytes.Index(body, moduleMarker)
	closeTag := bytes.Index(body, docClose)

	switch {
	case nextMarker < 0 && closeTag < 0:
		return -1, -1
	case closeTag >= 0 && (nextMarker < 0 || closeTag < nextMarker):
		end = len(moduleMarker) + closeTag
		return end, end + len(docClose)
	default:
		end = len(moduleMarker) + nextMarker
		return end, end
	}
}

// compact drops the first n bytes of the buffer.
func (r *Reassembler) compact(n int) {
	remaining := copy(r.buf, r.buf[n:])
	r.buf = r.buf[:remaining]
}

// Finish marks end of stream and extracts the residual module.
// If the unresolved tail after the last marker lacks a document close tag
// one is appended, so the final module is always emitted.
func (r *Reassembler) Finish() []Module {
	r.closed = true

	if last := bytes.LastIndex(r.buf, moduleMarker); last >= 0 {
		if !bytes.Contains(r.buf[last+len(moduleMarker):], docClose) {
			r.buf = append(r.buf, docClose...)
		}
	}

	modules := r.Extract()
	if r.Done() {
		r.buf = r.buf[:0]
	}
	return modules
}

// Done reports whether the stream has ended and no module remains.
func (r *Reassembler) Done() bool {
	return r.closed && !bytes.Contains(r.buf, moduleMarker)
}

// Buffered returns the number of unresolved bytes held.
func (r *Reassembler) Buffered() int {
	return len(r.buf)
}

// Reset clears the buffer and end-of-stream state for a new run.
func (r *Reassembler) Reset() {
	r.buf = r.buf[:0]
	r.closed = false
}
