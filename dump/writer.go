package dump

import (
	"bufio"
	"io"
	"sync"
	"time"
)

// Writer records a dump. Safe for concurrent use: both channel readers
// write through the same Writer.
type Writer struct {
	mu      sync.Mutex
	w       *bufio.Writer
	closer  io.Closer
	start   time.Time
	seq     int64
	err     error
	closed  bool
	dropped int64
}

// NewWriter writes the header and returns a Writer. If w is an io.Closer
// it is closed by Close.
func NewWriter(w io.Writer, header Header) (*Writer, error) {
	header.Type = HeaderType
	header.Version = FormatVersion
	start := time.Now()
	if header.CreatedAt == 0 {
		header.CreatedAt = start.UnixMilli()
	}

	bw := bufio.NewWriterSize(w, 64*1024)
	if err := writeFrame(bw, &header); err != nil {
		return nil, err
	}

	dw := &Writer{w: bw, start: start}
	if c, ok := w.(io.Closer); ok {
		dw.closer = c
	}
	return dw, nil
}

// WriteChunk appends one chunk frame. The first write error is sticky:
// later chunks are counted as dropped and the error is returned by Close.
func (d *Writer) WriteChunk(channel string, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || d.err != nil {
		d.dropped++
		return
	}
	d.seq++
	d.err = writeFrame(d.w, &RawChunk{
		Type:     ChunkType,
		Seq:      d.seq,
		Channel:  channel,
		OffsetMs: time.Since(d.start).Milliseconds(),
		Data:     data,
	})
}

// Chunks returns the number of chunk frames written.
func (d *Writer) Chunks() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

// Dropped returns the number of chunks not recorded after a write error.
func (d *Writer) Dropped() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Close writes the exit frame, flushes and closes the underlying writer.
func (d *Writer) Close(exitCode int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return d.err
	}
	d.closed = true

	if d.err == nil {
		d.err = writeFrame(d.w, &Exit{Type: ExitType, ExitCode: exitCode})
	}
	if d.err == nil {
		d.err = d.w.Flush()
	}
	if d.closer != nil {
		if err := d.closer.Close(); err != nil && d.err == nil {
			d.err = err
		}
	}
	return d.err
}
