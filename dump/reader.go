package dump

import (
	"fmt"
	"io"
)

// Reader reads a dump frame by frame.
type Reader struct {
	dec      *FrameDecoder
	header   *Header
	exit     *Exit
	finished bool
}

// NewReader reads and validates the header.
func NewReader(r io.Reader) (*Reader, error) {
	dec := NewFrameDecoder(r)
	payload, err := dec.ReadFrame()
	if err == io.EOF {
		return nil, &FrameError{Kind: FrameErrorPartial, Msg: "empty dump"}
	}
	if err != nil {
		return nil, err
	}
	v, err := DecodeFrame(payload)
	if err != nil {
		return nil, err
	}
	header, ok := v.(*Header)
	if !ok {
		return nil, &FrameError{Kind: FrameErrorUnexpected, Msg: "dump does not start with a header"}
	}
	if header.Version != FormatVersion {
		return nil, &FrameError{
			Kind: FrameErrorUnexpected,
			Msg:  fmt.Sprintf("unsupported dump version %d", header.Version),
		}
	}
	return &Reader{dec: dec, header: header}, nil
}

// Header returns the dump header.
func (r *Reader) Header() *Header {
	return r.header
}

// Exit returns the exit frame once Next has returned io.EOF.
// Nil if the dump was truncated.
func (r *Reader) Exit() *Exit {
	return r.exit
}

// Next returns the next chunk. io.EOF follows the exit frame.
// A dump that ends without an exit frame returns a partial FrameError.
func (r *Reader) Next() (*RawChunk, error) {
	if r.finished {
		return nil, io.EOF
	}

	payload, err := r.dec.ReadFrame()
	if err == io.EOF {
		return nil, &FrameError{Kind: FrameErrorPartial, Msg: "dump ended without exit frame"}
	}
	if err != nil {
		return nil, err
	}

	v, err := DecodeFrame(payload)
	if err != nil {
		return nil, err
	}
	switch f := v.(type) {
	case *RawChunk:
		return f, nil
	case *Exit:
		r.exit = f
		r.finished = true
		return nil, io.EOF
	default:
		return nil, &FrameError{Kind: FrameErrorUnexpected, Msg: "header frame after start of dump"}
	}
}
