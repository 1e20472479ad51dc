// Package dump records the raw output of a lint run as length-prefixed
// msgpack frames and replays it later.
//
// A dump is a header frame, one chunk frame per read from either output
// channel in arrival order, and an exit frame. Chunk frames keep the exact
// read boundaries, so a replay exercises reassembly the same way the live
// run did.
package dump

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Frame size limits.
const (
	// LengthPrefixSize is the size of the big-endian length prefix.
	LengthPrefixSize = 4
	// MaxFrameSize is the maximum frame size including the prefix (16 MiB).
	MaxFrameSize = 16 * 1024 * 1024
	// MaxPayloadSize is the maximum payload size.
	MaxPayloadSize = MaxFrameSize - LengthPrefixSize
)

// Frame type discriminants.
const (
	HeaderType = "header"
	ChunkType  = "chunk"
	ExitType   = "exit"
)

// FormatVersion is written in every header.
const FormatVersion = 1

// FrameErrorKind classifies frame errors.
type FrameErrorKind int

const (
	// FrameErrorPartial indicates a truncated frame.
	FrameErrorPartial FrameErrorKind = iota
	// FrameErrorTooLarge indicates a frame over MaxFrameSize.
	FrameErrorTooLarge
	// FrameErrorDecode indicates a msgpack decoding error.
	FrameErrorDecode
	// FrameErrorUnexpected indicates a valid frame in the wrong place.
	FrameErrorUnexpected
)

// FrameError is a frame decoding error.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsTruncated reports whether err is a partial-frame error: the dump was
// cut off, typically because the recording process died.
func IsTruncated(err error) bool {
	var fe *FrameError
	return errors.As(err, &fe) && fe.Kind == FrameErrorPartial
}

// Header opens every dump.
type Header struct {
	Type      string   `msgpack:"type"`
	Version   int      `msgpack:"version"`
	RunID     string   `msgpack:"run_id"`
	Tool      string   `msgpack:"tool"`
	ToolPath  string   `msgpack:"tool_path"`
	Args      []string `msgpack:"args"`
	Files     []string `msgpack:"files"`
	CreatedAt int64    `msgpack:"created_at"` // unix millis
}

// RawChunk is one read from one channel.
type RawChunk struct {
	Type    string `msgpack:"type"`
	Seq     int64  `msgpack:"seq"`
	Channel string `msgpack:"channel"`
	// OffsetMs is the time since the header was written.
	OffsetMs int64  `msgpack:"offset_ms"`
	Data     []byte `msgpack:"data"`
}

// Exit closes a dump with the tool's exit code.
type Exit struct {
	Type     string `msgpack:"type"`
	ExitCode int    `msgpack:"exit_code"`
}

// writeFrame msgpack-encodes v and writes it with a length prefix.
func writeFrame(w io.Writer, v any) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if len(payload) > MaxPayloadSize {
		return &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", len(payload), MaxPayloadSize),
		}
	}

	var prefix [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// FrameDecoder reads length-prefixed frames from a stream.
type FrameDecoder struct {
	reader io.Reader
}

// NewFrameDecoder creates a new frame decoder.
func NewFrameDecoder(r io.Reader) *FrameDecoder {
	return &FrameDecoder{reader: r}
}

// ReadFrame reads one frame payload.
//
// Errors:
//   - io.EOF: stream ended cleanly between frames
//   - *FrameError{Kind: FrameErrorPartial}: truncated frame
//   - *FrameError{Kind: FrameErrorTooLarge}: frame exceeds the limit
func (d *FrameDecoder) ReadFrame() ([]byte, error) {
	var lengthBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(d.reader, lengthBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &FrameError{Kind: FrameErrorPartial, Msg: "failed to read length prefix", Err: err}
	}

	size := binary.BigEndian.Uint32(lengthBuf[:])
	if size > MaxPayloadSize {
		return nil, &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", size, MaxPayloadSize),
		}
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(d.reader, payload); err != nil {
		return nil, &FrameError{Kind: FrameErrorPartial, Msg: "failed to read payload", Err: err}
	}
	return payload, nil
}

type frameTypeProbe struct {
	Type string `msgpack:"type"`
}

// DecodeFrame decodes a payload into *Header, *RawChunk or *Exit.
func DecodeFrame(payload []byte) (any, error) {
	var probe frameTypeProbe
	if err := msgpack.Unmarshal(payload, &probe); err != nil {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode frame type", Err: err}
	}

	var v any
	switch probe.Type {
	case HeaderType:
		v = &Header{}
	case ChunkType:
		v = &RawChunk{}
	case ExitType:
		v = &Exit{}
	default:
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: fmt.Sprintf("unknown frame type %q", probe.Type)}
	}
	if err := msgpack.Unmarshal(payload, v); err != nil {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode " + probe.Type + " frame", Err: err}
	}
	return v, nil
}
