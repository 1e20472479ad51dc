package dump

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

// encodeFrame creates a length-prefixed frame from raw payload bytes.
func encodeFrame(payload []byte) []byte {
	frame := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(frame[:LengthPrefixSize], uint32(len(payload)))
	copy(frame[LengthPrefixSize:], payload)
	return frame
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := msgpack.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func frameKind(t *testing.T, err error) FrameErrorKind {
	t.Helper()
	var fe *FrameError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FrameError, got %T: %v", err, err)
	}
	return fe.Kind
}

func TestFrameDecoder_ReadFrame(t *testing.T) {
	payload := []byte("hello")
	dec := NewFrameDecoder(bytes.NewReader(encodeFrame(payload)))

	got, err := dec.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = %q, want %q", got, payload)
	}

	if _, err := dec.ReadFrame(); err != io.EOF {
		t.Errorf("second ReadFrame error = %v, want io.EOF", err)
	}
}

func TestFrameDecoder_EmptyPayload(t *testing.T) {
	dec := NewFrameDecoder(bytes.NewReader(encodeFrame(nil)))
	got, err := dec.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("payload length = %d, want 0", len(got))
	}
}

func TestFrameDecoder_Errors(t *testing.T) {
	oversized := make([]byte, LengthPrefixSize)
	binary.BigEndian.PutUint32(oversized, MaxPayloadSize+1)

	tests := []struct {
		name string
		data []byte
		want FrameErrorKind
	}{
		{"partial prefix", []byte{0x00, 0x00}, FrameErrorPartial},
		{"partial payload", encodeFrame([]byte("hello"))[:LengthPrefixSize+2], FrameErrorPartial},
		{"too large", oversized, FrameErrorTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFrameDecoder(bytes.NewReader(tt.data)).ReadFrame()
			if got := frameKind(t, err); got != tt.want {
				t.Errorf("kind = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsTruncated(t *testing.T) {
	_, err := NewFrameDecoder(bytes.NewReader([]byte{0x01})).ReadFrame()
	if !IsTruncated(err) {
		t.Errorf("IsTruncated(%v) = false, want true", err)
	}
	if IsTruncated(io.EOF) {
		t.Error("IsTruncated(io.EOF) = true, want false")
	}
	if IsTruncated(&FrameError{Kind: FrameErrorDecode, Msg: "bad"}) {
		t.Error("IsTruncated(decode error) = true, want false")
	}
}

func TestDecodeFrame(t *testing.T) {
	chunk := mustMarshal(t, &RawChunk{Type: ChunkType, Seq: 4, Channel: "stdout", Data: []byte("<doc>")})
	v, err := DecodeFrame(chunk)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	got, ok := v.(*RawChunk)
	if !ok {
		t.Fatalf("DecodeFrame returned %T, want *RawChunk", v)
	}
	if got.Seq != 4 || got.Channel != "stdout" || string(got.Data) != "<doc>" {
		t.Errorf("chunk = %+v", got)
	}

	exit := mustMarshal(t, &Exit{Type: ExitType, ExitCode: 3})
	v, err = DecodeFrame(exit)
	if err != nil {
		t.Fatalf("DecodeFrame exit: %v", err)
	}
	if e, ok := v.(*Exit); !ok || e.ExitCode != 3 {
		t.Errorf("exit = %#v", v)
	}
}

func TestDecodeFrame_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"not msgpack", []byte{0xc1}},
		{"unknown type", mustMarshal(t, map[string]any{"type": "bogus"})},
		{"missing type", mustMarshal(t, map[string]any{"seq": 1})},
		{"wrong field type", mustMarshal(t, map[string]any{"type": ChunkType, "seq": "one"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFrame(tt.payload)
			if got := frameKind(t, err); got != FrameErrorDecode {
				t.Errorf("kind = %d, want FrameErrorDecode", got)
			}
		})
	}
}

func TestWriteFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFrame(&buf, &Exit{Type: ExitType, ExitCode: 1}); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
	payload, err := NewFrameDecoder(&buf).ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	v, err := DecodeFrame(payload)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if e := v.(*Exit); e.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", e.ExitCode)
	}
}

func TestWriteFrame_TooLarge(t *testing.T) {
	err := writeFrame(io.Discard, &RawChunk{Type: ChunkType, Data: make([]byte, MaxPayloadSize)})
	if got := frameKind(t, err); got != FrameErrorTooLarge {
		t.Errorf("kind = %d, want FrameErrorTooLarge", got)
	}
}
