package iox

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

type spyCloser struct{ closed bool }

func (s *spyCloser) Close() error { s.closed = true; return errors.New("ignored") }

func TestDiscardClose(t *testing.T) {
	s := &spyCloser{}
	DiscardClose(s)
	if !s.closed {
		t.Fatal("Close was not called")
	}
}

func TestCloseFunc(t *testing.T) {
	s := &spyCloser{}
	fn := CloseFunc(s)
	if s.closed {
		t.Fatal("Close called before invoking returned func")
	}
	fn()
	if !s.closed {
		t.Fatal("Close was not called")
	}
}

func TestDiscardErr(t *testing.T) {
	called := false
	DiscardErr(func() error {
		called = true
		return errors.New("ignored")
	})
	if !called {
		t.Fatal("fn was not called")
	}
}

func TestReadChunks_PassesEveryRead(t *testing.T) {
	r := iotest.OneByteReader(strings.NewReader("abc"))

	var got []string
	err := ReadChunks(r, 8, func(chunk []byte) {
		got = append(got, string(chunk))
	})
	if err != nil {
		t.Fatalf("ReadChunks: %v", err)
	}
	if strings.Join(got, "|") != "a|b|c" {
		t.Errorf("chunks = %q, want [a b c]", got)
	}
}

func TestReadChunks_ReturnsReadError(t *testing.T) {
	boom := errors.New("pipe broken")
	r := io.MultiReader(strings.NewReader("xy"), iotest.ErrReader(boom))

	var total int
	err := ReadChunks(r, 0, func(chunk []byte) { total += len(chunk) })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if total != 2 {
		t.Errorf("read %d bytes before error, want 2", total)
	}
}
