package bytesource

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/shapestone/jetstream/pkg/stream"
)

// chunkReader delivers at most n bytes per Read call, forcing refills
// at controlled points.
type chunkReader struct {
	data []byte
	n    int
	pos  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := r.pos + r.n
	if end > len(r.data) {
		end = len(r.data)
	}
	if end-r.pos > len(p) {
		end = r.pos + len(p)
	}
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	return n, nil
}

//
// Construction Tests
//

func TestNewSourceValidatesBufferSize(t *testing.T) {
	// Given
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "minimum", size: stream.MinBufferSize, wantErr: false},
		{name: "maximum", size: stream.MaxBufferSize, wantErr: false},
		{name: "default", size: stream.DefaultBufferSize, wantErr: false},
		{name: "below minimum", size: stream.MinBufferSize - 1, wantErr: true},
		{name: "above maximum", size: stream.MaxBufferSize + 1, wantErr: true},
		{name: "zero", size: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// When
			_, err := New(strings.NewReader("{}"), tt.size)

			// Then
			if tt.wantErr && err == nil {
				t.Fatalf("Expected error for size %d, got nil", tt.size)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Expected no error for size %d, got %v", tt.size, err)
			}
			if tt.wantErr && !stream.IsKind(err, stream.KindIO) {
				t.Fatalf("Expected IO error kind, got %v", err)
			}
		})
	}
}

func TestNewSourceRejectsNilReader(t *testing.T) {
	// When
	_, err := New(nil, stream.DefaultBufferSize)

	// Then
	if !stream.IsKind(err, stream.KindIO) {
		t.Fatalf("Expected IO error for nil reader, got %v", err)
	}
}

//
// Read and Peek Tests
//

func TestReadByteAdvances(t *testing.T) {
	// Given
	src, err := New(strings.NewReader("ab"), stream.DefaultBufferSize)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// When
	b1, ok1, err1 := src.ReadByte()
	b2, ok2, err2 := src.ReadByte()
	_, ok3, err3 := src.ReadByte()

	// Then
	if err1 != nil || err2 != nil || err3 != nil {
		t.Fatalf("Unexpected errors: %v %v %v", err1, err2, err3)
	}
	if !ok1 || b1 != 'a' {
		t.Fatalf("Expected 'a', got %q ok=%t", b1, ok1)
	}
	if !ok2 || b2 != 'b' {
		t.Fatalf("Expected 'b', got %q ok=%t", b2, ok2)
	}
	if ok3 {
		t.Fatalf("Expected end of stream, got ok=true")
	}
	if src.BytesRead() != 2 {
		t.Fatalf("Expected BytesRead() 2, got %d", src.BytesRead())
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	// Given
	src, err := New(strings.NewReader("xy"), stream.DefaultBufferSize)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// When - peeking twice reads the same byte
	p1, ok1, _ := src.Peek(0)
	p2, ok2, _ := src.Peek(0)
	p3, ok3, _ := src.Peek(1)

	// Then
	if !ok1 || p1 != 'x' {
		t.Fatalf("Expected peek 'x', got %q ok=%t", p1, ok1)
	}
	if !ok2 || p2 != 'x' {
		t.Fatalf("Expected repeated peek 'x', got %q ok=%t", p2, ok2)
	}
	if !ok3 || p3 != 'y' {
		t.Fatalf("Expected offset peek 'y', got %q ok=%t", p3, ok3)
	}

	// When - consuming still starts at the beginning
	b, ok, _ := src.ReadByte()

	// Then
	if !ok || b != 'x' {
		t.Fatalf("Expected read 'x' after peeks, got %q ok=%t", b, ok)
	}
}

func TestPeekBeyondEndOfStream(t *testing.T) {
	// Given
	src, err := New(strings.NewReader("z"), stream.DefaultBufferSize)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// When
	_, ok, err := src.Peek(5)

	// Then
	if err != nil {
		t.Fatalf("Peek() error = %v", err)
	}
	if ok {
		t.Fatalf("Expected peek beyond end to report no byte")
	}
}

func TestPeekAcrossRefillBoundary(t *testing.T) {
	// Given - a reader that produces three bytes per fill, so the
	// peeked offset lies outside the filled region
	data := []byte("abcdefghij")
	src, err := New(&chunkReader{data: data, n: 3}, stream.DefaultBufferSize)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// When - consume two bytes, then peek past the 3-byte fill
	if _, _, err := src.ReadByte(); err != nil {
		t.Fatalf("ReadByte() error = %v", err)
	}
	if _, _, err := src.ReadByte(); err != nil {
		t.Fatalf("ReadByte() error = %v", err)
	}
	p, ok, err := src.Peek(3)

	// Then - 'c' is the next unread byte, offset 3 is 'f'
	if err != nil {
		t.Fatalf("Peek() error = %v", err)
	}
	if !ok || p != 'f' {
		t.Fatalf("Expected peek across refill to yield 'f', got %q ok=%t", p, ok)
	}

	// When - consumption continues without losing bytes
	var rest []byte
	for {
		b, ok, err := src.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte() error = %v", err)
		}
		if !ok {
			break
		}
		rest = append(rest, b)
	}

	// Then
	if string(rest) != "cdefghij" {
		t.Fatalf("Expected remaining bytes 'cdefghij', got %q", rest)
	}
}

//
// Position Tracking Tests
//

func TestLineAndColumnTracking(t *testing.T) {
	// Given
	src, err := New(strings.NewReader("ab\ncd"), stream.DefaultBufferSize)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Then - initial position
	if src.Line() != 0 || src.Column() != 0 {
		t.Fatalf("Expected initial position 0:0, got %d:%d", src.Line(), src.Column())
	}

	// When - consume "ab\n"
	for i := 0; i < 3; i++ {
		if _, _, err := src.ReadByte(); err != nil {
			t.Fatalf("ReadByte() error = %v", err)
		}
	}

	// Then - line advanced, column reset
	if src.Line() != 1 || src.Column() != 0 {
		t.Fatalf("Expected position 1:0 after newline, got %d:%d", src.Line(), src.Column())
	}

	// When - consume "c"
	if _, _, err := src.ReadByte(); err != nil {
		t.Fatalf("ReadByte() error = %v", err)
	}

	// Then
	if src.Line() != 1 || src.Column() != 1 {
		t.Fatalf("Expected position 1:1, got %d:%d", src.Line(), src.Column())
	}
}

//
// Chunk and EOF Tests
//

func TestReadChunk(t *testing.T) {
	// Given
	src, err := New(strings.NewReader("abcdef"), stream.DefaultBufferSize)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// When
	chunk, err := src.ReadChunk(4)

	// Then
	if err != nil {
		t.Fatalf("ReadChunk() error = %v", err)
	}
	if string(chunk) != "abcd" {
		t.Fatalf("Expected 'abcd', got %q", chunk)
	}

	// When - asking for more than remains
	chunk, err = src.ReadChunk(10)

	// Then - short read at end of stream
	if err != nil {
		t.Fatalf("ReadChunk() error = %v", err)
	}
	if string(chunk) != "ef" {
		t.Fatalf("Expected 'ef', got %q", chunk)
	}
}

func TestIsEOFOnlyAfterExhaustion(t *testing.T) {
	// Given
	src, err := New(strings.NewReader("q"), stream.DefaultBufferSize)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Then - not EOF before reading
	if src.IsEOF() {
		t.Fatalf("Expected IsEOF() false before reading")
	}

	// When
	if _, _, err := src.ReadByte(); err != nil {
		t.Fatalf("ReadByte() error = %v", err)
	}
	_, ok, _ := src.ReadByte()

	// Then
	if ok {
		t.Fatalf("Expected stream exhausted")
	}
	if !src.IsEOF() {
		t.Fatalf("Expected IsEOF() true after exhaustion")
	}
}

//
// Reset Tests
//

func TestResetSeekableStream(t *testing.T) {
	// Given - strings.Reader is seekable
	src, err := New(strings.NewReader("one\ntwo"), stream.DefaultBufferSize)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := src.ReadChunk(5); err != nil {
		t.Fatalf("ReadChunk() error = %v", err)
	}

	// When
	if err := src.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	// Then - counters cleared, bytes readable from the start
	if src.Line() != 0 || src.Column() != 0 || src.BytesRead() != 0 {
		t.Fatalf("Expected cleared counters, got line=%d column=%d bytes=%d",
			src.Line(), src.Column(), src.BytesRead())
	}
	b, ok, _ := src.ReadByte()
	if !ok || b != 'o' {
		t.Fatalf("Expected 'o' after reset, got %q ok=%t", b, ok)
	}
}

func TestResetNonSeekableStreamIsNoOp(t *testing.T) {
	// Given - bytes.Buffer is not seekable
	src, err := New(bytes.NewBuffer([]byte("abc")), stream.DefaultBufferSize)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, _, err := src.ReadByte(); err != nil {
		t.Fatalf("ReadByte() error = %v", err)
	}

	// When
	if err := src.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	// Then - stream position unchanged
	b, ok, _ := src.ReadByte()
	if !ok || b != 'b' {
		t.Fatalf("Expected 'b' after no-op reset, got %q ok=%t", b, ok)
	}
	if src.Resettable() {
		t.Fatalf("Expected Resettable() false for bytes.Buffer")
	}
}
