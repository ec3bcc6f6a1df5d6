package core

// streaming.go provides streaming readers that clean up source files while
// they are parsed:
//
//   - UTF8Sanitizer: Replaces invalid UTF-8 bytes with '?'
//   - BOMSkippingReader: Removes a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - CountingReader: Tracks bytes read for run logs
//
// Use WrapForStreaming to apply all transforms in the correct order.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// UTF8Sanitizer wraps an io.Reader and replaces invalid UTF-8 bytes on the
// fly. A multi-byte sequence split across two reads is held back until the
// rest of it arrives, so valid text is never damaged by buffer boundaries.
type UTF8Sanitizer struct {
	reader  io.Reader
	pending []byte
}

// NewUTF8Sanitizer creates a new streaming UTF-8 sanitizer.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{reader: r, pending: make([]byte, 0, utf8.UTFMax)}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(p) < len(s.pending) {
		return 0, io.ErrShortBuffer
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	return s.sanitize(p[:n], err != nil), err
}

// sanitize rewrites data in place and returns the number of bytes to hand
// out. Unless final is set, an incomplete trailing sequence is moved to
// pending.
func (s *UTF8Sanitizer) sanitize(data []byte, final bool) int {
	end := len(data)
	if !final {
		end -= partialSuffix(data)
		s.pending = append(s.pending, data[end:]...)
	}

	if utf8.Valid(data[:end]) {
		return end
	}

	w := 0
	for r := 0; r < end; {
		ch, size := utf8.DecodeRune(data[r:end])
		if ch == utf8.RuneError && size == 1 {
			// '?' keeps the output no longer than the input.
			data[w] = '?'
			w++
			r++
			continue
		}
		copy(data[w:], data[r:r+size])
		w += size
		r += size
	}
	return w
}

// partialSuffix returns how many trailing bytes of data form the start of a
// multi-byte sequence that is not yet complete.
func partialSuffix(data []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		b := data[len(data)-i]
		if utf8.RuneStart(b) {
			if b >= 0xC0 && sequenceLen(b) > i {
				return i
			}
			return 0
		}
	}
	return 0
}

// sequenceLen returns the encoded length announced by a leading byte.
func sequenceLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

// BOMSkippingReader drops a UTF-8 byte order mark at the start of the stream.
// Spreadsheet exports on Windows commonly add one, and it would otherwise end
// up inside the first header name.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.br.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			if _, err := r.br.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return r.br.Read(p)
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// WrapForStreaming wraps a reader with BOM skipping, UTF-8 sanitization and
// byte counting.
//
// The order matters:
// 1. BOM must be stripped first (before any processing)
// 2. UTF-8 sanitization happens next
// 3. Counting wraps everything
func WrapForStreaming(r io.Reader) *CountingReader {
	return NewCountingReader(NewUTF8Sanitizer(NewBOMSkippingReader(r)))
}
