// Package sse frames a server-sent-event byte stream into text records.
//
// Bytes arrive in arbitrary chunks. Decoder turns them into text without
// splitting multi-byte characters, LineBuffer turns that text into complete
// lines, and Payload extracts the body of a "data: " record.
package sse

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder is a stateful UTF-8 decoder. Bytes that end in the middle of a
// character are held back until the next call completes them. Invalid
// sequences decode to U+FFFD.
type Decoder struct {
	t       transform.Transformer
	pending []byte
}

// NewDecoder returns a Decoder with an empty carry-over buffer.
func NewDecoder() *Decoder {
	return &Decoder{t: unicode.UTF8.NewDecoder()}
}

// Decode appends chunk to any held-back bytes and returns the text that can
// be decoded so far.
func (d *Decoder) Decode(chunk []byte) string {
	return d.decode(chunk, false)
}

// Flush decodes whatever is still held back, treating it as the end of input.
func (d *Decoder) Flush() string {
	s := d.decode(nil, true)
	d.t.Reset()
	return s
}

func (d *Decoder) decode(chunk []byte, atEOF bool) string {
	src := chunk
	if len(d.pending) > 0 {
		src = append(d.pending, chunk...)
	}
	d.pending = nil
	if len(src) == 0 {
		return ""
	}

	// Worst case every byte is invalid and becomes a 3-byte replacement rune.
	dst := make([]byte, 3*len(src)+utf8.UTFMax)
	nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
	if errors.Is(err, transform.ErrShortSrc) {
		d.pending = append([]byte(nil), src[nSrc:]...)
	}
	return string(dst[:nDst])
}
