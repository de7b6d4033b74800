package sse

import "strings"

// DataPrefix marks an event record line.
const DataPrefix = "data: "

// LineBuffer accumulates decoded text and hands back complete lines.
// The trailing fragment after the last newline stays buffered.
type LineBuffer struct {
	dec *Decoder
	buf strings.Builder
}

// NewLineBuffer returns an empty LineBuffer with its own Decoder.
func NewLineBuffer() *LineBuffer {
	return &LineBuffer{dec: NewDecoder()}
}

// Write decodes chunk and returns every line it completes, without the
// newline characters. It returns nil when no line was completed.
func (b *LineBuffer) Write(chunk []byte) []string {
	text := b.dec.Decode(chunk)
	i := strings.LastIndexByte(text, '\n')
	if i < 0 {
		b.buf.WriteString(text)
		return nil
	}

	b.buf.WriteString(text[:i])
	lines := strings.Split(b.buf.String(), "\n")
	b.buf.Reset()
	b.buf.WriteString(text[i+1:])
	return lines
}

// Flush decodes any bytes the decoder is still holding and returns the
// incomplete line, treating the input as ended.
func (b *LineBuffer) Flush() string {
	b.buf.WriteString(b.dec.Flush())
	return b.buf.String()
}

// Payload returns the trimmed body of a "data: " line. ok is false for lines
// that are not data records and for records with an empty body.
func Payload(line string) (payload string, ok bool) {
	if !strings.HasPrefix(line, DataPrefix) {
		return "", false
	}
	payload = strings.TrimSpace(line[len(DataPrefix):])
	return payload, payload != ""
}
