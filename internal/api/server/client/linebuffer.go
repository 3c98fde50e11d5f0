package client

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// lineBuffer reassembles newline-terminated lines from raw body chunks.
// Bytes of a UTF-8 sequence cut at a chunk boundary are carried into the
// next Write; invalid bytes decode to U+FFFD. After every Write the buffer
// holds at most one unterminated fragment.
type lineBuffer struct {
	decoder transform.Transformer
	carry   []byte
	text    string
}

func newLineBuffer() *lineBuffer {
	return &lineBuffer{decoder: unicode.UTF8.NewDecoder()}
}

// Write decodes chunk and returns every line completed by it, without the
// trailing newline.
func (b *lineBuffer) Write(chunk []byte) []string {
	b.text += b.decode(chunk)
	lines := strings.Split(b.text, "\n")
	b.text = lines[len(lines)-1]
	return lines[:len(lines)-1]
}

// Pending returns the unterminated fragment held back for the next Write.
func (b *lineBuffer) Pending() string {
	return b.text
}

func (b *lineBuffer) decode(chunk []byte) string {
	src := make([]byte, 0, len(b.carry)+len(chunk))
	src = append(src, b.carry...)
	src = append(src, chunk...)
	b.carry = nil

	var out strings.Builder
	// a lone invalid byte expands to the 3-byte replacement rune
	dst := make([]byte, 3*len(src)+utf8.UTFMax)
	for len(src) > 0 {
		nDst, nSrc, err := b.decoder.Transform(dst, src, false)
		out.Write(dst[:nDst])
		src = src[nSrc:]
		switch err {
		case nil, transform.ErrShortDst:
		case transform.ErrShortSrc:
			b.carry = append([]byte(nil), src...)
			return out.String()
		default:
			return out.String()
		}
	}
	return out.String()
}
