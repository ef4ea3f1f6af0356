// Package extract turns stored uploads into plain text. Extraction is
// best-effort: failures are reported in a Result rather than as errors so the
// caller can persist the failure text as the document content.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// MaxTextChars is how many characters of a decoded text upload are kept.
	MaxTextChars = 10000
	// BinarySentinel is stored for uploads that are not valid UTF-8 or that
	// contain NUL bytes.
	BinarySentinel = "[binary file]"
)

// Result is the outcome of extracting text from one upload.
type Result struct {
	Text string
	Err  error
}

// OK reports whether extraction succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Content is the value to persist: the extracted text, or the failure text
// when extraction failed.
func (r Result) Content() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return r.Text
}

// Error is an extraction failure.
type Error struct {
	Kind string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[error reading %s] %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsPDF reports whether filename has a .pdf extension (case-insensitive).
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// DecodeText decodes data as UTF-8 and keeps the first MaxTextChars
// characters. Data that is not valid UTF-8, or that carries NUL bytes (UTF-16
// text, most binary formats), yields BinarySentinel: TEXT columns in
// PostgreSQL cannot hold NUL.
func DecodeText(data []byte) Result {
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return Result{Text: BinarySentinel}
	}
	return Result{Text: Truncate(string(data), MaxTextChars)}
}

// stripNUL removes NUL characters that some PDF encoders leave in text runs.
func stripNUL(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

// Truncate returns the first n characters (runes) of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
