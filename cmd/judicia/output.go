package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kalambet/judicia/internal/api"
)

// stderr receives notices and status lines. Records go to the command's
// stdout so they can be piped.
var stderr io.Writer = os.Stderr

type ansi string

const (
	ansiReset  ansi = "\033[0m"
	ansiRed    ansi = "\033[31m"
	ansiGreen  ansi = "\033[32m"
	ansiYellow ansi = "\033[33m"
	ansiCyan   ansi = "\033[36m"
	ansiBold   ansi = "\033[1m"
)

// listPreviewRunes is how much of a document preview fits on one line.
const listPreviewRunes = 80

func paint(c ansi, text string) string {
	if noColor {
		return text
	}
	return string(c) + text + string(ansiReset)
}

// notice is a one-line message on stderr, prefixed with a glyph.
type notice struct {
	glyph string
	color ansi
}

var (
	success = notice{"✓", ansiGreen}
	failure = notice{"✗", ansiRed}
	warning = notice{"⚠", ansiYellow}
)

func (n notice) printf(format string, args ...any) {
	fmt.Fprintln(stderr, paint(n.color, n.glyph+" "+fmt.Sprintf(format, args...)))
}

func statusLine(label, format string, args ...any) {
	fmt.Fprintf(stderr, "  %s %s\n", paint(ansiBold, label+":"), fmt.Sprintf(format, args...))
}

// writeTurn renders one chat turn as a header line plus question and answer.
func writeTurn(w io.Writer, it api.HistoryItem) {
	user := "-"
	if it.UserID != nil {
		user = strconv.FormatInt(*it.UserID, 10)
	}
	fmt.Fprintf(w, "%s %s user=%s\n", paint(ansiBold, "#"+strconv.FormatInt(it.ID, 10)), it.TS, user)
	fmt.Fprintf(w, "  %s %s\n", paint(ansiCyan, "Q:"), it.Message)
	fmt.Fprintf(w, "  %s %s\n", paint(ansiGreen, "A:"), it.Response)
}

// writeDocument renders one uploaded document with a single-line preview.
func writeDocument(w io.Writer, d api.DocumentItem) {
	fmt.Fprintf(w, "%s %s %s\n  %s\n",
		paint(ansiBold, "#"+strconv.FormatInt(d.ID, 10)), d.UploadedAt, d.Filename, oneLine(d.ContentPreview, listPreviewRunes))
}

// oneLine flattens newlines and cuts s to n runes, marking the cut with "...".
func oneLine(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
