package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF extracts the plain text of every page of the PDF at path, joined with
// newlines and trimmed of surrounding whitespace. Malformed files produce a
// failed Result, never a panic.
func PDF(path string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: &Error{Kind: "pdf", Err: fmt.Errorf("malformed pdf: %v", r)}}
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return Result{Err: &Error{Kind: "pdf", Err: err}}
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return Result{Err: &Error{Kind: "pdf", Err: fmt.Errorf("page %d: %w", i, err)}}
		}
		pages = append(pages, text)
	}
	return Result{Text: strings.TrimSpace(stripNUL(strings.Join(pages, "\n")))}
}
