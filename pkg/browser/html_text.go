package browser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultMaxTextLength caps text extracted by ElementText, in characters.
const DefaultMaxTextLength = 10000

// TextSnapshot is readable text extracted from an HTML fragment.
type TextSnapshot struct {
	Text      string
	Truncated bool
}

// CleanText renders an HTML fragment as plain text. Scripts, styles and other
// non-content elements are dropped, block elements start a new line and runs
// of whitespace collapse to one space. Output longer than maxLength characters
// is cut and marked truncated.
func CleanText(rawHTML string, maxLength int) (*TextSnapshot, error) {
	if maxLength <= 0 {
		maxLength = DefaultMaxTextLength
	}

	nodes, err := html.ParseFragment(strings.NewReader(rawHTML), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	w := &textWriter{}
	for _, n := range nodes {
		w.walk(n)
	}

	return newSnapshot(strings.TrimSpace(w.String()), maxLength), nil
}

// ElementText extracts readable text from el, preferring its cleaned inner
// HTML and falling back to its raw text content.
func ElementText(el Element, maxLength int) (*TextSnapshot, error) {
	inner, err := el.InnerHTML()
	if err == nil {
		if snapshot, cleanErr := CleanText(inner, maxLength); cleanErr == nil {
			return snapshot, nil
		}
	}

	text, err := el.TextContent()
	if err != nil {
		return nil, fmt.Errorf("text extraction failed: %w", err)
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxTextLength
	}
	return newSnapshot(strings.Join(strings.Fields(text), " "), maxLength), nil
}

// newSnapshot cuts text to maxLength characters, never inside a rune.
func newSnapshot(text string, maxLength int) *TextSnapshot {
	if utf8.RuneCountInString(text) <= maxLength {
		return &TextSnapshot{Text: text}
	}
	return &TextSnapshot{
		Text:      strings.TrimSpace(string([]rune(text)[:maxLength])) + "...",
		Truncated: true,
	}
}

type textWriter struct {
	strings.Builder
	pendingSpace bool
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		w.writeText(n.Data)
		return
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if isSkippedElement(tag) {
			return
		}
		if tag == "br" {
			w.newline()
			return
		}
		block := isBlockElement(tag)
		if block {
			w.newline()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		if block {
			w.newline()
		}
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *textWriter) writeText(s string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			w.pendingSpace = true
		}
		return
	}

	leading := s[0] == ' ' || s[0] == '\n' || s[0] == '\t' || s[0] == '\r'
	if (w.pendingSpace || leading) && w.Len() > 0 && !w.atLineStart() {
		w.WriteByte(' ')
	}
	w.WriteString(strings.Join(fields, " "))

	last := s[len(s)-1]
	w.pendingSpace = last == ' ' || last == '\n' || last == '\t' || last == '\r'
}

func (w *textWriter) newline() {
	w.pendingSpace = false
	if w.Len() > 0 && !w.atLineStart() {
		w.WriteByte('\n')
	}
}

func (w *textWriter) atLineStart() bool {
	s := w.String()
	return len(s) > 0 && s[len(s)-1] == '\n'
}

// isSkippedElement returns true for elements whose content is never text.
func isSkippedElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template", "iframe", "embed", "object", "svg", "head":
		return true
	}
	return false
}

// isBlockElement returns true for elements rendered on their own line.
func isBlockElement(tag string) bool {
	switch tag {
	case "div", "p", "section", "article", "header", "footer", "nav", "main", "aside",
		"h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "table", "tr",
		"form", "fieldset", "blockquote", "pre", "hr", "dl", "dt", "dd":
		return true
	}
	return false
}
