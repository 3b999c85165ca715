package dispatch

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FallbackPostLength is how much of the body is posted when there is no
// content section.
const FallbackPostLength = 500

const contentHeading = "content"

var markdown = goldmark.New()

// PostContent returns the text of the "## Content" section of a markdown
// body, up to the next heading or thematic break. Without such a section it
// returns the first FallbackPostLength characters of the body.
func PostContent(body string) string {
	if s, ok := Section([]byte(body), contentHeading); ok {
		return s
	}
	r := []rune(body)
	if len(r) > FallbackPostLength {
		r = r[:FallbackPostLength]
	}
	return strings.TrimSpace(string(r))
}

// Section extracts the raw source below a level-two heading whose text
// matches name, case-insensitively.
func Section(source []byte, name string) (string, bool) {
	doc := markdown.Parser().Parse(text.NewReader(source))

	var first, last ast.Node
	inSection := false

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			if inSection {
				break
			}
			title := strings.TrimSpace(string(h.Lines().Value(source)))
			if h.Level == 2 && strings.EqualFold(title, name) {
				inSection = true
			}
			continue
		}
		if !inSection {
			continue
		}
		if n.Kind() == ast.KindThematicBreak {
			break
		}
		if first == nil {
			first = n
		}
		last = n
	}

	if !inSection {
		return "", false
	}
	if first == nil {
		return "", true
	}

	start, ok := firstSegment(first)
	if !ok {
		return "", true
	}
	end, ok := lastSegment(last)
	if !ok {
		return "", true
	}

	from := bytes.LastIndexByte(source[:start.Start], '\n') + 1
	return strings.TrimSpace(string(source[from:end.Stop])), true
}

func firstSegment(n ast.Node) (text.Segment, bool) {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return n.Lines().At(0), true
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if s, ok := firstSegment(c); ok {
			return s, true
		}
	}
	return text.Segment{}, false
}

func lastSegment(n ast.Node) (text.Segment, bool) {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return n.Lines().At(n.Lines().Len() - 1), true
	}
	for c := n.LastChild(); c != nil; c = c.PreviousSibling() {
		if s, ok := lastSegment(c); ok {
			return s, true
		}
	}
	return text.Segment{}, false
}
