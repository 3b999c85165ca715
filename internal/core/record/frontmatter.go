package record

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// Parse splits raw file content into an ordered header and a body.
//
// A file without a leading fence, without a closing fence, or with a header
// that is neither valid YAML nor plain "key: value" lines is treated as
// body-only. Parse never fails.
func Parse(content []byte) (Header, string, bool) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")

	if !strings.HasPrefix(text, fence+"\n") {
		return Header{}, text, false
	}

	rest := text[len(fence)+1:]
	var raw, body string
	switch {
	case strings.HasPrefix(rest, fence+"\n"):
		raw, body = "", rest[len(fence)+1:]
	case rest == fence:
		raw, body = "", ""
	default:
		end := strings.Index(rest, "\n"+fence+"\n")
		if end < 0 {
			if !strings.HasSuffix(rest, "\n"+fence) {
				return Header{}, text, false
			}
			end = len(rest) - len(fence) - 1
			raw, body = rest[:end], ""
		} else {
			raw, body = rest[:end], rest[end+len(fence)+2:]
		}
	}

	if h, ok := parseYAML(raw); ok {
		return h, body, true
	}
	if h, ok := parseLines(raw); ok {
		return h, body, true
	}
	return Header{}, text, false
}

// ParseRecord parses content into a record with the given file name.
func ParseRecord(name string, content []byte) *Record {
	h, body, ok := Parse(content)
	return &Record{Name: name, Header: h, Body: body, HasHeader: ok}
}

func parseYAML(raw string) (Header, bool) {
	if strings.TrimSpace(raw) == "" {
		return Header{}, true
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return Header{}, false
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return Header{}, false
	}
	m := doc.Content[0]
	if m.Kind != yaml.MappingNode {
		return Header{}, false
	}

	var h Header
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return Header{}, false
		}
		h.Set(k.Value, nodeValue(v))
	}
	return h, true
}

// nodeValue flattens a YAML value into a header string. Scalar sequences
// become comma-separated lists; anything else is re-encoded inline.
func nodeValue(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return ""
		}
		return n.Value
	case yaml.SequenceNode:
		parts := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				return encodeInline(n)
			}
			parts = append(parts, c.Value)
		}
		return strings.Join(parts, ", ")
	case yaml.AliasNode:
		if n.Alias != nil {
			return nodeValue(n.Alias)
		}
		return ""
	default:
		return encodeInline(n)
	}
}

func encodeInline(n *yaml.Node) string {
	c := *n
	c.Style = yaml.FlowStyle
	out, err := yaml.Marshal(&c)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func parseLines(raw string) (Header, bool) {
	var h Header
	for line := range strings.SplitSeq(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return Header{}, false
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return Header{}, false
		}
		h.Set(key, strings.TrimSpace(value))
	}
	return h, true
}

// Render writes a header block followed by the body. Values are emitted as
// plain scalars where YAML allows it and quoted otherwise.
func Render(h Header, body string) []byte {
	var buf bytes.Buffer
	buf.WriteString(fence + "\n")

	if h.Len() > 0 {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range h.fields {
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: f.Key},
				&yaml.Node{Kind: yaml.ScalarNode, Value: f.Value},
			)
		}
		out, err := yaml.Marshal(m)
		if err != nil {
			for _, f := range h.fields {
				buf.WriteString(f.Key + ": " + f.Value + "\n")
			}
		} else {
			buf.Write(out)
		}
	}

	buf.WriteString(fence + "\n")
	buf.WriteString(body)
	return buf.Bytes()
}
