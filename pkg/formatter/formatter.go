// Package formatter implements the response pretty-printer: auto-detect
// JSON/XML/plain, 2-space indent, idempotent output (see DESIGN.md for why
// the XML branch is hand-rolled over stdlib encoding/xml). JSON formatting
// reaches for encoding/json.Indent the same way the response formatter this
// package replaces did.
package formatter

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"strings"
)

// Format auto-detects body's shape and returns an indented, human-readable
// rendering. A valid JSON document is 2-space indented; a document starting
// with '<' and containing '>' is treated as XML and re-indented with
// self-closing tags preserved; anything else passes through as UTF-8 text
// verbatim.
func Format(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	if looksLikeJSON(trimmed) {
		if formatted, ok := formatJSON(trimmed); ok {
			return formatted
		}
	}

	if looksLikeXML(trimmed) {
		if formatted, ok := formatXML(trimmed); ok {
			return formatted
		}
	}

	return string(body)
}

func looksLikeJSON(b []byte) bool {
	return len(b) > 0 && (b[0] == '{' || b[0] == '[' || b[0] == '"' || isJSONScalarStart(b[0]))
}

func isJSONScalarStart(c byte) bool {
	return c == '-' || (c >= '0' && c <= '9') || c == 't' || c == 'f' || c == 'n'
}

func formatJSON(b []byte) (string, bool) {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return "", false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", "  "); err != nil {
		return "", false
	}
	return buf.String(), true
}

func looksLikeXML(b []byte) bool {
	return b[0] == '<' && bytes.Contains(b, []byte(">"))
}

// formatXML re-indents an XML document two spaces per nesting level.
// encoding/xml's own Encoder always writes a separate closing tag for every
// StartElement it's given, so it can't reproduce "<tag/>" on its own; this
// buffers one pending StartElement at a time and collapses it to a
// self-closing tag when the very next token is its matching EndElement with
// no content in between.
func formatXML(b []byte) (string, bool) {
	decoder := xml.NewDecoder(bytes.NewReader(b))
	var buf bytes.Buffer
	depth := 0

	var pending *xml.StartElement
	flushPending := func(selfClosing bool) {
		if pending == nil {
			return
		}
		buf.WriteString(strings.Repeat("  ", depth))
		buf.WriteByte('<')
		buf.WriteString(pending.Name.Local)
		for _, attr := range pending.Attr {
			buf.WriteByte(' ')
			buf.WriteString(attr.Name.Local)
			buf.WriteString(`="`)
			buf.WriteString(attr.Value)
			buf.WriteByte('"')
		}
		if selfClosing {
			buf.WriteString("/>\n")
		} else {
			buf.WriteString(">\n")
			depth++
		}
		pending = nil
	}

	wroteAny := false
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			flushPending(false)
			start := t.Copy()
			pending = &start
			wroteAny = true
		case xml.EndElement:
			if pending != nil {
				flushPending(true)
			} else {
				depth--
				if depth < 0 {
					depth = 0
				}
				buf.WriteString(strings.Repeat("  ", depth))
				buf.WriteString("</")
				buf.WriteString(t.Name.Local)
				buf.WriteString(">\n")
			}
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			flushPending(false)
			buf.WriteString(strings.Repeat("  ", depth))
			buf.WriteString(text)
			buf.WriteByte('\n')
		}
	}
	flushPending(true)

	if !wroteAny {
		return "", false
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", true
}
