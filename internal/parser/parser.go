package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/corelogio/corelog/core"
)

// Parse parses a message template string into a TemplatePlan. Bracket rules:
//
//	{{ and }} are literal { and } in output; they do NOT generate placeholders.
//	A placeholder begins at {, ends at the next }; an unterminated { terminates
//	parsing and the remainder is literal.
//	Placeholder content grammar: [op] name [':' spec] ['|' transform]*
func Parse(template string) *TemplatePlan {
	var segs []Segment
	var placeholderCount int
	var buf strings.Builder

	flushLiteral := func() {
		if buf.Len() > 0 {
			segs = append(segs, Segment{Literal: true, Text: buf.String()})
			buf.Reset()
		}
	}

	n := len(template)
	i := 0
	for i < n {
		c := template[i]
		switch {
		case c == '{':
			if i+1 < n && template[i+1] == '{' {
				buf.WriteByte('{')
				i += 2
				continue
			}
			closeIdx := strings.IndexByte(template[i+1:], '}')
			if closeIdx < 0 {
				buf.WriteString(template[i:])
				i = n
				continue
			}
			end := i + 1 + closeIdx
			content := template[i+1 : end]
			raw := template[i : end+1]
			if seg, ok := parsePlaceholderContent(content, raw); ok {
				flushLiteral()
				segs = append(segs, seg)
				placeholderCount++
			} else {
				buf.WriteString(raw)
			}
			i = end + 1

		case c == '}':
			if i+1 < n && template[i+1] == '}' {
				buf.WriteByte('}')
				i += 2
				continue
			}
			buf.WriteByte('}')
			i++

		default:
			buf.WriteByte(c)
			i++
		}
	}
	flushLiteral()

	return &TemplatePlan{Raw: template, Segments: segs, PlaceholderCount: placeholderCount}
}

// parsePlaceholderContent parses the interior of a `{...}` placeholder.
// Returns ok=false for invalid operator forms ({@}, {@@x}, {@ x}), which
// callers must emit verbatim as literal text.
func parsePlaceholderContent(content, raw string) (Segment, bool) {
	parts := strings.Split(content, "|")
	head := parts[0]

	var transforms []string
	for _, t := range parts[1:] {
		t = strings.TrimSpace(t)
		if t != "" {
			transforms = append(transforms, t)
		}
	}

	op := core.OpNone
	name := head
	if len(head) > 0 && (head[0] == '@' || head[0] == '$') {
		rest := head[1:]
		if rest == "" {
			return Segment{}, false
		}
		r, _ := utf8.DecodeRuneInString(rest)
		if !isIdentStart(r) {
			return Segment{}, false
		}
		op = core.Op(head[0])
		name = rest
	}

	spec := ""
	if idx := strings.LastIndexByte(name, ':'); idx >= 0 {
		spec = name[idx+1:]
		name = name[:idx]
	}

	return Segment{
		Name:       name,
		Op:         op,
		Spec:       spec,
		Transforms: transforms,
		Raw:        raw,
	}, true
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// ExtractPropertyNames returns the ordered, deduplicated placeholder names
// in a template.
func ExtractPropertyNames(template string) []string {
	plan := Parse(template)
	names := make([]string, 0, plan.PlaceholderCount)
	seen := make(map[string]bool, plan.PlaceholderCount)
	for _, seg := range plan.Segments {
		if seg.Literal || seen[seg.Name] {
			continue
		}
		seen[seg.Name] = true
		names = append(names, seg.Name)
	}
	return names
}
