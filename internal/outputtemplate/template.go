// Package outputtemplate implements the per-sink output-template grammar
// from spec.md §4.6: `{timestamp[:pattern]}`, `{level[:u3|l]}`, `{message}`,
// `{newline}`, `{properties}`, `{template}`, `{source}`, `{threadId}`,
// `{exception}`, with C#-style alignment `{token,N[:spec]}` (positive right
// aligns, negative left aligns).
package outputtemplate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/corelogio/corelog/core"
)

// Template is a compiled output template: literal runs interleaved with
// token references.
type Template struct {
	parts []part
}

type part struct {
	literal string
	isToken bool
	token   string
	pattern string
	width   int
	hasW    bool
}

// Parse compiles a template string. Unknown tokens render as empty string
// at Render time rather than failing parse — output templates are a
// presentation concern and should degrade, not panic, on a typo.
func Parse(tmpl string) (*Template, error) {
	var t Template
	var lit strings.Builder
	i, n := 0, len(tmpl)
	flush := func() {
		if lit.Len() > 0 {
			t.parts = append(t.parts, part{literal: lit.String()})
			lit.Reset()
		}
	}
	for i < n {
		c := tmpl[i]
		if c != '{' {
			lit.WriteByte(c)
			i++
			continue
		}
		end := strings.IndexByte(tmpl[i+1:], '}')
		if end < 0 {
			lit.WriteString(tmpl[i:])
			i = n
			break
		}
		content := tmpl[i+1 : i+1+end]
		flush()
		p, err := parseToken(content)
		if err != nil {
			return nil, fmt.Errorf("corelog: invalid output template token {%s}: %w", content, err)
		}
		t.parts = append(t.parts, p)
		i = i + 1 + end + 1
	}
	flush()
	return &t, nil
}

func parseToken(content string) (part, error) {
	// token[,width][:spec]
	name := content
	width := 0
	hasW := false
	spec := ""

	if comma := strings.IndexByte(name, ','); comma >= 0 {
		rest := name[comma+1:]
		name = name[:comma]
		if colon := strings.IndexByte(rest, ':'); colon >= 0 {
			spec = rest[colon+1:]
			rest = rest[:colon]
		}
		w, err := strconv.Atoi(rest)
		if err != nil {
			return part{}, fmt.Errorf("invalid alignment width %q", rest)
		}
		width = w
		hasW = true
	} else if colon := strings.IndexByte(name, ':'); colon >= 0 {
		spec = name[colon+1:]
		name = name[:colon]
	}

	return part{isToken: true, token: name, pattern: spec, width: width, hasW: hasW}, nil
}

// Render expands the compiled template against entry.
func (t *Template) Render(entry *core.LogEntry) string {
	var b strings.Builder
	for _, p := range t.parts {
		if !p.isToken {
			b.WriteString(p.literal)
			continue
		}
		text := renderToken(p.token, p.pattern, entry)
		if p.hasW {
			text = align(text, p.width)
		}
		b.WriteString(text)
	}
	return b.String()
}

func align(s string, width int) string {
	w := width
	left := false
	if w < 0 {
		left = true
		w = -w
	}
	if len(s) >= w {
		return s
	}
	pad := strings.Repeat(" ", w-len(s))
	if left {
		return s + pad
	}
	return pad + s
}

func renderToken(token, pattern string, entry *core.LogEntry) string {
	switch token {
	case "timestamp":
		return formatTimestamp(entry, pattern)
	case "level":
		return formatLevelToken(entry, pattern)
	case "message":
		return entry.Message
	case "newline":
		return "\n"
	case "properties":
		return renderProperties(entry)
	case "template":
		return entry.TemplateStr
	case "source":
		return renderSource(entry)
	case "threadId":
		return entry.ThreadID
	case "exception":
		return renderException(entry)
	default:
		return ""
	}
}

func formatLevelToken(entry *core.LogEntry, spec string) string {
	switch spec {
	case "u3", "":
		return entry.Level.Abbrev()
	case "l":
		return entry.Level.Lower()
	default:
		return entry.Level.String()
	}
}

func renderSource(entry *core.LogEntry) string {
	if entry.File == "" {
		return ""
	}
	if entry.Function != "" {
		return fmt.Sprintf("%s:%d %s", entry.File, entry.Line, entry.Function)
	}
	return fmt.Sprintf("%s:%d", entry.File, entry.Line)
}

func renderException(entry *core.LogEntry) string {
	if entry.Exception == nil {
		return ""
	}
	if entry.Exception.Chain != "" {
		return entry.Exception.Chain
	}
	return entry.Exception.Type + ": " + entry.Exception.Message
}

func renderProperties(entry *core.LogEntry) string {
	if len(entry.CustomContext) == 0 {
		return ""
	}
	keys := make([]string, 0, len(entry.CustomContext))
	for k := range entry.CustomContext {
		keys = append(keys, k)
	}
	// Deterministic order for reproducible output; insertion order isn't
	// preserved by a Go map, unlike the spec's "insertion-key mapping".
	sortStrings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := entry.CustomContext[k]
		if strings.ContainsAny(v, ",=") {
			v = strconv.Quote(v)
		}
		parts = append(parts, k+"="+v)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// SerilogTimestampToStrftime translates a Serilog-ish token pattern (yyyy
// MM dd HH mm ss fff) into a Go reference-time layout.
func SerilogTimestampToStrftime(pattern string) string {
	replacer := strings.NewReplacer(
		"yyyy", "2006",
		"MM", "01",
		"dd", "02",
		"HH", "15",
		"mm", "04",
		"ss", "05",
		"fff", "000",
	)
	return replacer.Replace(pattern)
}

func formatTimestamp(entry *core.LogEntry, pattern string) string {
	layout := "2006-01-02 15:04:05.000"
	if pattern != "" {
		layout = SerilogTimestampToStrftime(pattern)
	}
	return entry.Timestamp.Format(layout)
}
