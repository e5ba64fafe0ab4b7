package formatters

import (
	"strconv"
	"strings"
	"time"

	"github.com/corelogio/corelog/core"
	"github.com/corelogio/corelog/internal/outputtemplate"
)

// Human renders the default `"<timestamp> [LEVEL] <message>[ <file:line
// function>][ {k=v, …}]"` layout, or a caller-supplied output template when
// one is set via WithTemplate.
type Human struct {
	tmpl *outputtemplate.Template
}

// NewHuman builds the default human-readable formatter.
func NewHuman() *Human {
	return &Human{}
}

// NewHumanWithTemplate builds a human-readable formatter that renders every
// entry through tmpl instead of the default layout.
func NewHumanWithTemplate(tmpl *outputtemplate.Template) *Human {
	return &Human{tmpl: tmpl}
}

func (h *Human) Format(entry *core.LogEntry) string {
	if h.tmpl != nil {
		return h.tmpl.Render(entry)
	}

	var b strings.Builder
	b.WriteString(entry.Timestamp.Format("2006-01-02 15:04:05.000"))
	b.WriteString(" [")
	b.WriteString(entry.Level.String())
	b.WriteString("] ")
	b.WriteString(entry.Message)

	if entry.File != "" {
		b.WriteByte(' ')
		b.WriteString(entry.File)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(entry.Line))
		if entry.Function != "" {
			b.WriteByte(' ')
			b.WriteString(entry.Function)
		}
	}

	if len(entry.CustomContext) > 0 {
		b.WriteString(" {")
		keys := make([]string, 0, len(entry.CustomContext))
		for k := range entry.CustomContext {
			keys = append(keys, k)
		}
		sortKeys(keys)
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			v := entry.CustomContext[k]
			if strings.ContainsAny(v, ",=") {
				v = strconv.Quote(v)
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(v)
		}
		b.WriteByte('}')
	}

	if entry.Exception != nil {
		b.WriteString(" | ")
		if entry.Exception.Chain != "" {
			b.WriteString(entry.Exception.Chain)
		} else {
			b.WriteString(entry.Exception.Type)
			b.WriteString(": ")
			b.WriteString(entry.Exception.Message)
		}
	}

	return b.String()
}

func sortKeys(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// isoMillis formats t as ISO-8601 UTC with millisecond precision, the
// timestamp shape shared by the CLEF and verbose JSON formatters.
func isoMillis(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
