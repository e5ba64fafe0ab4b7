package formatters

import (
	"strconv"
	"strings"

	"github.com/corelogio/corelog/core"
)

// XML renders a `<log_entry>` element mirroring the verbose JSON fields.
// Property names are sanitized to legal XML name starts; destructure/
// stringify operators become `destructure="true"` / `stringify="true"`
// attributes on the property element.
type XML struct{}

func NewXML() *XML { return &XML{} }

func (f *XML) Format(entry *core.LogEntry) string {
	var b strings.Builder
	b.WriteString("<log_entry>")

	writeXMLElement(&b, "level", entry.Level.String())
	writeXMLElement(&b, "timestamp", isoMillis(entry.Timestamp))
	writeXMLElement(&b, "message", entry.Message)
	writeXMLElement(&b, "message_template", entry.TemplateStr)
	writeXMLElement(&b, "template_hash", strconv.FormatUint(uint64(entry.TemplateHash), 10))

	if entry.File != "" {
		writeXMLElement(&b, "file", entry.File)
		writeXMLElement(&b, "line", strconv.Itoa(entry.Line))
	}
	if entry.Function != "" {
		writeXMLElement(&b, "function", entry.Function)
	}

	if len(entry.CustomContext) > 0 {
		b.WriteString("<context>")
		keys := make([]string, 0, len(entry.CustomContext))
		for k := range entry.CustomContext {
			keys = append(keys, k)
		}
		sortKeys(keys)
		for _, k := range keys {
			writeXMLElement(&b, sanitizeXMLName(k), entry.CustomContext[k])
		}
		b.WriteString("</context>")
	}

	if len(entry.Tags) > 0 {
		b.WriteString("<tags>")
		for _, t := range entry.Tags {
			writeXMLElement(&b, "tag", t)
		}
		b.WriteString("</tags>")
	}

	if len(entry.Properties) > 0 {
		b.WriteString("<properties>")
		for _, p := range entry.Properties {
			writePropertyElement(&b, p)
		}
		b.WriteString("</properties>")
	}

	if entry.HasException() {
		b.WriteString("<exception>")
		writeXMLElement(&b, "type", entry.Exception.Type)
		writeXMLElement(&b, "message", entry.Exception.Message)
		if entry.Exception.Chain != "" {
			writeXMLElement(&b, "chain", entry.Exception.Chain)
		}
		b.WriteString("</exception>")
	}

	b.WriteString("</log_entry>")
	return b.String()
}

func writePropertyElement(b *strings.Builder, p core.PlaceholderProperty) {
	name := sanitizeXMLName(p.Name)
	b.WriteByte('<')
	b.WriteString(name)
	switch p.Op {
	case core.OpDestructure:
		b.WriteString(` destructure="true"`)
	case core.OpStringify:
		b.WriteString(` stringify="true"`)
	}
	b.WriteByte('>')
	b.WriteString(xmlEscapeText(p.Value))
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}

func writeXMLElement(b *strings.Builder, name, value string) {
	b.WriteByte('<')
	b.WriteString(name)
	b.WriteByte('>')
	b.WriteString(xmlEscapeText(value))
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}

// sanitizeXMLName replaces characters illegal at the start or within an
// XML element name with '_'. Good enough for the context/property keys
// this library produces (ASCII identifiers); it isn't a full XML 1.0 NameChar
// table.
func sanitizeXMLName(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	b.Grow(len(name))
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			} else {
				b.WriteRune(r)
			}
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func xmlEscapeText(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return replacer.Replace(s)
}
