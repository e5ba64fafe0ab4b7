package formatters

import (
	"strconv"
	"strings"

	"github.com/corelogio/corelog/core"
)

// CLEF renders the Seq-compatible compact JSON line format: a single `{...}`
// object per entry with keys `@t, @l?, @mt, @i?, @m?, @x?`, followed by user
// property and context keys flattened alongside, then `tags?`.
type CLEF struct {
	// RenderMessage opts the rendered `@m` field in; off by default since
	// `@mt` plus properties already let Seq re-render the message.
	RenderMessage bool
}

func NewCLEF() *CLEF {
	return &CLEF{}
}

func NewCLEFWithRenderedMessage() *CLEF {
	return &CLEF{RenderMessage: true}
}

func (f *CLEF) Format(entry *core.LogEntry) string {
	o := newOrderedJSON()
	o.String("@t", isoMillis(entry.Timestamp))
	if entry.Level != core.Info {
		o.String("@l", entry.Level.String())
	}

	mt := entry.TemplateStr
	if mt == "" {
		mt = entry.Message
	}
	o.String("@mt", mt)

	if entry.TemplateHash != 0 {
		o.String("@i", fmtHex8(entry.TemplateHash))
	}

	if f.RenderMessage {
		o.String("@m", entry.Message)
	}

	if entry.HasException() {
		if entry.Exception.Chain != "" {
			o.String("@x", entry.Exception.Chain)
		} else {
			o.String("@x", entry.Exception.Type+": "+entry.Exception.Message)
		}
	}

	for _, p := range entry.Properties {
		key := clefPropertyKey(p.Name)
		writePropertyValue(o, core.PlaceholderProperty{Name: key, Value: p.Value, Op: p.Op})
	}

	if len(entry.CustomContext) > 0 {
		keys := make([]string, 0, len(entry.CustomContext))
		for k := range entry.CustomContext {
			keys = append(keys, k)
		}
		sortKeys(keys)
		for _, k := range keys {
			o.String(clefPropertyKey(k), entry.CustomContext[k])
		}
	}

	if len(entry.Tags) > 0 {
		o.Raw("tags", jsonStringArray(entry.Tags))
	}

	return o.String_()
}

// clefPropertyKey escapes a user property name that collides with the `@`
// reserved-field prefix by doubling it, per spec.md §4.6.
func clefPropertyKey(name string) string {
	if strings.HasPrefix(name, "@") {
		return "@" + name
	}
	return name
}

// fmtHex8 renders a uint32 as a zero-padded 8-character lowercase hex
// string, the `@i` event-id shape Seq expects.
func fmtHex8(v uint32) string {
	hex := strconv.FormatUint(uint64(v), 16)
	if len(hex) < 8 {
		hex = strings.Repeat("0", 8-len(hex)) + hex
	}
	return hex
}
