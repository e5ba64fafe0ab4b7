package formatters

import (
	"strconv"
	"strings"
)

// orderedJSON builds a JSON object with an explicit key order — Go's
// encoding/json always sorts map keys, which the verbose/CLEF field
// orders in spec.md §4.6 forbid.
type orderedJSON struct {
	b     strings.Builder
	first bool
}

func newOrderedJSON() *orderedJSON {
	o := &orderedJSON{first: true}
	o.b.WriteByte('{')
	return o
}

func (o *orderedJSON) comma() {
	if !o.first {
		o.b.WriteByte(',')
	}
	o.first = false
}

func (o *orderedJSON) key(name string) {
	o.comma()
	o.b.WriteString(jsonEscapeString(name))
	o.b.WriteByte(':')
}

func (o *orderedJSON) String(name, value string) {
	o.key(name)
	o.b.WriteString(jsonEscapeString(value))
}

// Raw writes name: raw where raw is already valid JSON.
func (o *orderedJSON) Raw(name, raw string) {
	o.key(name)
	o.b.WriteString(raw)
}

func (o *orderedJSON) Int(name string, v int64) {
	o.key(name)
	o.b.WriteString(strconv.FormatInt(v, 10))
}

func (o *orderedJSON) Bool(name string, v bool) {
	o.key(name)
	if v {
		o.b.WriteString("true")
	} else {
		o.b.WriteString("false")
	}
}

func (o *orderedJSON) String_() string {
	o.b.WriteByte('}')
	return o.b.String()
}

// jsonEscapeString quotes and escapes s per RFC 8259: control characters as
// \u00XX, the mandatory \", \\ escapes, and UTF-8 multi-byte sequences
// passed through unescaped (valid UTF-8 bytes are legal inside a JSON
// string literal).
func jsonEscapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString(`\u`)
				hex := strconv.FormatInt(int64(r), 16)
				for len(hex) < 4 {
					hex = "0" + hex
				}
				b.WriteString(hex)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// numericJSONLiteral re-serializes a parsed numeric property value as a
// JSON-native number token: plain decimal integer for integral magnitudes
// below 1e15, "%.15g"-equivalent otherwise. strconv never consults the
// process locale, so a comma-for-decimal-point rewrite (needed in a
// locale-sensitive runtime) has no analogue to carry here — it's
// structurally impossible for a comma to appear in Go's float formatting.
func numericJSONLiteral(f float64, wasInt bool, intVal int64) string {
	if wasInt && (intVal > -1_000_000_000_000_000 && intVal < 1_000_000_000_000_000) {
		return strconv.FormatInt(intVal, 10)
	}
	abs := f
	if abs < 0 {
		abs = -abs
	}
	if abs < 1e15 && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', 15, 64)
}

// tryNumericOrBool attempts to read value as a JSON-native number or
// boolean literal for an '@' (destructure) property. ok=false means the
// caller should fall back to a JSON string.
func tryNumericOrBool(value string) (literal string, ok bool) {
	switch value {
	case "true", "false":
		return value, true
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return numericJSONLiteral(float64(i), true, i), true
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return numericJSONLiteral(f, false, 0), true
	}
	return "", false
}
