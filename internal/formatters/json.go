package formatters

import (
	"strconv"
	"strings"

	"github.com/corelogio/corelog/core"
)

// JSON renders the verbose JSON object layout: fixed key order `level,
// timestamp, message, messageTemplate, templateHash, file?, line?,
// function?, context?, tags?, properties?, transforms?`.
type JSON struct{}

func NewJSON() *JSON { return &JSON{} }

func (f *JSON) Format(entry *core.LogEntry) string {
	o := newOrderedJSON()
	o.String("level", entry.Level.String())
	o.String("timestamp", isoMillis(entry.Timestamp))
	o.String("message", entry.Message)
	o.String("messageTemplate", entry.TemplateStr)
	o.Raw("templateHash", strconv.FormatUint(uint64(entry.TemplateHash), 10))

	if entry.File != "" {
		o.String("file", entry.File)
		o.Int("line", int64(entry.Line))
	}
	if entry.Function != "" {
		o.String("function", entry.Function)
	}

	if len(entry.CustomContext) > 0 {
		ctxObj := newOrderedJSON()
		keys := make([]string, 0, len(entry.CustomContext))
		for k := range entry.CustomContext {
			keys = append(keys, k)
		}
		sortKeys(keys)
		for _, k := range keys {
			ctxObj.String(k, entry.CustomContext[k])
		}
		o.Raw("context", ctxObj.String_())
	}

	if len(entry.Tags) > 0 {
		o.Raw("tags", jsonStringArray(entry.Tags))
	}

	if len(entry.Properties) > 0 {
		propsObj := newOrderedJSON()
		var transforms []string
		for _, p := range entry.Properties {
			writePropertyValue(propsObj, p)
			if len(p.Transforms) > 0 {
				transforms = append(transforms, p.Name+":"+strings.Join(p.Transforms, "|"))
			}
		}
		o.Raw("properties", propsObj.String_())
		if len(transforms) > 0 {
			o.Raw("transforms", jsonStringArray(transforms))
		}
	}

	if entry.HasException() {
		excObj := newOrderedJSON()
		excObj.String("type", entry.Exception.Type)
		excObj.String("message", entry.Exception.Message)
		if entry.Exception.Chain != "" {
			excObj.String("chain", entry.Exception.Chain)
		}
		o.Raw("exception", excObj.String_())
	}

	return o.String_()
}

// writePropertyValue emits one placeholder property into obj, destructuring
// to a JSON-native number/boolean for op=='@' when the value parses as one.
func writePropertyValue(obj *orderedJSON, p core.PlaceholderProperty) {
	if p.Op == core.OpDestructure {
		if lit, ok := tryNumericOrBool(p.Value); ok {
			obj.Raw(p.Name, lit)
			return
		}
	}
	obj.String(p.Name, p.Value)
}

func jsonStringArray(items []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, s := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(jsonEscapeString(s))
	}
	b.WriteByte(']')
	return b.String()
}
