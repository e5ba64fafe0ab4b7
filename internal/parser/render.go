package parser

import (
	"strings"

	"github.com/corelogio/corelog/core"
)

// Render walks the compiled segments, copying literals and rendering each
// placeholder against args by position. A placeholder whose index exceeds
// len(args) renders as its original `{name[:spec]}` substring and
// contributes no property (properties.size() <= placeholder count).
//
// Extraction carries the raw pre-format-spec value, the operator, and the
// transform list on each PlaceholderProperty for structured output.
func Render(plan *TemplatePlan, args []string, locale string) (string, []core.PlaceholderProperty) {
	var msg strings.Builder
	var props []core.PlaceholderProperty

	argIdx := 0
	for _, seg := range plan.Segments {
		if seg.Literal {
			msg.WriteString(seg.Text)
			continue
		}

		idx := argIdx
		argIdx++
		if idx >= len(args) {
			msg.WriteString(seg.Raw)
			continue
		}

		raw := args[idx]
		rendered := applyFormatSpec(raw, seg.Spec, locale)
		rendered = applyTransforms(rendered, seg.Transforms)
		msg.WriteString(rendered)

		props = append(props, core.PlaceholderProperty{
			Name:       seg.Name,
			Value:      raw,
			Op:         seg.Op,
			Transforms: seg.Transforms,
		})
	}

	return msg.String(), props
}
