// Package parser implements the message template engine: parsing placeholder
// templates into a cacheable plan, applying format specifiers and pipe
// transforms, and rendering the final message plus extracted properties.
package parser

import "github.com/corelogio/corelog/core"

// Segment is one piece of a compiled TemplatePlan: either literal text
// (double-brace escapes already collapsed) or a placeholder descriptor.
type Segment struct {
	Literal bool
	Text    string // valid when Literal

	Name       string // placeholder name, valid when !Literal
	Op         core.Op
	Spec       string   // format spec, empty if none
	Transforms []string // pipe transforms, left to right

	// Raw is the original `{...}` substring, rendered verbatim when this
	// placeholder's index exceeds the supplied argument count.
	Raw string
}

// TemplatePlan is the parsed, cacheable form of a template string.
type TemplatePlan struct {
	Raw      string
	Segments []Segment
	// PlaceholderCount is the number of non-literal segments.
	PlaceholderCount int
}
