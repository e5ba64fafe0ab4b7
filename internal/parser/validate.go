package parser

import "fmt"

// ValidateArity checks a parsed plan against the supplied argument count and
// returns the fixed warning messages the logger must emit as secondary
// WARN-level entries. Order: empty-name and duplicate-name warnings (one per
// offending placeholder, in template order) followed by at most one arity
// warning.
func ValidateArity(plan *TemplatePlan, argCount int) []string {
	var warnings []string
	seen := make(map[string]bool)

	for _, seg := range plan.Segments {
		if seg.Literal {
			continue
		}
		if seg.Name == "" {
			warnings = append(warnings, "Warning: Empty placeholder found")
			continue
		}
		if seen[seg.Name] {
			warnings = append(warnings, fmt.Sprintf("Warning: Repeated placeholder name: %s", seg.Name))
			continue
		}
		seen[seg.Name] = true
	}

	switch {
	case plan.PlaceholderCount > argCount:
		warnings = append(warnings, "Warning: More placeholders than provided values")
	case argCount > plan.PlaceholderCount:
		warnings = append(warnings, "Warning: More values provided than placeholders")
	}

	return warnings
}
