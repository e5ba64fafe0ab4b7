package corelog

import "strings"

// extractTags parses a leading run of `[tag]` prefixes with no gap between
// brackets. A bracket whose contents don't match [A-Za-z0-9_-]+ terminates
// parsing; that bracket and everything after it become the message body,
// unchanged.
func extractTags(message string) ([]string, string) {
	var tags []string
	rest := message
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		content := rest[1:end]
		if !isTagName(content) {
			break
		}
		tags = append(tags, content)
		rest = rest[end+1:]
	}
	return tags, rest
}

func isTagName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
