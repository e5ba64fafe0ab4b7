package core

import (
	"fmt"
	"strings"
)

// Predicate is a user-supplied filter function. A predicate that panics is
// treated as fail-open by the caller (the pipeline recovers and lets the
// entry pass that stage) — see filterpipeline.go in the root package.
type Predicate func(entry *LogEntry) bool

// ruleKind enumerates the FilterRule DSL grammar from the rule-string
// parser, grounded on the original engine's FilterRule::parse/evaluate.
type ruleKind int

const (
	ruleLevelGE ruleKind = iota
	ruleLevelEQ
	ruleLevelNE
	ruleMessageContains
	ruleMessageStartsWith
	ruleContextHas
	ruleContextKeyEQ
	ruleTemplateEQ
	ruleTemplateContains
)

// FilterRule is one parsed DSL rule. Rules are immutable once parsed and are
// AND-combined by callers holding an ordered slice.
type FilterRule struct {
	kind    ruleKind
	negated bool
	level   Level
	key     string
	value   string
}

// Evaluate reports whether entry passes this rule (true = keep).
func (r FilterRule) Evaluate(entry *LogEntry) bool {
	var result bool
	switch r.kind {
	case ruleLevelGE:
		result = entry.Level >= r.level
	case ruleLevelEQ:
		result = entry.Level == r.level
	case ruleLevelNE:
		result = entry.Level != r.level
	case ruleMessageContains:
		result = strings.Contains(entry.Message, r.value)
	case ruleMessageStartsWith:
		result = strings.HasPrefix(entry.Message, r.value)
	case ruleContextHas:
		_, result = entry.CustomContext[r.value]
	case ruleContextKeyEQ:
		v, ok := entry.CustomContext[r.key]
		result = ok && v == r.value
	case ruleTemplateEQ:
		result = entry.TemplateStr == r.value
	case ruleTemplateContains:
		result = strings.Contains(entry.TemplateStr, r.value)
	}
	if r.negated {
		return !result
	}
	return result
}

// ParseFilterRule parses one DSL rule string.
//
// Grammar:
//
//	level >= LEVEL  /  level == LEVEL  /  level != LEVEL
//	message contains 'text'  /  message startswith 'text'
//	context has 'key'  /  context key == 'value'
//	template == 'text'  /  template contains 'text'
//	not <rule>
//
// String values are delimited by outer single quotes with no escape
// sequences; the outermost pair is stripped, so a value cannot both start
// and end with a single quote (documented limitation — use a Predicate for
// that case instead).
func ParseFilterRule(rule string) (FilterRule, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return FilterRule{}, fmt.Errorf("corelog: empty filter rule")
	}

	var negated bool
	if strings.HasPrefix(trimmed, "not ") {
		negated = true
		trimmed = strings.TrimSpace(trimmed[len("not "):])
		if trimmed == "" {
			return FilterRule{}, fmt.Errorf("corelog: empty rule after 'not'")
		}
	}

	switch {
	case strings.HasPrefix(trimmed, "level "):
		rest := strings.TrimSpace(trimmed[len("level "):])
		var kind ruleKind
		var opLen int
		switch {
		case strings.HasPrefix(rest, ">= "):
			kind, opLen = ruleLevelGE, 3
		case strings.HasPrefix(rest, "== "):
			kind, opLen = ruleLevelEQ, 3
		case strings.HasPrefix(rest, "!= "):
			kind, opLen = ruleLevelNE, 3
		default:
			return FilterRule{}, fmt.Errorf("corelog: invalid level operator in rule: %s", rule)
		}
		lvl, ok := ParseLevel(strings.TrimSpace(rest[opLen:]))
		if !ok {
			return FilterRule{}, fmt.Errorf("corelog: unknown log level in rule: %s", rule)
		}
		return FilterRule{kind: kind, negated: negated, level: lvl}, nil

	case strings.HasPrefix(trimmed, "message "):
		rest := strings.TrimSpace(trimmed[len("message "):])
		switch {
		case strings.HasPrefix(rest, "contains "):
			val, err := extractQuoted(strings.TrimSpace(rest[len("contains "):]), rule)
			if err != nil {
				return FilterRule{}, err
			}
			return FilterRule{kind: ruleMessageContains, negated: negated, value: val}, nil
		case strings.HasPrefix(rest, "startswith "):
			val, err := extractQuoted(strings.TrimSpace(rest[len("startswith "):]), rule)
			if err != nil {
				return FilterRule{}, err
			}
			return FilterRule{kind: ruleMessageStartsWith, negated: negated, value: val}, nil
		default:
			return FilterRule{}, fmt.Errorf("corelog: invalid message operator in rule: %s", rule)
		}

	case strings.HasPrefix(trimmed, "context "):
		rest := strings.TrimSpace(trimmed[len("context "):])
		if strings.HasPrefix(rest, "has ") {
			val, err := extractQuoted(strings.TrimSpace(rest[len("has "):]), rule)
			if err != nil {
				return FilterRule{}, err
			}
			return FilterRule{kind: ruleContextHas, negated: negated, value: val}, nil
		}
		sp := strings.IndexByte(rest, ' ')
		if sp < 0 {
			return FilterRule{}, fmt.Errorf("corelog: invalid context rule: %s", rule)
		}
		key := rest[:sp]
		afterKey := strings.TrimSpace(rest[sp+1:])
		if !strings.HasPrefix(afterKey, "== ") {
			return FilterRule{}, fmt.Errorf("corelog: invalid context operator in rule: %s", rule)
		}
		val, err := extractQuoted(strings.TrimSpace(afterKey[3:]), rule)
		if err != nil {
			return FilterRule{}, err
		}
		return FilterRule{kind: ruleContextKeyEQ, negated: negated, key: key, value: val}, nil

	case strings.HasPrefix(trimmed, "template "):
		rest := strings.TrimSpace(trimmed[len("template "):])
		switch {
		case strings.HasPrefix(rest, "== "):
			val, err := extractQuoted(strings.TrimSpace(rest[3:]), rule)
			if err != nil {
				return FilterRule{}, err
			}
			return FilterRule{kind: ruleTemplateEQ, negated: negated, value: val}, nil
		case strings.HasPrefix(rest, "contains "):
			val, err := extractQuoted(strings.TrimSpace(rest[len("contains "):]), rule)
			if err != nil {
				return FilterRule{}, err
			}
			return FilterRule{kind: ruleTemplateContains, negated: negated, value: val}, nil
		default:
			return FilterRule{}, fmt.Errorf("corelog: invalid template operator in rule: %s", rule)
		}
	}

	return FilterRule{}, fmt.Errorf("corelog: unrecognized filter rule: %s", rule)
}

// extractQuoted strips one outer pair of single quotes. There is no escape
// syntax, so a value that itself starts and ends with a single quote cannot
// be represented this way.
func extractQuoted(s, rule string) (string, error) {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1], nil
	}
	return "", fmt.Errorf("corelog: expected single-quoted string in rule: %s", rule)
}

// EvaluateRules AND-combines an ordered rule slice. An empty slice passes.
func EvaluateRules(rules []FilterRule, entry *LogEntry) bool {
	for _, r := range rules {
		if !r.Evaluate(entry) {
			return false
		}
	}
	return true
}
