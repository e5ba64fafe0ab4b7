package core

import (
	"fmt"
	"strings"
)

// ParseCompactFilter parses a whitespace-separated compact filter
// expression into an AND-combined slice of FilterRule. Tokens:
//
//	LEVEL+          minimum level, e.g. "WARN+" (also accepts "WARNING+")
//	~text           message contains text
//	!~text          message does not contain text
//	tpl:text        template equals text (exact match)
//	!tpl:text       template does not equal text
//	ctx:key         context has key
//	ctx:key=value   context key equals value
//
// The tokenizer is quote-aware: whitespace inside a single-quoted substring
// does not split a token. A token value containing an embedded single quote
// is rejected — use ParseFilterRule or a Predicate for that case.
func ParseCompactFilter(expr string) ([]FilterRule, error) {
	tokens, err := tokenizeCompact(expr)
	if err != nil {
		return nil, err
	}
	rules := make([]FilterRule, 0, len(tokens))
	for _, tok := range tokens {
		rule, err := parseCompactToken(tok)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// tokenizeCompact splits expr on runs of whitespace, except whitespace
// enclosed in a single-quoted substring.
func tokenizeCompact(expr string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range expr {
		switch {
		case r == '\'':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inQuote {
				cur.WriteRune(r)
			} else {
				flush()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("corelog: unterminated quote in compact filter: %s", expr)
	}
	flush()
	return tokens, nil
}

func compactStripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}

// compactDslQuote validates that a raw (unquoted) compact-filter value has
// no embedded single quote, since the compact grammar has no escape syntax.
func compactDslQuote(value string) error {
	if strings.ContainsRune(value, '\'') {
		return fmt.Errorf(
			"corelog: compact filter value cannot contain single quotes (DSL limitation). "+
				"Use ParseFilterRule or a Predicate instead. Value: %s", value)
	}
	return nil
}

func parseCompactToken(tok string) (FilterRule, error) {
	switch {
	case strings.HasSuffix(tok, "+") && isCompactLevelName(strings.TrimSuffix(tok, "+")):
		name := strings.TrimSuffix(tok, "+")
		lvl, ok := ParseLevel(name)
		if !ok {
			return FilterRule{}, fmt.Errorf("corelog: unknown level in compact filter token: %s", tok)
		}
		return FilterRule{kind: ruleLevelGE, level: lvl}, nil

	case strings.HasPrefix(tok, "!tpl:"):
		val := compactStripQuotes(tok[len("!tpl:"):])
		if err := compactDslQuote(val); err != nil {
			return FilterRule{}, err
		}
		return FilterRule{kind: ruleTemplateEQ, negated: true, value: val}, nil

	case strings.HasPrefix(tok, "tpl:"):
		val := compactStripQuotes(tok[len("tpl:"):])
		if err := compactDslQuote(val); err != nil {
			return FilterRule{}, err
		}
		return FilterRule{kind: ruleTemplateEQ, value: val}, nil

	case strings.HasPrefix(tok, "!~"):
		val := tok[len("!~"):]
		if err := compactDslQuote(val); err != nil {
			return FilterRule{}, err
		}
		return FilterRule{kind: ruleMessageContains, negated: true, value: val}, nil

	case strings.HasPrefix(tok, "~"):
		val := tok[len("~"):]
		if err := compactDslQuote(val); err != nil {
			return FilterRule{}, err
		}
		return FilterRule{kind: ruleMessageContains, value: val}, nil

	case strings.HasPrefix(tok, "ctx:"):
		rest := tok[len("ctx:"):]
		eq := indexUnquotedEquals(rest)
		if eq < 0 {
			if err := compactDslQuote(rest); err != nil {
				return FilterRule{}, err
			}
			return FilterRule{kind: ruleContextHas, value: rest}, nil
		}
		key := rest[:eq]
		val := compactStripQuotes(rest[eq+1:])
		if err := compactDslQuote(key); err != nil {
			return FilterRule{}, err
		}
		if err := compactDslQuote(val); err != nil {
			return FilterRule{}, err
		}
		return FilterRule{kind: ruleContextKeyEQ, key: key, value: val}, nil
	}

	return FilterRule{}, fmt.Errorf("corelog: unrecognized compact filter token: %s", tok)
}

// indexUnquotedEquals finds the first '=' not inside a single-quoted
// substring, e.g. "key='a=b'" returns the index of the first '='.
func indexUnquotedEquals(s string) int {
	inQuote := false
	for i, r := range s {
		switch r {
		case '\'':
			inQuote = !inQuote
		case '=':
			if !inQuote {
				return i
			}
		}
	}
	return -1
}

func isCompactLevelName(name string) bool {
	upper := strings.ToUpper(name)
	switch upper {
	case "TRACE", "DEBUG", "INFO", "WARN", "WARNING", "ERROR", "FATAL":
		return true
	default:
		return false
	}
}
