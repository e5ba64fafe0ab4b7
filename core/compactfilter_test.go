package core

import "testing"

func TestParseCompactFilterLevelToken(t *testing.T) {
	rules, err := ParseCompactFilter("WARN+")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected one rule, got %d", len(rules))
	}
	if !rules[0].Evaluate(&LogEntry{Level: Error}) {
		t.Error("expected WARN+ to pass an Error entry")
	}
	if rules[0].Evaluate(&LogEntry{Level: Info}) {
		t.Error("expected WARN+ to reject an Info entry")
	}
}

func TestParseCompactFilterWarningAlias(t *testing.T) {
	rules, err := ParseCompactFilter("WARNING+")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rules[0].Evaluate(&LogEntry{Level: Warn}) {
		t.Error("expected WARNING+ to alias WARN+")
	}
}

func TestParseCompactFilterMessageContains(t *testing.T) {
	rules, err := ParseCompactFilter("~heartbeat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rules[0].Evaluate(&LogEntry{Message: "a heartbeat pulse"}) {
		t.Error("expected ~heartbeat to match a message containing it")
	}
	if rules[0].Evaluate(&LogEntry{Message: "all good"}) {
		t.Error("expected ~heartbeat to reject a message without it")
	}
}

func TestParseCompactFilterNegatedMessageContains(t *testing.T) {
	rules, err := ParseCompactFilter("!~heartbeat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules[0].Evaluate(&LogEntry{Message: "a heartbeat pulse"}) {
		t.Error("expected !~heartbeat to reject a message containing it")
	}
	if !rules[0].Evaluate(&LogEntry{Message: "all good"}) {
		t.Error("expected !~heartbeat to pass a message without it")
	}
}

func TestParseCompactFilterTemplate(t *testing.T) {
	rules, err := ParseCompactFilter("tpl:'User {username} login'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rules[0].Evaluate(&LogEntry{TemplateStr: "User {username} login"}) {
		t.Error("expected tpl: to match the exact template")
	}
	if rules[0].Evaluate(&LogEntry{TemplateStr: "User {username} login attempt"}) {
		t.Error("expected tpl: to require an exact match, not a substring")
	}

	negRules, err := ParseCompactFilter("!tpl:'User {username} login'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if negRules[0].Evaluate(&LogEntry{TemplateStr: "User {username} login"}) {
		t.Error("expected !tpl: to reject a matching template")
	}
	if !negRules[0].Evaluate(&LogEntry{TemplateStr: "User {username} login attempt"}) {
		t.Error("expected !tpl: to pass a template that isn't an exact match")
	}
}

func TestParseCompactFilterContextHasAndEq(t *testing.T) {
	rules, err := ParseCompactFilter("ctx:tenant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rules[0].Evaluate(&LogEntry{CustomContext: map[string]string{"tenant": "acme"}}) {
		t.Error("expected ctx:tenant to match when key is present")
	}
	if rules[0].Evaluate(&LogEntry{CustomContext: map[string]string{}}) {
		t.Error("expected ctx:tenant to reject when key is absent")
	}

	eqRules, err := ParseCompactFilter("ctx:tenant=acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !eqRules[0].Evaluate(&LogEntry{CustomContext: map[string]string{"tenant": "acme"}}) {
		t.Error("expected ctx:tenant=acme to match")
	}
	if eqRules[0].Evaluate(&LogEntry{CustomContext: map[string]string{"tenant": "other"}}) {
		t.Error("expected ctx:tenant=acme to reject a different value")
	}
}

func TestParseCompactFilterQuotedValueWithSpace(t *testing.T) {
	rules, err := ParseCompactFilter("ctx:tenant='acme corp'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rules[0].Evaluate(&LogEntry{CustomContext: map[string]string{"tenant": "acme corp"}}) {
		t.Error("expected quoted value with embedded space to survive tokenization")
	}
}

func TestParseCompactFilterMultiTokenAND(t *testing.T) {
	rules, err := ParseCompactFilter("WARN+ !~heartbeat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected two AND-combined rules, got %d", len(rules))
	}
	if !EvaluateRules(rules, &LogEntry{Level: Warn, Message: "Real warning"}) {
		t.Error("expected a real warning to pass")
	}
	if EvaluateRules(rules, &LogEntry{Level: Info, Message: "anything"}) {
		t.Error("expected an Info entry to fail the level clause")
	}
	if EvaluateRules(rules, &LogEntry{Level: Warn, Message: "Heartbeat pulse"}) {
		t.Error("expected a heartbeat warning to fail the keyword clause")
	}
}

func TestParseCompactFilterEmbeddedQuoteRejected(t *testing.T) {
	if _, err := ParseCompactFilter(`~can't`); err == nil {
		t.Error("expected an embedded single quote to be rejected")
	}
}

func TestParseCompactFilterUnterminatedQuote(t *testing.T) {
	if _, err := ParseCompactFilter("ctx:tenant='acme"); err == nil {
		t.Error("expected an unterminated quote to error")
	}
}

func TestParseCompactFilterUnrecognizedToken(t *testing.T) {
	if _, err := ParseCompactFilter("???"); err == nil {
		t.Error("expected an unrecognized token to error")
	}
}
