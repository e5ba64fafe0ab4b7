package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/corelogio/corelog/core"
)

func TestParseLiteralOnly(t *testing.T) {
	plan := Parse("hello world")
	if plan.PlaceholderCount != 0 {
		t.Fatalf("expected 0 placeholders, got %d", plan.PlaceholderCount)
	}
	if len(plan.Segments) != 1 || !plan.Segments[0].Literal || plan.Segments[0].Text != "hello world" {
		t.Fatalf("unexpected segments: %+v", plan.Segments)
	}
}

func TestParseEscapedBraces(t *testing.T) {
	plan := Parse("{{literal}} {Name}")
	if plan.PlaceholderCount != 1 {
		t.Fatalf("expected 1 placeholder, got %d", plan.PlaceholderCount)
	}
	if diff := cmp.Diff("{literal} ", plan.Segments[0].Text); diff != "" {
		t.Errorf("escaped literal mismatch (-want +got):\n%s", diff)
	}
	if plan.Segments[1].Name != "Name" {
		t.Errorf("expected placeholder name Name, got %q", plan.Segments[1].Name)
	}
}

func TestParseUnterminatedBrace(t *testing.T) {
	plan := Parse("incomplete {Name")
	if plan.PlaceholderCount != 0 {
		t.Fatalf("expected an unterminated brace to not produce a placeholder, got %d", plan.PlaceholderCount)
	}
	if plan.Segments[0].Text != "incomplete {Name" {
		t.Errorf("expected raw tail preserved, got %q", plan.Segments[0].Text)
	}
}

func TestParsePlaceholderOperatorsAndTransforms(t *testing.T) {
	plan := Parse("{@User:json|upper}")
	if plan.PlaceholderCount != 1 {
		t.Fatalf("expected 1 placeholder, got %d", plan.PlaceholderCount)
	}
	seg := plan.Segments[0]
	want := Segment{
		Name:       "User",
		Op:         core.OpDestructure,
		Spec:       "json",
		Transforms: []string{"upper"},
		Raw:        "{@User:json|upper}",
	}
	if diff := cmp.Diff(want, seg, cmpopts.IgnoreFields(Segment{}, "Literal", "Text")); diff != "" {
		t.Errorf("segment mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInvalidOperatorFallsBackToLiteral(t *testing.T) {
	for _, tmpl := range []string{"{@}", "{@@x}", "{@ x}"} {
		plan := Parse(tmpl)
		if plan.PlaceholderCount != 0 {
			t.Errorf("Parse(%q): expected invalid operator form to stay literal, got %d placeholders", tmpl, plan.PlaceholderCount)
		}
	}
}

func TestParseFormatSpecSplitsOnLastColon(t *testing.T) {
	plan := Parse("{Value:000.00}")
	seg := plan.Segments[0]
	if seg.Name != "Value" || seg.Spec != "000.00" {
		t.Errorf("got name=%q spec=%q, want name=Value spec=000.00", seg.Name, seg.Spec)
	}
}

func TestExtractPropertyNamesDeduplicatesInOrder(t *testing.T) {
	names := ExtractPropertyNames("{A} {B} {A} {C}")
	want := []string{"A", "B", "C"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("ExtractPropertyNames mismatch (-want +got):\n%s", diff)
	}
}
