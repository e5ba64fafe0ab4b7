package core

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestEntryCloneIndependence(t *testing.T) {
	orig := &LogEntry{
		Level:       Info,
		Message:     "hello",
		Timestamp:   time.Now(),
		TemplateStr: "hello {Name}",
		Arguments:   []KeyValue{{Name: "Name", Value: "world"}},
		Properties: []PlaceholderProperty{
			{Name: "Name", Value: "world", Transforms: []string{"upper"}},
		},
		CustomContext: map[string]string{"k": "v"},
		Tags:          []string{"a", "b"},
		Exception:     &ExceptionInfo{Type: "error", Message: "boom"},
	}

	clone := orig.Clone()

	if diff := cmp.Diff(orig, clone); diff != "" {
		t.Fatalf("clone diverges from original before mutation (-orig +clone):\n%s", diff)
	}

	clone.Arguments[0].Value = "mutated"
	clone.Properties[0].Transforms[0] = "lower"
	clone.CustomContext["k"] = "mutated"
	clone.Tags[0] = "mutated"
	clone.Exception.Message = "mutated"

	if orig.Arguments[0].Value != "world" {
		t.Error("mutating clone.Arguments affected original")
	}
	if orig.Properties[0].Transforms[0] != "upper" {
		t.Error("mutating clone.Properties affected original")
	}
	if orig.CustomContext["k"] != "v" {
		t.Error("mutating clone.CustomContext affected original")
	}
	if orig.Tags[0] != "a" {
		t.Error("mutating clone.Tags affected original")
	}
	if orig.Exception.Message != "boom" {
		t.Error("mutating clone.Exception affected original")
	}
}

func TestEntryCloneNilFields(t *testing.T) {
	orig := &LogEntry{Level: Debug, Message: "bare"}
	clone := orig.Clone()
	if clone.Arguments != nil || clone.Properties != nil || clone.CustomContext != nil || clone.Tags != nil || clone.Exception != nil {
		t.Error("Clone populated fields that were nil on the original")
	}
}

func TestHasException(t *testing.T) {
	e := &LogEntry{}
	if e.HasException() {
		t.Error("HasException true with no exception set")
	}
	e.Exception = &ExceptionInfo{Type: "x"}
	if !e.HasException() {
		t.Error("HasException false with exception set")
	}
}
