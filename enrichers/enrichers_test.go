package enrichers

import (
	"os"
	"testing"

	"github.com/corelogio/corelog/core"
)

func newEntry() *core.LogEntry {
	return &core.LogEntry{CustomContext: make(map[string]string)}
}

func TestStaticAddsFixedKeyValue(t *testing.T) {
	e := newEntry()
	Static("region", "us-east-1")(e)
	if e.CustomContext["region"] != "us-east-1" {
		t.Errorf("expected region=us-east-1, got %q", e.CustomContext["region"])
	}
}

func TestThreadIDSurfacesEntryField(t *testing.T) {
	e := newEntry()
	e.ThreadID = "17"
	ThreadID()(e)
	if e.CustomContext["thread_id"] != "17" {
		t.Errorf("expected thread_id=17, got %q", e.CustomContext["thread_id"])
	}
}

func TestThreadIDNoopWhenEmpty(t *testing.T) {
	e := newEntry()
	ThreadID()(e)
	if _, ok := e.CustomContext["thread_id"]; ok {
		t.Error("expected no thread_id key when ThreadID is empty")
	}
}

func TestEnvironmentFallsBackToEnvironmentVar(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ENVIRONMENT", "staging")

	fn := Environment()
	e := newEntry()
	fn(e)
	if e.CustomContext["environment"] != "staging" {
		t.Errorf("expected environment=staging via ENVIRONMENT fallback, got %q", e.CustomContext["environment"])
	}
}

func TestEnvironmentPrefersAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ENVIRONMENT", "staging")

	fn := Environment()
	e := newEntry()
	fn(e)
	if e.CustomContext["environment"] != "production" {
		t.Errorf("expected environment=production, got %q", e.CustomContext["environment"])
	}
}

func TestEnvironmentVarRereadsEachCall(t *testing.T) {
	os.Unsetenv("CORELOG_TEST_VAR")
	fn := EnvironmentVar("CORELOG_TEST_VAR", "deployment")

	e1 := newEntry()
	fn(e1)
	if _, ok := e1.CustomContext["deployment"]; ok {
		t.Error("expected no key when env var unset")
	}

	t.Setenv("CORELOG_TEST_VAR", "v2")
	e2 := newEntry()
	fn(e2)
	if e2.CustomContext["deployment"] != "v2" {
		t.Errorf("expected deployment=v2, got %q", e2.CustomContext["deployment"])
	}
}

func TestEnvironmentVarCachedReadsOnce(t *testing.T) {
	t.Setenv("CORELOG_TEST_CACHED", "v1")
	fn := EnvironmentVarCached("CORELOG_TEST_CACHED", "cached")

	e1 := newEntry()
	fn(e1)
	if e1.CustomContext["cached"] != "v1" {
		t.Fatalf("expected cached=v1, got %q", e1.CustomContext["cached"])
	}

	os.Setenv("CORELOG_TEST_CACHED", "v2")
	e2 := newEntry()
	fn(e2)
	if e2.CustomContext["cached"] != "v1" {
		t.Errorf("expected cached value to stay v1 after registration, got %q", e2.CustomContext["cached"])
	}
}

func TestCallerAddsFileLineAndFunction(t *testing.T) {
	e := newEntry()
	fn := Caller(1)
	fn(e)
	if e.CustomContext["caller"] == "" {
		t.Error("expected a non-empty caller key")
	}
	if e.CustomContext["function"] == "" {
		t.Error("expected a non-empty function key")
	}
}
