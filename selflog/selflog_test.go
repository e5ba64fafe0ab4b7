package selflog_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/corelogio/corelog/selflog"
)

func TestDisabledByDefault(t *testing.T) {
	selflog.Disable()
	if selflog.IsEnabled() {
		t.Fatal("expected selflog to start disabled")
	}
	selflog.Printf("[test] recorded while disabled")
	if recent := selflog.Recent(); len(recent) == 0 || !strings.Contains(recent[len(recent)-1], "[test] recorded while disabled") {
		t.Error("expected Recent() to keep a line written while disabled")
	}
}

func TestEnableWithWriter(t *testing.T) {
	var buf bytes.Buffer
	selflog.Enable(&buf)
	defer selflog.Disable()

	selflog.Printf("[test] error: %s", "boom")

	out := buf.String()
	if !strings.Contains(out, "[test] error: boom") {
		t.Errorf("expected message in output, got: %s", out)
	}
	if !strings.Contains(out, time.Now().UTC().Format("2006-01-02")) {
		t.Error("expected an RFC3339 date prefix")
	}
}

func TestEnableWithFunc(t *testing.T) {
	var got []string
	selflog.EnableFunc(func(msg string) { got = append(got, msg) })
	defer selflog.Disable()

	selflog.Printf("[sink] write failed: %v", "disk full")

	if len(got) != 1 || !strings.Contains(got[0], "write failed: disk full") {
		t.Errorf("unexpected captured messages: %v", got)
	}
}

func TestDisableStopsOutput(t *testing.T) {
	var buf bytes.Buffer
	selflog.Enable(&buf)
	selflog.Printf("[test] first")
	selflog.Disable()
	selflog.Printf("[test] second")

	if strings.Contains(buf.String(), "second") {
		t.Error("expected no output once disabled")
	}
}

func TestNilDestinationsIgnored(t *testing.T) {
	selflog.Enable(nil)
	selflog.Printf("[test] should not crash with nil writer")
	selflog.EnableFunc(nil)
	selflog.Printf("[test] should not crash with nil func")
}

// TestRepeatSuppression verifies that a run of identical consecutive
// messages is coalesced into a single "(repeated N times)" line instead of
// flooding the installed destination — the behavior a sink hitting the
// same error on every write would otherwise trigger.
func TestRepeatSuppression(t *testing.T) {
	var buf bytes.Buffer
	selflog.Enable(&buf)
	defer selflog.Disable()

	for i := 0; i < 5; i++ {
		selflog.Printf("[rollingfile] retention delete failed: %s", "permission denied")
	}
	selflog.Printf("[rollingfile] recovered")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected the 5 identical lines collapsed to 1, a repeat-count line, and the distinct one, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "retention delete failed: permission denied") {
		t.Errorf("expected the first emitted line to be the original message, got: %s", lines[0])
	}
	if !strings.Contains(lines[1], "repeated 4 times") {
		t.Errorf("expected the coalesced repeat count on the message change, got: %s", lines[1])
	}
	if !strings.Contains(lines[2], "[rollingfile] recovered") {
		t.Errorf("expected the distinct message after the repeat count, got: %s", lines[2])
	}
}

// TestRepeatSuppressionFlush verifies Flush emits a still-pending repeat
// run immediately rather than leaving it buffered until the next distinct
// message arrives.
func TestRepeatSuppressionFlush(t *testing.T) {
	var buf bytes.Buffer
	selflog.Enable(&buf)
	defer selflog.Disable()

	selflog.Printf("[async] inner sink panic: %v", "index out of range")
	selflog.Printf("[async] inner sink panic: %v", "index out of range")
	selflog.Printf("[async] inner sink panic: %v", "index out of range")

	if strings.Contains(buf.String(), "repeated") {
		t.Fatal("did not expect the repeat line before Flush or a message change")
	}

	selflog.Flush()

	if !strings.Contains(buf.String(), "repeated 2 times") {
		t.Errorf("expected Flush to emit the pending repeat count, got: %s", buf.String())
	}
}

// TestRecentBuffer verifies the in-memory ring buffer is populated
// regardless of whether output is currently enabled, so a diagnostics
// surface can inspect it after the fact.
func TestRecentBuffer(t *testing.T) {
	selflog.Disable()
	selflog.Enable(&bytes.Buffer{})
	for i := 0; i < 3; i++ {
		selflog.Printf("[parser] invalid template at position %d", i)
	}
	selflog.Disable()

	lines := selflog.Recent()
	if len(lines) < 3 {
		t.Fatalf("expected at least 3 recent lines after disabling, got %d", len(lines))
	}
	last := lines[len(lines)-1]
	if !strings.Contains(last, "invalid template at position 2") {
		t.Errorf("expected Recent() to include the last Printf call, got: %s", last)
	}
}

func TestSyncWriterConcurrentWrites(t *testing.T) {
	var unsafeBuf bytes.Buffer
	safe := selflog.Sync(&unsafeBuf)
	selflog.Enable(safe)
	defer selflog.Disable()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			selflog.Printf("[goroutine-%d] test message", n)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(unsafeBuf.String()), "\n")
	if len(lines) != 100 {
		t.Errorf("expected 100 distinct lines, got %d", len(lines))
	}
}

func TestRaceEnableDisablePrintf(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping race exercise in short mode")
	}

	var buf bytes.Buffer
	safe := selflog.Sync(&buf)
	selflog.Enable(safe)
	defer selflog.Disable()

	done := make(chan bool)

	go func() {
		for i := 0; i < 100; i++ {
			selflog.Enable(safe)
			time.Sleep(time.Microsecond)
		}
		done <- true
	}()
	go func() {
		for i := 0; i < 100; i++ {
			selflog.Disable()
			time.Sleep(time.Microsecond)
		}
		done <- true
	}()
	for i := 0; i < 10; i++ {
		go func(n int) {
			for j := 0; j < 100; j++ {
				selflog.Printf("[race-%d] message %d", n, j)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 12; i++ {
		<-done
	}
}

func BenchmarkSelfLogDisabled(b *testing.B) {
	selflog.Disable()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		selflog.Printf("[bench] test message %d", i)
	}
}

func BenchmarkSelfLogEnabledWithFunc(b *testing.B) {
	selflog.EnableFunc(func(string) {})
	defer selflog.Disable()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		selflog.Printf("[bench] test message %d", i)
	}
}
