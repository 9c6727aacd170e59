package log

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestInitialize(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	if Verbosity() != LevelInfo {
		t.Errorf("expected verbosity %d, got %d", LevelInfo, Verbosity())
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   int
		log     func()
		wantOut bool
	}{
		{"info hidden when quiet", LevelQuiet, func() { Info("summary fetched") }, false},
		{"warn shown when quiet", LevelQuiet, func() { Warn("slow response") }, true},
		{"debug shown at debug", LevelDebug, func() { Debug("fetched page", "page", 2) }, true},
		{"trace hidden at debug", LevelDebug, func() { Trace("graphql request") }, false},
		{"trace shown at trace", LevelTrace, func() { Trace("graphql request") }, true},
		{"error always shown", LevelQuiet, func() { Error("fetch failed") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Initialize(tt.level, &buf)
			tt.log()
			if got := buf.Len() > 0; got != tt.wantOut {
				t.Errorf("output present = %v, want %v (%q)", got, tt.wantOut, buf.String())
			}
		})
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)
	With("run", "abc123")

	Info("fetching activity", "user", "octocat")

	out := buf.String()
	if !strings.Contains(out, "run=abc123") {
		t.Errorf("expected run attribute in output, got %q", out)
	}
	if !strings.Contains(out, "user=octocat") {
		t.Errorf("expected user attribute in output, got %q", out)
	}
}

func TestConcurrentLogging(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelDebug, &buf)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for p := 0; p < 10; p++ {
				Debug("fetched page", "drain", i, "page", p)
			}
		}(i)
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "fetched page"); got != 30 {
		t.Errorf("expected 30 records, got %d", got)
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	Progress("Fetching issues %d/%d", 10, 20)
	ProgressDone()
	if !strings.Contains(buf.String(), "10/20 done") {
		t.Errorf("expected completed progress line, got %q", buf.String())
	}

	buf.Reset()
	Progress("Another progress")
	Info("interrupt")
	if !strings.Contains(buf.String(), "Another progress\n") {
		t.Errorf("log record should start on a fresh line, got %q", buf.String())
	}
	ProgressClear()
}

func TestSetOutput(t *testing.T) {
	var buf1, buf2 bytes.Buffer

	Initialize(LevelInfo, &buf1)
	SetOutput(&buf2)
	Progress("moved")

	if !strings.Contains(buf2.String(), "moved") {
		t.Error("expected progress in second buffer")
	}
}

func TestVerbosityLevels(t *testing.T) {
	tests := []struct {
		level   int
		isInfo  bool
		isDebug bool
		isTrace bool
	}{
		{LevelQuiet, false, false, false},
		{LevelInfo, true, false, false},
		{LevelDebug, true, true, false},
		{LevelTrace, true, true, true},
	}

	var buf bytes.Buffer
	for _, tt := range tests {
		Initialize(tt.level, &buf)

		if IsInfo() != tt.isInfo {
			t.Errorf("at level %d: expected IsInfo()=%v, got %v", tt.level, tt.isInfo, IsInfo())
		}
		if IsDebug() != tt.isDebug {
			t.Errorf("at level %d: expected IsDebug()=%v, got %v", tt.level, tt.isDebug, IsDebug())
		}
		if IsTrace() != tt.isTrace {
			t.Errorf("at level %d: expected IsTrace()=%v, got %v", tt.level, tt.isTrace, IsTrace())
		}
	}
}
