package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFiltersByLevel(t *testing.T) {
	for _, tt := range []struct {
		level     log.Level
		wantDebug bool
	}{
		{log.InfoLevel, false},
		{log.DebugLevel, true},
	} {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			l := newLogger(&buf, tt.level)
			l.Debug("scanning declaration")
			l.Info("parsed structures", "count", 2)

			out := buf.String()
			if !strings.Contains(out, "parsed structures") {
				t.Errorf("info message missing:\n%s", out)
			}
			if got := strings.Contains(out, "scanning declaration"); got != tt.wantDebug {
				t.Errorf("debug message logged = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestNewLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("built graph")

	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(buf.String()) {
		t.Errorf("line should start with an HH:MM:SS.ms timestamp: %q", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("exported 3 structures")

	if !regexp.MustCompile(`exported 3 structures \(\d+(\.\d+)?[µnm]?s\)`).MatchString(buf.String()) {
		t.Errorf("progress line should carry the elapsed time: %q", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("a bare context should yield log.Default()")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestRootCommandAttachesLogger(t *testing.T) {
	isolate(t)

	var buf bytes.Buffer
	c := New(&buf, log.DebugLevel)
	root := c.RootCommand()
	root.SetArgs([]string{"graph", "--no-cache"})
	root.SetIn(bytes.NewBufferString(listSrc))
	root.SetOut(&bytes.Buffer{})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("graph error: %v", err)
	}
	for _, want := range []string{"parsed structures", "built graph", "rendered outputs"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("debug log missing %q:\n%s", want, buf.String())
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug message logged at info level: %q", buf.String())
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Error("debug message not logged after SetLogLevel(LogDebug)")
	}
}
