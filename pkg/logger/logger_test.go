package logger

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MattThePandah/RA-Tracker/pkg/config"
	"github.com/MattThePandah/RA-Tracker/pkg/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid config with info level",
			cfg:     &config.LoggingConfig{Level: "info"},
			wantErr: false,
		},
		{
			name:    "valid config with debug level",
			cfg:     &config.LoggingConfig{Level: "debug"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
		{
			name: "config with file output",
			cfg: &config.LoggingConfig{
				Level: "info",
				File:  filepath.Join(t.TempDir(), "logs", "igdbcovers.log"),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func newBufferLogger(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := NewWithWriter(&buf, level)
	require.NoError(t, err)
	return l, &buf
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(t, "warn")

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), `"app":"igdbcovers"`)
}

func TestFieldChaining(t *testing.T) {
	l, buf := newBufferLogger(t, "debug")

	l.WithField("platform", "PlayStation").
		WithFields(map[string]interface{}{"offset": 500, "done": false}).
		Info("chained fields")

	output := buf.String()
	for _, want := range []string{`"platform":"PlayStation"`, `"offset":500`, `"done":false`, "chained fields"} {
		if !strings.Contains(output, want) {
			t.Errorf("output %q missing %s", output, want)
		}
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	_ = l.WithField("child", "yes")
	l.Info("parent")

	assert.NotContains(t, buf.String(), "child")
}

func TestWithError(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	if l.WithError(nil) != l {
		t.Error("WithError(nil) should return the same logger")
	}

	l.WithError(errors.New("boom")).Error("error occurred")
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestFieldTypes(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	l.InfoWithFields("typed", map[string]interface{}{
		"int64":    int64(456),
		"float":    3.5,
		"time":     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"duration": 5 * time.Second,
		"strings":  []string{"a", "b"},
		"cause":    errors.New("nested"),
		"custom":   struct{ Name string }{Name: "x"},
	})

	output := buf.String()
	assert.Contains(t, output, `"int64":456`)
	assert.Contains(t, output, `"strings":["a","b"]`)
	assert.Contains(t, output, `"cause":"nested"`)
	assert.Contains(t, output, `"custom":{"Name":"x"}`)
}

func TestGlobalLogger(t *testing.T) {
	err := Initialize(&config.LoggingConfig{Level: "debug"})
	require.NoError(t, err)
	assert.NotNil(t, GetLogger())

	tl := NewTestLogger()
	SetLogger(tl)
	t.Cleanup(func() { SetLogger(nil) })

	GetLogger().Info("through global")
	assert.True(t, tl.HasMessage("through global"))
}

func TestTestLoggerCapturesFieldsAndErrors(t *testing.T) {
	tl := NewTestLogger()

	tl.WithField("a", 1).WithError(errors.New("bad")).WarnWithFields("warned", map[string]interface{}{"b": 2})
	tl.Error("plain")

	msgs := tl.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "WARN", msgs[0].Level)
	assert.Equal(t, map[string]interface{}{"a": 1, "b": 2}, msgs[0].Fields)
	assert.EqualError(t, msgs[0].Error, "bad")
	assert.True(t, tl.HasError())
	assert.Contains(t, tl.String(), "[WARN] warned")

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}

func TestDomainHelpers(t *testing.T) {
	tl := NewTestLogger()

	LogPage(tl, "PlayStation", 500, 120)
	LogCover(tl, "downloaded", "Ico", "/covers/x.jpg", nil)
	LogCover(tl, "failed", "Ico", "/covers/x.jpg", errors.New("eof"))
	LogRateLimit(tl, "games", time.Minute, 1)
	LogRunSummary(tl, models.RunStatistics{Downloaded: 3, Skipped: 2, Failed: 1}, time.Second, true)

	page, ok := tl.FindMessage("Page processed")
	require.True(t, ok)
	assert.Equal(t, 500, page.Fields["offset"])
	assert.Equal(t, 120, page.Fields["count"])

	failed, ok := tl.FindMessage("Cover download failed")
	require.True(t, ok)
	assert.Equal(t, "WARN", failed.Level)
	assert.EqualError(t, failed.Error, "eof")

	assert.True(t, tl.HasMessage("Cover downloaded"))
	assert.True(t, tl.HasMessage("Rate limit reached, backing off"))

	summary, ok := tl.FindMessage("Run finished")
	require.True(t, ok)
	assert.Equal(t, 3, summary.Fields["downloaded"])
	assert.Equal(t, true, summary.Fields["interrupted"])
}
