package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogAdapterTextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug})

	logger.WithFields(Fields{"component": "controller"}).Debug("fetch started", Fields{"key": "page=1"})

	out := buf.String()
	assert.Contains(t, out, "fetch started")
	assert.Contains(t, out, "component=controller")
	assert.Contains(t, out, "key=page=1")
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelWarn})

	logger.Info("hidden", nil)
	logger.Error("shown", errors.New("boom"), nil)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "boom")
}

func TestSlogAdapterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, IsJSON: true})

	logger.Info("hello", Fields{"n": 3})

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"n":3`)
}

type recordingLogger struct {
	msgs   []string
	fields Fields
}

func (r *recordingLogger) Debug(msg string, _ Fields)        { r.msgs = append(r.msgs, "debug:"+msg) }
func (r *recordingLogger) Info(msg string, _ Fields)         { r.msgs = append(r.msgs, "info:"+msg) }
func (r *recordingLogger) Warn(msg string, _ Fields)         { r.msgs = append(r.msgs, "warn:"+msg) }
func (r *recordingLogger) Error(msg string, _ error, _ Fields) { r.msgs = append(r.msgs, "error:"+msg) }
func (r *recordingLogger) WithFields(f Fields) Logger {
	r.fields = mergeFields(r.fields, f)
	return r
}

func TestMultiLoggerFansOut(t *testing.T) {
	_, err := NewMultiLogger()
	require.Error(t, err)

	a, b := &recordingLogger{}, &recordingLogger{}
	m, err := NewMultiLogger(a, b)
	require.NoError(t, err)

	m.Info("one", nil)
	m.WithFields(Fields{"x": 1}).Warn("two", nil)

	assert.Equal(t, []string{"info:one", "warn:two"}, a.msgs)
	assert.Equal(t, []string{"info:one", "warn:two"}, b.msgs)
	assert.Equal(t, 1, b.fields["x"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "staygrip.log")

	logger, closeFn, err := Setup(Options{Level: "info", File: path})
	require.NoError(t, err)

	logger.Info("written to file", Fields{"a": "b"})
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
