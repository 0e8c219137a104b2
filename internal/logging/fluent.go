package logging

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// FluentAdapter ships log entries to a fluentd/fluent-bit collector
type FluentAdapter struct {
	client   *fluent.Fluent
	fields   Fields
	minLevel slog.Level
	prefix   string
}

// NewFluentAdapter wraps an existing fluent client
func NewFluentAdapter(client *fluent.Fluent, minLevel slog.Leveler, tagPrefix string) (*FluentAdapter, error) {
	if client == nil {
		return nil, fmt.Errorf("fluent client cannot be nil")
	}

	level := slog.LevelInfo
	if minLevel != nil {
		level = minLevel.Level()
	}

	return &FluentAdapter{
		client:   client,
		fields:   make(Fields),
		minLevel: level,
		prefix:   tagPrefix,
	}, nil
}

// DialFluent connects asynchronously so a missing collector never blocks startup
func DialFluent(host string, port int) (*fluent.Fluent, error) {
	client, err := fluent.New(fluent.Config{
		FluentHost: host,
		FluentPort: port,
		Async:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to fluent at %s:%d: %w", host, port, err)
	}
	return client, nil
}

func (a *FluentAdapter) post(level string, msg string, data Fields) {
	data["level"] = level
	data["message"] = msg
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)

	tag := level
	if a.prefix != "" {
		tag = a.prefix + "." + level
	}

	_ = a.client.Post(tag, map[string]interface{}(data))
}

func (a *FluentAdapter) Debug(msg string, fields Fields) {
	if a.minLevel > slog.LevelDebug {
		return
	}
	a.post("debug", msg, mergeFields(a.fields, fields))
}

func (a *FluentAdapter) Info(msg string, fields Fields) {
	if a.minLevel > slog.LevelInfo {
		return
	}
	a.post("info", msg, mergeFields(a.fields, fields))
}

func (a *FluentAdapter) Warn(msg string, fields Fields) {
	if a.minLevel > slog.LevelWarn {
		return
	}
	a.post("warn", msg, mergeFields(a.fields, fields))
}

func (a *FluentAdapter) Error(msg string, err error, fields Fields) {
	if a.minLevel > slog.LevelError {
		return
	}
	data := mergeFields(a.fields, fields)
	if err != nil {
		data["error"] = err.Error()
	}
	a.post("error", msg, data)
}

func (a *FluentAdapter) WithFields(fields Fields) Logger {
	return &FluentAdapter{
		client:   a.client,
		fields:   mergeFields(a.fields, fields),
		minLevel: a.minLevel,
		prefix:   a.prefix,
	}
}

// Close flushes pending entries
func (a *FluentAdapter) Close() error {
	return a.client.Close()
}
