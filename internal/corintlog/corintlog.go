// Package corintlog wraps charmbracelet/log with CORINT's structured
// logging conventions: a correlation id carried through context, and
// domain fields (layer and component from Options, request_id and
// pipeline_id from WithDecision, and any pairs added via With) merged into
// every entry so a single request's logs can be grepped by request_id
// across every layer of the stack.
package corintlog

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	cblog "github.com/charmbracelet/log"
)

// Options configures a Logger at construction time.
type Options struct {
	Writer        io.Writer
	Level         string // debug|info|warn|error
	HumanReadable bool   // false selects the JSON formatter
	Layer         string // ast|compiler|vm|engine|cli
	Component     string
	ReportCaller  bool
}

// Logger is CORINT's structured logger, built on charmbracelet/log.
type Logger struct {
	base   *cblog.Logger
	fields []interface{}
}

// New constructs a Logger from opts.
func New(opts Options) (*Logger, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}

	level := cblog.InfoLevel
	if opts.Level != "" {
		parsed, err := cblog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("corintlog: parse level: %w", err)
		}
		level = parsed
	}

	formatter := cblog.TextFormatter
	if !opts.HumanReadable {
		formatter = cblog.JSONFormatter
	}

	base := cblog.NewWithOptions(writer, cblog.Options{
		Level:           level,
		ReportTimestamp: true,
		ReportCaller:    opts.ReportCaller,
		Formatter:       formatter,
	})

	var fields []interface{}
	if opts.Layer != "" {
		fields = append(fields, "layer", opts.Layer)
	}
	if opts.Component != "" {
		fields = append(fields, "component", opts.Component)
	}

	return &Logger{base: base, fields: fields}, nil
}

// With returns a derived Logger that always includes the supplied
// key/value pairs in addition to any already attached.
func (l *Logger) With(fields ...interface{}) *Logger {
	if l == nil {
		return nil
	}
	next := make([]interface{}, 0, len(l.fields)+len(fields))
	next = append(next, l.fields...)
	next = append(next, fields...)
	return &Logger{base: l.base, fields: next}
}

// WithDecision returns a derived Logger scoped to one decision request,
// attaching request_id and pipeline_id so every log line for this
// decision can be correlated.
func (l *Logger) WithDecision(requestID, pipelineID string) *Logger {
	return l.With("request_id", requestID, "pipeline_id", pipelineID)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, cblog.DebugLevel, msg, fields...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, cblog.InfoLevel, msg, fields...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, cblog.WarnLevel, msg, fields...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, cblog.ErrorLevel, msg, fields...)
}

func (l *Logger) log(ctx context.Context, level cblog.Level, msg string, fields ...interface{}) {
	if l == nil || l.base == nil {
		return
	}
	payload := mergeFields(l.fields, fields, correlationID(ctx))
	switch level {
	case cblog.DebugLevel:
		l.base.Debug(msg, payload...)
	case cblog.WarnLevel:
		l.base.Warn(msg, payload...)
	case cblog.ErrorLevel:
		l.base.Error(msg, payload...)
	default:
		l.base.Info(msg, payload...)
	}
}

type correlationIDKey struct{}

// WithCorrelationID attaches id to ctx so every Logger call made against a
// descendant context carries it automatically.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

func correlationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// mergeFields flattens base+additions (later keys win on collision,
// preserving first-seen order) and appends a non-empty correlation id
// last, mirroring the teacher's field-merge discipline of deterministic
// key ordering for reproducible log output.
func mergeFields(base, additions []interface{}, corrID string) []interface{} {
	order := make([]string, 0, len(base)/2+len(additions)/2)
	store := make(map[string]interface{})

	add := func(key string, val interface{}) {
		if key == "" {
			return
		}
		if _, exists := store[key]; !exists {
			order = append(order, key)
		}
		store[key] = val
	}
	process := func(kvs []interface{}) {
		for i := 0; i+1 < len(kvs); i += 2 {
			k, ok := kvs[i].(string)
			if !ok {
				continue
			}
			add(k, kvs[i+1])
		}
	}

	process(base)
	process(additions)
	if corrID != "" {
		add("correlation_id", corrID)
	}

	out := make([]interface{}, 0, len(order)*2)
	for _, k := range order {
		out = append(out, k, store[k])
	}
	return out
}
