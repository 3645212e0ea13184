package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentApp, JSON: true, Output: &buf})

	logger.Info("starting")
	logger.WithComponent(ComponentLedger).With(FieldVersion, 3).Warn("slow save")
	logger.WithComponent(ComponentDerive).Fault("dashboard", errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)

	assert.Equal(t, ComponentApp, lines[0][FieldComponent])
	assert.Equal(t, "INFO", lines[0]["level"])

	assert.Equal(t, ComponentLedger, lines[1][FieldComponent])
	assert.EqualValues(t, 3, lines[1][FieldVersion])

	assert.Equal(t, ComponentDerive, lines[2][FieldComponent])
	assert.Equal(t, "dashboard", lines[2][FieldView])
	assert.Equal(t, ErrorTypeInternal, lines[2][FieldErrorType])
	assert.Equal(t, "boom", lines[2][FieldError])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, JSON: true, Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Error("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
}

func TestContext(t *testing.T) {
	logger := Nop().WithComponent(ComponentHTTP)
	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))

	fallback := FromContext(context.Background())
	require.NotNil(t, fallback)
	assert.Equal(t, "unknown", fallback.Component())
}

func TestLogFields(t *testing.T) {
	fields := NewFields().
		WithComponent(ComponentTrace).
		WithOperation(OpPay).
		WithAmount(decimal.RequireFromString("12.5")).
		WithClientIP("192.0.2.1").
		WithError(nil).
		WithHTTPRequest("POST", "/api/bills/1/pay", "", "").
		WithHTTPResponse(404, 7)

	assert.Equal(t, "12.50", fields[FieldAmount])
	assert.Equal(t, false, fields[FieldSuccess])
	assert.NotContains(t, fields, FieldError)
	assert.NotContains(t, fields, FieldUserAgent)
	assert.Len(t, fields.ToSlice(), 2*len(fields))

	fields.WithError(errors.New("not found"))
	assert.Equal(t, "not found", fields[FieldError])
}
