package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerCarriesComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentLedger, Output: &buf})
	l.Info("Transaction recorded", FieldUserID, 7)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry[FieldComponent] != ComponentLedger {
		t.Errorf("component = %v", entry[FieldComponent])
	}
	if entry[FieldUserID] != float64(7) {
		t.Errorf("user_id = %v", entry[FieldUserID])
	}

	buf.Reset()
	l.WithComponent(ComponentReports).Info("x")
	if c := strings.Count(buf.String(), `"component"`); c != 1 {
		t.Errorf("expected one component attribute, got %d in %s", c, buf.String())
	}
	if !strings.Contains(buf.String(), ComponentReports) {
		t.Errorf("expected reports component in %s", buf.String())
	}
}

func TestLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	l := New(DefaultConfig()).With(FieldRequestID, "req_1")
	ctx := WithContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatal("FromContext should return the stored logger")
	}
	if FromContext(context.Background()).Component() != ComponentApp {
		t.Fatal("fallback logger should use the app component")
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithComponent(ComponentLedger).WithOperation(OpRecord).WithTransaction(3, 7, "250", "CBE").WithError(nil)
	if len(f.ToSlice()) != 2*6 {
		t.Fatalf("unexpected fields: %v", f)
	}
	if _, ok := f[FieldError]; ok {
		t.Fatal("nil error should not add a field")
	}
}
