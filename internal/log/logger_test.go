package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func bufferLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{
		Component: ComponentDelivery,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level}),
	})
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger(&buf, slog.LevelInfo)
	l.Info("loaded", FieldRecords, 3)
	out := buf.String()
	if !strings.Contains(out, "component=delivery") || !strings.Contains(out, "records=3") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	l.WithComponent(ComponentStorage).Warn("slow")
	if !strings.Contains(buf.String(), "component=storage") || strings.Contains(buf.String(), "component=delivery") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestContextCarriesRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := bufferLogger(&buf, slog.LevelInfo)
	ctx := NewContext(context.Background(), base.With(FieldRequestID, "req-1"))
	FromContext(ctx).Info("inside")
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("expected request id in output: %s", buf.String())
	}

	if FromContext(context.Background()) == nil {
		t.Fatalf("FromContext should fall back to the default logger")
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(bufferLogger(&buf, slog.LevelInfo))
	r := httptest.NewRequest(http.MethodGet, "/api/deliveries/moto", nil)

	sl.LogHTTPEnd(context.Background(), r, 404, 3, "127.0.0.1")
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "status_code=404") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("disk full"), ComponentStorage, OpUpsert, nil)
	if !strings.Contains(buf.String(), `error="disk full"`) || !strings.Contains(buf.String(), "operation=upsert") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
