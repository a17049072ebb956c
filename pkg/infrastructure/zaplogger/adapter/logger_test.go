package adapter

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mateusmacedo/ticket-kiosk/pkg/application"
)

func TestZapAdapterWritesFieldsAndRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapAppLoggerFrom(zap.New(core))

	ctx := application.WithRequestID(context.Background(), "req-42")
	logger.Info(ctx, "ticket minted", map[string]interface{}{"ticket_id": "PK0001"})
	logger.Trace(ctx, "trace maps to debug", nil)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["ticket_id"] != "PK0001" || fields["requestID"] != "req-42" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if entries[1].Level != zapcore.DebugLevel {
		t.Fatalf("trace logged at %v", entries[1].Level)
	}
}

func TestNewZapAppLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := NewZapAppLogger(Options{AppName: "kiosk", Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
