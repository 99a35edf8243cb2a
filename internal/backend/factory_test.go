package backend

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "./x.db",
		AMQPURL:      "amqp://localhost:5672/",
		AMQPExchange: "fintrack",
		AMQPQueue:    "ledger_events",
	}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if got.Type != SQLiteBackend || got.SQLiteDBPath != "./x.db" || got.AMQPQueue != "ledger_events" {
		t.Errorf("unexpected backend config %+v", got)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestCreateBackend(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "f.db")}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown type", Config{Type: "sheets"}, true},
		{"required amqp missing", Config{Type: MemoryBackend, RequireAMQP: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewFactory(nil).CreateBackend(context.Background(), tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			if result.AMQP != nil {
				t.Error("AMQP client should be nil without a URL")
			}
			ctx := context.Background()
			if err := result.Store.Write(ctx, "k", []byte("v")); err != nil {
				t.Fatalf("write: %v", err)
			}
			if err := result.Store.Ping(ctx); err != nil {
				t.Fatalf("ping: %v", err)
			}
			if err := result.Cleanup(); err != nil {
				t.Fatalf("cleanup: %v", err)
			}
		})
	}
}
