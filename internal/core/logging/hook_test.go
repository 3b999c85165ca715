package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name      string
		setupCtx  func() context.Context
		wantKeys  []string
		wantEmpty []string
	}{
		{
			name: "both record_id and iteration",
			setupCtx: func() context.Context {
				ctx := context.Background()
				ctx = WithRecordID(ctx, "invoice-42")
				ctx = WithIteration(ctx, 3)
				return ctx
			},
			wantKeys: []string{"record_id", "iteration"},
		},
		{
			name: "only record_id",
			setupCtx: func() context.Context {
				return WithRecordID(context.Background(), "invoice-42")
			},
			wantKeys:  []string{"record_id"},
			wantEmpty: []string{"iteration"},
		},
		{
			name: "only iteration",
			setupCtx: func() context.Context {
				return WithIteration(context.Background(), 2)
			},
			wantKeys:  []string{"iteration"},
			wantEmpty: []string{"record_id"},
		},
		{
			name:      "no context values",
			setupCtx:  context.Background,
			wantEmpty: []string{"record_id", "iteration"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := tt.setupCtx()

			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(ctx).Msg("test")

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("failed to parse log: %v", err)
			}

			for _, key := range tt.wantKeys {
				if _, ok := logEntry[key]; !ok {
					t.Errorf("expected %s to be present in log", key)
				}
			}

			for _, key := range tt.wantEmpty {
				if _, ok := logEntry[key]; ok {
					t.Errorf("expected %s to be absent from log", key)
				}
			}
		})
	}
}
