package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts record_id and iteration from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if recordID := GetRecordID(ctx); recordID != "" {
		e.Str("record_id", recordID)
	}

	if iteration := GetIteration(ctx); iteration > 0 {
		e.Int("iteration", iteration)
	}
}
