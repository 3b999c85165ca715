package logging

import "context"

type contextKey string

const (
	recordIDKey  contextKey = "record_id"
	iterationKey contextKey = "iteration"
)

// WithRecordID adds a record ID to the context.
func WithRecordID(ctx context.Context, recordID string) context.Context {
	return context.WithValue(ctx, recordIDKey, recordID)
}

// WithIteration adds the controller iteration number to the context.
func WithIteration(ctx context.Context, iteration int) context.Context {
	return context.WithValue(ctx, iterationKey, iteration)
}

// GetRecordID retrieves the record ID from the context.
// Returns empty string if not present.
func GetRecordID(ctx context.Context) string {
	if id, ok := ctx.Value(recordIDKey).(string); ok {
		return id
	}
	return ""
}

// GetIteration retrieves the iteration number from the context.
// Returns 0 if not present.
func GetIteration(ctx context.Context) int {
	if n, ok := ctx.Value(iterationKey).(int); ok {
		return n
	}
	return 0
}
