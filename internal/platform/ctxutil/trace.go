package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type traceDataKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	val := ctx.Value(traceDataKey{})
	if td, ok := val.(*TraceData); ok {
		return td
	}
	return nil
}

// TraceID returns the trace id attached to ctx, minting a fresh one when absent.
func TraceID(ctx context.Context) string {
	if td := GetTraceData(ctx); td != nil && td.TraceID != "" {
		return td.TraceID
	}
	return uuid.NewString()
}
