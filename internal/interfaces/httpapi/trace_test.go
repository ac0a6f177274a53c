package httpapi

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func withRemoteParent(ctx context.Context) context.Context {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{2},
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithRemoteSpanContext(ctx, sc)
}

func TestStartSpan_OnlyHandlersUnderParent(t *testing.T) {
	tests := []struct {
		name       string
		ctx        context.Context
		span       string
		wantReused bool
	}{
		{name: "no parent", ctx: context.Background(), span: "httpapi.Handler.GetFreshness", wantReused: true},
		{name: "middleware span", ctx: withRemoteParent(context.Background()), span: "httpapi.RequestLogging", wantReused: true},
		{name: "handler span", ctx: withRemoteParent(context.Background()), span: "httpapi.Handler.GetFreshness", wantReused: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, span := startSpan(tt.ctx, tt.span)
			defer span.End()
			if reused := got == tt.ctx; reused != tt.wantReused {
				t.Fatalf("startSpan(%q) reused context=%v want=%v", tt.span, reused, tt.wantReused)
			}
		})
	}
}

func TestRecordSpanError_NonRecordingSpanIsIgnored(t *testing.T) {
	recordSpanError(context.Background(), http.StatusInternalServerError, errors.New("boom"))
	recordSpanError(withRemoteParent(context.Background()), http.StatusBadRequest, errors.New("bad"))
}
