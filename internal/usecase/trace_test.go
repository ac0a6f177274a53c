package usecase

import (
	"context"
	"errors"
	"testing"
)

func TestStartUsecaseSpan_UntracedCallerGetsNoop(t *testing.T) {
	ctx := context.Background()

	got, span := startUsecaseSpan(ctx, "usecase.Test")
	if got != ctx {
		t.Fatalf("expected context unchanged without a parent span")
	}
	if span.IsRecording() {
		t.Fatalf("expected non-recording span")
	}
	span.End()

	annotateQuery(got, "gameweek:current", "gameweek", true, errors.New("boom"))
}
